package form

import "errors"

var (
	ErrMinimumEntries  = errors.New("list must keep at least one entry")
	ErrIndexOutOfRange = errors.New("list index out of range")
	ErrUnknownField    = errors.New("unknown field")
	ErrUnknownList     = errors.New("unknown list")
	ErrInvalidValue    = errors.New("invalid field value")
	ErrInvalidCommand  = errors.New("invalid command")
)

// Warning is a refused mutation that should be shown to the user. The draft
// is left as it was.
type Warning struct {
	List    ListKind
	Message string
}

func (w *Warning) Error() string { return w.Message }

// Is matches ErrMinimumEntries.
func (w *Warning) Is(target error) bool { return target == ErrMinimumEntries }

// AsWarning unwraps err into a *Warning if it is one.
func AsWarning(err error) (*Warning, bool) {
	var w *Warning
	if errors.As(err, &w) {
		return w, true
	}
	return nil, false
}

func minimumEntriesWarning(list ListKind) *Warning {
	msg := "You must have at least one entry"
	switch list {
	case ListWorkExperience:
		msg = "You must have at least one work experience entry"
	case ListEducation:
		msg = "You must have at least one education entry"
	}
	return &Warning{List: list, Message: msg}
}
