// Package form owns the editable resume draft. Every mutation is a typed
// command applied by a single reducer that returns a new draft.
package form

import (
	"encoding/json"
	"fmt"
)

// ListKind names one of the repeatable sections of a draft.
type ListKind string

const (
	ListWorkExperience ListKind = "workExperience"
	ListEducation      ListKind = "education"
	ListCertifications ListKind = "certifications"
)

// Top-level text fields accepted by SetField.
const (
	FieldTitle       = "title"
	FieldSummary     = "summary"
	FieldDescription = "description"
)

// Command is one draft mutation. The set of implementations is closed.
type Command interface {
	kind() string
}

// SetField replaces one top-level text field.
type SetField struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// PersonalInfoPatch holds the personal info fields to overwrite. Nil fields
// are left as they are.
type PersonalInfoPatch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Country  *string `json:"country,omitempty"`
	State    *string `json:"state,omitempty"`
	City     *string `json:"city,omitempty"`
	Website  *string `json:"website,omitempty"`
	LinkedIn *string `json:"linkedin,omitempty"`
}

// SetPersonalInfo shallow-merges Patch into the personal info block.
type SetPersonalInfo struct {
	Patch PersonalInfoPatch `json:"patch"`
}

// AddListItem appends a blank entry with a fresh LocalID.
type AddListItem struct {
	List ListKind `json:"list"`
}

// RemoveListItem removes the entry at Index.
type RemoveListItem struct {
	List  ListKind `json:"list"`
	Index int      `json:"index"`
}

// SetListItem replaces one field of the entry at Index. Value is a string,
// or a bool for isCurrent.
type SetListItem struct {
	List  ListKind `json:"list"`
	Index int      `json:"index"`
	Field string   `json:"field"`
	Value any      `json:"value"`
}

// SetSkills replaces the skills list from a multi-line text block.
type SetSkills struct {
	Text string `json:"text"`
	// KeepBlank keeps blank lines as empty entries.
	KeepBlank bool `json:"keepBlank,omitempty"`
}

func (SetField) kind() string        { return "setField" }
func (SetPersonalInfo) kind() string { return "setPersonalInfo" }
func (AddListItem) kind() string     { return "addListItem" }
func (RemoveListItem) kind() string  { return "removeListItem" }
func (SetListItem) kind() string     { return "setListItem" }
func (SetSkills) kind() string       { return "setSkills" }

// Kind returns the wire name of cmd.
func Kind(cmd Command) string {
	return cmd.kind()
}

// envelope is the wire form of a command: {"type": "...", ...fields}.
type envelope struct {
	Type string `json:"type"`
}

// DecodeCommand decodes one command from its JSON envelope.
func DecodeCommand(raw []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	var (
		cmd Command
		err error
	)
	switch env.Type {
	case "setField":
		var c SetField
		err = json.Unmarshal(raw, &c)
		cmd = c
	case "setPersonalInfo":
		var c SetPersonalInfo
		err = json.Unmarshal(raw, &c)
		cmd = c
	case "addListItem":
		var c AddListItem
		err = json.Unmarshal(raw, &c)
		cmd = c
	case "removeListItem":
		var c RemoveListItem
		err = json.Unmarshal(raw, &c)
		cmd = c
	case "setListItem":
		var c SetListItem
		err = json.Unmarshal(raw, &c)
		cmd = c
	case "setSkills":
		var c SetSkills
		err = json.Unmarshal(raw, &c)
		cmd = c
	default:
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidCommand, env.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	return cmd, nil
}
