package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentType tags the two document variants.
type DocumentType string

const (
	TypeResume      DocumentType = "resume"
	TypeCoverLetter DocumentType = "coverLetter"
)

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	return t == TypeResume || t == TypeCoverLetter
}

// WritingTone is the tone requested for a generated cover letter body.
type WritingTone string

const (
	ToneProfessional WritingTone = "professional"
	ToneFriendly     WritingTone = "friendly"
	ToneConfident    WritingTone = "confident"
)

// Valid reports whether t is a known writing tone.
func (t WritingTone) Valid() bool {
	switch t {
	case ToneProfessional, ToneFriendly, ToneConfident:
		return true
	default:
		return false
	}
}

// LocalID keys a list entry for the lifetime of one in-memory draft.
// It is unrelated to the persisted document id.
type LocalID string

// NewLocalID returns a fresh random LocalID.
func NewLocalID() LocalID {
	return LocalID(uuid.NewString())
}

// Location is the cascading country/state/city triple.
type Location struct {
	Country string `json:"country"`
	State   string `json:"state"`
	City    string `json:"city"`
}

// PersonalInfo captures the contact block of a resume.
type PersonalInfo struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
	Location
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// WorkExperience represents one work history entry.
type WorkExperience struct {
	ID          LocalID `json:"id"`
	CompanyName string  `json:"companyName" validate:"required"`
	Position    string  `json:"position" validate:"required"`
	StartDate   string  `json:"startDate" validate:"required,isodate"`
	EndDate     string  `json:"endDate,omitempty" validate:"omitempty,isodate"`
	IsCurrent   bool    `json:"isCurrent,omitempty"`
	Location
	Description string `json:"description"`
}

// Education represents one education entry.
type Education struct {
	ID           LocalID `json:"id"`
	Institution  string  `json:"institution" validate:"required"`
	Degree       string  `json:"degree" validate:"required"`
	FieldOfStudy string  `json:"fieldOfStudy,omitempty"`
	StartDate    string  `json:"startDate" validate:"required,isodate"`
	EndDate      string  `json:"endDate,omitempty" validate:"omitempty,isodate"`
	IsCurrent    bool    `json:"isCurrent,omitempty"`
	Location
	GPA string `json:"gpa,omitempty"`
}

// Certification represents one certification entry. A fully blank entry is
// allowed; once any field is filled, name and issuer become required.
type Certification struct {
	ID           LocalID `json:"id"`
	Name         string  `json:"name" validate:"required_with=Issuer IssueDate ExpiryDate CredentialID"`
	Issuer       string  `json:"issuer" validate:"required_with=Name IssueDate ExpiryDate CredentialID"`
	IssueDate    string  `json:"issueDate,omitempty" validate:"omitempty,isodate"`
	ExpiryDate   string  `json:"expiryDate,omitempty" validate:"omitempty,isodate"`
	CredentialID string  `json:"credentialId,omitempty"`
}

// Resume is the persisted resume document.
type Resume struct {
	ID             string           `json:"_id,omitempty"`
	UserID         string           `json:"userId,omitempty"`
	Type           DocumentType     `json:"type"`
	Title          string           `json:"title"`
	PersonalInfo   PersonalInfo     `json:"personalInfo"`
	Summary        string           `json:"summary"`
	Description    string           `json:"description"`
	WorkExperience []WorkExperience `json:"workExperience"`
	Education      []Education      `json:"education"`
	Skills         []string         `json:"skills"`
	Certifications []Certification  `json:"certifications"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// CoverLetter is the persisted cover letter document.
type CoverLetter struct {
	ID              string       `json:"_id,omitempty"`
	UserID          string       `json:"userId,omitempty"`
	Type            DocumentType `json:"type"`
	RecipientName   string       `json:"recipientName"`
	CompanyName     string       `json:"companyName" validate:"required"`
	JobTitle        string       `json:"jobTitle" validate:"required"`
	Description     string       `json:"description"`
	Experience      string       `json:"experience"`
	ApplicationDate string       `json:"applicationDate" validate:"omitempty,isodate"`
	// Backend field name, misspelling included.
	Customization string      `json:"custiomization"`
	Content       string      `json:"content"`
	WritingTone   WritingTone `json:"writingTone" validate:"required,oneof=professional friendly confident"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Document is the tagged union of the two document variants. Exactly one of
// Resume or CoverLetter is set, matching Type.
type Document struct {
	Type        DocumentType
	Resume      *Resume
	CoverLetter *CoverLetter
}

// ErrUnknownDocumentType is returned when decoding a document with an unknown type tag.
var ErrUnknownDocumentType = errors.New("unknown document type")

// ResumeDocument wraps a resume as a Document.
func ResumeDocument(r Resume) Document {
	r.Type = TypeResume
	return Document{Type: TypeResume, Resume: &r}
}

// CoverLetterDocument wraps a cover letter as a Document.
func CoverLetterDocument(c CoverLetter) Document {
	c.Type = TypeCoverLetter
	return Document{Type: TypeCoverLetter, CoverLetter: &c}
}

// ID returns the persisted identity of the wrapped document.
func (d Document) ID() string {
	switch {
	case d.Resume != nil:
		return d.Resume.ID
	case d.CoverLetter != nil:
		return d.CoverLetter.ID
	}
	return ""
}

// WithID returns a copy of d carrying the given identity and owner.
func (d Document) WithID(id, owner string) Document {
	switch {
	case d.Resume != nil:
		r := *d.Resume
		r.ID, r.UserID = id, owner
		return ResumeDocument(r)
	case d.CoverLetter != nil:
		c := *d.CoverLetter
		c.ID, c.UserID = id, owner
		return CoverLetterDocument(c)
	}
	return d
}

// WithTimestamps returns a copy of d with the given creation and update times.
func (d Document) WithTimestamps(created, updated time.Time) Document {
	switch {
	case d.Resume != nil:
		r := *d.Resume
		r.CreatedAt, r.UpdatedAt = created, updated
		return ResumeDocument(r)
	case d.CoverLetter != nil:
		c := *d.CoverLetter
		c.CreatedAt, c.UpdatedAt = created, updated
		return CoverLetterDocument(c)
	}
	return d
}

// UpdatedAt returns the last update time of the wrapped document.
func (d Document) UpdatedAt() time.Time {
	switch {
	case d.Resume != nil:
		return d.Resume.UpdatedAt
	case d.CoverLetter != nil:
		return d.CoverLetter.UpdatedAt
	}
	return time.Time{}
}

// CreatedAt returns the creation time of the wrapped document.
func (d Document) CreatedAt() time.Time {
	switch {
	case d.Resume != nil:
		return d.Resume.CreatedAt
	case d.CoverLetter != nil:
		return d.CoverLetter.CreatedAt
	}
	return time.Time{}
}

// Label returns the human-facing name used in document lists.
func (d Document) Label() string {
	switch {
	case d.Resume != nil:
		return d.Resume.Title
	case d.CoverLetter != nil:
		if d.CoverLetter.JobTitle == "" {
			return d.CoverLetter.CompanyName
		}
		return d.CoverLetter.JobTitle + " at " + d.CoverLetter.CompanyName
	}
	return ""
}

// MarshalJSON encodes the wrapped variant directly.
func (d Document) MarshalJSON() ([]byte, error) {
	switch {
	case d.Resume != nil:
		r := *d.Resume
		r.Type = TypeResume
		return json.Marshal(r)
	case d.CoverLetter != nil:
		c := *d.CoverLetter
		c.Type = TypeCoverLetter
		return json.Marshal(c)
	}
	return nil, fmt.Errorf("%w: empty document", ErrUnknownDocumentType)
}

// UnmarshalJSON dispatches on the "type" field.
func (d *Document) UnmarshalJSON(data []byte) error {
	var head struct {
		Type DocumentType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	switch head.Type {
	case TypeResume:
		var r Resume
		if err := json.Unmarshal(data, &r); err != nil {
			return err
		}
		*d = Document{Type: TypeResume, Resume: &r}
	case TypeCoverLetter:
		var c CoverLetter
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		*d = Document{Type: TypeCoverLetter, CoverLetter: &c}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDocumentType, head.Type)
	}
	return nil
}
