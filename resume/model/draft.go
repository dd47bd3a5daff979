package model

// Draft is the editable, not yet persisted form state of one resume.
type Draft struct {
	DocumentID     string           `json:"documentId,omitempty"`
	Title          string           `json:"title" validate:"required"`
	PersonalInfo   PersonalInfo     `json:"personalInfo"`
	Summary        string           `json:"summary"`
	Description    string           `json:"description"`
	WorkExperience []WorkExperience `json:"workExperience" validate:"min=1,dive"`
	Education      []Education      `json:"education" validate:"min=1,dive"`
	Skills         []string         `json:"skills"`
	Certifications []Certification  `json:"certifications" validate:"dive"`
}

// NewDraft returns the blank draft used when authoring a new resume: one
// empty entry in each repeatable section and no location selected.
func NewDraft() Draft {
	return Draft{
		WorkExperience: []WorkExperience{NewWorkExperience()},
		Education:      []Education{NewEducation()},
		Skills:         []string{},
		Certifications: []Certification{NewCertification()},
	}
}

// NewWorkExperience returns a blank entry with a fresh LocalID.
func NewWorkExperience() WorkExperience {
	return WorkExperience{ID: NewLocalID()}
}

// NewEducation returns a blank entry with a fresh LocalID.
func NewEducation() Education {
	return Education{ID: NewLocalID()}
}

// NewCertification returns a blank entry with a fresh LocalID.
func NewCertification() Certification {
	return Certification{ID: NewLocalID()}
}

// DraftFromResume hydrates a draft from a persisted resume. Entries without a
// LocalID, or repeating one already used in the draft, get a fresh one, and the minimum of one work experience and one
// education entry is restored if the stored document has none.
func DraftFromResume(r Resume) Draft {
	d := Draft{
		DocumentID:     r.ID,
		Title:          r.Title,
		PersonalInfo:   r.PersonalInfo,
		Summary:        r.Summary,
		Description:    r.Description,
		WorkExperience: make([]WorkExperience, len(r.WorkExperience)),
		Education:      make([]Education, len(r.Education)),
		Skills:         append([]string{}, r.Skills...),
		Certifications: make([]Certification, len(r.Certifications)),
	}
	copy(d.WorkExperience, r.WorkExperience)
	copy(d.Education, r.Education)
	copy(d.Certifications, r.Certifications)

	seen := make(map[LocalID]bool)
	for i := range d.WorkExperience {
		e := &d.WorkExperience[i]
		e.ID = uniqueID(e.ID, seen)
		e.StartDate, e.EndDate = dateOnly(e.StartDate), dateOnly(e.EndDate)
	}
	for i := range d.Education {
		e := &d.Education[i]
		e.ID = uniqueID(e.ID, seen)
		e.StartDate, e.EndDate = dateOnly(e.StartDate), dateOnly(e.EndDate)
	}
	for i := range d.Certifications {
		c := &d.Certifications[i]
		c.ID = uniqueID(c.ID, seen)
		c.IssueDate, c.ExpiryDate = dateOnly(c.IssueDate), dateOnly(c.ExpiryDate)
	}
	if len(d.WorkExperience) == 0 {
		d.WorkExperience = []WorkExperience{NewWorkExperience()}
	}
	if len(d.Education) == 0 {
		d.Education = []Education{NewEducation()}
	}
	return d
}

// uniqueID returns id, or a fresh LocalID when id is empty or already in seen.
func uniqueID(id LocalID, seen map[LocalID]bool) LocalID {
	for id == "" || seen[id] {
		id = NewLocalID()
	}
	seen[id] = true
	return id
}

// dateOnly cuts stored timestamps such as "2021-01-15T00:00:00.000Z" down
// to the date the form edits.
func dateOnly(s string) string {
	if len(s) > 10 && s[10] == 'T' {
		return s[:10]
	}
	return s
}

// ToResume builds the persistence payload for the draft.
func (d Draft) ToResume() Resume {
	c := d.Clone()
	if c.Skills == nil {
		c.Skills = []string{}
	}
	if c.Certifications == nil {
		c.Certifications = []Certification{}
	}
	return Resume{
		ID:             c.DocumentID,
		Type:           TypeResume,
		Title:          c.Title,
		PersonalInfo:   c.PersonalInfo,
		Summary:        c.Summary,
		Description:    c.Description,
		WorkExperience: c.WorkExperience,
		Education:      c.Education,
		Skills:         c.Skills,
		Certifications: c.Certifications,
	}
}

// Clone returns a deep copy of d. Entries hold only value fields, so copying
// the slices is enough.
func (d Draft) Clone() Draft {
	out := d
	out.WorkExperience = append([]WorkExperience(nil), d.WorkExperience...)
	out.Education = append([]Education(nil), d.Education...)
	out.Skills = append([]string(nil), d.Skills...)
	out.Certifications = append([]Certification(nil), d.Certifications...)
	return out
}
