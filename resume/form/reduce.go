package form

import (
	"fmt"
	"strconv"
	"strings"

	"resume-builder/resume/cascade"
	"resume-builder/resume/model"
)

// Apply returns the draft produced by cmd. The input draft is never
// modified: only the touched list is copied, sibling lists are shared and
// untouched entries keep their values. On error the input draft is returned
// unchanged.
func Apply(d model.Draft, cmd Command) (model.Draft, error) {
	switch c := cmd.(type) {
	case SetField:
		return setField(d, c)
	case SetPersonalInfo:
		return setPersonalInfo(d, c), nil
	case AddListItem:
		return addListItem(d, c)
	case RemoveListItem:
		return removeListItem(d, c)
	case SetListItem:
		return setListItem(d, c)
	case SetSkills:
		mode := DropBlank
		if c.KeepBlank {
			mode = KeepBlank
		}
		d.Skills = SplitSkills(c.Text, mode)
		return d, nil
	case nil:
		return d, fmt.Errorf("%w: nil command", ErrInvalidCommand)
	default:
		return d, fmt.Errorf("%w: %T", ErrInvalidCommand, cmd)
	}
}

func setField(d model.Draft, c SetField) (model.Draft, error) {
	switch c.Field {
	case FieldTitle:
		d.Title = c.Value
	case FieldSummary:
		d.Summary = c.Value
	case FieldDescription:
		d.Description = c.Value
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownField, c.Field)
	}
	return d, nil
}

func setPersonalInfo(d model.Draft, c SetPersonalInfo) model.Draft {
	p := c.Patch
	info := d.PersonalInfo
	assign(&info.Name, p.Name)
	assign(&info.Email, p.Email)
	assign(&info.Phone, p.Phone)
	assign(&info.Website, p.Website)
	assign(&info.LinkedIn, p.LinkedIn)

	next := info.Location
	assign(&next.Country, p.Country)
	assign(&next.State, p.State)
	assign(&next.City, p.City)
	info.Location = cascade.Apply(d.PersonalInfo.Location, next)

	d.PersonalInfo = info
	return d
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func addListItem(d model.Draft, c AddListItem) (model.Draft, error) {
	switch c.List {
	case ListWorkExperience:
		d.WorkExperience = appendCopy(d.WorkExperience, model.NewWorkExperience())
	case ListEducation:
		d.Education = appendCopy(d.Education, model.NewEducation())
	case ListCertifications:
		d.Certifications = appendCopy(d.Certifications, model.NewCertification())
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownList, c.List)
	}
	return d, nil
}

func removeListItem(d model.Draft, c RemoveListItem) (model.Draft, error) {
	var err error
	switch c.List {
	case ListWorkExperience:
		d.WorkExperience, err = removeAt(d.WorkExperience, c.Index, 1, c.List)
	case ListEducation:
		d.Education, err = removeAt(d.Education, c.Index, 1, c.List)
	case ListCertifications:
		d.Certifications, err = removeAt(d.Certifications, c.Index, 0, c.List)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownList, c.List)
	}
	return d, err
}

func setListItem(d model.Draft, c SetListItem) (model.Draft, error) {
	switch c.List {
	case ListWorkExperience:
		list, err := updateAt(d.WorkExperience, c.Index, func(e *model.WorkExperience) error {
			return setWorkExperienceField(e, c.Field, c.Value)
		})
		if err != nil {
			return d, err
		}
		d.WorkExperience = list
	case ListEducation:
		list, err := updateAt(d.Education, c.Index, func(e *model.Education) error {
			return setEducationField(e, c.Field, c.Value)
		})
		if err != nil {
			return d, err
		}
		d.Education = list
	case ListCertifications:
		list, err := updateAt(d.Certifications, c.Index, func(e *model.Certification) error {
			return setCertificationField(e, c.Field, c.Value)
		})
		if err != nil {
			return d, err
		}
		d.Certifications = list
	default:
		return d, fmt.Errorf("%w: %q", ErrUnknownList, c.List)
	}
	return d, nil
}

func setWorkExperienceField(e *model.WorkExperience, field string, v any) error {
	switch field {
	case "companyName":
		return setString(&e.CompanyName, v)
	case "position":
		return setString(&e.Position, v)
	case "startDate":
		return setString(&e.StartDate, v)
	case "endDate":
		return setString(&e.EndDate, v)
	case "isCurrent":
		return setBool(&e.IsCurrent, v)
	case "description":
		return setString(&e.Description, v)
	case "country", "state", "city":
		return setLocation(&e.Location, field, v)
	}
	return fmt.Errorf("%w: %s.%s", ErrUnknownField, ListWorkExperience, field)
}

func setEducationField(e *model.Education, field string, v any) error {
	switch field {
	case "institution":
		return setString(&e.Institution, v)
	case "degree":
		return setString(&e.Degree, v)
	case "fieldOfStudy":
		return setString(&e.FieldOfStudy, v)
	case "startDate":
		return setString(&e.StartDate, v)
	case "endDate":
		return setString(&e.EndDate, v)
	case "isCurrent":
		return setBool(&e.IsCurrent, v)
	case "gpa":
		return setString(&e.GPA, v)
	case "country", "state", "city":
		return setLocation(&e.Location, field, v)
	}
	return fmt.Errorf("%w: %s.%s", ErrUnknownField, ListEducation, field)
}

func setCertificationField(e *model.Certification, field string, v any) error {
	switch field {
	case "name":
		return setString(&e.Name, v)
	case "issuer":
		return setString(&e.Issuer, v)
	case "issueDate":
		return setString(&e.IssueDate, v)
	case "expiryDate":
		return setString(&e.ExpiryDate, v)
	case "credentialId":
		return setString(&e.CredentialID, v)
	}
	return fmt.Errorf("%w: %s.%s", ErrUnknownField, ListCertifications, field)
}

func setLocation(loc *model.Location, field string, v any) error {
	next := *loc
	var err error
	switch field {
	case "country":
		err = setString(&next.Country, v)
	case "state":
		err = setString(&next.State, v)
	case "city":
		err = setString(&next.City, v)
	}
	if err != nil {
		return err
	}
	*loc = cascade.Apply(*loc, next)
	return nil
}

func setString(dst *string, v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%w: want string, got %T", ErrInvalidValue, v)
	}
	*dst = s
	return nil
}

func setBool(dst *bool, v any) error {
	switch b := v.(type) {
	case bool:
		*dst = b
		return nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", ErrInvalidValue, b)
		}
		*dst = parsed
		return nil
	}
	return fmt.Errorf("%w: want bool, got %T", ErrInvalidValue, v)
}

func appendCopy[T any](list []T, item T) []T {
	out := make([]T, len(list), len(list)+1)
	copy(out, list)
	return append(out, item)
}

func removeAt[T any](list []T, index, min int, kind ListKind) ([]T, error) {
	if index < 0 || index >= len(list) {
		return list, fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, kind, index)
	}
	if len(list) <= min {
		return list, minimumEntriesWarning(kind)
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), nil
}

func updateAt[T any](list []T, index int, fn func(*T) error) ([]T, error) {
	if index < 0 || index >= len(list) {
		return list, fmt.Errorf("%w: index %d", ErrIndexOutOfRange, index)
	}
	entry := list[index]
	if err := fn(&entry); err != nil {
		return list, err
	}
	out := make([]T, len(list))
	copy(out, list)
	out[index] = entry
	return out, nil
}
