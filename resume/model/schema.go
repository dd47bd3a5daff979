package model

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/resume.schema.json
var resumeSchema []byte

// ResumeSchema returns the embedded JSON schema for persisted resumes.
func ResumeSchema() []byte {
	return append([]byte(nil), resumeSchema...)
}

// ValidateJSON checks a persisted resume document against the embedded schema.
// Schema violations are reported as *ValidationError.
func ValidateJSON(raw []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(resumeSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("resume schema: %w", err)
	}
	if result.Valid() {
		return nil
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		out.Fields = append(out.Fields, FieldError{
			Field:   field,
			Rule:    desc.Type(),
			Message: desc.Description(),
		})
	}
	return out
}

// DecodeResume validates raw against the schema and decodes it.
func DecodeResume(raw []byte) (Resume, error) {
	if err := ValidateJSON(raw); err != nil {
		return Resume{}, err
	}
	var r Resume
	if err := json.Unmarshal(raw, &r); err != nil {
		return Resume{}, fmt.Errorf("decode resume: %w", err)
	}
	r.Type = TypeResume
	return r, nil
}
