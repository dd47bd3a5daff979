package main

import (
	"fmt"
	"os"
	"strings"

	"resume-builder/resume/model"
)

// loadDraft reads a persisted resume JSON document from path, validating it
// against the resume schema. An empty path returns the sample draft.
func loadDraft(path string) (model.Draft, error) {
	if strings.TrimSpace(path) == "" {
		return sampleDraft(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Draft{}, fmt.Errorf("read %s: %w", path, err)
	}
	r, err := model.DecodeResume(raw)
	if err != nil {
		return model.Draft{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return model.DraftFromResume(r), nil
}

func sampleDraft() model.Draft {
	return model.Draft{
		Title: "Senior Backend Engineer",
		PersonalInfo: model.PersonalInfo{
			Name:     "Jordan Lee",
			Email:    "jordan.lee@example.com",
			Phone:    "+1-555-0102",
			Location: model.Location{Country: "US", State: "Texas", City: "Austin"},
			LinkedIn: "https://www.linkedin.com/in/jordanlee",
			Website:  "https://github.com/jordanlee",
		},
		Summary: "Backend engineer with 8+ years of experience building resilient APIs and data services.",
		WorkExperience: []model.WorkExperience{
			{
				ID:          model.NewLocalID(),
				CompanyName: "Acme Logistics",
				Position:    "Senior Backend Engineer",
				StartDate:   "2021-04-01",
				IsCurrent:   true,
				Location:    model.Location{Country: "US", State: "Texas", City: "Austin"},
				Description: "Designed a routing service that reduced shipment latency by 18%.",
			},
			{
				ID:          model.NewLocalID(),
				CompanyName: "Blue Harbor Systems",
				Position:    "Backend Engineer",
				StartDate:   "2018-01-01",
				EndDate:     "2021-03-01",
				Location:    model.Location{Country: "US", State: "Washington", City: "Seattle"},
				Description: "Built event-driven ingestion pipelines for compliance data feeds.",
			},
		},
		Education: []model.Education{{
			ID:           model.NewLocalID(),
			Institution:  "University of Texas",
			Degree:       "BSc",
			FieldOfStudy: "Computer Science",
			StartDate:    "2010-09-01",
			EndDate:      "2014-06-01",
		}},
		Skills: []string{"Go", "PostgreSQL", "AWS", "Kubernetes"},
		Certifications: []model.Certification{{
			ID:     model.NewLocalID(),
			Name:   "AWS Solutions Architect",
			Issuer: "Amazon",
		}},
	}
}
