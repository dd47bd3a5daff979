package gateway

import (
	"context"
	"errors"

	"resume-builder/resume/model"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Gateway persists documents by identity for one owner. Concurrent updates
// to the same document are last-write-wins.
type Gateway interface {
	// List returns the owner's documents of type t, most recently updated
	// first. An empty t lists every type.
	List(ctx context.Context, owner string, t model.DocumentType) ([]model.Document, error)
	Get(ctx context.Context, owner, id string) (model.Document, error)
	// Create stores doc and returns its new identity.
	Create(ctx context.Context, owner string, doc model.Document) (string, error)
	Update(ctx context.Context, owner, id string, doc model.Document) error
	Delete(ctx context.Context, owner, id string) error
}

func checkDocument(doc model.Document) error {
	switch {
	case doc.Type == model.TypeResume && doc.Resume != nil:
		return nil
	case doc.Type == model.TypeCoverLetter && doc.CoverLetter != nil:
		return nil
	}
	return ErrInvalidInput
}
