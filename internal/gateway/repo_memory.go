package gateway

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-builder/resume/model"
)

// MemoryRepo is an in-memory Gateway for development and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]map[string]model.Document // owner -> id -> document
	now  func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]map[string]model.Document),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source.
func (r *MemoryRepo) WithClock(now func() time.Time) *MemoryRepo {
	r.now = now
	return r
}

// List returns the owner's documents, most recently updated first.
func (r *MemoryRepo) List(ctx context.Context, owner string, t model.DocumentType) ([]model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	docs := make([]model.Document, 0, len(r.data[owner]))
	for _, doc := range r.data[owner] {
		if t == "" || doc.Type == t {
			docs = append(docs, doc.WithID(doc.ID(), owner))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].UpdatedAt().Equal(docs[j].UpdatedAt()) {
			return docs[i].ID() > docs[j].ID()
		}
		return docs[i].UpdatedAt().After(docs[j].UpdatedAt())
	})
	return docs, nil
}

// Get returns a document by ID for an owner.
func (r *MemoryRepo) Get(ctx context.Context, owner, id string) (model.Document, error) {
	if err := ctx.Err(); err != nil {
		return model.Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[owner][id]
	if !ok {
		return model.Document{}, ErrNotFound
	}
	return doc.WithID(id, owner), nil
}

// Create stores a new document and returns its ID.
func (r *MemoryRepo) Create(ctx context.Context, owner string, doc model.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkDocument(doc); err != nil {
		return "", err
	}
	id := uuid.NewString()
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data[owner] == nil {
		r.data[owner] = make(map[string]model.Document)
	}
	r.data[owner][id] = doc.WithID(id, owner).WithTimestamps(now, now)
	return id, nil
}

// Update replaces a stored document, keeping its creation time.
func (r *MemoryRepo) Update(ctx context.Context, owner, id string, doc model.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkDocument(doc); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.data[owner][id]
	if !ok || prev.Type != doc.Type {
		return ErrNotFound
	}
	r.data[owner][id] = doc.WithID(id, owner).WithTimestamps(prev.CreatedAt(), r.now())
	return nil
}

// Delete removes a document.
func (r *MemoryRepo) Delete(ctx context.Context, owner, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[owner][id]; !ok {
		return ErrNotFound
	}
	delete(r.data[owner], id)
	return nil
}
