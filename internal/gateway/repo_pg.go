package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resume-builder/resume/model"
)

// PGRepo implements Gateway using Postgres. Bodies are stored as JSONB and
// deletes are soft.
type PGRepo struct {
	DB  *sql.DB
	Now func() time.Time
}

func (r *PGRepo) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

// List returns the owner's documents, most recently updated first.
func (r *PGRepo) List(ctx context.Context, owner string, t model.DocumentType) ([]model.Document, error) {
	const query = `
SELECT id, user_id, doc_type, body, created_at, updated_at
FROM documents
WHERE user_id = $1 AND ($2 = '' OR doc_type = $2) AND deleted_at IS NULL
ORDER BY updated_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, owner, string(t))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []model.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Get fetches a document by ID for an owner.
func (r *PGRepo) Get(ctx context.Context, owner, id string) (model.Document, error) {
	const query = `
SELECT id, user_id, doc_type, body, created_at, updated_at
FROM documents
WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, owner, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Document{}, ErrNotFound
		}
		return model.Document{}, err
	}
	return doc, nil
}

// Create inserts a new document and returns its ID.
func (r *PGRepo) Create(ctx context.Context, owner string, doc model.Document) (string, error) {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    doc_type,
    title,
    body,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $6)`

	if err := checkDocument(doc); err != nil {
		return "", err
	}
	body, err := encodeBody(doc)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if _, err := r.DB.ExecContext(ctx, query, id, owner, string(doc.Type), doc.Label(), body, r.now()); err != nil {
		return "", err
	}
	return id, nil
}

// Update overwrites the stored body of a document of the same type.
func (r *PGRepo) Update(ctx context.Context, owner, id string, doc model.Document) error {
	const query = `
UPDATE documents
SET title = $4, body = $5, updated_at = $6
WHERE id = $1 AND user_id = $2 AND doc_type = $3 AND deleted_at IS NULL`

	if err := checkDocument(doc); err != nil {
		return err
	}
	body, err := encodeBody(doc)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, id, owner, string(doc.Type), doc.Label(), body, r.now())
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// Delete soft-deletes a document.
func (r *PGRepo) Delete(ctx context.Context, owner, id string) error {
	const query = `
UPDATE documents
SET deleted_at = $3
WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, id, owner, r.now())
	if err != nil {
		return err
	}
	return expectAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (model.Document, error) {
	var (
		id, owner, docType string
		body               []byte
		createdAt          time.Time
		updatedAt          time.Time
	)
	if err := row.Scan(&id, &owner, &docType, &body, &createdAt, &updatedAt); err != nil {
		return model.Document{}, err
	}
	var doc model.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return model.Document{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	if string(doc.Type) != docType {
		return model.Document{}, fmt.Errorf("document %s: body type %q does not match %q", id, doc.Type, docType)
	}
	return doc.WithID(id, owner).WithTimestamps(createdAt, updatedAt), nil
}

// encodeBody drops identity and timestamps, which live in their own columns.
func encodeBody(doc model.Document) ([]byte, error) {
	return json.Marshal(doc.WithID("", "").WithTimestamps(time.Time{}, time.Time{}))
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
