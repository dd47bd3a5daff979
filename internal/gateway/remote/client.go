// Package remote implements gateway.Gateway over the document backend's REST
// API. The bearer token identifies the owner, so the owner argument is only
// used to stamp returned documents.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"resume-builder/internal/gateway"
	"resume-builder/internal/shared/httpapi"
	"resume-builder/resume/model"
)

// Client talks to /resume and /cover-letter collections.
type Client struct {
	api *httpapi.Client
}

// New returns a gateway client using api for transport.
func New(api *httpapi.Client) *Client {
	return &Client{api: api}
}

var _ gateway.Gateway = (*Client)(nil)

func collection(t model.DocumentType) (string, error) {
	switch t {
	case model.TypeResume:
		return "/resume", nil
	case model.TypeCoverLetter:
		return "/cover-letter", nil
	}
	return "", fmt.Errorf("%w: document type %q", gateway.ErrInvalidInput, t)
}

// List fetches one collection, or both when t is empty.
func (c *Client) List(ctx context.Context, owner string, t model.DocumentType) ([]model.Document, error) {
	if t == "" {
		resumes, err := c.List(ctx, owner, model.TypeResume)
		if err != nil {
			return nil, err
		}
		letters, err := c.List(ctx, owner, model.TypeCoverLetter)
		if err != nil {
			return nil, err
		}
		return append(resumes, letters...), nil
	}
	path, err := collection(t)
	if err != nil {
		return nil, err
	}
	raw, err := c.api.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, mapError(err)
	}
	items, err := unwrapList(raw)
	if err != nil {
		return nil, err
	}
	docs := make([]model.Document, 0, len(items))
	for _, item := range items {
		doc, err := decodeDocument(t, item)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Get tries the resume collection first, then cover letters.
func (c *Client) Get(ctx context.Context, owner, id string) (model.Document, error) {
	for _, t := range []model.DocumentType{model.TypeResume, model.TypeCoverLetter} {
		doc, err := c.get(ctx, t, id)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, gateway.ErrNotFound) {
			return model.Document{}, err
		}
	}
	return model.Document{}, gateway.ErrNotFound
}

func (c *Client) get(ctx context.Context, t model.DocumentType, id string) (model.Document, error) {
	path, err := collection(t)
	if err != nil {
		return model.Document{}, err
	}
	raw, err := c.api.Do(ctx, http.MethodGet, path+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return model.Document{}, mapError(err)
	}
	return decodeDocument(t, unwrapItem(raw))
}

// Create posts to {collection}/new and returns the identity from the response.
func (c *Client) Create(ctx context.Context, owner string, doc model.Document) (string, error) {
	path, err := collection(doc.Type)
	if err != nil {
		return "", err
	}
	raw, err := c.api.Do(ctx, http.MethodPost, path+"/new", doc, nil)
	if err != nil {
		return "", mapError(err)
	}
	var created struct {
		ID    string `json:"_id"`
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(unwrapItem(raw), &created); err != nil {
		return "", fmt.Errorf("create %s: decode response: %w", doc.Type, err)
	}
	id := created.ID
	if id == "" {
		id = created.AltID
	}
	if id == "" {
		return "", fmt.Errorf("create %s: response carries no id", doc.Type)
	}
	return id, nil
}

// Update replaces the document with PUT {collection}/{id}.
func (c *Client) Update(ctx context.Context, owner, id string, doc model.Document) error {
	path, err := collection(doc.Type)
	if err != nil {
		return err
	}
	_, err = c.api.Do(ctx, http.MethodPut, path+"/"+url.PathEscape(id), doc.WithID(id, owner), nil)
	return mapError(err)
}

// Delete removes the document. The backend routes deletes per collection, so
// the document is looked up first to learn its type.
func (c *Client) Delete(ctx context.Context, owner, id string) error {
	doc, err := c.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	path, err := collection(doc.Type)
	if err != nil {
		return err
	}
	_, err = c.api.Do(ctx, http.MethodDelete, path+"/"+url.PathEscape(id), nil, nil)
	return mapError(err)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if httpapi.IsStatus(err, http.StatusNotFound) {
		return gateway.ErrNotFound
	}
	return err
}

// unwrapList accepts a bare array or an object wrapping one under "data".
func unwrapList(raw []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}
	var wrapped struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return wrapped.Data, nil
}

// unwrapItem accepts a bare object or one wrapped under "data".
func unwrapItem(raw []byte) []byte {
	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && len(wrapped.Data) > 0 && strings.HasPrefix(strings.TrimSpace(string(wrapped.Data)), "{") {
		return wrapped.Data
	}
	return raw
}

func decodeDocument(t model.DocumentType, raw []byte) (model.Document, error) {
	switch t {
	case model.TypeResume:
		r, err := model.DecodeResume(raw)
		if err != nil {
			return model.Document{}, err
		}
		return model.ResumeDocument(r), nil
	case model.TypeCoverLetter:
		var cl model.CoverLetter
		if err := json.Unmarshal(raw, &cl); err != nil {
			return model.Document{}, fmt.Errorf("decode cover letter: %w", err)
		}
		return model.CoverLetterDocument(cl), nil
	}
	return model.Document{}, fmt.Errorf("%w: document type %q", gateway.ErrInvalidInput, t)
}
