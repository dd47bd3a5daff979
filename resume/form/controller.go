package form

import (
	"sync"

	"resume-builder/resume/model"
)

// Controller is the single owner of one draft. Each successful mutation
// replaces the draft atomically and bumps the revision.
type Controller struct {
	mu    sync.RWMutex
	draft model.Draft
	rev   uint64
}

// NewController returns a controller holding a copy of d.
func NewController(d model.Draft) *Controller {
	return &Controller{draft: d.Clone()}
}

// Dispatch applies cmd. On error the draft is unchanged and the current
// draft is returned alongside the error.
func (c *Controller) Dispatch(cmd Command) (model.Draft, error) {
	return c.Update(func(d model.Draft) (model.Draft, error) {
		return Apply(d, cmd)
	})
}

// Update runs fn against the latest draft under the controller lock and
// stores its result. fn must not retain or mutate the draft it receives.
func (c *Controller) Update(fn func(model.Draft) (model.Draft, error)) (model.Draft, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fn(c.draft)
	if err != nil {
		return c.draft.Clone(), err
	}
	c.draft = next
	c.rev++
	return next.Clone(), nil
}

// Snapshot returns a copy of the current draft and its revision.
func (c *Controller) Snapshot() (model.Draft, uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draft.Clone(), c.rev
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() model.Draft {
	d, _ := c.Snapshot()
	return d
}

// Replace swaps in d wholesale, for example after hydrating from storage.
func (c *Controller) Replace(d model.Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = d.Clone()
	c.rev++
}

// SetDocumentID records the persisted identity after the first save.
func (c *Controller) SetDocumentID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft.DocumentID != id {
		c.draft.DocumentID = id
		c.rev++
	}
}
