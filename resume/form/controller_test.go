package form

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"resume-builder/resume/model"
)

func TestControllerDispatchBumpsRevision(t *testing.T) {
	c := NewController(model.NewDraft())
	_, rev0 := c.Snapshot()
	d, err := c.Dispatch(SetField{Field: FieldTitle, Value: "Mine"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if d.Title != "Mine" {
		t.Fatalf("unexpected title %q", d.Title)
	}
	_, rev1 := c.Snapshot()
	if rev1 != rev0+1 {
		t.Fatalf("expected revision %d, got %d", rev0+1, rev1)
	}
}

func TestControllerRefusedCommandKeepsDraftAndRevision(t *testing.T) {
	c := NewController(model.NewDraft())
	before, rev := c.Snapshot()
	after, err := c.Dispatch(RemoveListItem{List: ListEducation, Index: 0})
	if !errors.Is(err, ErrMinimumEntries) {
		t.Fatalf("expected ErrMinimumEntries, got %v", err)
	}
	if !reflect.DeepEqual(after, before) {
		t.Fatalf("draft changed")
	}
	if _, got := c.Snapshot(); got != rev {
		t.Fatalf("revision moved to %d", got)
	}
}

func TestControllerSnapshotIsIsolated(t *testing.T) {
	c := NewController(model.NewDraft())
	snap, _ := c.Snapshot()
	snap.WorkExperience[0].CompanyName = "Leaked"
	if c.Draft().WorkExperience[0].CompanyName != "" {
		t.Fatalf("snapshot shares storage with the controller")
	}
}

func TestControllerUpdateIsAtomicUnderConcurrency(t *testing.T) {
	c := NewController(model.NewDraft())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Dispatch(AddListItem{List: ListCertifications})
		}()
	}
	wg.Wait()
	if got := len(c.Draft().Certifications); got != 51 {
		t.Fatalf("expected 51 certifications, got %d", got)
	}
}

func TestControllerSetDocumentID(t *testing.T) {
	c := NewController(model.NewDraft())
	c.SetDocumentID("doc-1")
	if c.Draft().DocumentID != "doc-1" {
		t.Fatalf("expected document id to be recorded")
	}
}

func TestDecodeCommand(t *testing.T) {
	cmd, err := DecodeCommand([]byte(`{"type":"setListItem","list":"workExperience","index":1,"field":"isCurrent","value":true}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	set, ok := cmd.(SetListItem)
	if !ok || set.Index != 1 || set.Value != true {
		t.Fatalf("unexpected command %#v", cmd)
	}

	cmd, err = DecodeCommand([]byte(`{"type":"setPersonalInfo","patch":{"country":"GB"}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	patch := cmd.(SetPersonalInfo).Patch
	if patch.Country == nil || *patch.Country != "GB" || patch.State != nil {
		t.Fatalf("unexpected patch %#v", patch)
	}

	if _, err := DecodeCommand([]byte(`{"type":"dropTable"}`)); !errors.Is(err, ErrInvalidCommand) {
		t.Fatalf("expected ErrInvalidCommand, got %v", err)
	}
}

func TestKindNamesEveryCommand(t *testing.T) {
	cases := map[string]Command{
		"setField":        SetField{},
		"setPersonalInfo": SetPersonalInfo{},
		"addListItem":     AddListItem{},
		"removeListItem":  RemoveListItem{},
		"setListItem":     SetListItem{},
		"setSkills":       SetSkills{},
	}
	for want, cmd := range cases {
		if got := Kind(cmd); got != want {
			t.Fatalf("Kind(%T) = %q, want %q", cmd, got, want)
		}
	}
}
