package memory

import (
	"context"
	"testing"
	"time"

	"github.com/widiatmoko/jurnalku/internal/domain/journal"
)

func TestJournalsRepo_ListNewestFirst(t *testing.T) {
	r := NewJournalsRepo()
	ctx := context.Background()
	now := time.Now().UTC()

	seed := []journal.Entry{
		{ID: "e1", StudentID: "u1", Date: "2024-01-01", CreatedAt: now},
		{ID: "e2", StudentID: "u1", Date: "2024-01-03", CreatedAt: now},
		{ID: "e3", StudentID: "u1", Date: "2024-01-02", CreatedAt: now.Add(time.Minute)},
		{ID: "e4", StudentID: "u1", Date: "2024-01-02", CreatedAt: now},
	}
	for _, e := range seed {
		if _, err := r.Create(ctx, e); err != nil {
			t.Fatalf("create %s: %v", e.ID, err)
		}
	}

	got, err := r.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	wantOrder := []string{"e2", "e3", "e4", "e1"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestJournalsRepo_DeleteByStudent(t *testing.T) {
	r := NewJournalsRepo()
	ctx := context.Background()

	entries := []journal.Entry{
		{ID: "e1", StudentID: "u1", Date: "2024-01-01"},
		{ID: "e2", StudentID: "u2", Date: "2024-01-01"},
		{ID: "e3", StudentID: "u1", Date: "2024-01-02"},
	}
	for _, e := range entries {
		if _, err := r.Create(ctx, e); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	if err := r.DeleteByStudent(ctx, "u1"); err != nil {
		t.Fatalf("deleteByStudent: %v", err)
	}

	got, _ := r.List(ctx)
	if len(got) != 1 || got[0].ID != "e2" {
		t.Fatalf("expected only e2 to survive, got %+v", got)
	}
}

func TestJournalsRepo_UpdateMissing(t *testing.T) {
	r := NewJournalsRepo()

	_, err := r.Update(context.Background(), journal.Entry{ID: "ghost"})
	if err != journal.ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
