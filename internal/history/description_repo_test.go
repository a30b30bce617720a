package history

import (
	"context"
	"testing"
)

func TestDescriptionBatchRoundtrip(t *testing.T) {
	db := newTestDB(t)
	runs := NewRunRepo(db)
	descs := NewDescriptionRepo(db)
	ctx := context.Background()

	run := NewRun("tour.mp4", "room-tour", 5)
	if err := runs.Insert(ctx, run); err != nil {
		t.Fatalf("failed to insert run: %v", err)
	}

	batch := []FrameDescription{
		{FrameNumber: 1, Timestamp: 5, Description: "A hallway."},
		{FrameNumber: 0, Timestamp: 0, Description: "A kitchen."},
		{FrameNumber: 2, Timestamp: 10, Description: "A balcony."},
	}
	if err := descs.InsertBatch(ctx, run.ID, batch); err != nil {
		t.Fatalf("failed to insert batch: %v", err)
	}

	got, err := descs.ListByRunID(ctx, run.ID)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 descriptions, got %d", len(got))
	}
	// Listed in frame order regardless of insert order.
	for i, d := range got {
		if d.FrameNumber != i {
			t.Errorf("description %d has frame number %d", i, d.FrameNumber)
		}
	}
	if got[0].Description != "A kitchen." {
		t.Errorf("first description = %q", got[0].Description)
	}
}

func TestDescriptionInsertBatchEmpty(t *testing.T) {
	descs := NewDescriptionRepo(newTestDB(t))
	if err := descs.InsertBatch(context.Background(), "run", nil); err != nil {
		t.Errorf("empty batch should be a no-op, got %v", err)
	}
}

func TestDescriptionsScopedToRun(t *testing.T) {
	db := newTestDB(t)
	runs := NewRunRepo(db)
	descs := NewDescriptionRepo(db)
	ctx := context.Background()

	a := NewRun("a.mp4", "room-tour", 5)
	b := NewRun("b.mp4", "room-tour", 5)
	for _, run := range []*Run{a, b} {
		if err := runs.Insert(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	if err := descs.InsertBatch(ctx, a.ID, []FrameDescription{{FrameNumber: 0, Description: "from a"}}); err != nil {
		t.Fatal(err)
	}
	if err := descs.InsertBatch(ctx, b.ID, []FrameDescription{{FrameNumber: 0, Description: "from b"}}); err != nil {
		t.Fatal(err)
	}

	got, err := descs.ListByRunID(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Description != "from a" {
		t.Errorf("unexpected descriptions for run a: %+v", got)
	}
}
