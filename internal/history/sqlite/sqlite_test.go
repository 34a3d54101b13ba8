package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/krya-ai/shell/internal/history"
)

func TestSendAndRecent(t *testing.T) {
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "journal.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	events := []history.Event{
		{Type: history.EventSpawned, OccurredAt: base, PID: 100},
		{Type: history.EventHealthy, OccurredAt: base.Add(time.Second), PID: 100},
		{Type: history.EventStopped, OccurredAt: base.Add(2 * time.Second), PID: 100, Detail: "quit from tray"},
	}
	for _, e := range events {
		if err := s.Send(ctx, e); err != nil {
			t.Fatalf("Send(%s): %v", e.Type, err)
		}
	}

	got, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].Type != history.EventStopped {
		t.Fatalf("expected newest-first ordering, got %s first", got[0].Type)
	}
	if got[0].Detail != "quit from tray" {
		t.Fatalf("detail not persisted: %q", got[0].Detail)
	}
	if got[2].PID != 100 {
		t.Fatalf("pid not persisted: %d", got[2].PID)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		e := history.Event{Type: history.EventSpawned, OccurredAt: time.Now().Add(time.Duration(i) * time.Second), PID: i}
		if err := s.Send(ctx, e); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	got, err := s.Recent(ctx, 4)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("limit not applied: got %d", len(got))
	}
}

func TestNewRejectsEmptyDSN(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}
