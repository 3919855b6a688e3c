package journal

import (
	"context"
	"testing"
)

func TestMemoryStoreAppendAndList(t *testing.T) {
	store, err := NewMemoryStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := []Entry{
		{ID: "a", Capability: "transfer", Input: "send 1 sol", Success: true, CreatedAt: 1},
		{ID: "b", Capability: "portfolio", Input: "show portfolio", Success: true, CreatedAt: 2},
		{ID: "c", Capability: "swap", Input: "swap 1 sol", Success: false, CreatedAt: 3},
	}
	for _, entry := range entries {
		if err := store.Append(context.Background(), entry); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recent, err := store.ListRecent(context.Background(), 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].ID != "c" || recent[1].ID != "b" {
		t.Fatalf("entries not in reverse insertion order: %+v", recent)
	}
}

func TestMemoryStoreRestoresFromDisk(t *testing.T) {
	dir := t.TempDir()

	store, err := NewMemoryStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Append(context.Background(), Entry{ID: "a", Capability: "wallets", CreatedAt: 1}); err != nil {
		t.Fatalf("append: %v", err)
	}

	restored, err := NewMemoryStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recent, err := restored.ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "a" {
		t.Fatalf("expected restored entry, got %+v", recent)
	}
}
