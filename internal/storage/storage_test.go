package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	store, err := New(root, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func TestObjectKeyLayout(t *testing.T) {
	now := time.Unix(1756600000, 0)
	key := ObjectKey(42, "Rate Con #7.pdf", now)
	want := "load_42/1756600000_Rate_Con__7.pdf"
	if key != want {
		t.Fatalf("key = %q, want %q", key, want)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"ratecon.pdf", "ratecon.pdf"},
		{"../../etc/passwd", "passwd"},
		{"a b/c.pdf", "c.pdf"},
		{"", "document.pdf"},
		{"invoice (final).PDF", "invoice__final_.PDF"},
	}
	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Fatalf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPutGetDelete(t *testing.T) {
	store := newTestStore(t)
	key := ObjectKey(7, "bol.pdf", time.Now())

	if err := store.Put(key, []byte("content")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, err := store.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "content" {
		t.Fatalf("data = %q", data)
	}
	if err := store.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: err = %v, want ErrNotFound", err)
	}
	// idempotent
	if err := store.Delete(key); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestResolveRejectsEscapingKeys(t *testing.T) {
	store := newTestStore(t)
	if err := store.Put("../outside.pdf", []byte("x")); err == nil {
		t.Fatal("expected error for key escaping the root")
	}
}

func TestTempBlobLifecycle(t *testing.T) {
	store := newTestStore(t)

	id, err := store.PutTemp([]byte("staged"))
	if err != nil {
		t.Fatalf("PutTemp: %v", err)
	}
	data, err := store.GetTemp(id)
	if err != nil {
		t.Fatalf("GetTemp: %v", err)
	}
	if string(data) != "staged" {
		t.Fatalf("data = %q", data)
	}
	if err := store.DeleteTemp(id); err != nil {
		t.Fatalf("DeleteTemp: %v", err)
	}
	if _, err := store.GetTemp(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetTemp after delete: err = %v, want ErrNotFound", err)
	}
	if err := store.DeleteTemp(id); err != nil {
		t.Fatalf("second DeleteTemp: %v", err)
	}
}

func TestSweepTempRemovesOnlyStaleBlobs(t *testing.T) {
	root := t.TempDir()
	store, err := New(root, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	staleID, err := store.PutTemp([]byte("old"))
	if err != nil {
		t.Fatalf("PutTemp: %v", err)
	}
	freshID, err := store.PutTemp([]byte("new"))
	if err != nil {
		t.Fatalf("PutTemp: %v", err)
	}

	stalePath := filepath.Join(root, tempDirName, staleID)
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stalePath, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	removed, err := store.SweepTemp(24 * time.Hour)
	if err != nil {
		t.Fatalf("SweepTemp: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if _, err := store.GetTemp(staleID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stale blob should be gone, err = %v", err)
	}
	if _, err := store.GetTemp(freshID); err != nil {
		t.Fatalf("fresh blob should remain: %v", err)
	}
}
