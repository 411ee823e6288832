package blob

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func TestMemoryStoreListsDirectChildrenOnly(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("archive")

	for _, key := range []string{"reports/a.pdf", "reports/b.txt", "reports/old/c.pdf", "other/d.pdf"} {
		if _, err := store.PutObject(ctx, key, []byte(key), "application/pdf"); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	objects, err := store.ListObjects(ctx, "reports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects, got %d (%v)", len(objects), objects)
	}
	if objects[0].Key != "reports/a.pdf" || objects[1].Key != "reports/b.txt" {
		t.Fatalf("unexpected keys: %v", objects)
	}
}

func TestMemoryStoreGetObject(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("archive")
	stamp := time.Date(2025, 9, 10, 8, 30, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return stamp })

	if _, err := store.PutObject(ctx, "reports/a.pdf", []byte("%PDF-1.4"), "application/pdf"); err != nil {
		t.Fatalf("put: %v", err)
	}

	rc, info, err := store.GetObject(ctx, "reports/a.pdf")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", data)
	}
	if info.Size != 8 || !info.LastModified.Equal(stamp) {
		t.Fatalf("unexpected info %+v", info)
	}

	_, _, err = store.GetObject(ctx, "reports/missing.pdf")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}
