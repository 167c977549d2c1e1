package file

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "store.json")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Set(ctx, "k1", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "k2", "v2"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, "k2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v, ok, err := reopened.Get(ctx, "k1")
	if err != nil || !ok || v != "v1" {
		t.Fatalf("expected k1=v1 after reopen, got ok=%v v=%q err=%v", ok, v, err)
	}
	if _, ok, _ := reopened.Get(ctx, "k2"); ok {
		t.Fatalf("deleted key must not survive reopen")
	}
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok, _ := c.Get(context.Background(), "anything"); ok {
		t.Fatalf("expected empty store")
	}
}
