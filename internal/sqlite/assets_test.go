package sqlite

import (
	"bytes"
	"context"
	"testing"

	"github.com/linkwed/linkwed/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	if err := s.Attach(testConfig(t)); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	t.Cleanup(func() { s.Detach() })
	return s
}

func TestAssets_PutGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	blob := types.Blob{Name: "hero.jpg", MIMEType: "image/jpeg", Data: []byte("jpeg-bytes")}
	if err := s.Put(ctx, "hero", blob); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(ctx, "hero")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != blob.Name || got.MIMEType != blob.MIMEType || !bytes.Equal(got.Data, blob.Data) {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestAssets_PutOverwrites(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, "a", types.Blob{Name: "v1", Data: []byte("one")}); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	if err := s.Put(ctx, "a", types.Blob{Name: "v2", Data: []byte("two")}); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "v2" || string(got.Data) != "two" {
		t.Errorf("overwrite not last-write-wins: %+v", got)
	}

	ids, err := s.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs failed: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("expected 1 id after overwrite, got %v", ids)
	}
}

func TestAssets_GetMissing(t *testing.T) {
	s := openStore(t)
	if _, err := s.Get(context.Background(), "nope"); err != types.ErrAssetNotFound {
		t.Errorf("expected ErrAssetNotFound, got %v", err)
	}
}

func TestAssets_EmptyIDRejected(t *testing.T) {
	s := openStore(t)
	if err := s.Put(context.Background(), "", types.Blob{Data: []byte("x")}); err == nil {
		t.Error("expected error for empty id")
	}
}

func TestAssets_DeleteAndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := s.Put(ctx, id, types.Blob{Name: id, Data: []byte(id)}); err != nil {
			t.Fatalf("Put %s failed: %v", id, err)
		}
	}

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	// Deleting an absent id succeeds.
	if err := s.Delete(ctx, "b"); err != nil {
		t.Errorf("Delete of missing id should succeed, got %v", err)
	}

	ids, err := s.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Errorf("expected [a c], got %v", ids)
	}
}
