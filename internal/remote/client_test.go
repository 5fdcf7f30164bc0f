package remote

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/linkwed/linkwed/internal/server"
	"github.com/linkwed/linkwed/pkg/types"
)

// testClient runs a real backend in-process and points a client at it.
func testClient(t *testing.T) *Client {
	t.Helper()
	dir := t.TempDir()
	cfg := server.Config{
		DataDir:        filepath.Join(dir, "data"),
		PublicDir:      filepath.Join(dir, "public"),
		DistDir:        filepath.Join(dir, "dist"),
		MaxUploadBytes: 25 << 20,
	}
	s, err := server.NewHandler(cfg)
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestClient_AssetRoundTrip(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	blob := types.Blob{Name: "photo.png", MIMEType: "image/png", Data: []byte("png-bytes")}
	if err := c.Put(ctx, "g1.png", blob); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := c.Get(ctx, "g1.png")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got.Data, blob.Data) {
		t.Errorf("data = %q", got.Data)
	}
	if got.MIMEType != "image/png" {
		t.Errorf("mime type = %q", got.MIMEType)
	}

	ids, err := c.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "g1.png" {
		t.Errorf("ids = %v", ids)
	}

	if err := c.Delete(ctx, "g1.png"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "g1.png"); err != types.ErrAssetNotFound {
		t.Errorf("expected ErrAssetNotFound after delete, got %v", err)
	}
	if err := c.Delete(ctx, "g1.png"); err != nil {
		t.Errorf("Delete of missing id should succeed, got %v", err)
	}
}

func TestClient_GetMissing(t *testing.T) {
	c := testClient(t)

	if _, err := c.Get(context.Background(), "nope.png"); err != types.ErrAssetNotFound {
		t.Errorf("err = %v, want ErrAssetNotFound", err)
	}
}

func TestClient_PutRejectedByServer(t *testing.T) {
	c := testClient(t)

	err := c.Put(context.Background(), "../escape.png", types.Blob{Name: "x.png", Data: []byte("x")})
	if err == nil {
		t.Error("Put with traversal id should fail")
	}
}

func TestClient_PutVerifiesRetrievability(t *testing.T) {
	// A server that acknowledges the upload but never serves the bytes.
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/upload", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"ghost.png","name":"x.png","url":"/uploads/ghost.png","type":"image/png","size":1}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.Put(context.Background(), "ghost.png", types.Blob{Name: "x.png", Data: []byte("x")})
	if err == nil {
		t.Error("Put must fail when the asset is not retrievable after the write")
	}
}

func TestClient_SnapshotRoundTrip(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	inv, created, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	if !created {
		t.Error("first Load should report a freshly seeded document")
	}

	inv.Volume = 0.3
	inv.GalleryImages = []types.AssetRef{{ID: "g1.png", Name: "a.png", MIMEType: "image/png"}}
	saved, err := c.Save(ctx, inv)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.UpdatedAt.IsZero() {
		t.Error("server did not stamp updatedAt")
	}

	loaded, created, err := c.Load(ctx)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if created {
		t.Error("second Load should not report created")
	}
	if loaded.Volume != 0.3 {
		t.Errorf("volume = %v", loaded.Volume)
	}
	if len(loaded.GalleryImages) != 1 || loaded.GalleryImages[0].ID != "g1.png" {
		t.Errorf("gallery = %+v", loaded.GalleryImages)
	}
}

func TestClient_BaseURLTrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:3000/")
	if got := c.AssetURL("a.png"); got != "http://localhost:3000/uploads/a.png" {
		t.Errorf("AssetURL = %q", got)
	}
}
