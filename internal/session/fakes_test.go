package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/linkwed/linkwed/pkg/types"
)

// memAssets is an in-memory AssetStore with per-id failure injection.
type memAssets struct {
	mu      sync.Mutex
	blobs   map[string]types.Blob
	failPut map[string]bool
	puts    int
}

func newMemAssets() *memAssets {
	return &memAssets{
		blobs:   make(map[string]types.Blob),
		failPut: make(map[string]bool),
	}
}

func (m *memAssets) Put(ctx context.Context, id string, blob types.Blob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.failPut[id] {
		return errors.New("injected put failure")
	}
	m.blobs[id] = blob
	return nil
}

func (m *memAssets) Get(ctx context.Context, id string) (types.Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[id]
	if !ok {
		return types.Blob{}, types.ErrAssetNotFound
	}
	return blob, nil
}

func (m *memAssets) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, id)
	return nil
}

func (m *memAssets) ListIDs(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.blobs))
	for id := range m.blobs {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memAssets) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[id]
	return ok
}

func (m *memAssets) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

func (m *memAssets) setFailPut(id string, fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPut[id] = fail
}

// urlAssets serves blobs at stable URLs, like the remote backend does.
type urlAssets struct {
	*memAssets
}

func (u *urlAssets) AssetURL(id string) string {
	return "http://assets.test/uploads/" + id
}

// memSnapshot is an in-memory SnapshotStore. When entered/release are
// set, Save blocks between them so tests can inject edits mid-cycle.
type memSnapshot struct {
	mu       sync.Mutex
	doc      *types.Invitation
	saves    int
	failLoad bool
	failSave bool

	entered chan struct{}
	release chan struct{}
}

func newMemSnapshot() *memSnapshot { return &memSnapshot{} }

func (m *memSnapshot) Load(ctx context.Context) (*types.Invitation, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoad {
		return nil, false, errors.New("injected load failure")
	}
	if m.doc == nil {
		m.doc = types.DefaultInvitation()
		return m.doc.Clone(), true, nil
	}
	return m.doc.Clone(), false, nil
}

func (m *memSnapshot) Save(ctx context.Context, inv *types.Invitation) (*types.Invitation, error) {
	if m.entered != nil {
		m.entered <- struct{}{}
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failSave {
		return nil, errors.New("injected save failure")
	}
	doc := inv.Clone()
	doc.UpdatedAt = time.Now().UTC()
	m.doc = doc
	return doc.Clone(), nil
}

func (m *memSnapshot) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *memSnapshot) stored() *types.Invitation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return nil
	}
	return m.doc.Clone()
}

func (m *memSnapshot) seed(inv *types.Invitation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = inv.Clone()
}
