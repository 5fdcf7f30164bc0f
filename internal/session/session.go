// Package session implements the editor-side state machine: one in-memory
// invitation document, staged asset payloads, a debounced coalescing
// autosave pipeline, and post-save garbage collection of unreferenced
// blobs.
// See docs/ARCHITECTURE.md § Editor Session.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/linkwed/linkwed/pkg/types"
)

// DefaultDebounce is the quiet interval between the last edit and the
// save it triggers.
const DefaultDebounce = 480 * time.Millisecond

var (
	ErrNotHydrated     = errors.New("session not hydrated")
	ErrAlreadyHydrated = errors.New("session already hydrated")
	ErrInvalidLocation = errors.New("invalid coordinates")
	ErrGalleryFull     = errors.New("gallery is full")
	ErrUnknownTrack    = errors.New("unknown preset track")
	ErrUnknownAsset    = errors.New("asset not referenced by session")
	ErrSessionClosed   = errors.New("session closed")
)

// assetState tracks one referenced asset. payload holds bytes that are
// not durable yet; handle is what the editor displays right now.
type assetState struct {
	ref     types.AssetRef
	payload []byte
	durable bool
	failed  bool
	handle  *Handle
}

type stagedUpload struct {
	id   string
	blob types.Blob
}

// Session owns the live invitation document. All mutators reject calls
// until Hydrate has run, which is also what keeps autosave from firing
// against an unloaded document.
type Session struct {
	assets   types.AssetStore
	snapshot types.SnapshotStore
	resolver *Resolver
	debounce time.Duration

	mu       sync.Mutex
	cond     *sync.Cond
	inv      *types.Invitation
	states   map[string]*assetState
	hydrated bool
	closed   bool

	timer  *time.Timer
	dirty  bool
	saving bool
	queued bool
}

// Option adjusts session construction.
type Option func(*Session)

// WithDebounce overrides the autosave quiet interval.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounce = d }
}

// New creates a session over the given stores. Call Hydrate before
// editing and Close when done.
func New(assets types.AssetStore, snapshot types.SnapshotStore, opts ...Option) (*Session, error) {
	resolver, err := NewResolver(assets)
	if err != nil {
		return nil, err
	}
	s := &Session{
		assets:   assets,
		snapshot: snapshot,
		resolver: resolver,
		debounce: DefaultDebounce,
		states:   make(map[string]*assetState),
	}
	s.cond = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Hydrate loads the stored document and prefetches every referenced
// asset. References whose blobs are gone are dropped from the document.
// The hydrated flag is set exactly once, even when individual assets
// fail to resolve.
func (s *Session) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.hydrated {
		return ErrAlreadyHydrated
	}
	defer func() { s.hydrated = true }()

	inv, _, err := s.snapshot.Load(ctx)
	if err != nil {
		log.Printf("session: loading snapshot: %v (starting from defaults)", err)
		inv = types.DefaultInvitation()
	}
	inv.Sanitize()

	for id := range inv.AssetIDs() {
		h, err := s.resolver.Resolve(ctx, id)
		if errors.Is(err, types.ErrAssetNotFound) {
			dropRef(inv, id)
			continue
		}
		if err != nil {
			log.Printf("session: resolving asset %s: %v", id, err)
			s.states[id] = &assetState{ref: refFor(inv, id), durable: true, failed: true}
			continue
		}
		s.states[id] = &assetState{ref: refFor(inv, id), durable: true, handle: h}
	}

	s.inv = inv
	return nil
}

// Hydrated reports whether the initial load has completed.
func (s *Session) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Invitation returns a copy of the current document.
func (s *Session) Invitation() *types.Invitation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inv == nil {
		return types.DefaultInvitation()
	}
	return s.inv.Clone()
}

// AssetSource returns what a viewer should load for the given asset id:
// the temporary preview while the payload is pending, the durable
// location once stored.
func (s *Session) AssetSource(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	st, ok := s.states[id]
	if ok && st.handle != nil {
		defer s.mu.Unlock()
		return st.handle.Source(), nil
	}
	s.mu.Unlock()
	if !ok {
		return "", ErrUnknownAsset
	}

	h, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.states[id]; ok && cur.handle == nil {
		cur.handle = h
		return h.Source(), nil
	}
	h.Release()
	return "", ErrUnknownAsset
}

// AssetFailed reports whether the last durability attempt for id failed.
func (s *Session) AssetFailed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[id]
	return ok && st.failed
}

// Resolver exposes the session's asset resolver.
func (s *Session) Resolver() *Resolver { return s.resolver }

// scheduleLocked arms or re-arms the debounce timer. Called after every
// successful mutation with the lock held.
func (s *Session) scheduleLocked() {
	if !s.hydrated || s.closed {
		return
	}
	s.dirty = true
	if s.saving {
		s.queued = true
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.timerFired)
		return
	}
	s.timer.Reset(s.debounce)
}

func (s *Session) timerFired() {
	s.mu.Lock()
	s.timer = nil
	if s.closed || !s.dirty {
		s.mu.Unlock()
		return
	}
	if s.saving {
		s.queued = true
		s.mu.Unlock()
		return
	}
	s.dirty = false
	s.saving = true
	doc, uploads := s.captureLocked()
	s.mu.Unlock()

	s.runSave(context.Background(), doc, uploads)
}

// captureLocked snapshots the document by value together with the set of
// payloads that still need uploading. The save cycle works only on this
// copy; edits landing afterwards belong to the next cycle.
func (s *Session) captureLocked() (*types.Invitation, []stagedUpload) {
	doc := s.inv.Clone()
	var uploads []stagedUpload
	for id, st := range s.states {
		if st.payload == nil {
			continue
		}
		uploads = append(uploads, stagedUpload{
			id: id,
			blob: types.Blob{
				Name:     st.ref.Name,
				MIMEType: st.ref.MIMEType,
				Data:     st.payload,
			},
		})
	}
	return doc, uploads
}

// runSave executes one save cycle: upload pending payloads concurrently
// (all-settle), persist the document built from confirmed references,
// and on success reconcile the asset store against it. Exactly one cycle
// runs at a time; edits arriving mid-cycle coalesce into one follow-up.
func (s *Session) runSave(ctx context.Context, doc *types.Invitation, uploads []stagedUpload) {
	results := make([]error, len(uploads))
	var wg sync.WaitGroup
	for i, up := range uploads {
		wg.Add(1)
		go func(i int, up stagedUpload) {
			defer wg.Done()
			results[i] = s.assets.Put(ctx, up.id, up.blob)
		}(i, up)
	}
	wg.Wait()

	failed := make(map[string]bool)
	s.mu.Lock()
	for i, up := range uploads {
		st := s.states[up.id]
		if results[i] != nil {
			failed[up.id] = true
			log.Printf("session: uploading asset %s: %v", up.id, results[i])
			if st != nil {
				st.failed = true
			}
			continue
		}
		if st == nil {
			// Reference removed mid-cycle; the blob becomes garbage and
			// the follow-up cycle's reconcile collects it.
			continue
		}
		st.failed = false
		st.durable = true
		st.payload = nil
		s.promoteLocked(st)
	}
	staged := make(map[string]bool)
	for id, st := range s.states {
		if st.payload != nil {
			staged[id] = true
		}
	}
	s.mu.Unlock()

	for id := range failed {
		dropRef(doc, id)
	}

	saved, err := s.snapshot.Save(ctx, doc)
	if err != nil {
		log.Printf("session: saving snapshot: %v", err)
	} else {
		s.reconcile(ctx, saved.AssetIDs(), staged)
	}

	s.mu.Lock()
	s.saving = false
	if s.queued && !s.closed {
		s.queued = false
		s.dirty = true
		if s.timer == nil {
			s.timer = time.AfterFunc(s.debounce, s.timerFired)
		}
	}
	s.cond.Broadcast()
	s.mu.Unlock()
}

// promoteLocked swaps a freshly durable asset's preview handle for its
// stable URL. Stores without URLs keep serving the materialized file.
func (s *Session) promoteLocked(st *assetState) {
	if !s.resolver.HasURLs() {
		return
	}
	durable, err := s.resolver.Resolve(context.Background(), st.ref.ID)
	if err != nil {
		log.Printf("session: resolving durable asset %s: %v", st.ref.ID, err)
		return
	}
	if st.handle != nil {
		if err := st.handle.Release(); err != nil {
			log.Printf("session: releasing preview for %s: %v", st.ref.ID, err)
		}
	}
	st.handle = durable
}

// reconcile deletes stored blobs that the just-persisted document no
// longer references. Payloads still staged for upload are never
// candidates. Individual delete failures are logged and skipped.
func (s *Session) reconcile(ctx context.Context, keep map[string]bool, staged map[string]bool) {
	ids, err := s.assets.ListIDs(ctx)
	if err != nil {
		log.Printf("session: listing assets for gc: %v", err)
		return
	}
	for _, id := range ids {
		if keep[id] || staged[id] {
			continue
		}
		if err := s.assets.Delete(ctx, id); err != nil {
			log.Printf("session: deleting unused asset %s: %v", id, err)
		}
	}
}

// Flush runs any pending save immediately and waits until no cycle is
// running or queued. Safe to call at any time after hydration.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	if !s.hydrated {
		s.mu.Unlock()
		return ErrNotHydrated
	}
	for {
		if s.timer != nil {
			s.timer.Stop()
			s.timer = nil
		}
		if s.saving {
			s.cond.Wait()
			continue
		}
		if s.dirty || s.queued {
			s.dirty = false
			s.queued = false
			s.saving = true
			doc, uploads := s.captureLocked()
			s.mu.Unlock()
			s.runSave(ctx, doc, uploads)
			s.mu.Lock()
			continue
		}
		break
	}
	s.mu.Unlock()
	return nil
}

// Close flushes pending work and releases every materialized asset.
func (s *Session) Close() error {
	s.mu.Lock()
	hydrated := s.hydrated
	s.mu.Unlock()
	if hydrated {
		if err := s.Flush(context.Background()); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.states = make(map[string]*assetState)
	s.mu.Unlock()
	return s.resolver.Close()
}

// dropRef removes every reference to the asset id from the document.
// Custom music falls back to the default preset track.
func dropRef(inv *types.Invitation, id string) {
	if inv.HeroImage != nil && inv.HeroImage.ID == id {
		inv.HeroImage = nil
	}
	kept := inv.GalleryImages[:0]
	for _, ref := range inv.GalleryImages {
		if ref.ID != id {
			kept = append(kept, ref)
		}
	}
	inv.GalleryImages = kept
	if inv.Music.Mode == types.MusicModeCustom && inv.Music.ID == id {
		inv.Music = types.MusicRef{
			Mode: types.MusicModePreset,
			ID:   types.DefaultTrack.ID,
			Name: types.DefaultTrack.Name,
		}
	}
}

// refFor finds the AssetRef carrying id inside the document.
func refFor(inv *types.Invitation, id string) types.AssetRef {
	if inv.HeroImage != nil && inv.HeroImage.ID == id {
		return *inv.HeroImage
	}
	for _, ref := range inv.GalleryImages {
		if ref.ID == id {
			return ref
		}
	}
	if inv.Music.Mode == types.MusicModeCustom && inv.Music.ID == id {
		return types.AssetRef{ID: inv.Music.ID, Name: inv.Music.Name, MIMEType: inv.Music.MIMEType}
	}
	return types.AssetRef{ID: id}
}
