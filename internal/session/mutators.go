package session

import (
	"github.com/linkwed/linkwed/pkg/types"
)

// SetDetails replaces the textual content of the invitation.
func (s *Session) SetDetails(d types.Details) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}
	if d.Schedule == nil {
		d.Schedule = []types.ScheduleItem{}
	}
	s.inv.Details = d
	s.scheduleLocked()
	return nil
}

// SetLocation updates the venue coordinates and the query that produced
// them. Non-finite coordinates are rejected and the state is unchanged.
func (s *Session) SetLocation(query string, c types.Coordinates) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}
	if !c.Valid() {
		return ErrInvalidLocation
	}
	s.inv.LocationQuery = query
	s.inv.Coordinates = c
	s.scheduleLocked()
	return nil
}

// SetHeroImage stages a new hero image. The payload becomes durable on
// the next save cycle; until then the preview handle serves it.
func (s *Session) SetHeroImage(ref types.AssetRef, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}
	if s.inv.HeroImage != nil {
		s.forgetLocked(s.inv.HeroImage.ID)
	}
	if err := s.stageLocked(ref, data); err != nil {
		return err
	}
	s.inv.HeroImage = &ref
	s.scheduleLocked()
	return nil
}

// ClearHeroImage drops the hero image. The stored blob, if any, is
// collected after the next save.
func (s *Session) ClearHeroImage() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}
	if s.inv.HeroImage == nil {
		return nil
	}
	s.forgetLocked(s.inv.HeroImage.ID)
	s.inv.HeroImage = nil
	s.scheduleLocked()
	return nil
}

// AddGalleryImage stages one more gallery image, up to the fixed cap.
func (s *Session) AddGalleryImage(ref types.AssetRef, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}
	if len(s.inv.GalleryImages) >= types.MaxGalleryImages {
		return ErrGalleryFull
	}
	if err := s.stageLocked(ref, data); err != nil {
		return err
	}
	s.inv.GalleryImages = append(s.inv.GalleryImages, ref)
	s.scheduleLocked()
	return nil
}

// RemoveGalleryImage drops the gallery image with the given id. Removing
// an id that is not present is a no-op.
func (s *Session) RemoveGalleryImage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}
	kept := s.inv.GalleryImages[:0]
	removed := false
	for _, ref := range s.inv.GalleryImages {
		if ref.ID == id {
			removed = true
			continue
		}
		kept = append(kept, ref)
	}
	if !removed {
		return nil
	}
	s.inv.GalleryImages = kept
	s.forgetLocked(id)
	s.scheduleLocked()
	return nil
}

// SelectPresetTrack switches background music to one of the built-in
// tracks.
func (s *Session) SelectPresetTrack(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}
	track, ok := types.LookupPresetTrack(id)
	if !ok {
		return ErrUnknownTrack
	}
	if s.inv.Music.Mode == types.MusicModeCustom {
		s.forgetLocked(s.inv.Music.ID)
	}
	s.inv.Music = types.MusicRef{
		Mode:   types.MusicModePreset,
		ID:     track.ID,
		Name:   track.Name,
		Credit: track.Credit,
	}
	s.scheduleLocked()
	return nil
}

// SetCustomMusic stages an uploaded audio track as background music.
func (s *Session) SetCustomMusic(ref types.AssetRef, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}
	if s.inv.Music.Mode == types.MusicModeCustom && s.inv.Music.ID != ref.ID {
		s.forgetLocked(s.inv.Music.ID)
	}
	if err := s.stageLocked(ref, data); err != nil {
		return err
	}
	s.inv.Music = types.MusicRef{
		Mode:     types.MusicModeCustom,
		ID:       ref.ID,
		Name:     ref.Name,
		MIMEType: ref.MIMEType,
	}
	s.scheduleLocked()
	return nil
}

// SetVolume clamps the playback volume into [0,1] and stores it.
func (s *Session) SetVolume(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hydrated {
		return ErrNotHydrated
	}
	switch {
	case v < 0:
		v = 0
	case v > 1:
		v = 1
	}
	s.inv.Volume = v
	s.scheduleLocked()
	return nil
}

// stageLocked registers a pending payload and materializes its preview.
func (s *Session) stageLocked(ref types.AssetRef, data []byte) error {
	h, err := s.resolver.Materialize(ref.ID, data)
	if err != nil {
		return err
	}
	s.states[ref.ID] = &assetState{ref: ref, payload: data, handle: h}
	return nil
}

// forgetLocked drops the tracking state for an asset that is no longer
// referenced, releasing its display handle. Durable blobs stay in the
// store until the post-save reconcile.
func (s *Session) forgetLocked(id string) {
	st, ok := s.states[id]
	if !ok {
		return
	}
	if st.handle != nil {
		st.handle.Release()
	}
	delete(s.states, id)
}
