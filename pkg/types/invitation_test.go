package types

import (
	"encoding/json"
	"math"
	"testing"
)

func TestDefaultInvitation_Independent(t *testing.T) {
	a := DefaultInvitation()
	b := DefaultInvitation()

	a.Details.CoupleNames = "changed"
	a.Details.Schedule[0].Label = "changed"
	a.GalleryImages = append(a.GalleryImages, AssetRef{ID: "x"})

	if b.Details.CoupleNames == "changed" {
		t.Error("DefaultInvitation copies share Details")
	}
	if b.Details.Schedule[0].Label == "changed" {
		t.Error("DefaultInvitation copies share Schedule backing array")
	}
	if len(b.GalleryImages) != 0 {
		t.Error("DefaultInvitation copies share GalleryImages")
	}
}

func TestInvitation_Clone(t *testing.T) {
	inv := DefaultInvitation()
	inv.HeroImage = &AssetRef{ID: "hero", Name: "hero.jpg"}
	inv.GalleryImages = []AssetRef{{ID: "g1", Name: "a.png"}}

	clone := inv.Clone()
	clone.HeroImage.ID = "other"
	clone.GalleryImages[0].ID = "other"
	clone.Details.Schedule[0].Time = "00:00"

	if inv.HeroImage.ID != "hero" {
		t.Error("Clone shares HeroImage pointer")
	}
	if inv.GalleryImages[0].ID != "g1" {
		t.Error("Clone shares GalleryImages backing array")
	}
	if inv.Details.Schedule[0].Time == "00:00" {
		t.Error("Clone shares Schedule backing array")
	}
}

func TestInvitation_Sanitize(t *testing.T) {
	inv := DefaultInvitation()
	inv.Volume = 1.7
	inv.Sanitize()
	if inv.Volume != 1 {
		t.Errorf("volume not clamped high: %v", inv.Volume)
	}

	inv.Volume = -0.2
	inv.Sanitize()
	if inv.Volume != 0 {
		t.Errorf("volume not clamped low: %v", inv.Volume)
	}

	inv.GalleryImages = make([]AssetRef, MaxGalleryImages+3)
	inv.Sanitize()
	if len(inv.GalleryImages) != MaxGalleryImages {
		t.Errorf("gallery not capped: %d", len(inv.GalleryImages))
	}

	inv.Coordinates = Coordinates{Lat: math.NaN(), Lng: 1}
	inv.Sanitize()
	if !inv.Coordinates.Valid() {
		t.Error("non-finite coordinates survived Sanitize")
	}

	inv.Music = MusicRef{Mode: MusicModePreset, ID: "no-such-track"}
	inv.Sanitize()
	if inv.Music.ID != DefaultTrack.ID {
		t.Errorf("unknown preset id not reset, got %q", inv.Music.ID)
	}

	inv.Music = MusicRef{Mode: "bogus", ID: "whatever"}
	inv.Sanitize()
	if inv.Music.Mode != MusicModePreset || inv.Music.ID != DefaultTrack.ID {
		t.Errorf("unknown music mode not reset: %+v", inv.Music)
	}

	// Custom refs survive untouched even before the blob is durable.
	inv.Music = MusicRef{Mode: MusicModeCustom, ID: "c1", Name: "song.mp3"}
	inv.Sanitize()
	if inv.Music.ID != "c1" {
		t.Errorf("custom music ref rewritten: %+v", inv.Music)
	}
}

func TestInvitation_AssetIDs(t *testing.T) {
	inv := DefaultInvitation()
	if len(inv.AssetIDs()) != 0 {
		t.Errorf("default document should reference no assets, got %v", inv.AssetIDs())
	}

	inv.HeroImage = &AssetRef{ID: "hero"}
	inv.GalleryImages = []AssetRef{{ID: "g1"}, {ID: "g2"}}
	inv.Music = MusicRef{Mode: MusicModeCustom, ID: "m1"}

	ids := inv.AssetIDs()
	for _, want := range []string{"hero", "g1", "g2", "m1"} {
		if !ids[want] {
			t.Errorf("missing id %q in %v", want, ids)
		}
	}
	if len(ids) != 4 {
		t.Errorf("expected 4 ids, got %v", ids)
	}

	// Preset music ids never count as stored assets.
	inv.Music = MusicRef{Mode: MusicModePreset, ID: DefaultTrack.ID}
	if ids := inv.AssetIDs(); ids[DefaultTrack.ID] {
		t.Errorf("preset id leaked into asset set: %v", ids)
	}
}

func TestDecodeInvitation_PartialPayload(t *testing.T) {
	inv, err := DecodeInvitation([]byte(`{"volume":0.3,"details":{"coupleNames":"A & B"}}`))
	if err != nil {
		t.Fatalf("DecodeInvitation failed: %v", err)
	}
	if inv.Volume != 0.3 {
		t.Errorf("volume = %v, want 0.3", inv.Volume)
	}
	if inv.Details.CoupleNames != "A & B" {
		t.Errorf("coupleNames = %q", inv.Details.CoupleNames)
	}
	// Fields absent from the payload are backfilled from the defaults.
	def := DefaultInvitation()
	if inv.Details.Venue != def.Details.Venue {
		t.Errorf("venue not defaulted: %q", inv.Details.Venue)
	}
	if len(inv.Details.Schedule) != len(def.Details.Schedule) {
		t.Errorf("schedule not defaulted: %+v", inv.Details.Schedule)
	}
}

func TestDecodeInvitation_Malformed(t *testing.T) {
	if _, err := DecodeInvitation([]byte(`{not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestInvitation_JSONRoundTrip(t *testing.T) {
	inv := DefaultInvitation()
	inv.HeroImage = &AssetRef{ID: "hero", Name: "hero.jpg", MIMEType: "image/jpeg"}
	inv.GalleryImages = []AssetRef{{ID: "g1", Name: "a.png", MIMEType: "image/png"}}
	inv.Music = MusicRef{Mode: MusicModeCustom, ID: "m1", Name: "song.mp3", Credit: "自定义上传", MIMEType: "audio/mpeg"}
	inv.Volume = 0.25

	data, err := json.Marshal(inv)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := DecodeInvitation(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.HeroImage == nil || *got.HeroImage != *inv.HeroImage {
		t.Errorf("hero mismatch: %+v", got.HeroImage)
	}
	if got.Music != inv.Music {
		t.Errorf("music mismatch: %+v", got.Music)
	}
	if got.Volume != inv.Volume {
		t.Errorf("volume mismatch: %v", got.Volume)
	}
}
