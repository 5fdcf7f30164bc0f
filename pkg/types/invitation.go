package types

import (
	"encoding/json"
	"math"
	"time"
)

// MaxGalleryImages caps the gallery; extra entries are dropped on
// normalization rather than rejected.
const MaxGalleryImages = 6

// SnapshotVersion is the persisted payload version. Payloads carrying a
// different version are treated as malformed and fall back to the default
// document.
const SnapshotVersion = 1

// Music reference modes. Preset tracks point into the fixed catalog in
// tracks.go; custom tracks reference a stored asset by id.
const (
	MusicModePreset = "preset"
	MusicModeCustom = "custom"
)

// ScheduleItem is one entry of the wedding-day programme.
type ScheduleItem struct {
	Time        string `json:"time"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Details holds the free-text fields of the invitation.
type Details struct {
	CoupleNames   string         `json:"coupleNames"`
	Tagline       string         `json:"tagline"`
	EventDate     string         `json:"eventDate"`
	EventTime     string         `json:"eventTime"`
	Venue         string         `json:"venue"`
	Address       string         `json:"address"`
	Story         string         `json:"story"`
	Hashtag       string         `json:"hashtag"`
	RSVPLink      string         `json:"rsvpLink"`
	CustomMessage string         `json:"customMessage"`
	Schedule      []ScheduleItem `json:"schedule"`
}

// Coordinates is a WGS-84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite numbers. Map search
// results with unparseable coordinates must never reach the document.
func (c Coordinates) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsInf(c.Lat, 0) &&
		!math.IsNaN(c.Lng) && !math.IsInf(c.Lng, 0)
}

// AssetRef ties a stable identifier to a binary payload stored in an
// AssetStore. The document owns the set of live ids; the store owns the
// bytes.
type AssetRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MIMEType string `json:"type,omitempty"`
}

// MusicRef describes the selected background track.
type MusicRef struct {
	Mode     string `json:"mode"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Credit   string `json:"credit,omitempty"`
	MIMEType string `json:"type,omitempty"`
}

// Invitation is the full editable document. Exactly one logical document
// exists per deployment; stores persist it under a fixed key.
type Invitation struct {
	Details       Details     `json:"details"`
	Coordinates   Coordinates `json:"coordinates"`
	LocationQuery string      `json:"locationQuery"`
	HeroImage     *AssetRef   `json:"heroImage,omitempty"`
	GalleryImages []AssetRef  `json:"galleryImages"`
	Music         MusicRef    `json:"music"`
	Volume        float64     `json:"volume"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// DefaultInvitation returns a fresh copy of the seed document. The content
// matches the shipped deployment; callers may mutate the result freely.
func DefaultInvitation() *Invitation {
	return &Invitation{
		Details: Details{
			CoupleNames:   "林深 & 叶溪",
			Tagline:       "邀您见证我们携手走向新篇章",
			EventDate:     "2025-10-18",
			EventTime:     "16:30",
			Venue:         "杭州 · 西湖烟霞堂",
			Address:       "浙江省杭州市西湖区龙井路 28 号",
			Story:         "从龙井小径的第一声问候，到无数次并肩看日落，我们把日常写成了最温柔的誓言。愿在这个秋日晚风里，与您共享花影与笑语。",
			Hashtag:       "#林叶之约",
			RSVPLink:      "mailto:rsvp@linkwed.app",
			CustomMessage: "诚挚邀请您于 2025 年 9 月 12 日前回复出席。仪式结束后备有湖畔晚宴与温馨致辞，期待您的祝福。",
			Schedule: []ScheduleItem{
				{Time: "16:30", Label: "迎宾花园茶歇", Description: "茉莉冷泡与轻柔弦乐，为您铺陈浪漫的序章。"},
				{Time: "17:15", Label: "烟霞堂誓言", Description: "晚风吹皱湖面，在亲友见证下许下笃定誓言。"},
				{Time: "18:30", Label: "湖畔星光宴", Description: "季节限定的风味盛宴，与亲友共享幸福时刻。"},
			},
		},
		Coordinates:   Coordinates{Lat: 30.243056, Lng: 120.150833},
		LocationQuery: "西湖烟霞堂",
		GalleryImages: []AssetRef{},
		Music: MusicRef{
			Mode:   MusicModePreset,
			ID:     DefaultTrack.ID,
			Name:   DefaultTrack.Name,
			Credit: DefaultTrack.Credit,
		},
		Volume: 0.6,
	}
}

// Clone returns a deep copy of the document. Save cycles snapshot-by-value
// so an in-flight save never observes later edits.
func (inv *Invitation) Clone() *Invitation {
	out := *inv
	out.Details.Schedule = append([]ScheduleItem(nil), inv.Details.Schedule...)
	out.GalleryImages = append([]AssetRef{}, inv.GalleryImages...)
	if inv.HeroImage != nil {
		hero := *inv.HeroImage
		out.HeroImage = &hero
	}
	return &out
}

// Sanitize repairs values that must hold regardless of where the document
// came from: volume clamped to [0,1], gallery capped, nil slices made
// empty, non-finite coordinates and unknown music references replaced from
// the defaults.
func (inv *Invitation) Sanitize() {
	if inv.Volume < 0 || math.IsNaN(inv.Volume) {
		inv.Volume = 0
	} else if inv.Volume > 1 {
		inv.Volume = 1
	}
	if inv.GalleryImages == nil {
		inv.GalleryImages = []AssetRef{}
	}
	if len(inv.GalleryImages) > MaxGalleryImages {
		inv.GalleryImages = inv.GalleryImages[:MaxGalleryImages]
	}
	if inv.Details.Schedule == nil {
		inv.Details.Schedule = []ScheduleItem{}
	}
	if !inv.Coordinates.Valid() {
		inv.Coordinates = DefaultInvitation().Coordinates
	}
	switch inv.Music.Mode {
	case MusicModeCustom:
		// Keep as-is; the referenced asset may still be uploading.
	case MusicModePreset:
		if _, ok := LookupPresetTrack(inv.Music.ID); !ok {
			inv.Music = DefaultInvitation().Music
		}
	default:
		inv.Music = DefaultInvitation().Music
	}
}

// AssetIDs returns the set of asset ids the document keeps alive: the hero
// image, every gallery image, and a custom music track. Preset track ids
// never count; they name catalog entries, not stored blobs.
func (inv *Invitation) AssetIDs() map[string]bool {
	ids := make(map[string]bool)
	if inv.HeroImage != nil && inv.HeroImage.ID != "" {
		ids[inv.HeroImage.ID] = true
	}
	for _, img := range inv.GalleryImages {
		if img.ID != "" {
			ids[img.ID] = true
		}
	}
	if inv.Music.Mode == MusicModeCustom && inv.Music.ID != "" {
		ids[inv.Music.ID] = true
	}
	return ids
}

// DecodeInvitation unmarshals raw JSON over a fresh default document, so
// fields absent from a partial payload are backfilled while present fields
// win, then sanitizes the result. This mirrors the merge-over-defaults the
// backends must apply before persisting.
func DecodeInvitation(data []byte) (*Invitation, error) {
	inv := DefaultInvitation()
	if err := json.Unmarshal(data, inv); err != nil {
		return nil, err
	}
	inv.Sanitize()
	return inv, nil
}
