package types

// PresetTrack is one entry of the fixed background-music catalog. Preset
// tracks are served from the public media directory and are never subject
// to asset garbage collection.
type PresetTrack struct {
	ID      string
	Name    string
	Src     string
	Credit  string
	Default bool
}

// DefaultTrack is the track selected on a fresh document.
var DefaultTrack = PresetTrack{
	ID:      "default",
	Name:    "浪漫花海（默认循环）",
	Src:     "/media/background.wav",
	Credit:  "LinkWed 内置音频循环",
	Default: true,
}

// PresetTracks is the catalog offered by the editor, default first.
var PresetTracks = []PresetTrack{
	DefaultTrack,
	{
		ID:     "romantic",
		Name:   "Bensound · Romantic（婚礼钢琴）",
		Src:    "/media/bensound-romantic.mp3",
		Credit: "来源：Bensound.com，需署名使用",
	},
	{
		ID:     "tenderness",
		Name:   "Bensound · Tenderness（温柔钢琴）",
		Src:    "/media/bensound-tenderness.mp3",
		Credit: "来源：Bensound.com，需署名使用",
	},
	{
		ID:     "love",
		Name:   "Bensound · Love（暖心旋律）",
		Src:    "/media/bensound-love.mp3",
		Credit: "来源：Bensound.com，需署名使用",
	},
}

// LookupPresetTrack returns the catalog entry for id.
func LookupPresetTrack(id string) (PresetTrack, bool) {
	for _, track := range PresetTracks {
		if track.ID == id {
			return track, true
		}
	}
	return PresetTrack{}, false
}
