package timeline

import (
	"strings"
	"time"
)

// TrackType identifies the kind of content a track carries
type TrackType string

const (
	TrackVideo   TrackType = "video"
	TrackAudio   TrackType = "audio"
	TrackText    TrackType = "text"
	TrackSticker TrackType = "sticker"
	TrackEffect  TrackType = "effect"
	TrackFilter  TrackType = "filter"
)

// MaterialKind identifies the kind of media a material references
type MaterialKind string

const (
	MaterialVideo MaterialKind = "video"
	MaterialImage MaterialKind = "image"
	MaterialAudio MaterialKind = "audio"
)

// TimeRange is an interval in integer microseconds on the global timeline
type TimeRange struct {
	Start    int64 `yaml:"start" json:"start"`
	Duration int64 `yaml:"duration" json:"duration"`
}

func (r TimeRange) StartSeconds() float64 {
	return float64(r.Start) / 1e6
}

func (r TimeRange) EndSeconds() float64 {
	return float64(r.Start+r.Duration) / 1e6
}

func (r TimeRange) DurationSeconds() float64 {
	return float64(r.Duration) / 1e6
}

// ClipSettings carries the normalized transform of a segment. Positions are
// in [-1, 1] with the origin at canvas center.
type ClipSettings struct {
	ScaleX    float64 `yaml:"scale_x" json:"scale_x"`
	ScaleY    float64 `yaml:"scale_y" json:"scale_y"`
	Rotation  float64 `yaml:"rotation" json:"rotation"` // degrees
	Opacity   float64 `yaml:"opacity" json:"opacity"`
	PositionX float64 `yaml:"position_x" json:"position_x"`
	PositionY float64 `yaml:"position_y" json:"position_y"`
	Volume    float64 `yaml:"volume" json:"volume"`
}

// DefaultClipSettings returns the identity transform
func DefaultClipSettings() ClipSettings {
	return ClipSettings{ScaleX: 1, ScaleY: 1, Opacity: 1, Volume: 1}
}

// Recognized transition kinds; anything else degrades to a hard cut.
const (
	TransitionPullIn  = "pull_in"
	TransitionPullOut = "pull_out"
)

// Transition is the closed transition descriptor, fully resolved at
// ingestion so the render core never probes loose metadata.
type Transition struct {
	Kind     string        `yaml:"kind" json:"kind"`
	Duration time.Duration `yaml:"duration" json:"duration"`
}

// NormalizeTransitionKind lowercases and underscores a raw transition name
func NormalizeTransitionKind(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// Material references a piece of source media
type Material struct {
	ID       string       `yaml:"id" json:"id"`
	Ref      string       `yaml:"ref" json:"ref"` // local path or remote URL
	Kind     MaterialKind `yaml:"kind" json:"kind"`
	Duration int64        `yaml:"duration" json:"duration"` // µs, natural length
	Width    int          `yaml:"width" json:"width"`
	Height   int          `yaml:"height" json:"height"`
}

// TextStyle carries the editor-side styling of a text segment
type TextStyle struct {
	Size  float64 `yaml:"size" json:"size"` // editor units, see MapTextSize
	Color string  `yaml:"color" json:"color"`
	Font  string  `yaml:"font" json:"font"`
}

// Segment is a placed timeline interval of a material
type Segment struct {
	MaterialID string     `yaml:"material_id" json:"material_id"`
	Material   *Material  `yaml:"material" json:"material"` // embedded reference, wins over ID lookup
	Target     *TimeRange `yaml:"target_timerange" json:"target_timerange"`
	Source     *TimeRange `yaml:"source_timerange" json:"source_timerange"`
	Speed      float64      `yaml:"speed" json:"speed"`
	Clip       ClipSettings `yaml:"clip_settings" json:"clip_settings"`
	Transition *Transition  `yaml:"transition" json:"transition"`

	Text  string     `yaml:"text" json:"text"`
	Style *TextStyle `yaml:"style" json:"style"`
}

// SpeedFactor returns the playback rate, guarding zero and negatives
func (s *Segment) SpeedFactor() float64 {
	if s.Speed <= 0 {
		return 1.0
	}
	return s.Speed
}

// SourceBounds resolves the material subrange in seconds, defaulting to
// [0, fallback) when no source range is present.
func (s *Segment) SourceBounds(fallback float64) (float64, float64) {
	if s.Source != nil {
		return s.Source.StartSeconds(), s.Source.EndSeconds()
	}
	return 0, fallback
}

// Track is an ordered lane of segments sharing a z-order rank
type Track struct {
	Name        string     `yaml:"name" json:"name"`
	Type        TrackType  `yaml:"type" json:"type"`
	RenderIndex int        `yaml:"render_index" json:"render_index"`
	Segments    []*Segment `yaml:"segments" json:"segments"`
}

// MaterialPool holds the per-kind material collections of a timeline
type MaterialPool struct {
	Videos []*Material `yaml:"videos" json:"videos"`
	Audios []*Material `yaml:"audios" json:"audios"`
	Texts  []*Material `yaml:"texts" json:"texts"`
}

// Timeline is a read-only snapshot of a resolved editing timeline. The core
// never mutates or persists it; the draft-store collaborator owns it.
type Timeline struct {
	Width     int          `yaml:"width" json:"width"`
	Height    int          `yaml:"height" json:"height"`
	FPS       float64      `yaml:"fps" json:"fps"`
	Duration  int64        `yaml:"duration" json:"duration"` // µs
	Tracks    []*Track     `yaml:"tracks" json:"tracks"`
	Materials MaterialPool `yaml:"materials" json:"materials"`
}

// DurationSeconds returns the total timeline length in seconds
func (t *Timeline) DurationSeconds() float64 {
	return float64(t.Duration) / 1e6
}

// FindMaterial looks a material up by id in the pool matching the track type
func (t *Timeline) FindMaterial(id string, tt TrackType) *Material {
	var pool []*Material
	switch tt {
	case TrackAudio:
		pool = t.Materials.Audios
	case TrackText:
		pool = t.Materials.Texts
	default:
		pool = t.Materials.Videos
	}
	for _, m := range pool {
		if m.ID == id {
			return m
		}
	}
	return nil
}
