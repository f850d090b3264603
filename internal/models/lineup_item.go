package models

// Lineup item kind constants
const (
	// LineupKindProgram is a real media program
	LineupKindProgram = "program"
	// LineupKindOffline is the offline filler slate
	LineupKindOffline = "offline"
	// LineupKindLoading is the synthetic placeholder served while real
	// content resolution proceeds
	LineupKindLoading = "loading"
)

// LineupItem is the materialized scheduling decision for one stream segment.
// It is created fresh per segment request, immutable once produced, and never
// persisted.
type LineupItem struct {
	// Kind is one of LineupKindProgram, LineupKindOffline, LineupKindLoading
	Kind string `json:"kind"`

	// Program is the underlying program reference; nil for synthetic items
	// (loading placeholders and the permanently-offline fallback)
	Program *Program `json:"program,omitempty"`

	// Title is the display title used for logging and stream metadata
	Title string `json:"title"`

	// StartMs is the offset into the program at which playback begins
	StartMs int64 `json:"start_ms"`

	// StreamDurationMs is how long this segment should run; may be truncated
	// by request boundaries relative to the full item duration
	StreamDurationMs int64 `json:"stream_duration_ms"`

	// DurationMs is the full duration of the underlying item
	DurationMs int64 `json:"duration_ms"`
}

// NewLoadingItem returns the fixed one second placeholder item served for
// first=0 requests without consulting the scheduler or cache.
func NewLoadingItem() LineupItem {
	return LineupItem{
		Kind:             LineupKindLoading,
		Title:            "Loading",
		StartMs:          0,
		StreamDurationMs: 1000,
		DurationMs:       1000,
	}
}
