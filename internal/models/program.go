package models

import (
	"time"

	"github.com/google/uuid"
)

// Source kind constants for Program.SourceKind
const (
	// SourceFile is a media file or direct stream URL playable as-is
	SourceFile = "file"
	// SourceRemote is a reference into a remote media server that must be
	// resolved to a playable URL before transcoding
	SourceRemote = "remote"
)

// Program is one schedulable unit of a channel's lineup: either a playable
// media reference or an offline filler block with nothing behind it.
type Program struct {
	ID         uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	ChannelID  uuid.UUID `json:"channel_id" gorm:"type:text;not null;index;column:channel_id" validate:"required"`
	Position   int       `json:"position" gorm:"type:integer;not null;column:position" validate:"gte=0"`
	Title      string    `json:"title" gorm:"type:text;not null;column:title"`
	DurationMs int64     `json:"duration_ms" gorm:"type:integer;not null;column:duration_ms" validate:"required,gt=0"`
	IsOffline  bool      `json:"is_offline" gorm:"type:integer;not null;default:0;column:is_offline"`
	SourceKind string    `json:"source_kind" gorm:"type:text;column:source_kind"`
	SourcePath string    `json:"source_path" gorm:"type:text;column:source_path"`
	RatingKey  string    `json:"rating_key,omitempty" gorm:"type:text;column:rating_key"`
	ServerName string    `json:"server_name,omitempty" gorm:"type:text;column:server_name"`
	CreatedAt  time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewProgram creates a playable Program with generated UUID and timestamp
func NewProgram(channelID uuid.UUID, position int, title string, durationMs int64, sourceKind, sourcePath string) *Program {
	return &Program{
		ID:         uuid.New(),
		ChannelID:  channelID,
		Position:   position,
		Title:      title,
		DurationMs: durationMs,
		SourceKind: sourceKind,
		SourcePath: sourcePath,
		CreatedAt:  time.Now().UTC(),
	}
}

// NewOfflineProgram creates an offline filler block of the given duration
func NewOfflineProgram(channelID uuid.UUID, position int, durationMs int64) *Program {
	return &Program{
		ID:         uuid.New(),
		ChannelID:  channelID,
		Position:   position,
		Title:      "Offline",
		DurationMs: durationMs,
		IsOffline:  true,
		CreatedAt:  time.Now().UTC(),
	}
}
