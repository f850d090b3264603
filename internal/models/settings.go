package models

import (
	"time"
)

// FFmpegSettings represents the encoder configuration. It is a singleton
// table with only one row, read on every streaming request and mutated only
// through the admin API.
type FFmpegSettings struct {
	ID                  int       `json:"id" gorm:"type:integer;primaryKey;default:1;column:id"`
	FFmpegPath          string    `json:"ffmpeg_path" gorm:"type:text;not null;column:ffmpeg_path" validate:"required"`
	// No column defaults on the flag fields: a default tag makes gorm omit
	// zero values on write, so a disabled flag would never persist. The
	// defaults live in DefaultFFmpegSettings.
	EnableTranscoding   bool      `json:"enable_transcoding" gorm:"type:integer;not null;column:enable_transcoding"`
	NormalizeVideoCodec bool      `json:"normalize_video_codec" gorm:"type:integer;not null;column:normalize_video_codec"`
	NormalizeAudioCodec bool      `json:"normalize_audio_codec" gorm:"type:integer;not null;column:normalize_audio_codec"`
	NormalizeResolution bool      `json:"normalize_resolution" gorm:"type:integer;not null;column:normalize_resolution"`
	NormalizeAudio      bool      `json:"normalize_audio" gorm:"type:integer;not null;column:normalize_audio"`
	VideoCodec          string    `json:"video_codec" gorm:"type:text;default:libx264;column:video_codec"`
	AudioCodec          string    `json:"audio_codec" gorm:"type:text;default:aac;column:audio_codec"`
	TargetResolution    string    `json:"target_resolution" gorm:"type:text;default:1920x1080;column:target_resolution"`
	AudioChannels       int       `json:"audio_channels" gorm:"type:integer;default:2;column:audio_channels"`
	UpdatedAt           time.Time `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// DefaultFFmpegSettings returns encoder settings with default values
func DefaultFFmpegSettings() *FFmpegSettings {
	return &FFmpegSettings{
		ID:                  1,
		FFmpegPath:          "/usr/bin/ffmpeg",
		EnableTranscoding:   true,
		NormalizeVideoCodec: true,
		NormalizeAudioCodec: true,
		NormalizeResolution: true,
		NormalizeAudio:      true,
		VideoCodec:          "libx264",
		AudioCodec:          "aac",
		TargetResolution:    "1920x1080",
		AudioChannels:       2,
		UpdatedAt:           time.Now().UTC(),
	}
}

// FullyNormalized reports whether every normalization flag is enabled. Only a
// fully normalized stream can safely include the loading placeholder in a
// concat manifest, since an unnormalized placeholder cannot be concatenated
// with heterogeneous real segments.
func (s *FFmpegSettings) FullyNormalized() bool {
	return s.EnableTranscoding &&
		s.NormalizeVideoCodec &&
		s.NormalizeAudioCodec &&
		s.NormalizeResolution &&
		s.NormalizeAudio
}
