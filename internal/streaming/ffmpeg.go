// Package streaming provides ffmpeg invocation, per-segment playback, and the
// concatenation pipeline that stitches segments into one continuous transport
// stream per channel.
package streaming

import (
	"fmt"
	"os"
	"strconv"

	"github.com/stwalsh4118/telecast/internal/models"
)

const (
	mpegtsFormat = "mpegts"

	// slateFrameRate keeps synthetic slates cheap to encode
	slateFrameRate = 24
)

// CheckEncoderPath verifies the configured ffmpeg executable exists on disk.
// Checked before any subprocess spawn; absence is fatal to the request.
func CheckEncoderPath(settings *models.FFmpegSettings) error {
	info, err := os.Stat(settings.FFmpegPath)
	if err != nil || info.IsDir() {
		return ErrEncoderNotFound
	}
	return nil
}

// BuildConcatArgs builds the argument list for the outward-facing concat
// process: read the server's own concat manifest over loopback HTTP, copy the
// already-normalized segments, and emit one continuous MPEG-TS on stdout.
func BuildConcatArgs(playlistURL, channelName string) []string {
	return []string{
		"-threads", "1",
		"-fflags", "+genpts+discardcorrupt+igndts",
		"-f", "concat",
		"-safe", "0",
		"-protocol_whitelist", "file,http,tcp,https,tls",
		"-probesize", "32",
		"-i", playlistURL,
		"-map", "0:v",
		"-map", "0:a?",
		"-c", "copy",
		"-muxdelay", "0",
		"-muxpreload", "0",
		"-metadata", "service_provider=telecast",
		"-metadata", fmt.Sprintf("service_name=%s", channelName),
		"-f", mpegtsFormat,
		"pipe:1",
	}
}

// BuildSegmentArgs builds the argument list for transcoding one lineup item
// from its resolved source into a bounded MPEG-TS segment on stdout.
// sourceURL is a local file path or an already-resolved remote URL.
func BuildSegmentArgs(item *models.LineupItem, settings *models.FFmpegSettings, sourceURL string) []string {
	args := make([]string, 0, 24)

	if item.StartMs > 0 {
		args = append(args, "-ss", msToSeconds(item.StartMs))
	}
	args = append(args, "-re", "-i", sourceURL)
	if item.StreamDurationMs > 0 {
		args = append(args, "-t", msToSeconds(item.StreamDurationMs))
	}

	if settings.EnableTranscoding {
		args = append(args, normalizationArgs(settings)...)
	} else {
		args = append(args, "-c", "copy")
	}

	args = append(args,
		"-muxdelay", "0",
		"-muxpreload", "0",
		"-f", mpegtsFormat,
		"pipe:1",
	)
	return args
}

// BuildSlateArgs builds the argument list for a synthetic slate segment: a
// solid background with rendered text and silent audio, used for offline
// filler, loading placeholders, and the setup screen.
func BuildSlateArgs(settings *models.FFmpegSettings, title, subtitle string, durationMs int64) []string {
	resolution := settings.TargetResolution
	if resolution == "" {
		resolution = "1920x1080"
	}

	drawText := fmt.Sprintf(
		"drawtext=text='%s':fontcolor=white:fontsize=48:x=(w-text_w)/2:y=(h-text_h)/2-40,"+
			"drawtext=text='%s':fontcolor=white:fontsize=24:x=(w-text_w)/2:y=(h-text_h)/2+40",
		escapeDrawText(title), escapeDrawText(subtitle))

	args := []string{
		"-re",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=black:s=%s:r=%d", resolution, slateFrameRate),
		"-f", "lavfi",
		"-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
	}
	if durationMs > 0 {
		args = append(args, "-t", msToSeconds(durationMs))
	}
	args = append(args,
		"-vf", drawText,
		"-c:v", videoCodecOrDefault(settings),
		"-c:a", audioCodecOrDefault(settings),
		"-f", mpegtsFormat,
		"pipe:1",
	)
	return args
}

// normalizationArgs translates the normalization flags into encoder arguments
// so every segment a concat manifest references is homogeneous.
func normalizationArgs(settings *models.FFmpegSettings) []string {
	args := make([]string, 0, 10)

	if settings.NormalizeVideoCodec {
		args = append(args, "-c:v", videoCodecOrDefault(settings))
	} else {
		args = append(args, "-c:v", "copy")
	}
	if settings.NormalizeResolution {
		resolution := settings.TargetResolution
		if resolution == "" {
			resolution = "1920x1080"
		}
		args = append(args, "-s", resolution)
	}
	if settings.NormalizeAudioCodec {
		args = append(args, "-c:a", audioCodecOrDefault(settings))
	} else {
		args = append(args, "-c:a", "copy")
	}
	if settings.NormalizeAudio {
		channels := settings.AudioChannels
		if channels <= 0 {
			channels = 2
		}
		args = append(args, "-ac", strconv.Itoa(channels), "-ar", "48000")
	}

	return args
}

func videoCodecOrDefault(settings *models.FFmpegSettings) string {
	if settings.VideoCodec != "" {
		return settings.VideoCodec
	}
	return "libx264"
}

func audioCodecOrDefault(settings *models.FFmpegSettings) string {
	if settings.AudioCodec != "" {
		return settings.AudioCodec
	}
	return "aac"
}

// msToSeconds renders a millisecond count as fractional seconds for ffmpeg
func msToSeconds(ms int64) string {
	return strconv.FormatFloat(float64(ms)/1000.0, 'f', 3, 64)
}

// escapeDrawText escapes characters that break ffmpeg drawtext filter values
func escapeDrawText(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '\'', ':', '\\', '%':
			out = append(out, '\\', r)
		default:
			out = append(out, r)
		}
	}
	return string(out)
}
