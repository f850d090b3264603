package streaming

import (
	"fmt"
	"strings"

	"github.com/stwalsh4118/telecast/internal/models"
)

// MaxStreamsInARow caps the number of segment references a manifest may emit.
// The channel is conceptually infinite; the cap exists purely to bound
// manifest size. The concat process re-requests a fresh manifest once it
// exhausts one.
const MaxStreamsInARow = 100

// BuildHLSManifest produces the HLS-style playlist for a channel: a fixed
// header followed by absolute URLs back into the segment endpoint. When
// transcoding is enabled a loading placeholder link (first=0) precedes the
// real first segment so the client gets bytes immediately.
//
// The header lines are fixed; the external players this feeds reject
// variations.
func BuildHLSManifest(baseURL string, channelNumber int, settings *models.FFmpegSettings) string {
	var b strings.Builder

	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	b.WriteString("#EXT-X-MEDIA-SEQUENCE:0\n")
	b.WriteString("#EXT-X-ALLOW-CACHE:YES\n")
	b.WriteString("#EXT-X-TARGETDURATION:60\n")
	b.WriteString("#EXT-X-PLAYLIST-TYPE:VOD\n")

	if settings.EnableTranscoding {
		fmt.Fprintf(&b, "%s/stream?channel=%d&first=0&m3u8=1\n", baseURL, channelNumber)
	}
	fmt.Fprintf(&b, "%s/stream?channel=%d&first=1&m3u8=1\n", baseURL, channelNumber)
	for i := 0; i < MaxStreamsInARow-1; i++ {
		fmt.Fprintf(&b, "%s/stream?channel=%d&m3u8=1\n", baseURL, channelNumber)
	}

	return b.String()
}

// BuildConcatManifest produces the ffmpeg concat-demuxer playlist for a
// channel: loopback URLs into the segment endpoint, consumed by the concat
// process this server spawns against itself.
//
// The loading placeholder is only safe to include when every normalization
// flag is enabled: an unnormalized placeholder cannot be concatenated with
// heterogeneous real segments.
func BuildConcatManifest(localBaseURL string, channelNumber int, settings *models.FFmpegSettings) string {
	var b strings.Builder

	b.WriteString("ffconcat version 1.0\n")

	if settings.FullyNormalized() {
		fmt.Fprintf(&b, "file '%s/stream?channel=%d&first=0'\n", localBaseURL, channelNumber)
	}
	fmt.Fprintf(&b, "file '%s/stream?channel=%d&first=1'\n", localBaseURL, channelNumber)
	for i := 0; i < MaxStreamsInARow-1; i++ {
		fmt.Fprintf(&b, "file '%s/stream?channel=%d'\n", localBaseURL, channelNumber)
	}

	return b.String()
}
