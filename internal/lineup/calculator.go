// Package lineup provides calculations for determining what should be playing
// on a channel at any given moment, creating the illusion of a continuously
// broadcasting television channel.
//
// All functions are pure: they take the channel configuration and a wall-clock
// instant and return the scheduling decision, with no I/O.
package lineup

import (
	"time"

	"github.com/stwalsh4118/telecast/internal/models"
)

const (
	// permanentOfflineDurationMs is the synthesized duration for a channel
	// whose only program is offline. Near-unbounded (365 days) so offline
	// filler never needs rescheduling mid-stream.
	permanentOfflineDurationMs = 365 * 24 * 60 * 60 * 1000

	// OfflineSkipThresholdMs is the remaining offline time below which the
	// schedule skips straight to the next program. Showing an offline slate
	// for a few seconds is worse than starting the next program early.
	OfflineSkipThresholdMs = 10000

	// minFirstSegmentMs: when a brand-new viewing session would open on a
	// sliver of a program shorter than this, the first lineup also carries
	// the following program so the session does not begin with a stub
	// segment.
	minFirstSegmentMs = 15000
)

// Decision is the outcome of locating a channel's active program at an
// instant: the program, the elapsed offset within it, and its index in the
// channel's program sequence. Synthetic is set when the program was
// synthesized rather than taken from the channel configuration (permanently
// offline channels).
type Decision struct {
	Program      models.Program
	ElapsedMs    int64
	ProgramIndex int
	Synthetic    bool
}

// ComputeCurrent walks the channel's program sequence, treating it as a
// repeating timeline anchored at the channel's start time. The instant modulo
// the channel's total duration locates the active program and the elapsed
// offset within it.
//
// A channel with no programs at all is treated as permanently offline rather
// than an error: a lineup decision is always defined. Programs that sum to a
// zero total duration are a corrupted configuration and return ErrNoProgram.
func ComputeCurrent(channel *models.Channel, at time.Time) (*Decision, error) {
	if len(channel.Programs) == 0 {
		return permanentOfflineDecision(0), nil
	}

	total := channel.TotalDurationMs()
	if total <= 0 {
		return nil, ErrNoProgram
	}

	// Instants before the anchor wrap backwards onto the repeating timeline,
	// so the decision stays deterministic for any clock value.
	position := at.Sub(channel.StartTime).Milliseconds() % total
	if position < 0 {
		position += total
	}

	var accumulated int64
	for i := range channel.Programs {
		p := &channel.Programs[i]
		if position < accumulated+p.DurationMs {
			return &Decision{
				Program:      *p,
				ElapsedMs:    position - accumulated,
				ProgramIndex: i,
			}, nil
		}
		accumulated += p.DurationMs
	}

	// Unreachable when durations are consistent with the modulo above.
	return nil, ErrNoProgram
}

// ResolveCurrent applies the offline scheduling policies on top of
// ComputeCurrent:
//
//   - a channel whose only program is offline is permanently offline; the
//     program is replaced by one with a near-unbounded duration so filler
//     never needs rescheduling
//   - an offline program with less than OfflineSkipThresholdMs remaining is
//     skipped; the next program in sequence starts with elapsed reset to
//     zero, wrapping at the end of the list
func ResolveCurrent(channel *models.Channel, at time.Time) (*Decision, error) {
	dec, err := ComputeCurrent(channel, at)
	if err != nil {
		return nil, err
	}

	if dec.Program.IsOffline && len(channel.Programs) == 1 {
		perm := permanentOfflineDecision(dec.ElapsedMs)
		perm.ProgramIndex = dec.ProgramIndex
		return perm, nil
	}

	if dec.Program.IsOffline && dec.Program.DurationMs-dec.ElapsedMs <= OfflineSkipThresholdMs {
		next := (dec.ProgramIndex + 1) % len(channel.Programs)
		return &Decision{
			Program:      channel.Programs[next],
			ElapsedMs:    0,
			ProgramIndex: next,
		}, nil
	}

	return dec, nil
}

// CreateLineup expands a scheduling decision into the ordered lineup items for
// one segment request. The first item is what plays now; a first segment that
// would end within minFirstSegmentMs also carries the following program so a
// new session never opens on a stub.
func CreateLineup(dec *Decision, channel *models.Channel, isFirst bool) []models.LineupItem {
	if dec.Program.IsOffline {
		remaining := dec.Program.DurationMs - dec.ElapsedMs
		item := models.LineupItem{
			Kind:             models.LineupKindOffline,
			Title:            "Channel Offline",
			StartMs:          0,
			StreamDurationMs: remaining,
			DurationMs:       remaining,
		}
		if !dec.Synthetic {
			prog := dec.Program
			item.Program = &prog
		}
		return []models.LineupItem{item}
	}

	prog := dec.Program
	first := models.LineupItem{
		Kind:             models.LineupKindProgram,
		Program:          &prog,
		Title:            prog.Title,
		StartMs:          dec.ElapsedMs,
		StreamDurationMs: prog.DurationMs - dec.ElapsedMs,
		DurationMs:       prog.DurationMs,
	}
	items := []models.LineupItem{first}

	if isFirst && first.StreamDurationMs < minFirstSegmentMs && len(channel.Programs) > 1 {
		next := channel.Programs[(dec.ProgramIndex+1)%len(channel.Programs)]
		kind := models.LineupKindProgram
		title := next.Title
		if next.IsOffline {
			kind = models.LineupKindOffline
			title = "Channel Offline"
		}
		items = append(items, models.LineupItem{
			Kind:             kind,
			Program:          &next,
			Title:            title,
			StartMs:          0,
			StreamDurationMs: next.DurationMs,
			DurationMs:       next.DurationMs,
		})
	}

	return items
}

func permanentOfflineDecision(elapsedMs int64) *Decision {
	return &Decision{
		Program: models.Program{
			Title:      "Offline",
			DurationMs: permanentOfflineDurationMs,
			IsOffline:  true,
		},
		ElapsedMs:    elapsedMs,
		ProgramIndex: 0,
		Synthetic:    true,
	}
}
