// Package track reconstructs timeline-consistent Tracks from four
// independently paced sample streams (locations, acceleration, rotation,
// direction) and a sequence of lifecycle/modality events.
//
// Segmentation happens at LIFECYCLE_PAUSE/LIFECYCLE_RESUME boundaries;
// samples strictly between a pause and the following resume are discarded.
// Every location is annotated with the modality active at its timestamp,
// defaulting to the UNKNOWN sentinel. All four streams and the event
// sequence are assumed pre-sorted by timestamp — Build does not sort them.
//
// Every iterator advances in a single forward pass — there is no backward
// repositioning. Skipping the gap between a pause and its resume is a
// `while next.timestamp < resumeAt { advance }` loop, never a cursor dance.
package track

import (
	"fmt"

	"github.com/cyface-de/serialization-go/errs"
	"github.com/cyface-de/serialization-go/internal/options"
	"github.com/cyface-de/serialization-go/model"
)

// Sink receives diagnostics observed while segmenting — currently just
// pause/resume boundaries, and a trailing segment after the last resume,
// that produced an empty (dropped) sub-track, which is valid input but may
// be worth surfacing to an operator auditing unexpectedly short recordings.
type Sink func(msg string)

// Builder segments sample streams into Tracks. The zero value is usable
// directly via Build; NewBuilder is only needed to install a Sink.
type Builder struct {
	sink Sink
}

// Option configures a Builder.
type Option = options.Option[*Builder]

// WithSink installs a diagnostic sink on a Builder.
func WithSink(sink Sink) Option {
	return options.NoError[*Builder](func(b *Builder) { b.sink = sink })
}

// NewBuilder creates a Builder with the given options applied.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{}
	if err := options.Apply(b, opts...); err != nil {
		return nil, err
	}

	return b, nil
}

// Build segments the given sample streams into Tracks at pause/resume
// boundaries and annotates every location with its active modality, using
// the package-default Builder (no diagnostics). It is a convenience for the
// common case; see Builder.Build for a Sink-configured builder.
func Build(
	locations []model.RawRecord,
	accelerations, rotations, directions []model.Point3D,
	events []model.Event,
) ([]model.Track, error) {
	var b Builder

	return b.Build(locations, accelerations, rotations, directions, events)
}

// Build segments the given sample streams into Tracks at pause/resume
// boundaries and annotates every location with its active modality.
//
// All failures are fatal to the whole reconstruction (§4.7.4): on error, the
// returned slice is always nil — callers never receive a partial result.
func (b *Builder) Build(
	locations []model.RawRecord,
	accelerations, rotations, directions []model.Point3D,
	events []model.Event,
) ([]model.Track, error) {
	modality, err := newModalityWalker(events)
	if err != nil {
		return nil, err
	}

	locs := make([]model.RawRecord, len(locations))
	copy(locs, locations)

	var (
		locIdx, accIdx, rotIdx, dirIdx int
		tracks                         []model.Track
		pauseOpen                      bool
		pauseAt                        int64
	)

	locTS := func(r model.RawRecord) int64 { return r.Timestamp }
	pointTS := func(p model.Point3D) int64 { return p.Timestamp }

	for _, e := range events {
		switch e.Type {
		case model.EventLifecyclePause:
			pauseOpen = true
			pauseAt = e.Timestamp

		case model.EventLifecycleResume:
			if !pauseOpen {
				return nil, fmt.Errorf("%w: resume without prior pause at t=%d", errs.ErrInvalidLifecycleEvents, e.Timestamp)
			}

			sub := model.Track{
				Locations:     takeLocationsThrough(locs, &locIdx, pauseAt, modality),
				Accelerations: takeThrough(accelerations, &accIdx, pauseAt, pointTS),
				Rotations:     takeThrough(rotations, &rotIdx, pauseAt, pointTS),
				Directions:    takeThrough(directions, &dirIdx, pauseAt, pointTS),
			}
			if len(sub.Locations) > 0 {
				tracks = append(tracks, sub)
			} else if b.sink != nil {
				b.sink(fmt.Sprintf("track: dropping empty sub-track at pause=%d resume=%d", pauseAt, e.Timestamp))
			}

			skipBefore(locs, &locIdx, e.Timestamp, locTS)
			skipBefore(accelerations, &accIdx, e.Timestamp, pointTS)
			skipBefore(rotations, &rotIdx, e.Timestamp, pointTS)
			skipBefore(directions, &dirIdx, e.Timestamp, pointTS)

			pauseOpen = false
		}
	}

	tail := model.Track{
		Locations:     takeRemainingLocations(locs, &locIdx, modality),
		Accelerations: takeRemaining(accelerations, &accIdx),
		Rotations:     takeRemaining(rotations, &rotIdx),
		Directions:    takeRemaining(directions, &dirIdx),
	}
	if len(tail.Locations) > 0 {
		tracks = append(tracks, tail)
	} else if b.sink != nil && len(locations) > 0 {
		b.sink("track: dropping empty trailing sub-track")
	}

	return tracks, nil
}

// takeThrough consumes every element with timestamp <= boundary from idx
// onward, advancing idx past them.
func takeThrough[T any](items []T, idx *int, boundary int64, ts func(T) int64) []T {
	start := *idx
	for *idx < len(items) && ts(items[*idx]) <= boundary {
		*idx++
	}

	return items[start:*idx]
}

// takeRemaining consumes every element from idx to the end of items.
func takeRemaining[T any](items []T, idx *int) []T {
	start := *idx
	*idx = len(items)

	return items[start:]
}

// skipBefore advances idx past every element with timestamp strictly less
// than boundary, leaving idx positioned at the first element with
// timestamp >= boundary (or at len(items) if none remains). This is the
// single forward-pass repositioning contract of §4.7.2.
func skipBefore[T any](items []T, idx *int, boundary int64, ts func(T) int64) {
	for *idx < len(items) && ts(items[*idx]) < boundary {
		*idx++
	}
}

func takeLocationsThrough(locs []model.RawRecord, idx *int, boundary int64, modality *modalityWalker) []model.RawRecord {
	start := *idx
	for *idx < len(locs) && locs[*idx].Timestamp <= boundary {
		locs[*idx].Modality = modality.at(locs[*idx].Timestamp)
		*idx++
	}

	return locs[start:*idx]
}

func takeRemainingLocations(locs []model.RawRecord, idx *int, modality *modalityWalker) []model.RawRecord {
	start := *idx
	for *idx < len(locs) {
		locs[*idx].Modality = modality.at(locs[*idx].Timestamp)
		*idx++
	}

	return locs[start:*idx]
}

// modalityWalker tracks the currently active modality across the whole
// reconstruction, independent of track segmentation, per §4.7.3.
type modalityWalker struct {
	changes []model.Event
	pos     int
	current model.Modality
}

func newModalityWalker(events []model.Event) (*modalityWalker, error) {
	var changes []model.Event
	for _, e := range events {
		if e.Type != model.EventModalityTypeChange {
			continue
		}
		if e.Value == "" {
			return nil, fmt.Errorf("%w: empty modality value at t=%d", errs.ErrInvalidLifecycleEvents, e.Timestamp)
		}
		changes = append(changes, e)
	}

	return &modalityWalker{changes: changes, current: model.ModalityUnknown}, nil
}

// at returns the modality active at ts, applying every change whose
// timestamp is <= ts (ties resolve before the location, per §4.7.3) before
// returning.
func (w *modalityWalker) at(ts int64) model.Modality {
	for w.pos < len(w.changes) && w.changes[w.pos].Timestamp <= ts {
		w.current = model.Modality(w.changes[w.pos].Value)
		w.pos++
	}

	return w.current
}
