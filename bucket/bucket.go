// Package bucket merges time-bucketed track fragments — as stored by the
// upstream database — into a complete Measurement (§4.8).
//
// Buckets arrive in no particular order. Assemble groups them by trackId,
// orders groups ascending by trackId and, within a group, ascending by
// bucket instant, then concatenates each group's four sample sequences into
// one Track. The result is independent of the input order (§8 permutation
// invariance).
package bucket

import (
	"fmt"
	"sort"

	"github.com/cyface-de/serialization-go/errs"
	"github.com/cyface-de/serialization-go/internal/fingerprint"
	"github.com/cyface-de/serialization-go/internal/options"
	"github.com/cyface-de/serialization-go/model"
)

// Assembler merges TrackBucket fragments into a Measurement. The zero value
// is usable directly via Assemble; NewAssembler is only needed to customise
// the MetaData consistency check.
type Assembler struct {
	metaEqual func(a, b model.MetaData) bool
}

// Option configures an Assembler.
type Option = options.Option[*Assembler]

// WithMetaDataEqual overrides how two buckets' MetaData are compared for
// consistency. Use this when upstream storage allows a field like
// UploadTimestamp to legitimately differ between fragments of the same
// track while everything else must match.
//
// Supplying this option disables the default xxhash fast-path pre-check
// (internal/fingerprint), since a custom comparator may consider values
// equal that hash differently.
func WithMetaDataEqual(fn func(a, b model.MetaData) bool) Option {
	return options.NoError[*Assembler](func(a *Assembler) { a.metaEqual = fn })
}

// NewAssembler creates an Assembler with the given options applied.
func NewAssembler(opts ...Option) (*Assembler, error) {
	a := &Assembler{}
	if err := options.Apply(a, opts...); err != nil {
		return nil, err
	}

	return a, nil
}

// Assemble merges buckets into a Measurement using the package-default
// Assembler (exact MetaData equality, xxhash-accelerated). It is a
// convenience for the common case; see Assembler.Assemble for customisation.
func Assemble(buckets []model.TrackBucket) (model.Measurement, error) {
	var a Assembler

	return a.Assemble(buckets)
}

// Assemble merges buckets into a Measurement. buckets must be non-empty and
// must all be considered consistent by the Assembler's MetaData comparator;
// any divergence is reported as errs.ErrInconsistentBuckets.
func (a *Assembler) Assemble(buckets []model.TrackBucket) (model.Measurement, error) {
	if len(buckets) == 0 {
		return model.Measurement{}, fmt.Errorf("%w: no buckets given", errs.ErrInconsistentBuckets)
	}

	meta := buckets[0].Meta
	equal := a.metaEqual

	var metaFP uint64
	if equal == nil {
		metaFP = fingerprint.Of(meta)
	}

	for _, b := range buckets[1:] {
		consistent := false
		if equal != nil {
			consistent = equal(meta, b.Meta)
		} else {
			consistent = fingerprint.Of(b.Meta) == metaFP && b.Meta == meta
		}

		if !consistent {
			return model.Measurement{}, fmt.Errorf("%w: bucket for trackId=%d diverges from trackId=%d",
				errs.ErrInconsistentBuckets, b.TrackID, buckets[0].TrackID)
		}
	}

	groups := make(map[uint64][]model.TrackBucket)
	var trackIDs []uint64
	for _, b := range buckets {
		if _, seen := groups[b.TrackID]; !seen {
			trackIDs = append(trackIDs, b.TrackID)
		}
		groups[b.TrackID] = append(groups[b.TrackID], b)
	}

	sort.Slice(trackIDs, func(i, j int) bool { return trackIDs[i] < trackIDs[j] })

	tracks := make([]model.Track, 0, len(trackIDs))
	for _, id := range trackIDs {
		group := groups[id]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Bucket < group[j].Bucket })

		var merged model.Track
		for _, b := range group {
			merged.Locations = append(merged.Locations, b.Track.Locations...)
			merged.Accelerations = append(merged.Accelerations, b.Track.Accelerations...)
			merged.Rotations = append(merged.Rotations, b.Track.Rotations...)
			merged.Directions = append(merged.Directions, b.Track.Directions...)
		}

		tracks = append(tracks, merged)
	}

	return model.Measurement{Meta: meta, Tracks: tracks}, nil
}
