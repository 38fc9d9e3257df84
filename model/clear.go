package model

import (
	"fmt"

	"github.com/cyface-de/serialization-go/errs"
)

// ClearAfter drops every sample, in every track and every one of its four
// streams, whose timestamp is strictly greater than t. Tracks left empty by
// the trim are removed from the measurement. Mutates m in place.
//
// Fails with errs.ErrTimestampNotFound if t does not fall within
// [minTimestamp, maxTimestamp] of any track's own combined streams — trimming
// a measurement that never reached t is a caller error, not a no-op.
func (m *Measurement) ClearAfter(t int64) error {
	found := false
	for _, tr := range m.Tracks {
		min, max, ok := tr.Bounds()
		if ok && t >= min && t <= max {
			found = true

			break
		}
	}
	if !found {
		return fmt.Errorf("%w: t=%d", errs.ErrTimestampNotFound, t)
	}

	trimmed := m.Tracks[:0]
	for _, tr := range m.Tracks {
		tr.Locations = trimLocations(tr.Locations, t)
		tr.Accelerations = trimPoints(tr.Accelerations, t)
		tr.Rotations = trimPoints(tr.Rotations, t)
		tr.Directions = trimPoints(tr.Directions, t)

		if !tr.Empty() {
			trimmed = append(trimmed, tr)
		}
	}
	m.Tracks = trimmed

	return nil
}

func trimLocations(records []RawRecord, t int64) []RawRecord {
	for i, r := range records {
		if r.Timestamp > t {
			return records[:i]
		}
	}

	return records
}

func trimPoints(points []Point3D, t int64) []Point3D {
	for i, p := range points {
		if p.Timestamp > t {
			return points[:i]
		}
	}

	return points
}
