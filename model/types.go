// Package model defines the in-memory data model shared by every codec and
// reconstruction stage: identifiers, metadata, raw samples, lifecycle events,
// and the Track/Measurement values those samples are assembled into.
//
// Values here are plain records, not mutable POJOs: construct them fully
// (literal or builder) and treat them as immutable afterwards. RawRecord's
// back-reference to its MeasurementIdentifier is a value copy, never a shared
// owning handle, so a Measurement is always the sole owner of its Tracks.
package model

// MeasurementIdentifier uniquely identifies a single device-measurement pair.
type MeasurementIdentifier struct {
	DeviceID      string
	MeasurementID uint64
}

// MetaData describes a measurement independently of its sample data.
// Immutable after construction.
type MetaData struct {
	Identifier      MeasurementIdentifier
	DeviceType      string
	OSVersion       string
	AppVersion      string
	LengthMeters    float64
	UserID          string
	FormatVersion   uint16
	UploadTimestamp int64
}

// Modality is the user-selected transportation mode active while a location
// was recorded.
type Modality string

// ModalityUnknown is the sentinel annotation used whenever no
// MODALITY_TYPE_CHANGE event precedes a location.
const ModalityUnknown Modality = "UNKNOWN"

// RawRecord is a single GNSS location sample.
type RawRecord struct {
	Identifier MeasurementIdentifier
	Timestamp  int64 // ms since Unix epoch
	Latitude   float64
	Longitude  float64
	Elevation  *float64
	Accuracy   float64
	Speed      float64
	Modality   Modality
}

// Point3D is a single 3-axis sensor sample (acceleration, rotation, or
// direction — the unit depends on which stream it belongs to).
type Point3D struct {
	Timestamp int64 // ms since Unix epoch
	X, Y, Z   float64
}

// EventType enumerates the lifecycle and annotation events a measurement can
// carry.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventLifecycleStart
	EventLifecyclePause
	EventLifecycleResume
	EventLifecycleStop
	EventModalityTypeChange
)

// String renders the event type for logging and error messages.
func (e EventType) String() string {
	switch e {
	case EventLifecycleStart:
		return "LIFECYCLE_START"
	case EventLifecyclePause:
		return "LIFECYCLE_PAUSE"
	case EventLifecycleResume:
		return "LIFECYCLE_RESUME"
	case EventLifecycleStop:
		return "LIFECYCLE_STOP"
	case EventModalityTypeChange:
		return "MODALITY_TYPE_CHANGE"
	default:
		return "UNKNOWN"
	}
}

// Event is a single typed, timestamped occurrence. Value is populated only
// for event types that carry one (currently MODALITY_TYPE_CHANGE).
type Event struct {
	Type      EventType
	Timestamp int64
	Value     string
}

// Track is a contiguous recording segment bounded by consecutive pause/resume
// events (or the measurement's start/end). Its four sample sequences are each
// ordered by non-decreasing timestamp.
type Track struct {
	Locations     []RawRecord
	Accelerations []Point3D
	Rotations     []Point3D
	Directions    []Point3D
}

// FirstTimestamp returns the earliest timestamp across every sample sequence
// in the track, and false if the track holds no samples at all.
func (t Track) FirstTimestamp() (int64, bool) {
	first, ok := int64(0), false

	consider := func(ts int64) {
		if !ok || ts < first {
			first = ts
			ok = true
		}
	}

	if len(t.Locations) > 0 {
		consider(t.Locations[0].Timestamp)
	}
	if len(t.Accelerations) > 0 {
		consider(t.Accelerations[0].Timestamp)
	}
	if len(t.Rotations) > 0 {
		consider(t.Rotations[0].Timestamp)
	}
	if len(t.Directions) > 0 {
		consider(t.Directions[0].Timestamp)
	}

	return first, ok
}

// Bounds returns the minimum and maximum timestamp across every sample
// sequence in the track, and false if the track holds no samples.
func (t Track) Bounds() (min, max int64, ok bool) {
	scan := func(ts int64) {
		if !ok {
			min, max, ok = ts, ts, true

			return
		}
		if ts < min {
			min = ts
		}
		if ts > max {
			max = ts
		}
	}

	for _, r := range t.Locations {
		scan(r.Timestamp)
	}
	for _, p := range t.Accelerations {
		scan(p.Timestamp)
	}
	for _, p := range t.Rotations {
		scan(p.Timestamp)
	}
	for _, p := range t.Directions {
		scan(p.Timestamp)
	}

	return min, max, ok
}

// Empty reports whether the track carries no samples in any of its four
// sequences.
func (t Track) Empty() bool {
	return len(t.Locations) == 0 && len(t.Accelerations) == 0 &&
		len(t.Rotations) == 0 && len(t.Directions) == 0
}

// Measurement is a fully reconstructed measurement: its metadata plus an
// ordered list of Tracks, which is empty when there are no samples to hold.
// A Measurement exclusively owns its Tracks and their samples.
type Measurement struct {
	Meta   MetaData
	Tracks []Track
}

// TimeRange returns the minimum and maximum timestamp across every track in
// the measurement, and false if the measurement has no tracks with samples.
func (m Measurement) TimeRange() (min, max int64, ok bool) {
	for _, tr := range m.Tracks {
		trMin, trMax, trOk := tr.Bounds()
		if !trOk {
			continue
		}
		if !ok {
			min, max, ok = trMin, trMax, true

			continue
		}
		if trMin < min {
			min = trMin
		}
		if trMax > max {
			max = trMax
		}
	}

	return min, max, ok
}

// TrackBucket is a time-sliced fragment of a track as stored in the upstream
// database. Fragments sharing a trackId are contiguous in time and share
// MetaData.
type TrackBucket struct {
	TrackID uint64
	Bucket  int64 // bucket instant, ms since Unix epoch
	Track   Track
	Meta    MetaData
}
