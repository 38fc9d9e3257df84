// Package cyface provides convenient top-level wrappers around the
// envelope, event, location, point3d, track, and bucket packages for the
// most common use cases: encoding a Measurement to wire bytes, decoding wire
// bytes back into a Measurement, and assembling database bucket fragments
// into a Measurement.
//
// # Basic usage
//
// Encoding a measurement recorded as a single, uninterrupted track:
//
//	meta := model.MetaData{Identifier: model.MeasurementIdentifier{DeviceID: "dev-1", MeasurementID: 42}}
//	tracks := []model.Track{{
//	    Locations: []model.RawRecord{{Timestamp: 1000, Latitude: 51.1, Longitude: 13.1}},
//	}}
//	data, err := cyface.Encode(meta, tracks, nil)
//
// Decoding it back, with pause/resume segmentation and modality annotation
// applied automatically:
//
//	measurement, err := cyface.Decode(data)
//	for _, tr := range measurement.Tracks {
//	    for _, loc := range tr.Locations {
//	        fmt.Printf("t=%d lat=%f modality=%s\n", loc.Timestamp, loc.Latitude, loc.Modality)
//	    }
//	}
//
// For advanced usage — opaque pre-serialised sensor batches, multi-batch
// sensor streams, or building the envelope body field by field — use the
// envelope, event, location, and point3d packages directly.
package cyface

import (
	"github.com/cyface-de/serialization-go/bucket"
	"github.com/cyface-de/serialization-go/envelope"
	"github.com/cyface-de/serialization-go/model"
	"github.com/cyface-de/serialization-go/track"
)

// CurrentFormatVersion is the format version Encode writes and the only one
// Decode accepts.
const CurrentFormatVersion = envelope.CurrentVersion

// Encode flattens tracks' four sample sequences, in track order, into the
// envelope's flat streams and frames the result as a complete envelope
// alongside events and meta's capture-device fields.
//
// The envelope itself carries no notion of tracks — segmentation is a
// decode-time reconstruction (track.Build) driven by the lifecycle events in
// events, not a wire concept. Encode's job is only to linearise the
// already-split tracks back into the flat streams the wire format expects.
func Encode(meta model.MetaData, tracks []model.Track, events []model.Event) ([]byte, error) {
	var locations []model.RawRecord
	var accelerations, rotations, directions []model.Point3D

	for _, tr := range tracks {
		locations = append(locations, tr.Locations...)
		accelerations = append(accelerations, tr.Accelerations...)
		rotations = append(rotations, tr.Rotations...)
		directions = append(directions, tr.Directions...)
	}

	body := envelope.Body{
		Events:     events,
		DeviceType: meta.DeviceType,
		OSVersion:  meta.OSVersion,
		AppVersion: meta.AppVersion,
	}
	if len(locations) > 0 {
		body.Locations = []envelope.LocationBatch{{Records: locations}}
	}
	if len(accelerations) > 0 {
		body.Accelerations = []envelope.SensorBatch{{Points: accelerations}}
	}
	if len(rotations) > 0 {
		body.Rotations = []envelope.SensorBatch{{Points: rotations}}
	}
	if len(directions) > 0 {
		body.Directions = []envelope.SensorBatch{{Points: directions}}
	}

	return envelope.Encode(body)
}

// Decode parses a complete envelope and reconstructs its Measurement: the
// flat streams are segmented into Tracks at pause/resume boundaries and
// every location is annotated with its active modality (track.Build).
//
// meta in the result carries only what the envelope itself transports
// (capture-device fields and format version) — the identifier, user id, and
// upload timestamp are not wire fields and must be filled in by the caller
// from its own storage layer.
func Decode(data []byte) (model.Measurement, error) {
	decoded, err := envelope.Decode(data)
	if err != nil {
		return model.Measurement{}, err
	}

	tracks, err := track.Build(decoded.Locations, decoded.Accelerations, decoded.Rotations, decoded.Directions, decoded.Events)
	if err != nil {
		return model.Measurement{}, err
	}

	meta := model.MetaData{
		FormatVersion: decoded.FormatVersion,
		DeviceType:    decoded.DeviceType,
		OSVersion:     decoded.OSVersion,
		AppVersion:    decoded.AppVersion,
	}

	return model.Measurement{Meta: meta, Tracks: tracks}, nil
}

// AssembleBuckets merges database bucket fragments into a single Measurement.
// See bucket.Assemble for the grouping and ordering rules.
func AssembleBuckets(buckets []model.TrackBucket) (model.Measurement, error) {
	return bucket.Assemble(buckets)
}
