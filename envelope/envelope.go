// Package envelope frames a measurement's wire representation: a 2-byte
// big-endian format-version header followed by a length-delimited message
// body carrying events, locations, the three sensor streams, and
// capture-device metadata (§4.6).
//
// Field encoding within the body is delegated to protowire rather than
// generated Protobuf code — the schema is small, stable, and entirely owned
// by this module, so hand-rolled field encoding avoids a codegen step for
// what amounts to a handful of fixed fields.
package envelope

import (
	"encoding/binary"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/cyface-de/serialization-go/compress"
	"github.com/cyface-de/serialization-go/errs"
	"github.com/cyface-de/serialization-go/event"
	"github.com/cyface-de/serialization-go/internal/options"
	"github.com/cyface-de/serialization-go/internal/pool"
	"github.com/cyface-de/serialization-go/location"
	"github.com/cyface-de/serialization-go/model"
	"github.com/cyface-de/serialization-go/point3d"
)

// Sink receives non-fatal diagnostics observed while decoding — currently
// just unrecognised body fields, which are skipped rather than rejected so
// that a future field addition stays backward compatible. There is no
// global/default sink: a decode that isn't given one stays silent, per §9's
// replacement of global loggers with an injected sink.
type Sink func(msg string)

type decodeConfig struct {
	sink Sink
}

// Option configures a Decode call via DecodeWithOptions.
type Option = options.Option[*decodeConfig]

// WithSink installs a diagnostic sink for DecodeWithOptions.
func WithSink(sink Sink) Option {
	return options.NoError[*decodeConfig](func(c *decodeConfig) { c.sink = sink })
}

// CurrentVersion is the format version this package writes and the only one
// it accepts on decode.
const CurrentVersion uint16 = 3

const headerSize = 2

// Field numbers for the envelope body message.
const (
	fieldFormatVersion = 1
	fieldEvents        = 2
	fieldLocations     = 3
	fieldAccelerations = 4
	fieldRotations     = 5
	fieldDirections    = 6
	fieldDeviceType    = 7
	fieldOSVersion     = 8
	fieldAppVersion    = 9
)

// LocationBatch is one column-oriented batch of location records to embed in
// an envelope. When Opaque is non-nil it is embedded verbatim — already
// serialised bytes a producer holds from a prior encoding pass — and Records
// is ignored; this is the "accept opaque bytes directly" path required by
// §4.6 for mobile producers that append incrementally.
type LocationBatch struct {
	Records []model.RawRecord
	Opaque  []byte
}

// SensorBatch is one column-oriented batch of 3-axis sensor samples. Opaque
// behaves exactly as it does for LocationBatch.
type SensorBatch struct {
	Points []model.Point3D
	Opaque []byte
}

// Body is the set of logical fields an envelope carries, prior to framing.
type Body struct {
	Events        []model.Event
	Locations     []LocationBatch
	Accelerations []SensorBatch
	Rotations     []SensorBatch
	Directions    []SensorBatch
	DeviceType    string
	OSVersion     string
	AppVersion    string
}

// Decoded is the materialised result of parsing an envelope: every batch
// decoded and concatenated in arrival order.
type Decoded struct {
	FormatVersion uint16
	Events        []model.Event
	Locations     []model.RawRecord
	Accelerations []model.Point3D
	Rotations     []model.Point3D
	Directions    []model.Point3D
	DeviceType    string
	OSVersion     string
	AppVersion    string
}

// Encode frames body as a complete envelope: header plus body message.
//
// The body is assembled in a pooled buffer (internal/pool) rather than a
// fresh allocation per call — encode is expected to run once per
// measurement upload, and the buffer is sized for a typical measurement's
// worth of columns.
func Encode(body Body) ([]byte, error) {
	buf := pool.GetEnvelopeBuffer()
	defer pool.PutEnvelopeBuffer(buf)

	msg := buf.Bytes()

	msg = protowire.AppendTag(msg, fieldFormatVersion, protowire.VarintType)
	msg = protowire.AppendVarint(msg, uint64(CurrentVersion))

	var err error
	msg, err = event.EncodeAll(msg, fieldEvents, body.Events)
	if err != nil {
		return nil, err
	}

	for _, b := range body.Locations {
		payload := b.Opaque
		if payload == nil {
			payload = location.EncodeBatch(nil, b.Records)
		}
		msg = protowire.AppendTag(msg, fieldLocations, protowire.BytesType)
		msg = protowire.AppendBytes(msg, payload)
	}

	msg = appendSensorBatches(msg, fieldAccelerations, point3d.KindAcceleration, body.Accelerations)
	msg = appendSensorBatches(msg, fieldRotations, point3d.KindRotation, body.Rotations)
	msg = appendSensorBatches(msg, fieldDirections, point3d.KindDirection, body.Directions)

	if body.DeviceType != "" {
		msg = protowire.AppendTag(msg, fieldDeviceType, protowire.BytesType)
		msg = protowire.AppendString(msg, body.DeviceType)
	}
	if body.OSVersion != "" {
		msg = protowire.AppendTag(msg, fieldOSVersion, protowire.BytesType)
		msg = protowire.AppendString(msg, body.OSVersion)
	}
	if body.AppVersion != "" {
		msg = protowire.AppendTag(msg, fieldAppVersion, protowire.BytesType)
		msg = protowire.AppendString(msg, body.AppVersion)
	}

	buf.B = msg

	out := make([]byte, headerSize, headerSize+len(msg))
	binary.BigEndian.PutUint16(out, CurrentVersion)
	out = append(out, msg...)

	return out, nil
}

func appendSensorBatches(dst []byte, fieldNum protowire.Number, kind point3d.Kind, batches []SensorBatch) []byte {
	for _, b := range batches {
		payload := b.Opaque
		if payload == nil {
			payload = point3d.EncodeBatch(nil, kind, b.Points)
		}
		dst = protowire.AppendTag(dst, fieldNum, protowire.BytesType)
		dst = protowire.AppendBytes(dst, payload)
	}

	return dst
}

// EncodeOpaqueLocationBatch serialises records the same way EncodeBatch does,
// then compresses the result with codec. The returned bytes are suitable for
// LocationBatch.Opaque, and for storing a bucket fragment's location column
// at rest more compactly than the wire format alone (§4.6, §4.8).
func EncodeOpaqueLocationBatch(codec compress.Codec, records []model.RawRecord) ([]byte, error) {
	raw := location.EncodeBatch(nil, records)

	return codec.Compress(raw)
}

// DecodeOpaqueLocationBatch reverses EncodeOpaqueLocationBatch.
func DecodeOpaqueLocationBatch(codec compress.Codec, data []byte) ([]model.RawRecord, error) {
	raw, err := codec.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("opaque location batch: %w", err)
	}

	return location.DecodeBatch(raw)
}

// EncodeOpaqueSensorBatch is EncodeOpaqueLocationBatch for a 3-axis sensor
// stream batch.
func EncodeOpaqueSensorBatch(codec compress.Codec, kind point3d.Kind, points []model.Point3D) ([]byte, error) {
	raw := point3d.EncodeBatch(nil, kind, points)

	return codec.Compress(raw)
}

// DecodeOpaqueSensorBatch reverses EncodeOpaqueSensorBatch.
func DecodeOpaqueSensorBatch(codec compress.Codec, kind point3d.Kind, data []byte) ([]model.Point3D, error) {
	raw, err := codec.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("opaque sensor batch: %w", err)
	}

	return point3d.DecodeBatch(kind, raw)
}

// Decode parses a complete envelope and materialises every batch it
// contains. It is equivalent to DecodeWithOptions with no options, i.e. a
// decode that reports no diagnostics.
//
// It rejects any format version other than CurrentVersion with
// errs.ErrUnsupportedFormatVersion before attempting to parse the body.
func Decode(data []byte) (Decoded, error) {
	return DecodeWithOptions(data)
}

// DecodeWithOptions parses a complete envelope like Decode, additionally
// reporting unrecognised body fields to a Sink installed via WithSink.
func DecodeWithOptions(data []byte, opts ...Option) (Decoded, error) {
	cfg := &decodeConfig{}
	if err := options.Apply(cfg, opts...); err != nil {
		return Decoded{}, err
	}

	if len(data) < headerSize {
		return Decoded{}, fmt.Errorf("%w: envelope shorter than header", errs.ErrMalformedStream)
	}

	version := binary.BigEndian.Uint16(data[:headerSize])
	if version != CurrentVersion {
		return Decoded{}, fmt.Errorf("%w: %d", errs.ErrUnsupportedFormatVersion, version)
	}

	body := data[headerSize:]

	var (
		eventBodies        [][]byte
		locationBodies     [][]byte
		accelerationBodies [][]byte
		rotationBodies     [][]byte
		directionBodies    [][]byte
		deviceType, osVer  string
		appVer             string
	)

	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return Decoded{}, fmt.Errorf("%w: malformed envelope body tag", errs.ErrMalformedStream)
		}
		body = body[n:]

		switch num {
		case fieldFormatVersion:
			_, n := protowire.ConsumeVarint(body)
			if n < 0 {
				return Decoded{}, fmt.Errorf("%w: malformed format version field", errs.ErrMalformedStream)
			}
			body = body[n:]
		case fieldEvents:
			b, n := protowire.ConsumeBytes(body)
			if n < 0 {
				return Decoded{}, fmt.Errorf("%w: malformed event field", errs.ErrMalformedStream)
			}
			body = body[n:]
			eventBodies = append(eventBodies, b)
		case fieldLocations:
			b, n := protowire.ConsumeBytes(body)
			if n < 0 {
				return Decoded{}, fmt.Errorf("%w: malformed location field", errs.ErrMalformedStream)
			}
			body = body[n:]
			locationBodies = append(locationBodies, b)
		case fieldAccelerations:
			b, n := protowire.ConsumeBytes(body)
			if n < 0 {
				return Decoded{}, fmt.Errorf("%w: malformed acceleration field", errs.ErrMalformedStream)
			}
			body = body[n:]
			accelerationBodies = append(accelerationBodies, b)
		case fieldRotations:
			b, n := protowire.ConsumeBytes(body)
			if n < 0 {
				return Decoded{}, fmt.Errorf("%w: malformed rotation field", errs.ErrMalformedStream)
			}
			body = body[n:]
			rotationBodies = append(rotationBodies, b)
		case fieldDirections:
			b, n := protowire.ConsumeBytes(body)
			if n < 0 {
				return Decoded{}, fmt.Errorf("%w: malformed direction field", errs.ErrMalformedStream)
			}
			body = body[n:]
			directionBodies = append(directionBodies, b)
		case fieldDeviceType:
			b, n := protowire.ConsumeBytes(body)
			if n < 0 {
				return Decoded{}, fmt.Errorf("%w: malformed device type field", errs.ErrMalformedStream)
			}
			body = body[n:]
			deviceType = string(b)
		case fieldOSVersion:
			b, n := protowire.ConsumeBytes(body)
			if n < 0 {
				return Decoded{}, fmt.Errorf("%w: malformed os version field", errs.ErrMalformedStream)
			}
			body = body[n:]
			osVer = string(b)
		case fieldAppVersion:
			b, n := protowire.ConsumeBytes(body)
			if n < 0 {
				return Decoded{}, fmt.Errorf("%w: malformed app version field", errs.ErrMalformedStream)
			}
			body = body[n:]
			appVer = string(b)
		default:
			n := protowire.ConsumeFieldValue(num, typ, body)
			if n < 0 {
				return Decoded{}, fmt.Errorf("%w: malformed envelope body field", errs.ErrMalformedStream)
			}
			if cfg.sink != nil {
				cfg.sink(fmt.Sprintf("envelope: skipping unrecognised field %d (wire type %d)", num, typ))
			}
			body = body[n:]
		}
	}

	events, err := event.DecodeAll(eventBodies)
	if err != nil {
		return Decoded{}, err
	}

	var locations []model.RawRecord
	for _, b := range locationBodies {
		records, err := location.DecodeBatch(b)
		if err != nil {
			return Decoded{}, err
		}
		locations = append(locations, records...)
	}

	accelerations, err := point3d.DecodeBatches(point3d.KindAcceleration, accelerationBodies)
	if err != nil {
		return Decoded{}, err
	}
	rotations, err := point3d.DecodeBatches(point3d.KindRotation, rotationBodies)
	if err != nil {
		return Decoded{}, err
	}
	directions, err := point3d.DecodeBatches(point3d.KindDirection, directionBodies)
	if err != nil {
		return Decoded{}, err
	}

	return Decoded{
		FormatVersion: version,
		Events:        events,
		Locations:     locations,
		Accelerations: accelerations,
		Rotations:     rotations,
		Directions:    directions,
		DeviceType:    deviceType,
		OSVersion:     osVer,
		AppVersion:    appVer,
	}, nil
}
