// Package location encodes and decodes GNSS location records as a
// column-oriented batch: parallel arrays for timestamp, latitude, longitude,
// accuracy, and speed, each independently quantised (quantize) then
// delta-encoded (offset) before being packed as a protowire varint field.
//
// A batch's five columns always have equal length — LocationCodec treats any
// divergence as a malformed stream rather than truncating. Elevation and
// modality are not wire fields of a location batch: elevation is carried by
// producers out of band and modality is assigned later by the reconstruction
// layer (track.Builder), never by this codec.
package location

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/cyface-de/serialization-go/errs"
	"github.com/cyface-de/serialization-go/model"
	"github.com/cyface-de/serialization-go/offset"
	"github.com/cyface-de/serialization-go/quantize"
)

// Field numbers for the LocationBatch message.
const (
	fieldTimestamp = 1
	fieldLatitude  = 2
	fieldLongitude = 3
	fieldAccuracy  = 4
	fieldSpeed     = 5
)

// EncodeBatch encodes records as a single column-oriented LocationBatch
// message appended to dst.
func EncodeBatch(dst []byte, records []model.RawRecord) []byte {
	if len(records) == 0 {
		return dst
	}

	timestamps := make([]int64, len(records))
	lats := make([]int64, len(records))
	lons := make([]int64, len(records))
	accs := make([]int64, len(records))
	speeds := make([]int64, len(records))

	for i, r := range records {
		timestamps[i] = r.Timestamp
		lats[i] = quantize.Quantize(r.Latitude, quantize.DecimalPlacesLatLon)
		lons[i] = quantize.Quantize(r.Longitude, quantize.DecimalPlacesLatLon)
		accs[i] = quantize.Quantize(r.Accuracy, quantize.DecimalPlacesAccuracy)
		speeds[i] = quantize.Quantize(r.Speed, quantize.DecimalPlacesSpeed)
	}

	dst = appendColumn(dst, fieldTimestamp, offset.Encode(timestamps))
	dst = appendColumn(dst, fieldLatitude, offset.Encode(lats))
	dst = appendColumn(dst, fieldLongitude, offset.Encode(lons))
	dst = appendColumn(dst, fieldAccuracy, offset.Encode(accs))
	dst = appendColumn(dst, fieldSpeed, offset.Encode(speeds))

	return dst
}

func appendColumn(dst []byte, fieldNum protowire.Number, deltas []int64) []byte {
	var packed []byte
	for _, v := range deltas {
		packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(v))
	}

	dst = protowire.AppendTag(dst, fieldNum, protowire.BytesType)
	dst = protowire.AppendBytes(dst, packed)

	return dst
}

func consumeColumn(body []byte) ([]int64, error) {
	var out []int64
	for len(body) > 0 {
		v, n := protowire.ConsumeVarint(body)
		if n < 0 {
			return nil, fmt.Errorf("%w: malformed location column", errs.ErrMalformedStream)
		}
		body = body[n:]
		out = append(out, protowire.DecodeZigZag(v))
	}

	return out, nil
}

// DecodeBatch parses a single LocationBatch message body and reconstructs
// its records in emission order.
//
// It rejects columns of unequal length and any timestamp delta that decodes
// negative, both as errs.ErrMalformedStream, and rejects dequantised values
// outside their declared range as errs.ErrOutOfRangeValue.
func DecodeBatch(body []byte) ([]model.RawRecord, error) {
	var tsDeltas, latDeltas, lonDeltas, accDeltas, speedDeltas []int64

	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return nil, fmt.Errorf("%w: malformed location batch tag", errs.ErrMalformedStream)
		}
		body = body[n:]

		if typ != protowire.BytesType {
			n := protowire.ConsumeFieldValue(num, typ, body)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed location batch field", errs.ErrMalformedStream)
			}
			body = body[n:]

			continue
		}

		raw, n := protowire.ConsumeBytes(body)
		if n < 0 {
			return nil, fmt.Errorf("%w: malformed location batch field", errs.ErrMalformedStream)
		}
		body = body[n:]

		col, err := consumeColumn(raw)
		if err != nil {
			return nil, err
		}

		switch num {
		case fieldTimestamp:
			tsDeltas = col
		case fieldLatitude:
			latDeltas = col
		case fieldLongitude:
			lonDeltas = col
		case fieldAccuracy:
			accDeltas = col
		case fieldSpeed:
			speedDeltas = col
		}
	}

	n := len(tsDeltas)
	if len(latDeltas) != n || len(lonDeltas) != n || len(accDeltas) != n || len(speedDeltas) != n {
		return nil, fmt.Errorf("%w: location batch columns disagree in length", errs.ErrMalformedStream)
	}
	if n == 0 {
		return nil, nil
	}

	if err := requireNonNegativeDeltas(tsDeltas); err != nil {
		return nil, err
	}

	timestamps := offset.Decode(tsDeltas)
	lats := offset.Decode(latDeltas)
	lons := offset.Decode(lonDeltas)
	accs := offset.Decode(accDeltas)
	speeds := offset.Decode(speedDeltas)

	records := make([]model.RawRecord, n)
	for i := 0; i < n; i++ {
		lat, err := quantize.DequantizeChecked(lats[i], quantize.DecimalPlacesLatLon, quantize.MaxLatitude, "location", "latitude")
		if err != nil {
			return nil, err
		}
		lon, err := quantize.DequantizeChecked(lons[i], quantize.DecimalPlacesLatLon, quantize.MaxLongitude, "location", "longitude")
		if err != nil {
			return nil, err
		}
		acc, err := quantize.DequantizeChecked(accs[i], quantize.DecimalPlacesAccuracy, quantize.MaxAccuracy, "location", "accuracy")
		if err != nil {
			return nil, err
		}
		speed, err := quantize.DequantizeChecked(speeds[i], quantize.DecimalPlacesSpeed, quantize.MaxSpeed, "location", "speed")
		if err != nil {
			return nil, err
		}

		records[i] = model.RawRecord{
			Timestamp: timestamps[i],
			Latitude:  lat,
			Longitude: lon,
			Accuracy:  acc,
			Speed:     speed,
			Modality:  model.ModalityUnknown,
		}
	}

	return records, nil
}

func requireNonNegativeDeltas(deltas []int64) error {
	for i, d := range deltas {
		if i == 0 {
			continue
		}
		if d < 0 {
			return fmt.Errorf("%w: negative timestamp delta at index %d", errs.ErrMalformedStream, i)
		}
	}

	return nil
}
