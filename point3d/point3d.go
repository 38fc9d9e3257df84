// Package point3d encodes and decodes 3-axis sensor samples (acceleration,
// rotation, direction) as column-oriented batches, the same way package
// location handles GNSS records: parallel timestamp/x/y/z columns, each
// quantised then delta-encoded.
//
// A producer may split one logical stream into several batches — mobile
// devices append incrementally and cannot always buffer a whole stream in
// memory. Each batch is self-contained: its first value in every column is
// absolute, and decoding resets the DeOffsetter at every batch boundary
// (§4.5). Concatenating the decoded batches in arrival order reconstructs the
// full stream.
package point3d

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/cyface-de/serialization-go/errs"
	"github.com/cyface-de/serialization-go/model"
	"github.com/cyface-de/serialization-go/offset"
	"github.com/cyface-de/serialization-go/quantize"
)

// Field numbers for the Point3DBatch message.
const (
	fieldTimestamp = 1
	fieldX         = 2
	fieldY         = 3
	fieldZ         = 4
)

// Kind identifies which of the three sensor streams a batch belongs to,
// selecting its decimal-places exponent and range limit.
type Kind uint8

const (
	KindAcceleration Kind = iota
	KindRotation
	KindDirection
)

func (k Kind) decimalPlaces() int {
	switch k {
	case KindAcceleration:
		return quantize.DecimalPlacesAcceleration
	case KindRotation:
		return quantize.DecimalPlacesRotation
	default:
		return quantize.DecimalPlacesDirection
	}
}

func (k Kind) maxAbs() float64 {
	switch k {
	case KindAcceleration:
		return quantize.MaxAcceleration
	case KindRotation:
		return quantize.MaxRotation
	default:
		return quantize.MaxDirection
	}
}

func (k Kind) String() string {
	switch k {
	case KindAcceleration:
		return "acceleration"
	case KindRotation:
		return "rotation"
	default:
		return "direction"
	}
}

// EncodeBatch encodes one self-contained batch of points and appends it to
// dst. Call it once per batch; a producer streaming incrementally calls it
// once per buffered chunk.
func EncodeBatch(dst []byte, kind Kind, points []model.Point3D) []byte {
	if len(points) == 0 {
		return dst
	}

	d := kind.decimalPlaces()

	timestamps := make([]int64, len(points))
	xs := make([]int64, len(points))
	ys := make([]int64, len(points))
	zs := make([]int64, len(points))

	for i, p := range points {
		timestamps[i] = p.Timestamp
		xs[i] = quantize.Quantize(p.X, d)
		ys[i] = quantize.Quantize(p.Y, d)
		zs[i] = quantize.Quantize(p.Z, d)
	}

	dst = appendColumn(dst, fieldTimestamp, offset.Encode(timestamps))
	dst = appendColumn(dst, fieldX, offset.Encode(xs))
	dst = appendColumn(dst, fieldY, offset.Encode(ys))
	dst = appendColumn(dst, fieldZ, offset.Encode(zs))

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
			return nil, fmt.Errorf("%w: malformed point3d column", errs.ErrMalformedStream)
		}
		body = body[n:]
		out = append(out, protowire.DecodeZigZag(v))
	}

	return out, nil
}

// DecodeBatch parses a single Point3DBatch message body and reconstructs its
// points in emission order, for the given sensor kind.
func DecodeBatch(kind Kind, body []byte) ([]model.Point3D, error) {
	var tsDeltas, xDeltas, yDeltas, zDeltas []int64

	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return nil, fmt.Errorf("%w: malformed point3d batch tag", errs.ErrMalformedStream)
		}
		body = body[n:]

		if typ != protowire.BytesType {
			n := protowire.ConsumeFieldValue(num, typ, body)
			if n < 0 {
				return nil, fmt.Errorf("%w: malformed point3d batch field", errs.ErrMalformedStream)
			}
			body = body[n:]

			continue
		}

		raw, n := protowire.ConsumeBytes(body)
		if n < 0 {
			return nil, fmt.Errorf("%w: malformed point3d batch field", errs.ErrMalformedStream)
		}
		body = body[n:]

		col, err := consumeColumn(raw)
		if err != nil {
			return nil, err
		}

		switch num {
		case fieldTimestamp:
			tsDeltas = col
		case fieldX:
			xDeltas = col
		case fieldY:
			yDeltas = col
		case fieldZ:
			zDeltas = col
		}
	}

	n := len(tsDeltas)
	if len(xDeltas) != n || len(yDeltas) != n || len(zDeltas) != n {
		return nil, fmt.Errorf("%w: point3d batch columns disagree in length", errs.ErrMalformedStream)
	}
	if n == 0 {
		return nil, nil
	}

	for i, d := range tsDeltas {
		if i > 0 && d < 0 {
			return nil, fmt.Errorf("%w: negative timestamp delta at index %d", errs.ErrMalformedStream, i)
		}
	}

	timestamps := offset.Decode(tsDeltas)
	xsRaw := offset.Decode(xDeltas)
	ysRaw := offset.Decode(yDeltas)
	zsRaw := offset.Decode(zDeltas)

	d := kind.decimalPlaces()
	maxAbs := kind.maxAbs()

	points := make([]model.Point3D, n)
	for i := 0; i < n; i++ {
		x, err := quantize.DequantizeChecked(xsRaw[i], d, maxAbs, kind.String(), "x")
		if err != nil {
			return nil, err
		}
		y, err := quantize.DequantizeChecked(ysRaw[i], d, maxAbs, kind.String(), "y")
		if err != nil {
			return nil, err
		}
		z, err := quantize.DequantizeChecked(zsRaw[i], d, maxAbs, kind.String(), "z")
		if err != nil {
			return nil, err
		}

		points[i] = model.Point3D{Timestamp: timestamps[i], X: x, Y: y, Z: z}
	}

	return points, nil
}

// DecodeBatches decodes each batch body independently (resetting
// DeOffsetter state at every boundary, per §4.5) and concatenates the
// results in arrival order.
func DecodeBatches(kind Kind, bodies [][]byte) ([]model.Point3D, error) {
	if len(bodies) == 0 {
		return nil, nil
	}

	var out []model.Point3D
	for _, body := range bodies {
		points, err := DecodeBatch(kind, body)
		if err != nil {
			return nil, err
		}
		out = append(out, points...)
	}

	return out, nil
}
