// Package quantize converts between floating-point measurement values and the
// fixed-point signed integers the wire format stores them as.
//
// A value v at decimal-places d is stored as round(v * 10^d), half away from
// zero — the same rounding rule as math.Round. Each stream (latitude,
// accuracy, acceleration, ...) has both a fixed decimal-places count and a
// maximum absolute value; DequantizeChecked rejects reconstructed values outside
// that range rather than clamping them, since a silently clamped value would
// misrepresent what the sensor actually reported.
package quantize

import (
	"fmt"
	"math"

	"github.com/cyface-de/serialization-go/errs"
)

// Decimal-place counts for each stream, per the wire format (§4.1).
const (
	DecimalPlacesLatLon       = 6
	DecimalPlacesAccuracy     = 2
	DecimalPlacesSpeed        = 2
	DecimalPlacesAcceleration = 3
	DecimalPlacesRotation     = 3
	DecimalPlacesDirection    = 2
)

// Maximum absolute values permitted for a reconstructed value in each stream
// (§4.1). DequantizeChecked rejects any value whose magnitude exceeds these.
const (
	MaxAcceleration = 16.0
	MaxRotation     = 2 * 34.906585
	MaxDirection    = 4911.994
	MaxLatitude     = 90.0
	MaxLongitude    = 180.0
	MaxAccuracy     = 1e5
	MaxSpeed        = 1000.0
)

var pow10 = [...]float64{
	0: 1,
	1: 10,
	2: 100,
	3: 1000,
	4: 10000,
	5: 100000,
	6: 1000000,
}

// Quantize converts v to a signed 64-bit integer at the given decimal-places
// exponent, rounding half away from zero.
func Quantize(v float64, decimalPlaces int) int64 {
	scale := scaleFor(decimalPlaces)

	return int64(math.Round(v * scale))
}

// Dequantize converts a quantised integer back to its floating-point value at
// the given decimal-places exponent, with no range checking. Use
// DequantizeChecked when the value must be validated against a stream's
// declared range.
func Dequantize(raw int64, decimalPlaces int) float64 {
	return float64(raw) / scaleFor(decimalPlaces)
}

// DequantizeChecked dequantises raw and rejects the result if its absolute
// value exceeds maxAbs. stream and axis identify the failing column for the
// wrapped error (e.g. stream="acceleration", axis="x").
func DequantizeChecked(raw int64, decimalPlaces int, maxAbs float64, stream, axis string) (float64, error) {
	v := Dequantize(raw, decimalPlaces)
	if math.Abs(v) > maxAbs {
		return 0, fmt.Errorf("%w: stream=%s axis=%s value=%g exceeds max %g",
			errs.ErrOutOfRangeValue, stream, axis, v, maxAbs)
	}

	return v, nil
}

func scaleFor(decimalPlaces int) float64 {
	if decimalPlaces >= 0 && decimalPlaces < len(pow10) {
		return pow10[decimalPlaces]
	}

	return math.Pow(10, float64(decimalPlaces))
}
