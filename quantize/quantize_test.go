package quantize

import (
	"testing"

	"github.com/cyface-de/serialization-go/errs"
	"github.com/stretchr/testify/require"
)

func TestQuantize_RoundsHalfAwayFromZero(t *testing.T) {
	tests := []struct {
		name          string
		value         float64
		decimalPlaces int
		want          int64
	}{
		{"positive exact", 51.123456, 6, 51123456},
		{"positive half rounds away from zero", 2.5, 0, 3},
		{"negative half rounds away from zero", -2.5, 0, -3},
		{"negative value", -13.1, 6, -13100000},
		{"zero", 0, 6, 0},
		{"speed two decimals", 0.1, 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Quantize(tt.value, tt.decimalPlaces)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestQuantize_Dequantize_RoundTrip(t *testing.T) {
	values := []float64{51.1, -13.100002, 0.0, 90.0, -180.0}

	for _, v := range values {
		raw := Quantize(v, DecimalPlacesLatLon)
		got := Dequantize(raw, DecimalPlacesLatLon)
		require.InDelta(t, v, got, 5e-7)
	}
}

func TestDequantizeChecked_WithinRange(t *testing.T) {
	raw := Quantize(10.0, DecimalPlacesAcceleration)
	v, err := DequantizeChecked(raw, DecimalPlacesAcceleration, MaxAcceleration, "acceleration", "x")
	require.NoError(t, err)
	require.InDelta(t, 10.0, v, 5e-4)
}

func TestDequantizeChecked_OutOfRange(t *testing.T) {
	raw := Quantize(20.0, DecimalPlacesAcceleration)
	_, err := DequantizeChecked(raw, DecimalPlacesAcceleration, MaxAcceleration, "acceleration", "y")
	require.ErrorIs(t, err, errs.ErrOutOfRangeValue)
}

func TestDequantizeChecked_BoundaryIsAccepted(t *testing.T) {
	raw := Quantize(MaxLatitude, DecimalPlacesLatLon)
	_, err := DequantizeChecked(raw, DecimalPlacesLatLon, MaxLatitude, "latitude", "")
	require.NoError(t, err)
}
