package point3d

import (
	"testing"

	"github.com/cyface-de/serialization-go/errs"
	"github.com/cyface-de/serialization-go/model"
	"github.com/stretchr/testify/require"
)

func samplePoints() []model.Point3D {
	return []model.Point3D{
		{Timestamp: 1000, X: 1, Y: -2, Z: 3},
		{Timestamp: 1200, X: 1.1, Y: -2.2, Z: 2.9},
		{Timestamp: 1400, X: 0.9, Y: -1.8, Z: 3.1},
	}
}

func TestEncodeDecodeBatch_RoundTrip(t *testing.T) {
	points := samplePoints()

	encoded := EncodeBatch(nil, KindAcceleration, points)
	decoded, err := DecodeBatch(KindAcceleration, encoded)
	require.NoError(t, err)
	require.Len(t, decoded, len(points))

	for i, p := range points {
		require.Equal(t, p.Timestamp, decoded[i].Timestamp)
		require.InDelta(t, p.X, decoded[i].X, 5e-4)
		require.InDelta(t, p.Y, decoded[i].Y, 5e-4)
		require.InDelta(t, p.Z, decoded[i].Z, 5e-4)
	}
}

func TestEncodeBatch_Empty(t *testing.T) {
	encoded := EncodeBatch(nil, KindRotation, nil)
	require.Empty(t, encoded)
}

func TestDecodeBatches_ResetsDeOffsetterAtEachBoundary(t *testing.T) {
	batch1 := []model.Point3D{
		{Timestamp: 1000, X: 1, Y: 1, Z: 1},
		{Timestamp: 1100, X: 2, Y: 2, Z: 2},
	}
	batch2 := []model.Point3D{
		{Timestamp: 500, X: -1, Y: -1, Z: -1}, // earlier than batch1 end, but a fresh batch
		{Timestamp: 600, X: 0, Y: 0, Z: 0},
	}

	encoded1 := EncodeBatch(nil, KindDirection, batch1)
	encoded2 := EncodeBatch(nil, KindDirection, batch2)

	decoded, err := DecodeBatches(KindDirection, [][]byte{encoded1, encoded2})
	require.NoError(t, err)
	require.Len(t, decoded, 4)
	require.Equal(t, int64(1000), decoded[0].Timestamp)
	require.Equal(t, int64(1100), decoded[1].Timestamp)
	require.Equal(t, int64(500), decoded[2].Timestamp)
	require.Equal(t, int64(600), decoded[3].Timestamp)
}

func TestDecodeBatch_OutOfRangeAccelerationIsRejected(t *testing.T) {
	points := []model.Point3D{{Timestamp: 1000, X: 20.0, Y: 0, Z: 0}}
	encoded := EncodeBatch(nil, KindAcceleration, points)

	_, err := DecodeBatch(KindAcceleration, encoded)
	require.ErrorIs(t, err, errs.ErrOutOfRangeValue)
}

func TestDecodeBatch_UnequalColumnLengthsIsMalformed(t *testing.T) {
	var body []byte
	body = appendColumn(body, fieldTimestamp, []int64{1000, 100})
	body = appendColumn(body, fieldX, []int64{1})
	body = appendColumn(body, fieldY, []int64{1, 1})
	body = appendColumn(body, fieldZ, []int64{1, 1})

	_, err := DecodeBatch(KindRotation, body)
	require.ErrorIs(t, err, errs.ErrMalformedStream)
}

func TestDecodeBatches_EmptyInput(t *testing.T) {
	decoded, err := DecodeBatches(KindAcceleration, nil)
	require.NoError(t, err)
	require.Nil(t, decoded)
}
