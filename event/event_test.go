package event

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/cyface-de/serialization-go/errs"
	"github.com/cyface-de/serialization-go/model"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	events := []model.Event{
		{Type: model.EventLifecycleStart, Timestamp: 1000},
		{Type: model.EventLifecyclePause, Timestamp: 1800},
		{Type: model.EventLifecycleResume, Timestamp: 3000},
		{Type: model.EventModalityTypeChange, Timestamp: 3000, Value: "BICYCLE"},
		{Type: model.EventLifecycleStop, Timestamp: 4000},
	}

	for _, e := range events {
		encoded, err := Encode(nil, e)
		require.NoError(t, err)

		decoded, err := Decode(encoded)
		require.NoError(t, err)
		require.Equal(t, e, decoded)
	}
}

func TestEncode_ModalityChangeWithoutValueIsMalformed(t *testing.T) {
	_, err := Encode(nil, model.Event{Type: model.EventModalityTypeChange, Timestamp: 1000})
	require.ErrorIs(t, err, errs.ErrMalformedEvent)
}

func TestDecode_ModalityChangeWithoutValueIsMalformed(t *testing.T) {
	var body []byte
	body = protowire.AppendTag(body, fieldType, protowire.VarintType)
	body = protowire.AppendVarint(body, 5)
	body = protowire.AppendTag(body, fieldTimestamp, protowire.VarintType)
	body = protowire.AppendVarint(body, protowire.EncodeZigZag(1000))

	_, err := Decode(body)
	require.ErrorIs(t, err, errs.ErrMalformedEvent)
}

func TestDecode_UnknownEventKind(t *testing.T) {
	var body []byte
	body = protowire.AppendTag(body, fieldType, protowire.VarintType)
	body = protowire.AppendVarint(body, 99)

	_, err := Decode(body)
	require.ErrorIs(t, err, errs.ErrUnknownEventKind)
}

func TestEncodeAll_DecodeAll_RoundTrip(t *testing.T) {
	events := []model.Event{
		{Type: model.EventModalityTypeChange, Timestamp: 0, Value: "WALKING"},
		{Type: model.EventModalityTypeChange, Timestamp: 3000, Value: "BICYCLE"},
	}

	var dst []byte
	dst, err := EncodeAll(dst, 10, events)
	require.NoError(t, err)

	var bodies [][]byte
	for len(dst) > 0 {
		_, _, n := protowire.ConsumeTag(dst)
		require.GreaterOrEqual(t, n, 0)
		dst = dst[n:]
		b, n := protowire.ConsumeBytes(dst)
		require.GreaterOrEqual(t, n, 0)
		dst = dst[n:]
		bodies = append(bodies, b)
	}

	decoded, err := DecodeAll(bodies)
	require.NoError(t, err)
	require.Equal(t, events, decoded)
}

func TestEncode_NegativeTimestampRoundTrips(t *testing.T) {
	e := model.Event{Type: model.EventLifecycleStart, Timestamp: -500}
	encoded, err := Encode(nil, e)
	require.NoError(t, err)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, e, decoded)
}
