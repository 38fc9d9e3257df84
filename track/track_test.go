package track

import (
	"testing"

	"github.com/cyface-de/serialization-go/errs"
	"github.com/cyface-de/serialization-go/model"
	"github.com/stretchr/testify/require"
)

func locsAt(timestamps ...int64) []model.RawRecord {
	out := make([]model.RawRecord, len(timestamps))
	for i, ts := range timestamps {
		out[i] = model.RawRecord{Timestamp: ts}
	}

	return out
}

func TestBuild_MinimalMeasurement(t *testing.T) {
	locations := []model.RawRecord{
		{Timestamp: 1000, Latitude: 51.1, Longitude: 13.1, Accuracy: 10.0, Speed: 0.1},
	}
	sensor := []model.Point3D{{Timestamp: 1000, X: 1, Y: -2, Z: 3}}

	tracks, err := Build(locations, sensor, sensor, sensor, nil)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	require.Len(t, tracks[0].Locations, 1)
	require.Equal(t, model.ModalityUnknown, tracks[0].Locations[0].Modality)
	require.Len(t, tracks[0].Accelerations, 1)
	require.Len(t, tracks[0].Rotations, 1)
	require.Len(t, tracks[0].Directions, 1)
}

func TestBuild_ModalityChangeAtBoundary(t *testing.T) {
	locations := locsAt(1000, 1500, 3000, 4000)
	events := []model.Event{
		{Type: model.EventModalityTypeChange, Timestamp: 0, Value: "WALKING"},
		{Type: model.EventModalityTypeChange, Timestamp: 3000, Value: "BICYCLE"},
	}

	tracks, err := Build(locations, nil, nil, nil, events)
	require.NoError(t, err)
	require.Len(t, tracks, 1)

	got := tracks[0].Locations
	require.Equal(t, model.Modality("WALKING"), got[0].Modality)
	require.Equal(t, model.Modality("WALKING"), got[1].Modality)
	require.Equal(t, model.Modality("BICYCLE"), got[2].Modality)
	require.Equal(t, model.Modality("BICYCLE"), got[3].Modality)
}

func TestBuild_PauseResumeSlicing(t *testing.T) {
	locations := locsAt(1000, 1500, 2500, 3500)
	events := []model.Event{
		{Type: model.EventLifecyclePause, Timestamp: 1800},
		{Type: model.EventLifecycleResume, Timestamp: 3000},
	}

	tracks, err := Build(locations, nil, nil, nil, events)
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	require.Len(t, tracks[0].Locations, 2)
	require.Equal(t, int64(1000), tracks[0].Locations[0].Timestamp)
	require.Equal(t, int64(1500), tracks[0].Locations[1].Timestamp)

	require.Len(t, tracks[1].Locations, 1)
	require.Equal(t, int64(3500), tracks[1].Locations[0].Timestamp)
}

func TestBuild_ResumeWithoutPauseIsFatal(t *testing.T) {
	locations := locsAt(1000)
	events := []model.Event{
		{Type: model.EventLifecycleResume, Timestamp: 1000},
	}

	tracks, err := Build(locations, nil, nil, nil, events)
	require.ErrorIs(t, err, errs.ErrInvalidLifecycleEvents)
	require.Nil(t, tracks)
}

func TestBuild_EmptyModalityValueIsFatal(t *testing.T) {
	locations := locsAt(1000)
	events := []model.Event{
		{Type: model.EventModalityTypeChange, Timestamp: 500, Value: ""},
	}

	tracks, err := Build(locations, nil, nil, nil, events)
	require.ErrorIs(t, err, errs.ErrInvalidLifecycleEvents)
	require.Nil(t, tracks)
}

func TestBuild_EmptySubtrackIsDropped(t *testing.T) {
	locations := locsAt(1000, 3000)
	events := []model.Event{
		{Type: model.EventLifecyclePause, Timestamp: 900},
		{Type: model.EventLifecycleResume, Timestamp: 950},
	}

	tracks, err := Build(locations, nil, nil, nil, events)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	require.Len(t, tracks[0].Locations, 2)
}

func TestBuild_SegmentWithoutLocationsIsDroppedEvenWithSensorData(t *testing.T) {
	// A sub-track is kept only if it has >= 1 location (§4.7.1); sensor
	// samples alone never keep a segment alive.
	sensor := []model.Point3D{{Timestamp: 1000}}
	events := []model.Event{
		{Type: model.EventLifecyclePause, Timestamp: 2000},
		{Type: model.EventLifecycleResume, Timestamp: 3000},
	}

	tracks, err := Build(nil, sensor, nil, nil, events)
	require.NoError(t, err)
	require.Empty(t, tracks)
}

func TestBuilder_WithSink_ReportsDroppedEmptySubtrack(t *testing.T) {
	sensor := []model.Point3D{{Timestamp: 1000}}
	events := []model.Event{
		{Type: model.EventLifecyclePause, Timestamp: 2000},
		{Type: model.EventLifecycleResume, Timestamp: 3000},
	}

	var notes []string
	builder, err := NewBuilder(WithSink(func(msg string) { notes = append(notes, msg) }))
	require.NoError(t, err)

	tracks, err := builder.Build(nil, sensor, nil, nil, events)
	require.NoError(t, err)
	require.Empty(t, tracks)
	require.NotEmpty(t, notes)
}

func TestBuild_DoesNotMutateCallerSlice(t *testing.T) {
	locations := locsAt(1000)
	_, err := Build(locations, nil, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, model.Modality(""), locations[0].Modality)
}
