// Package errs defines the sentinel errors raised by this module.
//
// Call sites attach dynamic context with fmt.Errorf("%w: ...", errs.ErrX, ...)
// so callers can still test the failure kind with errors.Is while getting a
// human-readable message. No partial result is ever returned alongside one of
// these errors: decode and reconstruction operations are all-or-nothing.
package errs

import "errors"

var (
	// ErrUnsupportedFormatVersion is returned when the envelope header names a
	// format version this module does not know how to decode.
	ErrUnsupportedFormatVersion = errors.New("unsupported format version")

	// ErrMalformedStream is returned when a column batch's parallel columns
	// disagree in length, or a timestamp delta decodes to a negative value.
	ErrMalformedStream = errors.New("malformed stream")

	// ErrOutOfRangeValue is returned when a dequantised value exceeds the
	// declared range for its stream.
	ErrOutOfRangeValue = errors.New("dequantised value out of range")

	// ErrUnknownEventKind is returned when an event's type discriminant is not
	// one of the enumerated lifecycle/modality event kinds.
	ErrUnknownEventKind = errors.New("unknown event kind")

	// ErrMalformedEvent is returned when an event is missing a value its kind
	// requires (MODALITY_TYPE_CHANGE with an absent or empty value).
	ErrMalformedEvent = errors.New("malformed event")

	// ErrInvalidLifecycleEvents is returned when the lifecycle event sequence
	// violates an ordering invariant: a RESUME with no prior PAUSE, or an empty
	// modality value.
	ErrInvalidLifecycleEvents = errors.New("invalid lifecycle events")

	// ErrInconsistentBuckets is returned when the buckets handed to the
	// assembler do not all share identical MetaData.
	ErrInconsistentBuckets = errors.New("inconsistent bucket metadata")

	// ErrTimestampNotFound is returned by ClearAfter when no track contains
	// the requested timestamp within its own [min, max] range.
	ErrTimestampNotFound = errors.New("timestamp not found in any track")

	// ErrNoSuchMeasurement is returned when a multi-measurement source lacks
	// the requested measurement identifier.
	ErrNoSuchMeasurement = errors.New("no such measurement")
)
