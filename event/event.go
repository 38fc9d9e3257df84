// Package event serialises and deserialises the lifecycle and modality
// events carried by an envelope body. Each event is a small, flat
// (type, timestamp, optional value) triple; timestamps are absolute since
// events are sparse and do not benefit from delta encoding (§4.3).
//
// Wire encoding is hand-rolled with protowire rather than generated code: the
// message shape is small and stable, and the envelope package already frames
// the surrounding body the same way.
package event

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/cyface-de/serialization-go/errs"
	"github.com/cyface-de/serialization-go/model"
)

// Field numbers for the Event message.
const (
	fieldType      = 1
	fieldTimestamp = 2
	fieldValue     = 3
)

// wireKind maps a model.EventType to its wire discriminant. Kept distinct
// from the Go iota values so the wire format is stable across reorderings of
// the EventType constants.
func wireKind(t model.EventType) (uint64, bool) {
	switch t {
	case model.EventLifecycleStart:
		return 1, true
	case model.EventLifecyclePause:
		return 2, true
	case model.EventLifecycleResume:
		return 3, true
	case model.EventLifecycleStop:
		return 4, true
	case model.EventModalityTypeChange:
		return 5, true
	default:
		return 0, false
	}
}

func kindFromWire(v uint64) (model.EventType, bool) {
	switch v {
	case 1:
		return model.EventLifecycleStart, true
	case 2:
		return model.EventLifecyclePause, true
	case 3:
		return model.EventLifecycleResume, true
	case 4:
		return model.EventLifecycleStop, true
	case 5:
		return model.EventModalityTypeChange, true
	default:
		return model.EventUnknown, false
	}
}

// Encode appends the wire representation of a single event to dst and
// returns the extended slice.
//
// Encode validates the same MODALITY_TYPE_CHANGE-requires-value constraint
// Decode enforces, so a producer cannot silently emit an unreadable stream.
func Encode(dst []byte, e model.Event) ([]byte, error) {
	kind, ok := wireKind(e.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %d", errs.ErrUnknownEventKind, e.Type)
	}
	if e.Type == model.EventModalityTypeChange && e.Value == "" {
		return nil, fmt.Errorf("%w: MODALITY_TYPE_CHANGE requires a non-empty value", errs.ErrMalformedEvent)
	}

	dst = protowire.AppendTag(dst, fieldType, protowire.VarintType)
	dst = protowire.AppendVarint(dst, kind)

	dst = protowire.AppendTag(dst, fieldTimestamp, protowire.VarintType)
	dst = protowire.AppendVarint(dst, protowire.EncodeZigZag(e.Timestamp))

	if e.Value != "" {
		dst = protowire.AppendTag(dst, fieldValue, protowire.BytesType)
		dst = protowire.AppendString(dst, e.Value)
	}

	return dst, nil
}

// EncodeAll encodes a slice of events in order, each as a length-delimited
// sub-message framed by protowire.AppendBytes so the caller can embed the
// whole list as repeated fields.
func EncodeAll(dst []byte, fieldNum protowire.Number, events []model.Event) ([]byte, error) {
	for _, e := range events {
		body, err := Encode(nil, e)
		if err != nil {
			return nil, err
		}
		dst = protowire.AppendTag(dst, fieldNum, protowire.BytesType)
		dst = protowire.AppendBytes(dst, body)
	}

	return dst, nil
}

// Decode parses a single event message body (without its outer
// length-delimited framing) and returns the reconstructed event.
func Decode(body []byte) (model.Event, error) {
	var e model.Event
	haveType := false

	for len(body) > 0 {
		num, typ, n := protowire.ConsumeTag(body)
		if n < 0 {
			return model.Event{}, fmt.Errorf("%w: malformed event field tag", errs.ErrMalformedEvent)
		}
		body = body[n:]

		switch num {
		case fieldType:
			v, n := protowire.ConsumeVarint(body)
			if n < 0 {
				return model.Event{}, fmt.Errorf("%w: malformed event type", errs.ErrMalformedEvent)
			}
			body = body[n:]
			kind, ok := kindFromWire(v)
			if !ok {
				return model.Event{}, fmt.Errorf("%w: %d", errs.ErrUnknownEventKind, v)
			}
			e.Type = kind
			haveType = true
		case fieldTimestamp:
			v, n := protowire.ConsumeVarint(body)
			if n < 0 {
				return model.Event{}, fmt.Errorf("%w: malformed event timestamp", errs.ErrMalformedEvent)
			}
			body = body[n:]
			e.Timestamp = protowire.DecodeZigZag(v)
		case fieldValue:
			v, n := protowire.ConsumeBytes(body)
			if n < 0 {
				return model.Event{}, fmt.Errorf("%w: malformed event value", errs.ErrMalformedEvent)
			}
			body = body[n:]
			e.Value = string(v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, body)
			if n < 0 {
				return model.Event{}, fmt.Errorf("%w: malformed event field", errs.ErrMalformedEvent)
			}
			body = body[n:]
		}
	}

	if !haveType {
		return model.Event{}, fmt.Errorf("%w: missing event type", errs.ErrMalformedEvent)
	}
	if e.Type == model.EventModalityTypeChange && e.Value == "" {
		return model.Event{}, fmt.Errorf("%w: MODALITY_TYPE_CHANGE requires a non-empty value", errs.ErrMalformedEvent)
	}

	return e, nil
}

// DecodeAll parses a sequence of length-delimited event sub-messages
// previously produced by EncodeAll, returning the events in stream order.
func DecodeAll(bodies [][]byte) ([]model.Event, error) {
	if len(bodies) == 0 {
		return nil, nil
	}

	out := make([]model.Event, 0, len(bodies))
	for _, b := range bodies {
		e, err := Decode(b)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, nil
}
