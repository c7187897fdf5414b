package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// envelope is the {success, data, message} wrapper some endpoints use.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func unwrapEnvelope(raw []byte) (envelope, bool) {
	var env envelope
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return env, false
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return env, false
	}
	return env, env.Success != nil
}

// decodePayload unmarshals either a bare payload or the data field of an
// envelope into out.
func decodePayload(raw []byte, out any) error {
	payload := raw
	if env, ok := unwrapEnvelope(raw); ok && len(env.Data) > 0 {
		payload = env.Data
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeList unmarshals a bare or enveloped array one element at a time.
// Elements that fail to decode are reported to skip and left out.
func decodeList[T any](raw []byte, skip func(index int, err error)) ([]T, error) {
	payload := bytes.TrimSpace(raw)
	if env, ok := unwrapEnvelope(payload); ok && len(env.Data) > 0 {
		payload = bytes.TrimSpace(env.Data)
	}
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return []T{}, nil
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(payload, &elems); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := make([]T, 0, len(elems))
	for i, elem := range elems {
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			if skip != nil {
				skip(i, err)
			}
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// decodeBookedSlots accepts a bare array of labels, {bookedSlots: [...]}, or
// either of those inside an envelope.
func decodeBookedSlots(raw []byte) ([]string, error) {
	payload := bytes.TrimSpace(raw)
	if env, ok := unwrapEnvelope(payload); ok && len(env.Data) > 0 {
		payload = bytes.TrimSpace(env.Data)
	}
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return []string{}, nil
	}

	if payload[0] == '[' {
		var labels []string
		if err := json.Unmarshal(payload, &labels); err != nil {
			return nil, fmt.Errorf("decode booked slots: %w", err)
		}
		return labels, nil
	}

	var wrapped struct {
		BookedSlots []string `json:"bookedSlots"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil {
		return nil, fmt.Errorf("decode booked slots: %w", err)
	}
	if wrapped.BookedSlots == nil {
		return []string{}, nil
	}
	return wrapped.BookedSlots, nil
}
