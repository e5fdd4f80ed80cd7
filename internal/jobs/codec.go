package jobs

import (
	"encoding/json"
	"fmt"
)

// Envelope is the wire form pushed onto the redis queue.
type Envelope struct {
	Type    JobType         `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func Encode(t JobType, payload any) ([]byte, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	switch t {
	case JobLowStockAlert:
		_, ok := payload.(LowStockAlertPayload)

		if !ok {
			_, ok2 := payload.(*LowStockAlertPayload)

			if !ok2 {
				return nil, ErrPayloadTypeMismatch
			}
		}
	}

	raw, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	b, err := json.Marshal(Envelope{Type: t, Payload: raw})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// Decode unmarshals a queued message into the correct typed payload struct.
func Decode(msg []byte) (JobType, any, error) {
	var env Envelope

	if err := json.Unmarshal(msg, &env); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	if !env.Type.IsValid() {
		return "", nil, ErrInvalidJobType
	}

	if len(env.Payload) == 0 {
		return env.Type, nil, ErrInvalidJobPayload
	}

	switch env.Type {
	case JobLowStockAlert:
		var p LowStockAlertPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return env.Type, nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return env.Type, p, nil

	default:
		return env.Type, nil, ErrInvalidJobType
	}
}
