package core

import (
	"encoding/json"
	"time"
)

// Timestamp is a UTC instant, serialized as RFC 3339 with nanoseconds.
type Timestamp time.Time

// Now returns the current UTC time.
func Now() Timestamp {
	return Timestamp(time.Now().UTC())
}

func (t Timestamp) Time() time.Time { return time.Time(t) }
func (t Timestamp) IsZero() bool    { return time.Time(t).IsZero() }
func (t Timestamp) String() string  { return t.Time().UTC().Format(time.RFC3339Nano) }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return NewValidationError("timestamp", err.Error())
	}
	*t = Timestamp(parsed.UTC())
	return nil
}
