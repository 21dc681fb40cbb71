package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Timestamp принимает из JSON как строку RFC3339, так и число миллисекунд Unix.
// Сериализуется всегда в RFC3339.
type Timestamp struct {
	time.Time
}

// NewTimestamp оборачивает время.
func NewTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

// FromUnixMilli создаёт метку из миллисекунд Unix.
func FromUnixMilli(ms int64) *Timestamp {
	return &Timestamp{Time: time.UnixMilli(ms)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.UTC().Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	if data[0] != '"' {
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("timestamp must be RFC3339 string or unix millis: %w", err)
		}
		t.Time = time.UnixMilli(ms)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.Parse(time.RFC3339Nano, str)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
