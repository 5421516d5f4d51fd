package store

import (
	"encoding/json"
	"errors"
	"time"
)

// Entry is a single stored value with TTL metadata.
type Entry struct {
	Key        string          `json:"key"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  time.Time       `json:"created_at"`
	ExpiresAt  time.Time       `json:"expires_at"`
	TTLSeconds int             `json:"ttl_seconds"`
}

// NewEntry creates an entry created at now that lives for ttlSeconds.
func NewEntry(key string, data json.RawMessage, ttlSeconds int, now time.Time) *Entry {
	return &Entry{
		Key:        key,
		Data:       data,
		CreatedAt:  now,
		ExpiresAt:  now.Add(time.Duration(ttlSeconds) * time.Second),
		TTLSeconds: ttlSeconds,
	}
}

// IsExpiredAt reports whether the entry has expired at now.
func (e *Entry) IsExpiredAt(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// AgeAt returns how old the entry is at now.
func (e *Entry) AgeAt(now time.Time) time.Duration {
	return now.Sub(e.CreatedAt)
}

// Decode unmarshals the stored data into v.
func (e *Entry) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

// MarshalJSON writes timestamps as RFC3339.
func (e *Entry) MarshalJSON() ([]byte, error) {
	type Alias Entry
	return json.Marshal(&struct {
		*Alias

		CreatedAt string `json:"created_at"`
		ExpiresAt string `json:"expires_at"`
	}{
		Alias:     (*Alias)(e),
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt: e.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// UnmarshalJSON parses RFC3339 timestamps.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if e == nil {
		return errors.New("cannot unmarshal into nil Entry")
	}
	type Alias Entry
	aux := &struct {
		*Alias

		CreatedAt string `json:"created_at"`
		ExpiresAt string `json:"expires_at"`
	}{
		Alias: (*Alias)(e),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if e.CreatedAt, err = time.Parse(time.RFC3339, aux.CreatedAt); err != nil {
		return err
	}
	if e.ExpiresAt, err = time.Parse(time.RFC3339, aux.ExpiresAt); err != nil {
		return err
	}
	return nil
}
