package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidKeyParams is returned when a key cannot be derived.
var ErrInvalidKeyParams = errors.New("key params require instance and kind")

// KeyParams identifies one stored request.
type KeyParams struct {
	Instance string   `json:"instance"`
	Kind     string   `json:"kind"`
	Scope    string   `json:"scope,omitempty"`
	Cursor   string   `json:"cursor,omitempty"`
	PageSize int      `json:"page_size,omitempty"`
	Keys     []string `json:"keys,omitempty"`
}

// GenerateKey returns a deterministic SHA-256 key for p. The order of
// p.Keys does not matter.
func GenerateKey(p KeyParams) (string, error) {
	if p.Instance == "" || p.Kind == "" {
		return "", ErrInvalidKeyParams
	}

	if len(p.Keys) > 0 {
		sorted := make([]string, len(p.Keys))
		copy(sorted, p.Keys)
		sort.Strings(sorted)
		p.Keys = sorted
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshaling key params: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
