package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedipage/fedipage/internal/clock"
)

func newTestStore(t *testing.T, ttl, maxMB int) (*FileStore, *clock.EventTimeSource) {
	t.Helper()
	ts := clock.NewEventTimeSource()
	ts.Update(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s, err := NewFileStore(t.TempDir(), true, ttl, maxMB, WithTimeSource(ts))
	require.NoError(t, err)
	return s, ts
}

func TestEntry(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := NewEntry("k", json.RawMessage(`{"a":1}`), 60, now)

	assert.False(t, e.IsExpiredAt(now.Add(59*time.Second)))
	assert.True(t, e.IsExpiredAt(now.Add(61*time.Second)))
	assert.Equal(t, 10*time.Second, e.AgeAt(now.Add(10*time.Second)))

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"created_at":"2026-01-02T03:04:05Z"`)

	var back Entry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.ExpiresAt.Equal(e.ExpiresAt))

	var v struct{ A int }
	require.NoError(t, back.Decode(&v))
	assert.Equal(t, 1, v.A)

	assert.Error(t, json.Unmarshal([]byte(`{"created_at":"yesterday","expires_at":"x"}`), &back))
}

func TestFileStore_SetGet(t *testing.T) {
	s, ts := newTestStore(t, 60, 0)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrCacheNotFound)

	require.NoError(t, s.SetJSON("acct/1", map[string]string{"id": "1"}))
	entry, err := s.Get("acct/1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(entry.Data))

	ts.Advance(61 * time.Second)
	_, err = s.Get("acct/1")
	assert.ErrorIs(t, err, ErrCacheExpired)
	_, err = s.Peek("acct/1")
	assert.ErrorIs(t, err, ErrCacheNotFound, "Get removes expired entries")
}

func TestFileStore_PeekIgnoresExpiry(t *testing.T) {
	s, ts := newTestStore(t, 60, 0)
	require.NoError(t, s.Set("k", json.RawMessage(`1`)))
	ts.Advance(time.Hour)

	entry, err := s.Peek("k")
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`1`), entry.Data)
}

func TestFileStore_KeyValidationAndDisabled(t *testing.T) {
	s, _ := newTestStore(t, 60, 0)
	assert.ErrorIs(t, s.Set("", nil), ErrInvalidCacheKey)
	_, err := s.Get("")
	assert.ErrorIs(t, err, ErrInvalidCacheKey)
	assert.ErrorIs(t, s.Delete(""), ErrInvalidCacheKey)

	disabled, err := NewFileStore("", false, 60, 0)
	require.NoError(t, err)
	assert.False(t, disabled.IsEnabled())
	assert.ErrorIs(t, disabled.Set("k", nil), ErrCacheDisabled)
	_, err = disabled.Stats()
	assert.ErrorIs(t, err, ErrCacheDisabled)

	_, err = NewFileStore("", true, 60, 0)
	assert.Error(t, err)
}

func TestFileStore_DeleteClearStats(t *testing.T) {
	s, ts := newTestStore(t, 60, 0)
	require.NoError(t, s.Set("a", json.RawMessage(`"a"`)))
	ts.Advance(2 * time.Minute)
	require.NoError(t, s.Set("b", json.RawMessage(`"b"`)))
	require.NoError(t, s.Set("c", json.RawMessage(`"c"`)))
	require.NoError(t, os.WriteFile(filepath.Join(s.Directory(), "junk.json"), []byte("{"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(s.Directory(), "notes.txt"), []byte("x"), 0o600))

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 4, st.Entries)
	assert.Equal(t, 2, st.Expired, "expired a and unreadable junk")
	assert.Positive(t, st.SizeBytes)

	require.NoError(t, s.Delete("b"))
	require.NoError(t, s.Delete("b"), "delete is idempotent")
	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	removed, err := s.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	removed, err = s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(s.Directory(), "notes.txt"))
	assert.NoError(t, err, "non-entry files are left alone")
}

func TestFileStore_EnforceMaxSize(t *testing.T) {
	s, ts := newTestStore(t, 3600, 1)
	big := json.RawMessage(`"` + padding(400*1024) + `"`)

	for _, k := range []string{"oldest", "middle", "newest"} {
		require.NoError(t, s.Set(k, big))
		ts.Advance(time.Second)
	}

	removed, err := s.EnforceMaxSize()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = s.Get("oldest")
	assert.ErrorIs(t, err, ErrCacheNotFound)
	_, err = s.Get("newest")
	assert.NoError(t, err)

	removed, err = s.Prune()
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func padding(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}

func TestGenerateKey(t *testing.T) {
	base := KeyParams{Instance: "https://m.example/following", Kind: "page", Scope: "1", Cursor: "abc", PageSize: 40}

	k1, err := GenerateKey(base)
	require.NoError(t, err)
	assert.Len(t, k1, 64)

	k2, err := GenerateKey(base)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	other := base
	other.Cursor = "def"
	k3, err := GenerateKey(other)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)

	a, err := GenerateKey(KeyParams{Instance: "i", Kind: "enrichment", Keys: []string{"2", "1"}})
	require.NoError(t, err)
	b, err := GenerateKey(KeyParams{Instance: "i", Kind: "enrichment", Keys: []string{"1", "2"}})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = GenerateKey(KeyParams{Kind: "page"})
	assert.ErrorIs(t, err, ErrInvalidKeyParams)
}

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"3600", 3600, false},
		{"1h30m", 5400, false},
		{"30s", 0, true},
		{"59", 0, true},
		{"900h", 0, true},
		{"soon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTTL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", FormatDuration(45*time.Second))
	assert.Equal(t, "30m", FormatDuration(30*time.Minute))
	assert.Equal(t, "2h", FormatDuration(2*time.Hour))
	assert.Equal(t, "1h30m", FormatDuration(90*time.Minute))
	assert.Equal(t, "3d", FormatDuration(72*time.Hour))
	assert.Equal(t, "1d2h", FormatDuration(26*time.Hour))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvTTLSeconds, "120")
	assert.Equal(t, 120, TTLFromEnv(3600))
	t.Setenv(EnvTTLSeconds, "5")
	assert.Equal(t, 3600, TTLFromEnv(3600))

	t.Setenv(EnvCacheEnabled, "false")
	assert.False(t, EnabledFromEnv(true))
	t.Setenv(EnvCacheEnabled, "nah")
	assert.True(t, EnabledFromEnv(true))

	t.Setenv(EnvCacheDir, "/tmp/fedipage-cache")
	assert.Equal(t, "/tmp/fedipage-cache", DirFromEnv("/default"))
	t.Setenv(EnvCacheDir, "")
	assert.Equal(t, "/default", DirFromEnv("/default"))
}
