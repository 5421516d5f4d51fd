package cli_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/fedipage/fedipage/internal/cli"
	"github.com/fedipage/fedipage/internal/config"
)

const testToken = "secret-token"

// mastodonServer is a small Mastodon API: one followed account list and one
// follower list for account "1" (alice), paginated newest first.
type mastodonServer struct {
	server *httptest.Server

	mu        sync.Mutex
	following []map[string]any
	followers []map[string]any
	version   string
	v2        bool
	listCalls int
}

func newMastodonServer(t *testing.T, following, followers int) *mastodonServer {
	t.Helper()
	ms := &mastodonServer{
		following: makeAccounts("f", following),
		followers: makeAccounts("r", followers),
		version:   "4.2.1",
		v2:        true,
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/v1/accounts/lookup", ms.lookup).Methods(http.MethodGet)
	api.HandleFunc("/v1/accounts/verify_credentials", ms.verify).Methods(http.MethodGet)
	api.HandleFunc("/v1/accounts/relationships", ms.relationships).Methods(http.MethodGet)
	api.HandleFunc("/v1/accounts/{id}/{list:following|followers}", ms.list).Methods(http.MethodGet)
	api.HandleFunc("/v2/instance", ms.instanceV2).Methods(http.MethodGet)
	api.HandleFunc("/v1/instance", ms.instanceV1).Methods(http.MethodGet)

	ms.server = httptest.NewServer(r)
	t.Cleanup(ms.server.Close)
	return ms
}

// makeAccounts returns n accounts with descending ids. Follower counts grow
// with the id so sorting is observable.
func makeAccounts(prefix string, n int) []map[string]any {
	out := make([]map[string]any, 0, n)
	for i := n; i >= 1; i-- {
		id := prefix + strconv.Itoa(100+i)
		out = append(out, map[string]any{
			"id":              id,
			"username":        "user" + id,
			"acct":            "user" + id + "@remote.example",
			"display_name":    "User " + id,
			"followers_count": i * 10,
			"following_count": i,
			"statuses_count":  i * 3,
			"created_at":      "2023-01-02T03:04:05Z",
		})
	}
	return out
}

func (ms *mastodonServer) URL() string { return ms.server.URL }

func (ms *mastodonServer) setVersion(v string, v2 bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.version, ms.v2 = v, v2
}

func (ms *mastodonServer) listRequests() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.listCalls
}

func (ms *mastodonServer) list(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if vars["id"] != "1" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Record not found"})
		return
	}

	ms.mu.Lock()
	ms.listCalls++
	all := ms.following
	if vars["list"] == "followers" {
		all = ms.followers
	}
	ms.mu.Unlock()

	limit := 40
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	start := 0
	if maxID := r.URL.Query().Get("max_id"); maxID != "" {
		start = len(all)
		for i, a := range all {
			if a["id"] == maxID {
				start = i + 1
				break
			}
		}
	}
	end := min(start+limit, len(all))
	page := all[start:end]
	if end < len(all) && len(page) > 0 {
		next := fmt.Sprintf("%s%s?limit=%d&max_id=%s", ms.server.URL, r.URL.Path, limit, page[len(page)-1]["id"])
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
	}
	writeJSON(w, http.StatusOK, page)
}

func (ms *mastodonServer) lookup(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("acct") != "alice" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Record not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": "1", "username": "alice", "acct": "alice"})
}

func (ms *mastodonServer) verify(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "The access token is invalid"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": "1", "username": "alice", "acct": "alice"})
}

// relationships marks every account with an even id suffix as mutual.
func (ms *mastodonServer) relationships(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "The access token is invalid"})
		return
	}
	ids := r.URL.Query()["id[]"]
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		n, _ := strconv.Atoi(id[1:])
		out = append(out, map[string]any{"id": id, "following": n%2 == 0, "followed_by": true})
	}
	writeJSON(w, http.StatusOK, out)
}

func (ms *mastodonServer) instanceV2(w http.ResponseWriter, r *http.Request) {
	ms.mu.Lock()
	v2, version := ms.v2, ms.version
	ms.mu.Unlock()
	if !v2 {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"domain":  "social.example",
		"title":   "Example Social",
		"version": version,
		"usage":   map[string]any{"users": map[string]int{"active_month": 1234}},
	})
}

func (ms *mastodonServer) instanceV1(w http.ResponseWriter, _ *http.Request) {
	ms.mu.Lock()
	version := ms.version
	ms.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"uri":               "social.example",
		"title":             "Example Social v1",
		"version":           version,
		"short_description": "legacy server",
		"stats":             map[string]int{"user_count": 7},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// setupCLITest isolates the configuration directory and environment and
// returns the FEDIPAGE_HOME directory.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvInstance, "")
	t.Setenv(config.EnvToken, "")
	t.Setenv("FEDIPAGE_CACHE_ENABLED", "")
	t.Setenv("FEDIPAGE_CACHE_DIR", "")
	t.Setenv("FEDIPAGE_CACHE_TTL_SECONDS", "")
	t.Setenv("NO_COLOR", "1")
	config.ResetGlobalConfigForTest()
	t.Cleanup(config.ResetGlobalConfigForTest)
	return home
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	config.ResetGlobalConfigForTest()
	return stdout.String(), stderr.String(), err
}
