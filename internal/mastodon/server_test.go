package mastodon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

// fakeServer serves a fixed follow graph the way Mastodon paginates it:
// newest first, with a Link header whose next max_id is the last id served.
type fakeServer struct {
	t      *testing.T
	server *httptest.Server

	mu            sync.Mutex
	following     map[string][]Account
	followers     map[string][]Account
	accounts      map[string]Account
	relationships map[string]Relationship
	v2Instance    bool
	version       string
	requests      []string
	relBatches    [][]string
	failNext      int
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		t:             t,
		following:     map[string][]Account{},
		followers:     map[string][]Account{},
		accounts:      map[string]Account{},
		relationships: map[string]Relationship{},
		v2Instance:    true,
		version:       "4.2.1",
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(fs.record)
	api.HandleFunc("/v1/accounts/lookup", fs.lookup).Methods(http.MethodGet)
	api.HandleFunc("/v1/accounts/verify_credentials", fs.verify).Methods(http.MethodGet)
	api.HandleFunc("/v1/accounts/relationships", fs.relationshipsHandler).Methods(http.MethodGet)
	api.HandleFunc("/v1/accounts/{id}/{list:following|followers}", fs.list).Methods(http.MethodGet)
	api.HandleFunc("/v2/instance", fs.instanceV2).Methods(http.MethodGet)
	api.HandleFunc("/v1/instance", fs.instanceV1).Methods(http.MethodGet)

	fs.server = httptest.NewServer(r)
	t.Cleanup(fs.server.Close)
	return fs
}

func (fs *fakeServer) client(t *testing.T, token string) *Client {
	t.Helper()
	c, err := NewClient(fs.server.URL, token, WithHTTPClient(fs.server.Client()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func (fs *fakeServer) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		fs.requests = append(fs.requests, r.URL.Path)
		fail := fs.failNext > 0
		if fail {
			fs.failNext--
		}
		fs.mu.Unlock()

		if fail {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream unavailable"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fs *fakeServer) addAccounts(list map[string][]Account, owner string, n int) []Account {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]Account, 0, n)
	for i := n; i >= 1; i-- {
		id := strconv.Itoa(i)
		a := Account{ID: id, Username: "user" + id, Acct: "user" + id + "@remote.example"}
		fs.accounts[a.Username] = a
		fs.relationships[id] = Relationship{ID: id, Following: i%2 == 0, FollowedBy: true}
		out = append(out, a)
	}
	list[owner] = out
	return out
}

func (fs *fakeServer) list(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fs.mu.Lock()
	src := fs.following
	if vars["list"] == "followers" {
		src = fs.followers
	}
	all, ok := src[vars["id"]]
	fs.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Record not found"})
		return
	}

	limit := DefaultPageSize
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	start := 0
	if maxID := r.URL.Query().Get("max_id"); maxID != "" {
		start = len(all)
		for i, a := range all {
			if a.ID == maxID {
				start = i + 1
				break
			}
		}
	}
	end := min(start+limit, len(all))
	page := all[start:end]

	if end < len(all) && len(page) > 0 {
		next := fmt.Sprintf("%s%s?limit=%d&max_id=%s", fs.server.URL, r.URL.Path, limit, page[len(page)-1].ID)
		prev := fmt.Sprintf("%s%s?limit=%d&min_id=%s", fs.server.URL, r.URL.Path, limit, page[0].ID)
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next", <%s>; rel="prev"`, next, prev))
	}
	writeJSON(w, http.StatusOK, page)
}

func (fs *fakeServer) relationshipsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "The access token is invalid"})
		return
	}
	ids := r.URL.Query()["id[]"]
	fs.mu.Lock()
	fs.relBatches = append(fs.relBatches, ids)
	out := make([]Relationship, 0, len(ids))
	for _, id := range ids {
		out = append(out, fs.relationships[id])
	}
	fs.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (fs *fakeServer) lookup(w http.ResponseWriter, r *http.Request) {
	acct := r.URL.Query().Get("acct")
	fs.mu.Lock()
	a, ok := fs.accounts[acct]
	fs.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Record not found"})
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (fs *fakeServer) verify(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer good-token" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "The access token is invalid"})
		return
	}
	writeJSON(w, http.StatusOK, Account{ID: "99", Username: "me", Acct: "me"})
}

func (fs *fakeServer) instanceV2(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	enabled, version := fs.v2Instance, fs.version
	fs.mu.Unlock()
	if !enabled {
		http.NotFound(w, r)
		return
	}
	body := map[string]any{
		"domain":  "m.example",
		"title":   "Example",
		"version": version,
		"usage":   map[string]any{"users": map[string]int{"active_month": 123}},
	}
	writeJSON(w, http.StatusOK, body)
}

func (fs *fakeServer) instanceV1(w http.ResponseWriter, _ *http.Request) {
	fs.mu.Lock()
	version := fs.version
	fs.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"uri":               "m.example",
		"title":             "Example v1",
		"version":           version,
		"short_description": "legacy",
		"stats":             map[string]int{"user_count": 7},
	})
}

func (fs *fakeServer) requestCount(path string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := 0
	for _, p := range fs.requests {
		if p == path {
			n++
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
