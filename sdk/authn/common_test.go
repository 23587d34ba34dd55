package authn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testUsername          = "a@b.com"
	testPassword          = "secret1"
	testRefreshCookieName = "refreshToken"
	testRefreshCookie     = "opaque-refresh-credential"
)

// hitCounter counts requests by path.
type hitCounter struct {
	mu   sync.Mutex
	hits map[string]int
}

func (h *hitCounter) count(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[path]
}

func (h *hitCounter) record(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits[path]++
	return h.hits[path]
}

// newTestBackend returns a stub API server that dispatches on path and
// counts hits. Paths without a handler get a 404.
func newTestBackend(
	t *testing.T,
	handlers map[string]func(w http.ResponseWriter, r *http.Request, hit int),
) (*httptest.Server, *hitCounter) {
	counter := &hitCounter{hits: map[string]int{}}
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				hit := counter.record(r.URL.Path)
				handler, ok := handlers[r.URL.Path]
				if !ok {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				handler(w, r, hit)
			},
		),
	)
	t.Cleanup(server.Close)
	return server, counter
}

// loginHandler accepts the test credentials, sets the refresh cookie and
// returns the given token.
func loginHandler(
	t *testing.T,
	token string,
) func(http.ResponseWriter, *http.Request, int) {
	return func(w http.ResponseWriter, r *http.Request, _ int) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Empty(t, r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body := map[string]string{}
		require.NoError(t, decodeJSON(r, &body))
		if body["username"] != testUsername || body["password"] != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"bad credentials"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     testRefreshCookieName,
			Value:    testRefreshCookie,
			Path:     "/",
			HttpOnly: true,
		})
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"jwtToken":"` + token + `"}`))
	}
}

// refreshHandler issues the given token only if the refresh cookie is
// presented and no bearer token accompanies it.
func refreshHandler(
	t *testing.T,
	token string,
) func(http.ResponseWriter, *http.Request, int) {
	return func(w http.ResponseWriter, r *http.Request, _ int) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Empty(t, r.Header.Get("Authorization"))
		cookie, err := r.Cookie(testRefreshCookieName)
		if err != nil || cookie.Value != testRefreshCookie {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"jwtToken":"` + token + `"}`))
	}
}

func statusHandler(
	statusCode int,
) func(http.ResponseWriter, *http.Request, int) {
	return func(w http.ResponseWriter, _ *http.Request, _ int) {
		w.WriteHeader(statusCode)
	}
}

// recordingNavigator remembers every path it was asked to navigate to.
type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) navigated() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

func newTestStore(t *testing.T, apiAddress string, marker Marker) *Store {
	store, err := NewStore(apiAddress, marker, nil)
	require.NoError(t, err)
	return store
}

func loggedInStore(
	t *testing.T,
	apiAddress string,
	marker Marker,
) *Store {
	store := newTestStore(t, apiAddress, marker)
	<-store.Init(context.Background())
	require.NoError(
		t,
		store.Login(
			context.Background(),
			Credentials{Username: testUsername, Password: testPassword},
		),
	)
	return store
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
