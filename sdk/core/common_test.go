package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// newJSONServer returns a stub API server that checks the method and path of
// every request, hands the request to check (if not nil), and responds with
// the given status code and body.
func newJSONServer(
	t *testing.T,
	method string,
	path string,
	statusCode int,
	body string,
	check func(*http.Request),
) *httptest.Server {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				defer r.Body.Close()
				require.Equal(t, method, r.Method)
				require.Equal(t, path, r.URL.Path)
				if check != nil {
					check(r)
				}
				w.WriteHeader(statusCode)
				_, _ = w.Write([]byte(body))
			},
		),
	)
	t.Cleanup(server.Close)
	return server
}

func requireJSONBody(t *testing.T, r *http.Request, expected string) {
	actual := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(r.Body).Decode(&actual))
	actualBytes, err := json.Marshal(actual)
	require.NoError(t, err)
	require.JSONEq(t, expected, string(actualBytes))
}
