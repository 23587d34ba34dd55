package console

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeCookies map[string]bool

func (f fakeCookies) HasCookie(name string) bool {
	return f[name]
}

func TestIsProtectedPath(t *testing.T) {
	testCases := map[string]bool{
		"/":                    false,
		"/login":               false,
		"/register":            false,
		"/community":           false,
		"/healthz":             false,
		"/community/create":    true,
		"/script":              true,
		"/script/deploy":       true,
		"/script/executions":   true,
		"/script/execution/12": true,
		"/dashboard":           true,
		"/site":                true,
		"/site/create":         true,
	}
	for path, expected := range testCases {
		require.Equal(t, expected, isProtectedPath(path), path)
	}
}

func TestCookieGate(t *testing.T) {
	testCases := []struct {
		name         string
		cookies      fakeCookies
		path         string
		expectedCode int
	}{
		{
			name:         "protected path without cookie",
			cookies:      fakeCookies{},
			path:         "/site",
			expectedCode: http.StatusSeeOther,
		},
		{
			name:         "protected path with someone else's cookie",
			cookies:      fakeCookies{"other": true},
			path:         "/script/deploy",
			expectedCode: http.StatusSeeOther,
		},
		{
			name:         "protected path with cookie",
			cookies:      fakeCookies{"refreshToken": true},
			path:         "/site",
			expectedCode: http.StatusTeapot,
		},
		{
			name:         "public path without cookie",
			cookies:      fakeCookies{},
			path:         "/community",
			expectedCode: http.StatusTeapot,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			gate := newCookieGate(testCase.cookies, "refreshToken", "/login")
			handler := gate.Middleware(
				http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
					w.WriteHeader(http.StatusTeapot)
				}),
			)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(
				rr,
				httptest.NewRequest(http.MethodGet, testCase.path, nil),
			)
			require.Equal(t, testCase.expectedCode, rr.Code)
			if testCase.expectedCode == http.StatusSeeOther {
				require.Equal(t, "/login", rr.Header().Get("Location"))
			}
		})
	}
}
