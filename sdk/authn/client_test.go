package authn

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/ioutil"
	"net/http"
	"testing"
	"time"

	"github.com/ansycloud/console/sdk"
	"github.com/stretchr/testify/require"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(nil, nil)
	require.NotNil(t, client.httpClient)
	require.NotNil(t, client.navigator)
	require.Equal(t, DefaultLoginPath, client.loginPath)
}

func TestClientWithoutSession(t *testing.T) {
	testCases := []struct {
		name    string
		session Session
	}{
		{
			name:    "nil interface",
			session: nil,
		},
		{
			name:    "nil store",
			session: (*Store)(nil),
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			server, counter := newTestBackend(
				t,
				map[string]func(http.ResponseWriter, *http.Request, int){
					"/api/x": statusHandler(http.StatusOK),
				},
			)
			client := NewClient(testCase.session, nil)
			_, err := client.Fetch(
				context.Background(),
				http.MethodGet,
				server.URL+"/api/x",
				nil,
				nil,
			)
			require.IsType(t, &sdk.ErrConfiguration{}, err)
			require.Equal(t, 0, counter.count("/api/x"))
		})
	}
}

func TestClientRefreshesAndRetriesOn401(t *testing.T) {
	server, counter := newTestBackend(
		t,
		map[string]func(http.ResponseWriter, *http.Request, int){
			"/api/auth/login":   loginHandler(t, "T1"),
			"/api/auth/refresh": refreshHandler(t, "T2"),
			"/api/x": func(w http.ResponseWriter, r *http.Request, hit int) {
				if hit == 1 {
					require.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				require.Equal(t, "Bearer T2", r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"ok":true}`))
			},
		},
	)
	store := loggedInStore(t, server.URL, nil)
	navigator := &recordingNavigator{}
	client := NewClient(
		store,
		&ClientOptions{
			APIAddress: server.URL,
			Navigator:  navigator,
		},
	)
	resp, err := client.Fetch(
		context.Background(),
		http.MethodGet,
		"/api/x",
		nil,
		nil,
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))
	require.Equal(t, 1, counter.count("/api/auth/refresh"))
	require.Equal(t, 2, counter.count("/api/x"))
	require.Equal(t, "T2", store.State().AccessToken)
	require.Empty(t, navigator.navigated())
}

func TestClientRefreshFailureLogsOut(t *testing.T) {
	server, counter := newTestBackend(
		t,
		map[string]func(http.ResponseWriter, *http.Request, int){
			"/api/auth/login":   loginHandler(t, "T1"),
			"/api/auth/refresh": statusHandler(http.StatusUnauthorized),
			"/api/auth/logout":  statusHandler(http.StatusOK),
			"/api/x":            statusHandler(http.StatusUnauthorized),
		},
	)
	marker := NewMemoryMarker(false)
	store := loggedInStore(t, server.URL, marker)
	navigator := &recordingNavigator{}
	client := NewClient(
		store,
		&ClientOptions{
			APIAddress: server.URL,
			Navigator:  navigator,
		},
	)
	resp, err := client.Fetch(
		context.Background(),
		http.MethodGet,
		"/api/x",
		nil,
		nil,
	)
	require.Nil(t, resp)
	require.IsType(t, &sdk.ErrAuthenticationExpired{}, err)
	require.Equal(t, 1, counter.count("/api/auth/refresh"))
	require.Equal(t, 1, counter.count("/api/auth/logout"))
	require.Equal(t, 1, counter.count("/api/x"))
	require.Equal(t, []string{"/login"}, navigator.navigated())
	require.Equal(t, State{}, store.State())
	set, err := marker.IsSet()
	require.NoError(t, err)
	require.False(t, set)
}

func TestClientSharedRefreshSurvivesCanceledCaller(t *testing.T) {
	refreshStarted := make(chan struct{})
	releaseRefresh := make(chan struct{})
	refresh := refreshHandler(t, "T2")
	unauthorizedOnce := func(w http.ResponseWriter, r *http.Request, hit int) {
		if hit == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		require.Equal(t, "Bearer T2", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}
	server, counter := newTestBackend(
		t,
		map[string]func(http.ResponseWriter, *http.Request, int){
			"/api/auth/login": loginHandler(t, "T1"),
			"/api/auth/refresh": func(w http.ResponseWriter, r *http.Request, hit int) {
				if hit == 1 {
					close(refreshStarted)
				}
				<-releaseRefresh
				refresh(w, r, hit)
			},
			"/api/auth/logout": statusHandler(http.StatusOK),
			"/api/x":           unauthorizedOnce,
			"/api/y":           unauthorizedOnce,
		},
	)
	store := loggedInStore(t, server.URL, nil)
	navigator := &recordingNavigator{}
	client := NewClient(
		store,
		&ClientOptions{
			APIAddress: server.URL,
			Navigator:  navigator,
		},
	)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		resp, err := client.Fetch(ctxA, http.MethodGet, "/api/x", nil, nil)
		if err == nil {
			resp.Body.Close()
		}
		errA <- err
	}()
	<-refreshStarted

	type result struct {
		resp *http.Response
		err  error
	}
	resultB := make(chan result, 1)
	go func() {
		resp, err := client.Fetch(
			context.Background(),
			http.MethodGet,
			"/api/y",
			nil,
			nil,
		)
		resultB <- result{resp: resp, err: err}
	}()
	require.Eventually(
		t,
		func() bool { return counter.count("/api/y") == 1 },
		time.Second,
		5*time.Millisecond,
	)

	cancelA()
	time.Sleep(20 * time.Millisecond)
	close(releaseRefresh)

	err := <-errA
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))

	b := <-resultB
	require.NoError(t, b.err)
	b.resp.Body.Close()
	require.Equal(t, http.StatusOK, b.resp.StatusCode)

	require.Equal(t, 0, counter.count("/api/auth/logout"))
	require.Empty(t, navigator.navigated())
	require.Equal(t, "T2", store.State().AccessToken)
	require.True(t, store.State().Authenticated)
}

func TestClientCanceledCallerDoesNotLogOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server, counter := newTestBackend(
		t,
		map[string]func(http.ResponseWriter, *http.Request, int){
			"/api/auth/login": loginHandler(t, "T1"),
			"/api/auth/refresh": func(w http.ResponseWriter, _ *http.Request, _ int) {
				cancel()
				w.WriteHeader(http.StatusUnauthorized)
			},
			"/api/auth/logout": statusHandler(http.StatusOK),
			"/api/x":           statusHandler(http.StatusUnauthorized),
		},
	)
	store := loggedInStore(t, server.URL, nil)
	navigator := &recordingNavigator{}
	client := NewClient(
		store,
		&ClientOptions{
			APIAddress: server.URL,
			Navigator:  navigator,
		},
	)
	resp, err := client.Fetch(ctx, http.MethodGet, "/api/x", nil, nil)
	require.Nil(t, resp)
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, counter.count("/api/auth/refresh"))
	require.Equal(t, 0, counter.count("/api/auth/logout"))
	require.Empty(t, navigator.navigated())
	require.Equal(t, "T1", store.State().AccessToken)
	require.True(t, store.State().Authenticated)
}

func TestClientRetriesAtMostOnce(t *testing.T) {
	server, counter := newTestBackend(
		t,
		map[string]func(http.ResponseWriter, *http.Request, int){
			"/api/auth/login":   loginHandler(t, "T1"),
			"/api/auth/refresh": refreshHandler(t, "T2"),
			"/api/auth/logout":  statusHandler(http.StatusOK),
			"/api/x":            statusHandler(http.StatusUnauthorized),
		},
	)
	store := loggedInStore(t, server.URL, nil)
	navigator := &recordingNavigator{}
	client := NewClient(
		store,
		&ClientOptions{
			APIAddress: server.URL,
			Navigator:  navigator,
		},
	)
	resp, err := client.Fetch(
		context.Background(),
		http.MethodGet,
		"/api/x",
		nil,
		nil,
	)
	require.NoError(t, err)
	defer resp.Body.Close()
	// The second 401 is handed back as is.
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 1, counter.count("/api/auth/refresh"))
	require.Equal(t, 2, counter.count("/api/x"))
	require.Equal(t, 0, counter.count("/api/auth/logout"))
	require.Empty(t, navigator.navigated())
	require.True(t, store.State().Authenticated)
}

func TestClientPassesThroughOtherErrors(t *testing.T) {
	testCases := []int{
		http.StatusBadRequest,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusInternalServerError,
	}
	for _, statusCode := range testCases {
		t.Run(http.StatusText(statusCode), func(t *testing.T) {
			server, counter := newTestBackend(
				t,
				map[string]func(http.ResponseWriter, *http.Request, int){
					"/api/auth/login": loginHandler(t, "T1"),
					"/api/x":          statusHandler(statusCode),
				},
			)
			store := loggedInStore(t, server.URL, nil)
			client := NewClient(store, &ClientOptions{APIAddress: server.URL})
			resp, err := client.Fetch(
				context.Background(),
				http.MethodGet,
				"/api/x",
				nil,
				nil,
			)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, statusCode, resp.StatusCode)
			require.Equal(t, 0, counter.count("/api/auth/refresh"))
			require.Equal(t, 1, counter.count("/api/x"))
		})
	}
}

func TestClientHeaders(t *testing.T) {
	server, _ := newTestBackend(
		t,
		map[string]func(http.ResponseWriter, *http.Request, int){
			"/api/auth/login": loginHandler(t, "T1"),
			"/api/x": func(w http.ResponseWriter, r *http.Request, _ int) {
				require.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
				require.Equal(t, "text/yaml", r.Header.Get("Content-Type"))
				require.Equal(t, "yes", r.Header.Get("X-Custom"))
				w.WriteHeader(http.StatusOK)
			},
			"/api/y": func(w http.ResponseWriter, r *http.Request, _ int) {
				require.Equal(t, "application/json", r.Header.Get("Content-Type"))
				w.WriteHeader(http.StatusOK)
			},
		},
	)
	store := loggedInStore(t, server.URL, nil)
	client := NewClient(store, &ClientOptions{APIAddress: server.URL})

	resp, err := client.Fetch(
		context.Background(),
		http.MethodGet,
		"/api/x",
		nil,
		http.Header{
			"Content-Type": []string{"text/yaml"},
			"X-Custom":     []string{"yes"},
		},
	)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Fetch(
		context.Background(),
		http.MethodGet,
		"/api/y",
		nil,
		nil,
	)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClientWithoutTokenSendsNoAuthorization(t *testing.T) {
	server, _ := newTestBackend(
		t,
		map[string]func(http.ResponseWriter, *http.Request, int){
			"/api/x": func(w http.ResponseWriter, r *http.Request, _ int) {
				require.Empty(t, r.Header.Get("Authorization"))
				w.WriteHeader(http.StatusOK)
			},
		},
	)
	store := newTestStore(t, server.URL, nil)
	<-store.Init(context.Background())
	client := NewClient(store, &ClientOptions{APIAddress: server.URL})
	resp, err := client.Fetch(
		context.Background(),
		http.MethodGet,
		"/api/x",
		nil,
		nil,
	)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClientReplaysBodyOnRetry(t *testing.T) {
	const payload = `{"scriptName":"deploy"}`
	server, _ := newTestBackend(
		t,
		map[string]func(http.ResponseWriter, *http.Request, int){
			"/api/auth/login":   loginHandler(t, "T1"),
			"/api/auth/refresh": refreshHandler(t, "T2"),
			"/api/x": func(w http.ResponseWriter, r *http.Request, hit int) {
				body, err := ioutil.ReadAll(r.Body)
				require.NoError(t, err)
				require.Equal(t, payload, string(body))
				if hit == 1 {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				w.WriteHeader(http.StatusCreated)
			},
		},
	)
	store := loggedInStore(t, server.URL, nil)
	client := NewClient(store, nil)

	// A body without GetBody has to be buffered to be replayed.
	req, err := http.NewRequest(
		http.MethodPost,
		server.URL+"/api/x",
		ioutil.NopCloser(bytes.NewBufferString(payload)),
	)
	require.NoError(t, err)
	require.Nil(t, req.GetBody)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

// trackedBody records whether it was closed.
type trackedBody struct {
	*bytes.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

func TestClientClosesBodyReplacedByGetBody(t *testing.T) {
	const payload = `{"scriptName":"deploy"}`
	server, _ := newTestBackend(
		t,
		map[string]func(http.ResponseWriter, *http.Request, int){
			"/api/auth/login": loginHandler(t, "T1"),
			"/api/x": func(w http.ResponseWriter, r *http.Request, _ int) {
				body, err := ioutil.ReadAll(r.Body)
				require.NoError(t, err)
				require.Equal(t, payload, string(body))
				w.WriteHeader(http.StatusCreated)
			},
		},
	)
	store := loggedInStore(t, server.URL, nil)
	client := NewClient(store, nil)

	original := &trackedBody{Reader: bytes.NewReader([]byte(payload))}
	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/x", original)
	require.NoError(t, err)
	req.GetBody = func() (io.ReadCloser, error) {
		return ioutil.NopCloser(bytes.NewBufferString(payload)), nil
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, original.closed)
}

func TestClientResolve(t *testing.T) {
	client := NewClient(nil, &ClientOptions{APIAddress: "http://api:8080/"})
	require.Equal(t, "http://api:8080/api/x", client.resolve("/api/x"))
	require.Equal(t, "http://api:8080/api/x", client.resolve("api/x"))
	require.Equal(
		t,
		"https://elsewhere/api/x",
		client.resolve("https://elsewhere/api/x"),
	)
	require.Equal(t, "/api/x", NewClient(nil, nil).resolve("/api/x"))
}
