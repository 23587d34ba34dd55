package authn

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/ansycloud/console/sdk"
	"github.com/ansycloud/console/sdk/internal/restmachinery"
	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"
)

const (
	loginPath   = "api/auth/login"
	logoutPath  = "api/auth/logout"
	refreshPath = "api/auth/refresh"

	refreshTimeout = 30 * time.Second
)

// State is a point-in-time snapshot of a session.
type State struct {
	// AccessToken is the current bearer credential. It exists only in memory.
	AccessToken string
	// Authenticated indicates the user is believed to be logged in. It can be
	// true before any token has been obtained, while a refresh is pending.
	Authenticated bool
	// Loading is true only until the session has been initialized.
	Loading bool
}

// StateReader is anything that can report the current session State.
type StateReader interface {
	State() State
}

// Subscriber is anything that can notify observers of session State
// transitions.
type Subscriber interface {
	// Subscribe registers fn to be called with the new State after every
	// transition. The returned function removes the registration.
	Subscribe(fn func(State)) (unsubscribe func())
}

// Session is the interface through which the authenticated request wrapper
// consults and mutates session state.
type Session interface {
	StateReader
	// Refresh exchanges the refresh cookie for a new access token. The boolean
	// is false if no token could be obtained.
	Refresh(ctx context.Context) (string, bool)
	// Logout ends the session. It always succeeds from the caller's
	// perspective.
	Logout(ctx context.Context)
}

// StoreOptions represents useful, optional settings for a Store.
type StoreOptions struct {
	// AllowInsecure permits TLS connections to an API server with an
	// untrusted certificate.
	AllowInsecure bool
	// HTTPClient, if set, is used for all authentication requests. A cookie jar
	// is attached to it if it doesn't already have one.
	HTTPClient *http.Client
}

// Store is the single process-wide holder of the current access token and
// authentication status. State is only ever mutated by Init, Login, Logout and
// Refresh.
type Store struct {
	*restmachinery.BaseClient
	httpClient   *http.Client
	marker       Marker
	refreshGroup singleflight.Group

	mu               sync.RWMutex
	state            State
	subscribers      map[int]func(State)
	nextSubscriberID int
}

// NewStore returns a Store for the API server at the specified address. The
// marker records whether the user was authenticated as of the last session;
// if nil, a MemoryMarker is used.
func NewStore(
	apiAddress string,
	marker Marker,
	opts *StoreOptions,
) (*Store, error) {
	if opts == nil {
		opts = &StoreOptions{}
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: opts.AllowInsecure,
				},
			},
		}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(
			&cookiejar.Options{PublicSuffixList: publicsuffix.List},
		)
		if err != nil {
			return nil, errors.Wrap(err, "error creating cookie jar")
		}
		httpClient.Jar = jar
	}
	if marker == nil {
		marker = NewMemoryMarker(false)
	}
	return &Store{
		BaseClient: &restmachinery.BaseClient{
			APIAddress: apiAddress,
			HTTPClient: httpClient,
		},
		httpClient:  httpClient,
		marker:      marker,
		state:       State{Loading: true},
		subscribers: map[int]func(State){},
	}, nil
}

// State returns a snapshot of the current session state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to be called with the new State after every
// transition.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubscriberID
	s.nextSubscriberID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Init resolves the initial session state. If the marker is set, the session
// is optimistically considered authenticated right away and a refresh is
// attempted in the background. This only spares the UI a loading state. The
// backend still authorizes every request on its own.
//
// The returned channel is closed once any background refresh has finished.
func (s *Store) Init(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	marked, err := s.marker.IsSet()
	if err != nil {
		log.Println(errors.Wrap(err, "error reading session marker"))
	}
	if !marked {
		s.transition(func(state *State) {
			state.Authenticated = false
			state.Loading = false
		})
		close(done)
		return done
	}
	s.transition(func(state *State) {
		state.Authenticated = true
		state.Loading = false
	})
	go func() {
		defer close(done)
		// A failed refresh leaves the session authenticated but unverified. The
		// next request to come back 401 settles the matter.
		if _, ok := s.Refresh(ctx); !ok {
			log.Println("background session refresh failed")
		}
	}()
	return done
}

// Login exchanges credentials for an access token. The backend also sets the
// refresh cookie on the response. If the credentials are rejected, state is
// left untouched and an *sdk.ErrAuthenticationFailed is returned.
func (s *Store) Login(ctx context.Context, creds Credentials) error {
	reqBodyBytes, err := json.Marshal(creds)
	if err != nil {
		return errors.Wrap(err, "error marshaling request body")
	}
	resp, err := s.post(ctx, loginPath, reqBodyBytes)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "error reading response body")
	}
	if !restmachinery.IsSuccess(resp.StatusCode) {
		authErr := &sdk.ErrAuthenticationFailed{}
		if len(bytes.TrimSpace(respBodyBytes)) > 0 {
			_ = json.Unmarshal(respBodyBytes, authErr)
		}
		return authErr
	}
	token, err := accessTokenFromBody(respBodyBytes)
	if err != nil {
		return &sdk.ErrAuthenticationFailed{Reason: err.Error()}
	}
	s.authenticate(token)
	return nil
}

// Logout asks the backend to end the session and then, regardless of the
// outcome, clears all local session state and the marker. It is idempotent.
func (s *Store) Logout(ctx context.Context) {
	if resp, err := s.post(ctx, logoutPath, nil); err != nil {
		log.Println(errors.Wrap(err, "error logging out"))
	} else {
		drain(resp)
		if !restmachinery.IsSuccess(resp.StatusCode) {
			log.Printf("received %d from API server on logout", resp.StatusCode)
		}
	}
	if err := s.marker.Clear(); err != nil {
		log.Println(errors.Wrap(err, "error clearing session marker"))
	}
	s.transition(func(state *State) {
		state.AccessToken = ""
		state.Authenticated = false
	})
}

// Refresh exchanges the refresh cookie for a new access token. Concurrent
// callers share a single in-flight request. That request is detached from the
// cancellation of whichever caller started it and is bounded by
// refreshTimeout instead. Failure is logged and reported only through the
// boolean. It never logs the user out; deciding whether a failed refresh ends
// the session is up to the caller.
func (s *Store) Refresh(ctx context.Context) (string, bool) {
	v, _, _ := s.refreshGroup.Do(
		refreshPath,
		func() (interface{}, error) {
			refreshCtx, cancel := context.WithTimeout(
				context.WithoutCancel(ctx),
				refreshTimeout,
			)
			defer cancel()
			return s.refresh(refreshCtx), nil
		},
	)
	token := v.(string)
	return token, token != ""
}

// HasCookie returns true if the jar holds a cookie of the given name that
// would accompany a refresh request. Only presence is reported.
func (s *Store) HasCookie(name string) bool {
	u, err := url.Parse(s.URL(refreshPath))
	if err != nil {
		return false
	}
	for _, cookie := range s.httpClient.Jar.Cookies(u) {
		if cookie.Name == name {
			return true
		}
	}
	return false
}

func (s *Store) refresh(ctx context.Context) string {
	resp, err := s.post(ctx, refreshPath, nil)
	if err != nil {
		log.Println(errors.Wrap(err, "error refreshing session"))
		return ""
	}
	defer resp.Body.Close()
	if !restmachinery.IsSuccess(resp.StatusCode) {
		log.Printf("received %d from API server on refresh", resp.StatusCode)
		return ""
	}
	respBodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		log.Println(errors.Wrap(err, "error reading refresh response body"))
		return ""
	}
	token, err := accessTokenFromBody(respBodyBytes)
	if err != nil {
		log.Println(err)
		return ""
	}
	s.authenticate(token)
	return token
}

func (s *Store) authenticate(token string) {
	if err := s.marker.Set(); err != nil {
		log.Println(errors.Wrap(err, "error writing session marker"))
	}
	s.transition(func(state *State) {
		state.AccessToken = token
		state.Authenticated = true
		state.Loading = false
	})
}

// post issues a credentialed request (the jar supplies the refresh cookie)
// with no bearer token.
func (s *Store) post(
	ctx context.Context,
	path string,
	body []byte,
) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.URL(path),
		bodyReader,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating request POST %s", path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error invoking API")
	}
	return resp, nil
}

// transition applies mutate to the state and, if anything changed, notifies
// subscribers of the new state. Subscribers are called without the lock held.
func (s *Store) transition(mutate func(*State)) {
	s.mu.Lock()
	before := s.state
	mutate(&s.state)
	after := s.state
	var subscribers []func(State)
	if after != before {
		ids := make([]int, 0, len(s.subscribers))
		for id := range s.subscribers {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			subscribers = append(subscribers, s.subscribers[id])
		}
	}
	s.mu.Unlock()
	for _, fn := range subscribers {
		fn(after)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(ioutil.Discard, resp.Body)
	resp.Body.Close()
}
