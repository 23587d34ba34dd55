package authn

import (
	"context"
	"net/http"
	"sync"
)

// Decision is the outcome of evaluating a session State for a protected view.
type Decision int

const (
	// Resolving means the session hasn't been initialized. No redirect decision
	// can be made yet.
	Resolving Decision = iota
	// Unauthenticated means the user must be sent to the login view.
	Unauthenticated
	// Authenticated means the protected view may be rendered.
	Authenticated
)

func (d Decision) String() string {
	switch d {
	case Resolving:
		return "resolving"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// Decide maps a session State to a Decision. Protected content is rendered if
// and only if the session is done loading and authenticated.
func Decide(state State) Decision {
	switch {
	case state.Loading:
		return Resolving
	case state.Authenticated:
		return Authenticated
	default:
		return Unauthenticated
	}
}

// GuardOptions represents useful, optional settings for a Guard.
type GuardOptions struct {
	// LoginPath is where unauthenticated users are redirected. Defaults to
	// DefaultLoginPath.
	LoginPath string
	// LoadingHandler renders the loading indicator while the session is
	// resolving. Defaults to a minimal self-refreshing page.
	LoadingHandler http.Handler
}

// Guard gates protected views on resolved session state.
type Guard struct {
	session        StateReader
	loginPath      string
	loadingHandler http.Handler
}

// NewGuard returns a Guard that consults the given session.
func NewGuard(session StateReader, opts *GuardOptions) *Guard {
	if opts == nil {
		opts = &GuardOptions{}
	}
	g := &Guard{
		session:        session,
		loginPath:      opts.LoginPath,
		loadingHandler: opts.LoadingHandler,
	}
	if g.loginPath == "" {
		g.loginPath = DefaultLoginPath
	}
	if g.loadingHandler == nil {
		g.loadingHandler = http.HandlerFunc(serveLoading)
	}
	return g
}

// Decide evaluates the session's current State.
func (g *Guard) Decide() Decision {
	return Decide(g.session.State())
}

// Middleware wraps a protected handler. State is re-evaluated on every
// request. Unauthenticated requests are redirected to the login view with an
// empty body, so no protected content is ever written.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch g.Decide() {
		case Resolving:
			g.loadingHandler.ServeHTTP(w, r)
		case Authenticated:
			next.ServeHTTP(w, r)
		default:
			w.Header().Set("Location", g.loginPath)
			w.Header().Set("Cache-Control", "no-store")
			w.WriteHeader(http.StatusSeeOther)
		}
	})
}

// Watch calls fn with the current Decision and then again each time a session
// transition changes it. It stops once ctx is canceled or the returned stop
// function is called, whichever comes first; no call to fn is made after
// that. Until one of those happens a goroutine stays parked on ctx, so callers
// passing a context that is never canceled must call stop.
func (g *Guard) Watch(
	ctx context.Context,
	subscriber Subscriber,
	fn func(Decision),
) (stop func()) {
	var mu sync.Mutex
	var last Decision
	stopped := false
	mu.Lock()
	unsubscribe := subscriber.Subscribe(func(state State) {
		mu.Lock()
		defer mu.Unlock()
		if stopped || ctx.Err() != nil {
			return
		}
		if d := Decide(state); d != last {
			last = d
			fn(d)
		}
	})
	// Read only after subscribing so a transition in between is not lost.
	last = g.Decide()
	fn(last)
	mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	stop = func() {
		once.Do(func() {
			mu.Lock()
			stopped = true
			mu.Unlock()
			unsubscribe()
			close(done)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()
	return stop
}

const loadingPage = `<!DOCTYPE html>
<html>
<head><meta http-equiv="refresh" content="1"><title>Loading</title></head>
<body><p>Loading&hellip;</p></body>
</html>
`

func serveLoading(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(loadingPage))
}
