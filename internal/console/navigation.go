package console

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/ansycloud/console/sdk/authn"
)

type redirectorContextKey struct{}

// redirector lets code deep inside the handling of a request, like the
// authenticated request wrapper, send the user elsewhere.
type redirector struct {
	mu         sync.Mutex
	w          http.ResponseWriter
	redirected bool
}

func (r *redirector) redirect(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.redirected {
		return
	}
	r.redirected = true
	r.w.Header().Set("Location", path)
	r.w.Header().Set("Cache-Control", "no-store")
	r.w.WriteHeader(http.StatusSeeOther)
}

// withRedirector places a redirector for the current request into the
// request's context.
func withRedirector(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rd := &redirector{w: w}
		ctx := context.WithValue(r.Context(), redirectorContextKey{}, rd)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// redirected returns true if the request whose context is given has already
// been answered with a redirect.
func redirected(ctx context.Context) bool {
	rd, ok := ctx.Value(redirectorContextKey{}).(*redirector)
	if !ok {
		return false
	}
	rd.mu.Lock()
	defer rd.mu.Unlock()
	return rd.redirected
}

// requestNavigator answers the request in progress with a 303 to the given
// path.
var requestNavigator = authn.NavigatorFunc(
	func(ctx context.Context, path string) {
		rd, ok := ctx.Value(redirectorContextKey{}).(*redirector)
		if !ok {
			log.Printf("session expired outside of a request; login at %s", path)
			return
		}
		rd.redirect(path)
	},
)
