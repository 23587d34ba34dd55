package console

import (
	"net/http"
	"strings"
)

var protectedPathPrefixes = []string{
	"/script",
	"/community/create",
	"/dashboard",
	"/site",
}

// CookieChecker reports whether a cookie of the given name is on hand.
type CookieChecker interface {
	HasCookie(name string) bool
}

// cookieGate redirects requests for protected paths to the login view when
// no refresh cookie is on hand. This is a first, cheap line of defense. It
// never looks at the cookie's value and the backend remains the authority on
// every request.
type cookieGate struct {
	cookies    CookieChecker
	cookieName string
	loginPath  string
}

func newCookieGate(
	cookies CookieChecker,
	cookieName string,
	loginPath string,
) *cookieGate {
	return &cookieGate{
		cookies:    cookies,
		cookieName: cookieName,
		loginPath:  loginPath,
	}
}

func isProtectedPath(path string) bool {
	for _, prefix := range protectedPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (c *cookieGate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isProtectedPath(r.URL.Path) && !c.cookies.HasCookie(c.cookieName) {
			w.Header().Set("Cache-Control", "no-store")
			http.Redirect(w, r, c.loginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
