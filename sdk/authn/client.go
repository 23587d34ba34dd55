package authn

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net/http"
	"reflect"
	"strings"

	"github.com/ansycloud/console/sdk"
	"github.com/pkg/errors"
)

// DefaultLoginPath is where users are sent when their session can't be
// recovered.
const DefaultLoginPath = "/login"

// Navigator moves the user to another view. The authenticated request wrapper
// uses it to send the user to the login view once a session has expired.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts an ordinary function to the Navigator interface.
type NavigatorFunc func(ctx context.Context, path string)

// Navigate calls f(ctx, path).
func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	f(ctx, path)
}

var logNavigator = NavigatorFunc(func(_ context.Context, path string) {
	log.Printf("session expired; visit %s to log in again", path)
})

// ClientOptions represents useful, optional settings for a Client.
type ClientOptions struct {
	// APIAddress, if set, is prepended to request URLs that are not absolute.
	APIAddress string
	// AllowInsecure permits TLS connections to an API server with an
	// untrusted certificate. Ignored if HTTPClient is set.
	AllowInsecure bool
	// HTTPClient, if set, is used to send requests.
	HTTPClient *http.Client
	// Navigator is told where to send the user when their session expires. By
	// default, this is only logged.
	Navigator Navigator
	// LoginPath is the login view. Defaults to DefaultLoginPath.
	LoginPath string
}

// Client is the authenticated request wrapper. It attaches the session's
// current access token to outgoing requests and, when a request comes back
// 401, refreshes the session once and retries the request once.
type Client struct {
	session    Session
	apiAddress string
	httpClient *http.Client
	navigator  Navigator
	loginPath  string
}

// NewClient returns an authenticated request wrapper bound to the given
// session.
func NewClient(session Session, opts *ClientOptions) *Client {
	if opts == nil {
		opts = &ClientOptions{}
	}
	c := &Client{
		session:    session,
		apiAddress: strings.TrimSuffix(opts.APIAddress, "/"),
		httpClient: opts.HTTPClient,
		navigator:  opts.Navigator,
		loginPath:  opts.LoginPath,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: opts.AllowInsecure,
				},
			},
		}
	}
	if c.navigator == nil {
		c.navigator = logNavigator
	}
	if c.loginPath == "" {
		c.loginPath = DefaultLoginPath
	}
	return c
}

// Fetch builds a request from its arguments and sends it with Do. Relative
// URLs are resolved against the client's API address.
func (c *Client) Fetch(
	ctx context.Context,
	method string,
	url string,
	body []byte,
	headers http.Header,
) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.resolve(url), bodyReader)
	if err != nil {
		return nil, errors.Wrapf(err, "error creating request %s %s", method, url)
	}
	for k, vals := range headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	return c.Do(req)
}

// Do sends the request with the session's current access token. Responses
// other than 401 are returned to the caller as they are. On a 401, the session
// is refreshed exactly once. If that yields a new token, the request is
// reissued exactly once and whatever comes back is returned, even another 401.
// If it doesn't, the session is logged out, the user is navigated to the login
// view, and an *sdk.ErrAuthenticationExpired is returned.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if isNilSession(c.session) {
		return nil, &sdk.ErrConfiguration{
			Reason: "authenticated request attempted without a session",
		}
	}
	ctx := req.Context()

	getBody, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	// The token is read now, at send time, rather than whenever the caller
	// built the request.
	resp, err := c.send(req, getBody, c.session.State().AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	drain(resp)

	token, ok := c.session.Refresh(ctx)
	if !ok {
		// A caller that has gone away leaves the session as it was.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.session.Logout(ctx)
		c.navigator.Navigate(ctx, c.loginPath)
		return nil, &sdk.ErrAuthenticationExpired{}
	}
	return c.send(req, getBody, token)
}

func (c *Client) send(
	orig *http.Request,
	getBody func() (io.ReadCloser, error),
	token string,
) (*http.Response, error) {
	req := orig.Clone(orig.Context())
	req.Header = http.Header{}
	req.Header.Set("Content-Type", "application/json")
	for k, vals := range orig.Header {
		req.Header[k] = append([]string(nil), vals...)
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	if getBody != nil {
		body, err := getBody()
		if err != nil {
			return nil, errors.Wrap(err, "error rewinding request body")
		}
		req.Body = body
		req.GetBody = getBody
	}
	return c.httpClient.Do(req)
}

func (c *Client) resolve(url string) string {
	if c.apiAddress == "" ||
		strings.HasPrefix(url, "http://") ||
		strings.HasPrefix(url, "https://") {
		return url
	}
	return fmt.Sprintf("%s/%s", c.apiAddress, strings.TrimPrefix(url, "/"))
}

// replayableBody returns a function that yields a fresh copy of the request
// body, or nil if the request has no body.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		req.Body.Close()
		return req.GetBody, nil
	}
	bodyBytes, err := ioutil.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, errors.Wrap(err, "error reading request body")
	}
	return func() (io.ReadCloser, error) {
		return ioutil.NopCloser(bytes.NewReader(bodyBytes)), nil
	}, nil
}

func isNilSession(session Session) bool {
	if session == nil {
		return true
	}
	v := reflect.ValueOf(session)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
