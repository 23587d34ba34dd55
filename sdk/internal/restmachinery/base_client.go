package restmachinery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"

	"github.com/ansycloud/console/sdk"
	"github.com/pkg/errors"
)

// Doer is satisfied by *http.Client as well as by the authenticated request
// wrapper, which lets specialized clients stay oblivious to how (or whether)
// their requests are authenticated.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// BaseClient holds what every specialized client needs to talk to the
// backend API.
type BaseClient struct {
	APIAddress string
	HTTPClient Doer
}

// ExecuteRequest submits the request and, if the request specifies a response
// object, unmarshals the response body into it.
func (b *BaseClient) ExecuteRequest(
	ctx context.Context,
	req OutboundRequest,
) error {
	resp, err := b.SubmitRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if req.RespObj != nil {
		respBodyBytes, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return errors.Wrap(err, "error reading response body")
		}
		if len(bytes.TrimSpace(respBodyBytes)) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBodyBytes, req.RespObj); err != nil {
			return errors.Wrap(err, "error unmarshaling response body")
		}
	}
	return nil
}

// SubmitRequest submits the request and returns the response if its status
// code indicates success. Otherwise, an error is returned whose type hints at
// what went wrong. Callers are responsible for closing the response body.
func (b *BaseClient) SubmitRequest(
	ctx context.Context,
	req OutboundRequest,
) (*http.Response, error) {
	var reqBodyReader io.Reader
	if req.ReqBodyObj != nil {
		switch rb := req.ReqBodyObj.(type) {
		case []byte:
			reqBodyReader = bytes.NewReader(rb)
		default:
			reqBodyBytes, err := json.Marshal(req.ReqBodyObj)
			if err != nil {
				return nil, errors.Wrap(err, "error marshaling request body")
			}
			reqBodyReader = bytes.NewReader(reqBodyBytes)
		}
	}

	r, err := http.NewRequestWithContext(
		ctx,
		req.Method,
		b.URL(req.Path),
		reqBodyReader,
	)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error creating request %s %s",
			req.Method,
			req.Path,
		)
	}
	if len(req.QueryParams) > 0 {
		q := r.URL.Query()
		for k, v := range req.QueryParams {
			q.Set(k, v)
		}
		r.URL.RawQuery = q.Encode()
	}
	if reqBodyReader != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}

	resp, err := b.HTTPClient.Do(r)
	if err != nil {
		if expiredErr, ok :=
			errors.Cause(err).(*sdk.ErrAuthenticationExpired); ok {
			return nil, expiredErr
		}
		return nil, errors.Wrap(err, "error invoking API")
	}

	if (req.SuccessCode == 0 && !IsSuccess(resp.StatusCode)) ||
		(req.SuccessCode != 0 && resp.StatusCode != req.SuccessCode) {
		defer resp.Body.Close()
		// HTTP Response code hints at what sort of error might be in the body
		// of the response
		apiErr, ok := req.ErrObjs[resp.StatusCode]
		if !ok {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				apiErr = &sdk.ErrAuthenticationFailed{}
			case http.StatusForbidden:
				apiErr = &sdk.ErrAuthorization{}
			case http.StatusBadRequest:
				apiErr = &sdk.ErrBadRequest{}
			case http.StatusNotFound:
				apiErr = &sdk.ErrNotFound{}
			case http.StatusConflict:
				apiErr = &sdk.ErrConflict{}
			case http.StatusInternalServerError:
				apiErr = &sdk.ErrInternalServer{}
			default:
				return nil,
					errors.Errorf("received %d from API server", resp.StatusCode)
			}
		}
		bodyBytes, err := ioutil.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "error reading error response body")
		}
		// The backend doesn't always send a JSON error body. An empty or
		// unparseable one still leaves us with a usefully typed error.
		if len(bytes.TrimSpace(bodyBytes)) > 0 {
			_ = json.Unmarshal(bodyBytes, apiErr)
		}
		return nil, apiErr
	}
	return resp, nil
}

// URL joins the API address and the given path.
func (b *BaseClient) URL(path string) string {
	return fmt.Sprintf(
		"%s/%s",
		strings.TrimSuffix(b.APIAddress, "/"),
		strings.TrimPrefix(path, "/"),
	)
}

// IsSuccess returns true for any 2xx status code.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
