package core

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"

	"github.com/ansycloud/console/sdk/internal/restmachinery"
	"github.com/pkg/errors"
)

// executeListRequest submits a request whose response is either an object
// wrapping a list or the bare list itself. A bare JSON array is unmarshaled
// into bare. Anything else is unmarshaled into wrapped. An empty body leaves
// both untouched.
func executeListRequest(
	ctx context.Context,
	client *restmachinery.BaseClient,
	req restmachinery.OutboundRequest,
	wrapped interface{},
	bare interface{},
) error {
	resp, err := client.SubmitRequest(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "error reading response body")
	}
	respBodyBytes = bytes.TrimSpace(respBodyBytes)
	if len(respBodyBytes) == 0 {
		return nil
	}
	target := wrapped
	if respBodyBytes[0] == '[' {
		target = bare
	}
	if err := json.Unmarshal(respBodyBytes, target); err != nil {
		return errors.Wrap(err, "error unmarshaling response body")
	}
	return nil
}
