package core

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// ID is an identifier assigned by the backend. Depending on the endpoint, the
// backend serializes identifiers either as JSON strings or as JSON numbers. ID
// accepts both and always marshals as a string.
type ID string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (i *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "error unmarshaling identifier")
		}
		*i = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrapf(err, "error unmarshaling identifier %s", string(data))
	}
	*i = ID(n.String())
	return nil
}

func (i ID) String() string {
	return string(i)
}
