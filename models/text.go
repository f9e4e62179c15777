package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Text is a string field of an API payload that tolerates numbers and null.
// Catalog numbers in particular come back as JSON numbers for some items.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*t = Text(fmt.Sprint(b))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("text: unsupported value %s", data)
		}
		*t = Text(n.String())
	}
	return nil
}
