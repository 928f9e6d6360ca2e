package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SubscribeRequest is the JSON body of POST /api/subscribe.
type SubscribeRequest struct {
	Email    string  `json:"email"`
	DogName  *string `json:"dogName"`
	Consent  Flag    `json:"consent"`
	Source   string  `json:"source"`
	Honeypot Flag    `json:"honeypot"`
}

// Flag decodes any JSON scalar using JavaScript truthiness: false, 0, ""
// and null are false, everything else is true.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*f = false
		return nil
	}

	switch data[0] {
	case 'n':
		*f = false
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*f = Flag(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = s != ""
	case '{', '[':
		*f = true
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid flag value %q: %w", data, err)
		}
		*f = n != 0
	}
	return nil
}
