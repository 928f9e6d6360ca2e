package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nazarious-ucu/waitlist-api/internal/models"
)

func TestFlag_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`false`, false},
		{`null`, false},
		{`"on"`, true},
		{`""`, false},
		{`1`, true},
		{`0`, false},
		{`-0.5`, true},
		{`{}`, true},
		{`[]`, true},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			var f models.Flag
			require.NoError(t, json.Unmarshal([]byte(tc.raw), &f))
			assert.Equal(t, tc.want, bool(f))
		})
	}
}

func TestSubscribeRequest_Decode(t *testing.T) {
	body := `{"email":"A@B.com","dogName":"Rex","consent":true,"source":"beta","honeypot":"","extra":1}`

	var req models.SubscribeRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, "A@B.com", req.Email)
	require.NotNil(t, req.DogName)
	assert.Equal(t, "Rex", *req.DogName)
	assert.True(t, bool(req.Consent))
	assert.Equal(t, "beta", req.Source)
	assert.False(t, bool(req.Honeypot))
}

func TestSubscribeRequest_DecodeWrongType(t *testing.T) {
	var req models.SubscribeRequest
	assert.Error(t, json.Unmarshal([]byte(`{"email":42}`), &req))
}
