package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardian/internal/session"
	dErrors "guardian/pkg/domain-errors"
)

const validResponse = `{
	"access_token": "t1",
	"refresh_token": "r1",
	"user": {
		"id": 7,
		"email": "parent@example.com",
		"first_name": "Asha",
		"last_name": "Rao",
		"user_type": "guardian",
		"associated_id": "S1"
	}
}`

func TestParseTokenResponse(t *testing.T) {
	t.Run("parses a complete response", func(t *testing.T) {
		resp, err := ParseTokenResponse("  " + validResponse + "\n")
		require.NoError(t, err)

		assert.Equal(t, session.Tokens{Access: "t1", Refresh: "r1"}, resp.Tokens())
		assert.Equal(t, "S1", resp.StudentID())
		assert.Equal(t, session.UserProfile{
			ID:           7,
			Email:        "parent@example.com",
			FirstName:    "Asha",
			LastName:     "Rao",
			UserType:     session.UserTypeGuardian,
			AssociatedID: "S1",
		}, resp.Profile())
	})

	t.Run("ignores unknown fields", func(t *testing.T) {
		_, err := ParseTokenResponse(`{"access_token":"t1","refresh_token":"r1","expires_in":3600,"user":{"id":1,"user_type":"guardian"}}`)
		require.NoError(t, err)
	})

	t.Run("missing associated id yields no student", func(t *testing.T) {
		resp, err := ParseTokenResponse(`{"access_token":"t1","refresh_token":"r1","user":{"id":1,"user_type":"guardian"}}`)
		require.NoError(t, err)
		assert.Equal(t, "", resp.StudentID())
	})
}

func TestParseTokenResponseRejects(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		contains string
	}{
		{"empty input", "   ", "empty"},
		{"malformed json", `{"access_token": "t1"`, "malformed"},
		{"trailing data", `{"access_token":"t1","refresh_token":"r1","user":{"user_type":"guardian"}} {}`, "unexpected data"},
		{"missing access token", `{"refresh_token":"r1","user":{"id":1,"user_type":"guardian"}}`, "access_token (required)"},
		{"missing refresh token", `{"access_token":"t1","user":{"id":1,"user_type":"guardian"}}`, "refresh_token (required)"},
		{"missing user", `{"access_token":"t1","refresh_token":"r1"}`, "user (required)"},
		{"unknown user type", `{"access_token":"t1","refresh_token":"r1","user":{"id":1,"user_type":"principal"}}`, "user.user_type (oneof)"},
		{"bad email", `{"access_token":"t1","refresh_token":"r1","user":{"id":1,"email":"nope","user_type":"guardian"}}`, "user.email (email)"},
		{"not an object", `"t1"`, "malformed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := ParseTokenResponse(tc.raw)
			require.Error(t, err)
			assert.Nil(t, resp)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeParse))
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}
