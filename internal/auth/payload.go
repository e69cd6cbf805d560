// Package auth decodes what the backend's OAuth exchange hands the guardian:
// the pasted token response and the access token itself.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"guardian/internal/session"
	dErrors "guardian/pkg/domain-errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TokenResponse is the JSON blob the browser shows after Google sign in,
// which the guardian copies into the app.
type TokenResponse struct {
	AccessToken  string       `json:"access_token" validate:"required"`
	RefreshToken string       `json:"refresh_token" validate:"required"`
	User         *UserPayload `json:"user" validate:"required"`
}

// UserPayload is the backend user object inside a TokenResponse.
type UserPayload struct {
	ID           int64  `json:"id"`
	Email        string `json:"email" validate:"omitempty,email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	UserType     string `json:"user_type" validate:"required,oneof=admin driver guardian"`
	AssociatedID string `json:"associated_id"`
}

// Tokens returns the token pair.
func (r *TokenResponse) Tokens() session.Tokens {
	return session.Tokens{Access: r.AccessToken, Refresh: r.RefreshToken}
}

// Profile converts the payload into the snapshot the session stores.
func (r *TokenResponse) Profile() session.UserProfile {
	return session.UserProfile{
		ID:           r.User.ID,
		Email:        r.User.Email,
		FirstName:    r.User.FirstName,
		LastName:     r.User.LastName,
		UserType:     session.UserType(r.User.UserType),
		AssociatedID: r.User.AssociatedID,
	}
}

// StudentID is the record the guardian is associated with, if any.
func (r *TokenResponse) StudentID() string {
	return strings.TrimSpace(r.User.AssociatedID)
}

// ParseTokenResponse decodes and shape-checks pasted JSON. Every failure is a
// CodeParse error so the caller can keep the input for correction.
func ParseTokenResponse(raw string) (*TokenResponse, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, dErrors.New(dErrors.CodeParse, "empty auth response")
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	var resp TokenResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeParse, "malformed auth response")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, dErrors.New(dErrors.CodeParse, "unexpected data after auth response")
	}

	if err := validate.Struct(&resp); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeParse, describeValidation(err))
	}
	return &resp, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid auth response"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", jsonPath(fe), fe.Tag()))
	}
	return "invalid auth response: " + strings.Join(fields, ", ")
}

var jsonNames = map[string]string{
	"AccessToken":  "access_token",
	"RefreshToken": "refresh_token",
	"User":         "user",
	"Email":        "email",
	"UserType":     "user_type",
}

// jsonPath renders a validator namespace like TokenResponse.User.UserType as
// user.user_type.
func jsonPath(fe validator.FieldError) string {
	parts := strings.Split(fe.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if name, ok := jsonNames[p]; ok {
			parts[i] = name
		}
	}
	return strings.Join(parts, ".")
}
