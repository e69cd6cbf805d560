package session

import "strings"

// UserType is the backend role of an account.
type UserType string

const (
	UserTypeAdmin    UserType = "admin"
	UserTypeDriver   UserType = "driver"
	UserTypeGuardian UserType = "guardian"
)

func (t UserType) String() string {
	return string(t)
}

// IsValid reports whether t is one of the known roles.
func (t UserType) IsValid() bool {
	switch t {
	case UserTypeAdmin, UserTypeDriver, UserTypeGuardian:
		return true
	}
	return false
}

// UserProfile is the backend user object captured at login. It is never
// refreshed except by logging in again.
type UserProfile struct {
	ID           int64    `json:"id"`
	Email        string   `json:"email"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	UserType     UserType `json:"user_type"`
	AssociatedID string   `json:"associated_id"`
}

// Tokens is the pair issued by the backend after the OAuth exchange.
type Tokens struct {
	Access  string
	Refresh string
}

// Session is the persisted authentication state. Empty strings and a nil
// User mean absent.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *UserProfile
	StudentID    string
}

// IsAuthenticated is true iff the session carries a non-empty access token.
func IsAuthenticated(s Session) bool {
	return strings.TrimSpace(s.AccessToken) != ""
}

// IsZero reports whether every field is absent.
func (s Session) IsZero() bool {
	return s.AccessToken == "" && s.RefreshToken == "" && s.User == nil && s.StudentID == ""
}

// clone copies s so callers cannot mutate the store's in-memory copy.
func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// State is the per-process authentication state machine.
type State int

const (
	// StateUnknown holds until bootstrap resolves.
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
