package app

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"guardian/internal/api"
	"guardian/internal/session"
)

// Notifier shows a blocking alert to the guardian.
type Notifier interface {
	Alert(ctx context.Context, title, message string)
}

// BrowserResult is how an external auth session ended.
type BrowserResult string

const (
	BrowserSuccess BrowserResult = "success"
	BrowserDismiss BrowserResult = "dismiss"
	BrowserCancel  BrowserResult = "cancel"
)

// Browser opens an external authentication session and waits for it to end.
type Browser interface {
	OpenAuthSession(ctx context.Context, authURL, redirectURI string) (BrowserResult, error)
}

// SessionStore is the slice of session.Store the screens depend on.
type SessionStore interface {
	Bootstrap(ctx context.Context) session.Session
	Current() session.Session
	Commit(ctx context.Context, tokens session.Tokens, user session.UserProfile, studentID string) error
	Clear(ctx context.Context) error
}

// Backend is the remote API surface the screens call.
type Backend interface {
	GoogleLoginURL(ctx context.Context) (string, error)
	Student(ctx context.Context, accessToken, studentID string) (*api.Student, error)
}
