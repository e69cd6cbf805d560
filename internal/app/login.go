package app

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"guardian/internal/auth"
	dErrors "guardian/pkg/domain-errors"
)

// Alert copy shown by the screens.
const (
	AlertTitle = "Error"

	MsgGoogleAuthFailed = "Failed to start Google authentication."
	MsgEmptyInput       = "Please paste the JSON response"
	MsgInvalidJSON      = "Invalid JSON format. Please copy the entire response correctly."
	MsgSaveFailed       = "Failed to save your login. Please try again."
	MsgStudentFailed    = "Failed to load student information"
	MsgLogoutFailed     = "Failed to log out. Please try again."
)

// LoginState is what the login screen renders.
type LoginState struct {
	Loading      bool   `json:"loading"`
	ModalVisible bool   `json:"modal_visible"`
	Input        string `json:"input"`
}

// LoginScreen drives Google sign in and the token paste modal.
type LoginScreen struct {
	backend     Backend
	browser     Browser
	notifier    Notifier
	store       SessionStore
	nav         *Navigator
	logger      *slog.Logger
	redirectURI string

	mu    sync.Mutex
	state LoginState
}

func newLoginScreen(a *App) *LoginScreen {
	return &LoginScreen{
		backend:     a.backend,
		browser:     a.browser,
		notifier:    a.notifier,
		store:       a.store,
		nav:         a.nav,
		logger:      a.logger,
		redirectURI: a.redirectURI,
	}
}

func (l *LoginScreen) State() LoginState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// StartGoogleSignIn fetches the auth URL and hands it to the browser. The
// token modal opens whenever the browser session ends with success or dismiss.
func (l *LoginScreen) StartGoogleSignIn(ctx context.Context) error {
	l.setLoading(true)
	defer l.setLoading(false)

	authURL, err := l.backend.GoogleLoginURL(ctx)
	if err != nil {
		return l.failSignIn(ctx, err)
	}
	result, err := l.browser.OpenAuthSession(ctx, authURL, l.redirectURI)
	if err != nil {
		return l.failSignIn(ctx, err)
	}
	l.logger.InfoContext(ctx, "auth session ended", "result", string(result))
	if result == BrowserSuccess || result == BrowserDismiss {
		l.mu.Lock()
		l.state.ModalVisible = true
		l.mu.Unlock()
	}
	return nil
}

func (l *LoginScreen) failSignIn(ctx context.Context, err error) error {
	l.logger.ErrorContext(ctx, "google sign in failed", "error", err)
	l.notifier.Alert(ctx, AlertTitle, MsgGoogleAuthFailed)
	return err
}

func (l *LoginScreen) setLoading(v bool) {
	l.mu.Lock()
	l.state.Loading = v
	l.mu.Unlock()
}

// OpenModal shows the token input without going through the browser.
func (l *LoginScreen) OpenModal() {
	l.mu.Lock()
	l.state.ModalVisible = true
	l.mu.Unlock()
}

func (l *LoginScreen) SetInput(raw string) {
	l.mu.Lock()
	l.state.Input = raw
	l.mu.Unlock()
}

// CancelModal hides the modal. The typed input is kept.
func (l *LoginScreen) CancelModal() {
	l.mu.Lock()
	l.state.ModalVisible = false
	l.mu.Unlock()
}

// SubmitJSON parses the pasted auth response and commits it. Nothing is
// written unless the payload decodes and validates.
func (l *LoginScreen) SubmitJSON(ctx context.Context) error {
	input := l.State().Input
	if strings.TrimSpace(input) == "" {
		l.notifier.Alert(ctx, AlertTitle, MsgEmptyInput)
		return dErrors.New(dErrors.CodeValidation, "empty auth response")
	}

	resp, err := auth.ParseTokenResponse(input)
	if err != nil {
		l.logger.WarnContext(ctx, "pasted auth response rejected", "error", err)
		l.notifier.Alert(ctx, AlertTitle, MsgInvalidJSON)
		return err
	}

	if err := l.store.Commit(ctx, resp.Tokens(), resp.Profile(), resp.StudentID()); err != nil {
		l.logger.ErrorContext(ctx, "session commit failed", "error", err)
		l.notifier.Alert(ctx, AlertTitle, MsgSaveFailed)
		return err
	}

	l.mu.Lock()
	l.state = LoginState{}
	l.mu.Unlock()
	l.nav.Replace(RouteHome)
	return nil
}
