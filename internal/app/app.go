// Package app holds the guardian screens: the navigator, the login screen
// with its token modal, and the home screen. Front ends (CLI, HTTP shell)
// drive these controllers and render their state.
package app

import (
	"context"
	"log/slog"
	"time"

	"guardian/internal/session"
)

// DefaultRedirectURI is the app scheme the auth session returns to.
const DefaultRedirectURI = "guardianapp://"

// App wires the screens to one session store and backend.
type App struct {
	store    SessionStore
	backend  Backend
	browser  Browser
	notifier Notifier
	logger   *slog.Logger

	redirectURI string
	location    *time.Location

	nav   *Navigator
	login *LoginScreen
	home  *HomeScreen
}

type Option func(*App)

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithRedirectURI overrides DefaultRedirectURI.
func WithRedirectURI(uri string) Option {
	return func(a *App) {
		if uri != "" {
			a.redirectURI = uri
		}
	}
}

// WithLocation sets the zone used to display timestamps.
func WithLocation(loc *time.Location) Option {
	return func(a *App) {
		if loc != nil {
			a.location = loc
		}
	}
}

func New(store SessionStore, backend Backend, browser Browser, notifier Notifier, opts ...Option) *App {
	a := &App{
		store:       store,
		backend:     backend,
		browser:     browser,
		notifier:    notifier,
		logger:      slog.Default(),
		redirectURI: DefaultRedirectURI,
		location:    time.Local,
		nav:         NewNavigator(RouteLogin),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.login = newLoginScreen(a)
	a.home = newHomeScreen(a)
	return a
}

// Start bootstraps the session and routes to the first screen.
func (a *App) Start(ctx context.Context) Route {
	s := a.store.Bootstrap(ctx)
	route := InitialRoute(s)
	a.nav.Replace(route)
	a.logger.InfoContext(ctx, "app started", "route", string(route))
	return route
}

func (a *App) Navigator() *Navigator { return a.nav }

func (a *App) Login() *LoginScreen { return a.login }

func (a *App) Home() *HomeScreen { return a.home }

// Session returns the in-memory session snapshot.
func (a *App) Session() session.Session { return a.store.Current() }
