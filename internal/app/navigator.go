package app

import (
	"sync"

	"guardian/internal/session"
)

// Route names a top-level screen.
type Route string

const (
	RouteLogin Route = "Login"
	RouteHome  Route = "Home"
)

// InitialRoute picks the first screen for a bootstrapped session.
func InitialRoute(s session.Session) Route {
	if session.IsAuthenticated(s) {
		return RouteHome
	}
	return RouteLogin
}

// Navigator holds the current route. Screens replace it; history is not kept.
type Navigator struct {
	mu    sync.RWMutex
	route Route
}

func NewNavigator(initial Route) *Navigator {
	return &Navigator{route: initial}
}

func (n *Navigator) Route() Route {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.route
}

// Replace swaps the current screen.
func (n *Navigator) Replace(r Route) {
	n.mu.Lock()
	n.route = r
	n.mu.Unlock()
}
