package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"guardian/internal/api"
	"guardian/internal/session"
	dErrors "guardian/pkg/domain-errors"
)

const lastUpdateLayout = "Jan 2, 2006 3:04 PM"

// HomeView is the rendered home screen.
type HomeView struct {
	Welcome string               `json:"welcome"`
	Role    string               `json:"role"`
	User    *session.UserProfile `json:"user,omitempty"`
	Student *StudentCard         `json:"student,omitempty"`
	Actions []Action             `json:"actions"`
}

// StudentCard is the display form of api.Student.
type StudentCard struct {
	Name           string `json:"name"`
	Class          string `json:"class"`
	Guardian       string `json:"guardian"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	LocationSet    bool   `json:"location_set"`
	LocationStatus string `json:"location_status"`
	LastUpdate     string `json:"last_update"`
}

// Action is a home screen button. None are implemented yet.
type Action struct {
	Label       string `json:"label"`
	Implemented bool   `json:"implemented"`
}

var homeActions = []Action{
	{Label: "Update Pickup Location"},
	{Label: "Track School Bus"},
}

// HomeScreen shows the signed in guardian and their student.
type HomeScreen struct {
	backend  Backend
	notifier Notifier
	store    SessionStore
	nav      *Navigator
	logger   *slog.Logger
	location *time.Location
}

func newHomeScreen(a *App) *HomeScreen {
	return &HomeScreen{
		backend:  a.backend,
		notifier: a.notifier,
		store:    a.store,
		nav:      a.nav,
		logger:   a.logger,
		location: a.location,
	}
}

// Load builds the home view from the session and a fresh student fetch.
// When the fetch fails the view is still returned, without a student card,
// alongside the error.
func (h *HomeScreen) Load(ctx context.Context) (HomeView, error) {
	current := h.store.Current()
	if !session.IsAuthenticated(current) {
		return HomeView{}, dErrors.New(dErrors.CodeUnauthorized, "not signed in")
	}

	view := NewHomeView(current.User, nil, h.location)
	if current.StudentID == "" {
		return view, nil
	}

	student, err := h.backend.Student(ctx, current.AccessToken, current.StudentID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to fetch student",
			"student_id", current.StudentID,
			"error", err,
		)
		h.notifier.Alert(ctx, AlertTitle, MsgStudentFailed)
		return view, err
	}
	view.Student = NewStudentCard(student, h.location)
	return view, nil
}

// Logout clears the session and returns to the login screen. On failure the
// guardian stays on Home.
func (h *HomeScreen) Logout(ctx context.Context) error {
	if err := h.store.Clear(ctx); err != nil {
		h.logger.ErrorContext(ctx, "logout failed", "error", err)
		h.notifier.Alert(ctx, AlertTitle, MsgLogoutFailed)
		return err
	}
	h.nav.Replace(RouteLogin)
	return nil
}

// NewHomeView renders the welcome block. student may be nil.
func NewHomeView(user *session.UserProfile, student *api.Student, loc *time.Location) HomeView {
	name := "Guardian"
	if user != nil && strings.TrimSpace(user.FirstName) != "" {
		name = user.FirstName
	}
	view := HomeView{
		Welcome: "Welcome, " + name,
		Role:    "Guardian",
		User:    user,
		Actions: append([]Action(nil), homeActions...),
	}
	if student != nil {
		view.Student = NewStudentCard(student, loc)
	}
	return view
}

func NewStudentCard(s *api.Student, loc *time.Location) *StudentCard {
	card := &StudentCard{
		Name:           s.Name,
		Class:          s.ClassGradeDisplay,
		Guardian:       s.GuardianName,
		Phone:          "Not available",
		Address:        s.AddressText,
		LocationStatus: "Location Not Set",
		LastUpdate:     "No location updates yet",
	}
	if s.PhoneNumber != nil && *s.PhoneNumber != "" {
		card.Phone = *s.PhoneNumber
	}
	if s.LocationUpdatedAt != nil && *s.LocationUpdatedAt != "" {
		card.LocationSet = true
		card.LocationStatus = "Location Updated"
		card.LastUpdate = "Last update: " + formatTimestamp(*s.LocationUpdatedAt, loc)
	}
	return card
}

// formatTimestamp renders an ISO 8601 timestamp in loc. Unparseable values
// are shown as sent.
func formatTimestamp(raw string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return raw
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(lastUpdateLayout)
}
