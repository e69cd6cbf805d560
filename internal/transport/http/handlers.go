package httptransport

import (
	"io"
	"net/http"

	"guardian/internal/app"
	"guardian/internal/session"
	dErrors "guardian/pkg/domain-errors"
)

const maxPasteBytes = 64 << 10

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.logger.WarnContext(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionView())
}

func (h *Handler) sessionView() sessionResponse {
	s := h.app.Session()
	return sessionResponse{
		Route:         h.app.Navigator().Route(),
		Authenticated: session.IsAuthenticated(s),
		User:          s.User,
		StudentID:     s.StudentID,
		Login:         h.app.Login().State(),
	}
}

func (h *Handler) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.app.Navigator().Route() != app.RouteLogin {
		writeError(w, dErrors.New(dErrors.CodeInvalidState, "already signed in"))
		return
	}
	if err := h.app.Login().StartGoogleSignIn(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView())
}

// handleSubmitToken takes the pasted auth response as the raw request body.
func (h *Handler) handleSubmitToken(w http.ResponseWriter, r *http.Request) {
	if h.app.Navigator().Route() != app.RouteLogin {
		writeError(w, dErrors.New(dErrors.CodeInvalidState, "already signed in"))
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPasteBytes+1))
	if err != nil {
		writeError(w, dErrors.Wrap(err, dErrors.CodeValidation, "read request body"))
		return
	}
	if len(body) > maxPasteBytes {
		writeError(w, dErrors.New(dErrors.CodeValidation, "auth response too large"))
		return
	}

	login := h.app.Login()
	login.OpenModal()
	login.SetInput(string(body))
	if err := login.SubmitJSON(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView())
}

func (h *Handler) handleHome(w http.ResponseWriter, r *http.Request) {
	view, err := h.app.Home().Load(r.Context())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, homeResponse{HomeView: view, Alert: app.MsgStudentFailed})
		return
	}
	writeJSON(w, http.StatusOK, homeResponse{HomeView: view})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Home().Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView())
}
