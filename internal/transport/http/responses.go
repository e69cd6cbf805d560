package httptransport

import (
	"encoding/json"
	"net/http"

	"guardian/internal/app"
	"guardian/internal/session"
	dErrors "guardian/pkg/domain-errors"
)

type sessionResponse struct {
	Route         app.Route            `json:"route"`
	Authenticated bool                 `json:"authenticated"`
	User          *session.UserProfile `json:"user,omitempty"`
	StudentID     string               `json:"student_id,omitempty"`
	Login         app.LoginState       `json:"login"`
}

type homeResponse struct {
	app.HomeView
	Alert string `json:"alert,omitempty"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps a coded error onto the JSON error envelope. Uncoded errors
// are reported as internal without their message.
func writeError(w http.ResponseWriter, err error) {
	de, ok := dErrors.As(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: string(dErrors.CodeInternal)})
		return
	}
	writeJSON(w, dErrors.HTTPStatus(de.Code), errorResponse{Error: string(de.Code), Message: de.Message})
}
