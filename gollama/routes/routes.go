package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"gollama/gollama/controllers"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps controller errors onto the API's status codes. Validation
// failures keep their field-level payload.
func writeError(w http.ResponseWriter, err error) {
	var vErr *controllers.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, vErr.Fields)
		return
	}
	switch {
	case errors.Is(err, controllers.ErrSessionNotFound),
		errors.Is(err, controllers.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, controllers.ErrInvalidLogin),
		errors.Is(err, controllers.ErrBadFormat),
		errors.Is(err, controllers.ErrNoChatIDs):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
