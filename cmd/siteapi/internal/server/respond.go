package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/auth"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/mutation"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
)

// ErrorResponse is the JSON body of every error answer.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeMutationError maps the mutation error taxonomy to a status code. The
// error message is passed through unchanged so the form can show it.
func writeMutationError(w http.ResponseWriter, err error) {
	var ve *mutation.ValidationError
	var pe *mutation.PersistenceError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: ve.Message, Field: ve.Field})
	case errors.As(err, &pe) && pe.NotFound():
		writeError(w, http.StatusNotFound, pe.Error())
	case errors.As(err, &pe):
		log.Printf("mutation failed: %v", err)
		writeError(w, http.StatusInternalServerError, pe.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "request cancelled before the write was applied")
	default:
		log.Printf("mutation failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// writeReadError answers a failed lookup.
func writeReadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrUnknownFlag):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("read failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read content")
	}
}

// permit checks the caller's role against object and action and answers 403
// when it is not allowed.
func permit(w http.ResponseWriter, r *http.Request, perms *auth.Permissions, object, action string) (auth.Principal, bool) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusForbidden, "administrator profile required")
		return auth.Principal{}, false
	}
	if perms != nil && !perms.Allowed(principal.Profile.Role, object, action) {
		log.Printf("permission denied: %s (%s) %s %s", principal.Identity.Email, principal.Profile.Role, action, object)
		writeError(w, http.StatusForbidden, "your role may not "+action+" "+object)
		return principal, false
	}
	return principal, true
}
