package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/courtside/go/internal/match"
	"github.com/mcdev12/courtside/go/internal/models"
	"github.com/mcdev12/courtside/go/internal/roster"
	"github.com/mcdev12/courtside/go/internal/rules"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		message = message + ": " + err.Error()
	}
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

// respondEngineError maps engine errors to status codes
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, roster.ErrPlayerNotFound):
		respondError(w, http.StatusNotFound, "player not found", err)
	case errors.Is(err, match.ErrInvalidArgument),
		errors.Is(err, models.ErrUnknownCategory),
		errors.Is(err, roster.ErrInvalidPlayer):
		respondError(w, http.StatusBadRequest, "invalid request", err)
	case errors.Is(err, rules.ErrUnknownPreset):
		respondError(w, http.StatusNotFound, "unknown preset", err)
	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("command failed")
		respondError(w, http.StatusInternalServerError, "command failed", err)
	}
}

func respondResult(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

func respondSnapshot(w http.ResponseWriter, r *http.Request) func(match.Snapshot, error) {
	return func(snap match.Snapshot, err error) {
		respondResult(w, r, snap, err)
	}
}

// decode reads a required JSON body
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", err)
		return false
	}
	return true
}

// decodeOptional reads a JSON body if one was sent
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid JSON body", err)
		return false
	}
	return true
}
