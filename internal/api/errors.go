package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"inara-impact/internal/auth"
	"inara-impact/internal/reporting"
	"inara-impact/internal/simulation"
	"inara-impact/internal/storage"
)

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// statusFor maps boundary errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, simulation.ErrUnauthorized), errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, simulation.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, simulation.ErrMissingRequiredInput),
		errors.Is(err, simulation.ErrInvalidInput),
		errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, simulation.ErrUnknownTechnology),
		errors.Is(err, simulation.ErrUnknownProject),
		errors.Is(err, simulation.ErrNotApproved),
		errors.Is(err, reporting.ErrProjectNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as JSON. Internal errors are logged and not exposed.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		s.writeJSON(w, status, errorResponse{Error: "internal error", Kind: "internal"})
		return
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Basic realm="inara"`)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kindFor(err)})
}

func kindFor(err error) string {
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, errBadRequest):
		return "bad_request"
	case errors.Is(err, reporting.ErrProjectNotFound):
		return "unknown_project"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	default:
		return simulation.ErrorKind(err)
	}
}

// internalErrorBody is sent when a response value cannot be encoded.
const internalErrorBody = `{"error":"internal error","kind":"internal"}` + "\n"

// writeJSON encodes v before committing the status, so an unencodable
// value turns into a 500 instead of a 200 with an empty body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		s.logger.Error().Err(err).Int("status", status).Msg("encode response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(internalErrorBody))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON body into dst, rejecting unknown trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %v: %w", err, errBadRequest)
	}
	if dec.More() {
		return fmt.Errorf("decode body: trailing data: %w", errBadRequest)
	}
	return nil
}
