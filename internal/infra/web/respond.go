package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"promo-raffle/internal/domain"
	"promo-raffle/internal/infra/logging"
)

const (
	maxBodyBytes = 64 << 10
	msgInternal  = "error.internal"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("decode body: trailing data")
	}
	return nil
}

// errorStatus maps domain errors to an HTTP status and a message key.
// Anything unrecognised is a 500 with a generic message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "error.validation"
	case errors.Is(err, domain.ErrInvalidBatchSize):
		return http.StatusBadRequest, "error.invalid_batch_size"
	case errors.Is(err, domain.ErrInvalidCode):
		return http.StatusConflict, "error.invalid_code"
	case errors.Is(err, domain.ErrDuplicateClaim):
		return http.StatusConflict, "error.duplicate_claim"
	case errors.Is(err, domain.ErrCampaignClosed):
		return http.StatusConflict, "error.campaign_closed"
	case errors.Is(err, domain.ErrIssueInProgress):
		return http.StatusConflict, "error.issue_in_progress"
	case errors.Is(err, domain.ErrCodesInUse):
		return http.StatusConflict, "error.codes_in_use"
	case errors.Is(err, domain.ErrConfirmationRequired):
		return http.StatusBadRequest, "error.confirmation_required"
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "error.invalid_argument"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "error.unauthorized"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "error.rate_limited"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "error.not_found"
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// errorBody builds the translated response for err. Validation and batch-size
// failures carry the error text as detail; it never contains store output.
func (s *Server) errorBody(err error) (int, errorResponse) {
	status, key := errorStatus(err)
	body := errorResponse{Error: http.StatusText(status), Message: s.msgs.T(key)}
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrInvalidBatchSize) {
		body.Detail = err.Error()
	}
	return status, body
}

// fail logs err once and writes the mapped response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, body := s.errorBody(err)
	l := logging.With(r.Context(), s.log)
	ev := l.Debug()
	if status >= http.StatusInternalServerError {
		ev = l.Error()
	}
	ev.Err(err).Str("op", op).Int("status", status).Msg("request failed")
	writeJSON(w, status, body)
}
