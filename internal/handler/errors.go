package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkordes/railbook/internal/domain"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a human message.
// BookingID is set on storage_error when a booking was changed in memory but
// not saved, so the caller can still find or cancel it.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	BookingID string `json:"booking_id,omitempty"`
}

// Error codes returned in ErrorDetail.Code.
const (
	codeNotFound         = "not_found"
	codeNoSeats          = "no_seats"
	codeAlreadyCancelled = "already_cancelled"
	codeConflict         = "conflict"
	codeValidation       = "validation_error"
	codeTooLarge         = "request_too_large"
	codeStorage          = "storage_error"
	codeInternal         = "internal_error"
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an ErrorResponse.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// notFound writes a 404 for a missing resource. The caller supplies the
// message (e.g. "train not found") because the handler is the layer that
// knows what was being looked up.
func notFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, codeNotFound, message)
}

// badRequest writes a 422 for input rejected before reaching the ledger
// (e.g. missing or malformed body).
func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, codeValidation, message)
}

// writeServiceError maps a ledger or report error onto a status and code.
// Anything unrecognised is logged and reported as a bare 500.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, unwrapMessage(err, domain.ErrNotFound)+" not found")
	case errors.Is(err, domain.ErrNoSeats):
		writeError(w, http.StatusConflict, codeNoSeats, "no seats available on this train")
	case errors.Is(err, domain.ErrAlreadyCancelled):
		writeError(w, http.StatusConflict, codeAlreadyCancelled, "booking is already cancelled")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, codeConflict, unwrapMessage(err, domain.ErrConflict)+" already exists")
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNotPersisted):
		s.writeNotPersisted(w, r, err, "")
	default:
		s.logger.ErrorContext(r.Context(), "unhandled error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, codeInternal, http.StatusText(http.StatusInternalServerError))
	}
}

// writeBookingError is writeServiceError for operations that return the
// affected booking alongside the error. A storage_error then names it.
func (s *Server) writeBookingError(w http.ResponseWriter, r *http.Request, b domain.Booking, err error) {
	if errors.Is(err, domain.ErrNotPersisted) {
		s.writeNotPersisted(w, r, err, b.ID)
		return
	}
	s.writeServiceError(w, r, err)
}

func (s *Server) writeNotPersisted(w http.ResponseWriter, r *http.Request, err error, bookingID string) {
	s.logger.ErrorContext(r.Context(), "ledger not persisted", "path", r.URL.Path, "booking_id", bookingID, "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{
		Code:      codeStorage,
		Message:   "the change was applied but could not be saved",
		BookingID: bookingID,
	}})
}

// unwrapMessage extracts the human-readable part of a wrapped sentinel error.
// Detail following the sentinel wins; otherwise the subject preceding it is
// returned without the pkg.Type.Method prefix.
// e.g. "service.Ledger.AddTrain: validation error: name is required" → "name is required"
// e.g. "service.Ledger.Book: train \"T9\": not found" → "train \"T9\""
func unwrapMessage(err, sentinel error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := sentinel.Error()
	if i := strings.LastIndex(msg, marker+": "); i >= 0 {
		return msg[i+len(marker)+2:]
	}
	msg = strings.TrimSuffix(msg, marker)
	msg = strings.TrimSuffix(msg, ": ")
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		msg = msg[i+2:]
	}
	return msg
}

// decodeJSON reads the request body into v. Oversized bodies produce
// errBodyTooLarge so callers can answer 413.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

var errBodyTooLarge = errors.New("request body too large")

// writeDecodeError answers a failed decodeJSON.
func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, codeTooLarge, err.Error())
		return
	}
	badRequest(w, err.Error())
}
