package handler

import (
	"errors"
	"net/http"
	"strings"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/railbook/internal/domain"
)

// PassengerRequest is the traveller part of POST /bookings.
// The email format is checked while decoding.
type PassengerRequest struct {
	Name   string              `json:"name"`
	Age    int                 `json:"age"`
	Gender string              `json:"gender"`
	Phone  string              `json:"phone"`
	Email  openapi_types.Email `json:"email"`
}

// CreateBookingRequest is the body of POST /bookings.
type CreateBookingRequest struct {
	TrainID     string           `json:"train_id"`
	JourneyDate string           `json:"journey_date"`
	Passenger   PassengerRequest `json:"passenger"`
}

// CreateBooking handles POST /bookings.
func (s *Server) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		if errors.Is(err, openapi_types.ErrValidationEmail) {
			badRequest(w, "email is not a valid address")
			return
		}
		writeDecodeError(w, err)
		return
	}

	trainID := strings.TrimSpace(req.TrainID)
	if trainID == "" {
		badRequest(w, "train_id is required")
		return
	}
	journeyDate := strings.TrimSpace(req.JourneyDate)
	if journeyDate == "" {
		badRequest(w, "journey_date is required")
		return
	}
	p, err := requestToPassenger(req.Passenger)
	if err != nil {
		badRequest(w, unwrapMessage(err, domain.ErrValidation))
		return
	}

	b, err := s.ledger.Book(r.Context(), trainID, p, journeyDate)
	if err != nil {
		s.writeBookingError(w, r, b, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// GetBooking handles GET /bookings/{id}. Cancelled bookings are returned too.
func (s *Server) GetBooking(w http.ResponseWriter, r *http.Request) {
	b, ok := s.ledger.Booking(pathParam(r, "id"))
	if !ok {
		notFound(w, "booking not found")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// CancelBooking handles DELETE /bookings/{id}.
// It returns the booking in its Cancelled state.
func (s *Server) CancelBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.ledger.Cancel(r.Context(), pathParam(r, "id"))
	if err != nil {
		s.writeBookingError(w, r, b, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// requestToPassenger trims and validates the request fields. The ledger
// assigns the passenger id.
func requestToPassenger(req PassengerRequest) (domain.Passenger, error) {
	p := domain.Passenger{
		Name:   strings.TrimSpace(req.Name),
		Age:    req.Age,
		Gender: strings.TrimSpace(req.Gender),
		Phone:  strings.TrimSpace(req.Phone),
		Email:  strings.TrimSpace(string(req.Email)),
	}
	if err := p.Validate(); err != nil {
		return domain.Passenger{}, err
	}
	return p, nil
}
