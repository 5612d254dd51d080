package handler

import (
	"net/http"

	"github.com/pkordes/railbook/internal/domain"
)

// ListPassengerBookings handles GET /passengers/{email}/bookings.
// Only Confirmed bookings are listed; the email must match exactly.
func (s *Server) ListPassengerBookings(w http.ResponseWriter, r *http.Request) {
	bookings := s.ledger.PassengerBookings(pathParam(r, "email"))
	writeJSON(w, http.StatusOK, ListResponse[domain.Booking]{Data: bookings})
}

// ListPassengerHistory handles GET /passengers/{email}/history.
// Cancelled bookings are included.
func (s *Server) ListPassengerHistory(w http.ResponseWriter, r *http.Request) {
	bookings := s.reports.BookingsByEmail(pathParam(r, "email"))
	writeJSON(w, http.StatusOK, ListResponse[domain.Booking]{Data: bookings})
}
