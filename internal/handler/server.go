// Package handler implements the HTTP handlers for the train booking API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, train.go, booking.go, etc.) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/railbook/internal/domain"
)

// Ledger defines the booking operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching storage or the service layer.
type Ledger interface {
	Search(source, destination, date string) []domain.Train
	Book(ctx context.Context, trainID string, p domain.Passenger, journeyDate string) (domain.Booking, error)
	Cancel(ctx context.Context, bookingID string) (domain.Booking, error)
	Booking(id string) (domain.Booking, bool)
	PassengerBookings(email string) []domain.Booking
	Train(id string) (domain.Train, bool)
	Trains() []domain.Train
	AddTrain(ctx context.Context, t domain.Train) (domain.Train, error)
}

// Reporter defines the read-only reporting operations.
type Reporter interface {
	BookingsByEmail(email string) []domain.Booking
	BookingsByTrain(trainID string, p domain.PaginationParams) ([]domain.Booking, int, error)
	Status() domain.SystemStatus
	Occupancy() []domain.TrainOccupancy
	Audit() []domain.SeatDiscrepancy
	Export() []domain.ExportRow
}

// Server holds the dependencies shared by every handler.
// Wire it in main.go via Register on the application router.
type Server struct {
	ledger  Ledger
	reports Reporter
	logger  *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(ledger Ledger, reports Reporter, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{ledger: ledger, reports: reports, logger: logger}
}

// Register mounts every API route on r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/trains", func(r chi.Router) {
		r.Get("/", s.ListTrains)
		r.Post("/", s.CreateTrain)
		r.Get("/search", s.SearchTrains)
		r.Get("/{id}", s.GetTrain)
		r.Get("/{id}/bookings", s.ListTrainBookings)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", s.CreateBooking)
		r.Get("/{id}", s.GetBooking)
		r.Delete("/{id}", s.CancelBooking)
	})

	r.Get("/passengers/{email}/bookings", s.ListPassengerBookings)
	r.Get("/passengers/{email}/history", s.ListPassengerHistory)

	r.Get("/status", s.GetStatus)
	r.Get("/reports/occupancy", s.GetOccupancy)
	r.Get("/reports/audit", s.GetAudit)
	r.Get("/export", s.GetExport)
}

// Routes returns a router carrying only the API routes, with no middleware.
// Tests use it to exercise handlers exactly as main.go mounts them.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}
