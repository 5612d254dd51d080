package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pkordes/railbook/internal/domain"
)

// Train is the API representation of a train: the stored fields plus the
// journey duration derived from its timetable.
type Train struct {
	domain.Train
	Duration string `json:"duration,omitempty"`
}

// CreateTrainRequest is the body of POST /trains. Every seat of a new train
// starts available, so available_seats and bookings are not accepted.
type CreateTrainRequest struct {
	ID            string  `json:"train_id"`
	Name          string  `json:"name"`
	Source        string  `json:"source"`
	Destination   string  `json:"destination"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
	TotalSeats    int     `json:"total_seats"`
	Price         float64 `json:"price"`
}

// ListTrains handles GET /trains.
func (s *Server) ListTrains(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse[Train]{Data: trainsToResponse(s.ledger.Trains())})
}

// CreateTrain handles POST /trains.
func (s *Server) CreateTrain(w http.ResponseWriter, r *http.Request) {
	var req CreateTrainRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	t := domain.NewTrain(
		strings.TrimSpace(req.ID),
		strings.TrimSpace(req.Name),
		strings.TrimSpace(req.Source),
		strings.TrimSpace(req.Destination),
		strings.TrimSpace(req.DepartureTime),
		strings.TrimSpace(req.ArrivalTime),
		req.TotalSeats,
		req.Price,
	)
	created, err := s.ledger.AddTrain(r.Context(), t)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, trainToResponse(created))
}

// SearchTrains handles GET /trains/search?source=&destination=&date=.
// Only trains with a free seat are returned. date is accepted but does not
// narrow the result.
func (s *Server) SearchTrains(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	source := strings.TrimSpace(q.Get("source"))
	destination := strings.TrimSpace(q.Get("destination"))
	if source == "" || destination == "" {
		badRequest(w, "source and destination are required")
		return
	}

	trains := s.ledger.Search(source, destination, q.Get("date"))
	writeJSON(w, http.StatusOK, ListResponse[Train]{Data: trainsToResponse(trains)})
}

// GetTrain handles GET /trains/{id}.
func (s *Server) GetTrain(w http.ResponseWriter, r *http.Request) {
	t, ok := s.ledger.Train(pathParam(r, "id"))
	if !ok {
		notFound(w, "train not found")
		return
	}
	writeJSON(w, http.StatusOK, trainToResponse(t))
}

// ListTrainBookings handles GET /trains/{id}/bookings.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
// The total is repeated in the X-Total-Count header.
func (s *Server) ListTrainBookings(w http.ResponseWriter, r *http.Request) {
	params, err := paginationParams(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	bookings, total, err := s.reports.BookingsByTrain(pathParam(r, "id"), params)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, PagedResponse[domain.Booking]{
		Data: bookings,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

func trainToResponse(t domain.Train) Train {
	out := Train{Train: t}
	if d, err := domain.JourneyDuration(t.DepartureTime, t.ArrivalTime); err == nil {
		out.Duration = domain.FormatDuration(d)
	}
	return out
}

func trainsToResponse(trains []domain.Train) []Train {
	out := make([]Train, len(trains))
	for i, t := range trains {
		out[i] = trainToResponse(t)
	}
	return out
}
