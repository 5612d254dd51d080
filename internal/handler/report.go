package handler

import (
	"net/http"

	"github.com/pkordes/railbook/internal/domain"
)

// GetStatus handles GET /status.
func (s *Server) GetStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.reports.Status())
}

// GetOccupancy handles GET /reports/occupancy.
func (s *Server) GetOccupancy(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse[domain.TrainOccupancy]{Data: s.reports.Occupancy()})
}

// GetAudit handles GET /reports/audit.
// An empty list means every train's seat count agrees with its bookings.
func (s *Server) GetAudit(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ListResponse[domain.SeatDiscrepancy]{Data: s.reports.Audit()})
}
