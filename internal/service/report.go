package service

import (
	"fmt"
	"math"

	"github.com/pkordes/railbook/internal/domain"
	"github.com/pkordes/railbook/internal/repo"
)

// LedgerView is the read side of the ledger that reports are built from.
// *Ledger satisfies it.
type LedgerView interface {
	Snapshot() repo.Snapshot
}

// ReportService assembles read-only views over the ledger: passenger history,
// per-train booking lists, the status summary, occupancy, a seat audit and the
// flat export.
type ReportService struct {
	ledger LedgerView
}

// NewReportService constructs a ReportService over the provided ledger view.
func NewReportService(ledger LedgerView) *ReportService {
	return &ReportService{ledger: ledger}
}

// BookingsByEmail returns every booking made under email, cancelled ones
// included, in ledger order. Matching is exact.
func (s *ReportService) BookingsByEmail(email string) []domain.Booking {
	out := []domain.Booking{}
	for _, b := range s.ledger.Snapshot().Bookings {
		if b.Passenger.Email == email {
			out = append(out, b)
		}
	}
	return out
}

// BookingsByTrain returns one page of the bookings referencing trainID and the
// total number of such bookings.
func (s *ReportService) BookingsByTrain(trainID string, p domain.PaginationParams) ([]domain.Booking, int, error) {
	snap := s.ledger.Snapshot()
	if _, ok := findTrain(snap.Trains, trainID); !ok {
		return nil, 0, fmt.Errorf("service.ReportService.BookingsByTrain: train %q: %w", trainID, domain.ErrNotFound)
	}

	all := []domain.Booking{}
	for _, b := range snap.Bookings {
		if b.TrainID == trainID {
			all = append(all, b)
		}
	}
	start, end := p.Bounds(len(all))
	return all[start:end], len(all), nil
}

// Status returns the ledger-wide totals.
func (s *ReportService) Status() domain.SystemStatus {
	snap := s.ledger.Snapshot()
	st := domain.SystemStatus{
		TotalTrains:   len(snap.Trains),
		TotalBookings: len(snap.Bookings),
	}
	for _, t := range snap.Trains {
		st.AvailableSeats += t.AvailableSeats
	}
	for _, b := range snap.Bookings {
		if b.Confirmed() {
			st.ConfirmedBookings++
		} else {
			st.CancelledBookings++
		}
	}
	return st
}

// Occupancy returns utilisation and confirmed revenue per train, in ledger
// order. Utilization is the occupied share of seats as a percentage rounded to
// two decimals.
func (s *ReportService) Occupancy() []domain.TrainOccupancy {
	snap := s.ledger.Snapshot()
	confirmed := confirmedPerTrain(snap.Bookings)

	out := make([]domain.TrainOccupancy, 0, len(snap.Trains))
	for _, t := range snap.Trains {
		occ := domain.TrainOccupancy{
			TrainID:        t.ID,
			Name:           t.Name,
			Route:          t.Source + " → " + t.Destination,
			TotalSeats:     t.TotalSeats,
			AvailableSeats: t.AvailableSeats,
			Confirmed:      confirmed[t.ID],
			Revenue:        float64(confirmed[t.ID]) * t.Price,
		}
		if t.TotalSeats > 0 {
			occupied := float64(t.TotalSeats - t.AvailableSeats)
			occ.Utilization = math.Round(occupied/float64(t.TotalSeats)*10000) / 100
		}
		out = append(out, occ)
	}
	return out
}

// Audit returns the trains whose available seat count differs from
// TotalSeats minus their Confirmed bookings. A healthy ledger yields an empty
// slice.
func (s *ReportService) Audit() []domain.SeatDiscrepancy {
	snap := s.ledger.Snapshot()
	confirmed := confirmedPerTrain(snap.Bookings)

	out := []domain.SeatDiscrepancy{}
	for _, t := range snap.Trains {
		expected := t.TotalSeats - confirmed[t.ID]
		if t.AvailableSeats != expected {
			out = append(out, domain.SeatDiscrepancy{
				TrainID:        t.ID,
				AvailableSeats: t.AvailableSeats,
				ExpectedSeats:  expected,
			})
		}
	}
	return out
}

// Export returns one row per booking joined with its train, in ledger order.
// Bookings whose train is gone keep their booking and passenger fields and
// leave the train fields empty.
func (s *ReportService) Export() []domain.ExportRow {
	snap := s.ledger.Snapshot()

	rows := make([]domain.ExportRow, 0, len(snap.Bookings))
	for _, b := range snap.Bookings {
		row := domain.ExportRow{
			BookingID:     b.ID,
			Status:        b.Status,
			BookingDate:   b.BookingDate,
			JourneyDate:   b.JourneyDate,
			TrainID:       b.TrainID,
			PassengerName: b.Passenger.Name,
			Email:         b.Passenger.Email,
			Phone:         b.Passenger.Phone,
		}
		if t, ok := findTrain(snap.Trains, b.TrainID); ok {
			row.TrainName = t.Name
			row.Source = t.Source
			row.Destination = t.Destination
			row.DepartureTime = t.DepartureTime
			row.Price = t.Price
		}
		rows = append(rows, row)
	}
	return rows
}

func findTrain(trains []domain.Train, id string) (domain.Train, bool) {
	for _, t := range trains {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Train{}, false
}

func confirmedPerTrain(bookings []domain.Booking) map[string]int {
	counts := make(map[string]int)
	for _, b := range bookings {
		if b.Confirmed() {
			counts[b.TrainID]++
		}
	}
	return counts
}
