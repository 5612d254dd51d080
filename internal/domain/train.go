// Package domain contains the core data types for the train booking ledger.
// It depends only on google/uuid and is imported by every other internal
// package (repo, seed, service, handler).
package domain

import (
	"fmt"
	"strings"
)

// Train is a scheduled service with a fixed seat capacity.
// The train id is assigned externally (seed data or an administrator), never
// generated by the ledger.
//
// AvailableSeats must always equal TotalSeats minus the number of Confirmed
// bookings referencing the train. Bookings lists the ids of those bookings in
// the order they were made.
type Train struct {
	ID             string   `json:"train_id"`
	Name           string   `json:"name"`
	Source         string   `json:"source"`
	Destination    string   `json:"destination"`
	DepartureTime  string   `json:"departure_time"`
	ArrivalTime    string   `json:"arrival_time"` // "+1" suffix marks next-day arrival
	TotalSeats     int      `json:"total_seats"`
	AvailableSeats int      `json:"available_seats"`
	Price          float64  `json:"price"`
	Bookings       []string `json:"bookings"`
}

// NewTrain returns a Train with every seat available and no bookings.
func NewTrain(id, name, source, destination, departure, arrival string, totalSeats int, price float64) Train {
	return Train{
		ID:             id,
		Name:           name,
		Source:         source,
		Destination:    destination,
		DepartureTime:  departure,
		ArrivalTime:    arrival,
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		Price:          price,
		Bookings:       []string{},
	}
}

// Clone returns a deep copy so callers can read a train without sharing the
// ledger's booking-id slice.
func (t Train) Clone() Train {
	out := t
	out.Bookings = make([]string, len(t.Bookings))
	copy(out.Bookings, t.Bookings)
	return out
}

// Serves reports whether the train runs from source to destination.
// Station names are compared case-insensitively.
func (t Train) Serves(source, destination string) bool {
	return strings.EqualFold(t.Source, source) && strings.EqualFold(t.Destination, destination)
}

// HasBooking reports whether bookingID currently holds a seat on the train.
func (t Train) HasBooking(bookingID string) bool {
	return t.bookingIndex(bookingID) >= 0
}

func (t Train) bookingIndex(bookingID string) int {
	for i, id := range t.Bookings {
		if id == bookingID {
			return i
		}
	}
	return -1
}

// ReleaseSeat removes bookingID from the train and frees its seat.
// It returns false, leaving the train untouched, when the id is not held.
func (t *Train) ReleaseSeat(bookingID string) bool {
	i := t.bookingIndex(bookingID)
	if i < 0 {
		return false
	}
	t.Bookings = append(t.Bookings[:i], t.Bookings[i+1:]...)
	t.AvailableSeats++
	return true
}

// HoldSeat takes one seat for bookingID. It returns false when the train is full.
func (t *Train) HoldSeat(bookingID string) bool {
	if t.AvailableSeats <= 0 {
		return false
	}
	t.AvailableSeats--
	t.Bookings = append(t.Bookings, bookingID)
	return true
}

// Validate enforces the rules for administratively inserted trains.
func (t Train) Validate() error {
	switch {
	case strings.TrimSpace(t.ID) == "":
		return fmt.Errorf("%w: train_id is required", ErrValidation)
	case strings.TrimSpace(t.Name) == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case strings.TrimSpace(t.Source) == "" || strings.TrimSpace(t.Destination) == "":
		return fmt.Errorf("%w: source and destination are required", ErrValidation)
	case t.TotalSeats <= 0:
		return fmt.Errorf("%w: total_seats must be positive", ErrValidation)
	case t.AvailableSeats < 0 || t.AvailableSeats > t.TotalSeats:
		return fmt.Errorf("%w: available_seats must be between 0 and total_seats", ErrValidation)
	case t.Price <= 0:
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	if _, err := JourneyDuration(t.DepartureTime, t.ArrivalTime); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
