package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Status is the two-state booking lifecycle. The only transition is
// Confirmed → Cancelled, and it is irreversible.
type Status string

const (
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
)

// TimestampLayout is the format of Booking.BookingDate.
const TimestampLayout = "2006-01-02 15:04:05"

// Passenger is the traveller snapshot embedded in a Booking.
// Passengers are never deduplicated: two bookings by the same person carry two
// independent records, matched later only by email.
type Passenger struct {
	ID     string `json:"passenger_id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
}

// Passenger age bounds accepted by Validate.
const (
	MinPassengerAge = 1
	MaxPassengerAge = 120
)

// NewPassenger builds a Passenger with a freshly generated id.
func NewPassenger(name string, age int, gender, phone, email string) Passenger {
	return Passenger{
		ID:     uuid.NewString(),
		Name:   name,
		Age:    age,
		Gender: gender,
		Phone:  phone,
		Email:  email,
	}
}

// Validate applies the checks the booking front ends perform before calling
// the ledger. The ledger itself accepts any passenger.
func (p Passenger) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.Age < MinPassengerAge || p.Age > MaxPassengerAge {
		problems = append(problems, fmt.Sprintf("age must be between %d and %d", MinPassengerAge, MaxPassengerAge))
	}
	if strings.TrimSpace(p.Gender) == "" {
		problems = append(problems, "gender is required")
	}
	if strings.TrimSpace(p.Phone) == "" {
		problems = append(problems, "phone is required")
	}
	if strings.TrimSpace(p.Email) == "" {
		problems = append(problems, "email is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// Booking is one passenger's seat on one train.
// TrainID is not re-validated after creation, so it may dangle if the train is
// later removed by hand.
type Booking struct {
	ID          string    `json:"booking_id"`
	TrainID     string    `json:"train_id"`
	Passenger   Passenger `json:"passenger"`
	BookingDate string    `json:"booking_date"` // TimestampLayout, set by the ledger
	JourneyDate string    `json:"journey_date"` // caller supplied, stored verbatim
	Status      Status    `json:"status"`
}

// Confirmed reports whether the booking still holds a seat.
func (b Booking) Confirmed() bool {
	return b.Status == StatusConfirmed
}
