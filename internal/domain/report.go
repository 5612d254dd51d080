package domain

// SystemStatus summarises the whole ledger for the status page.
type SystemStatus struct {
	TotalTrains       int `json:"total_trains"`
	TotalBookings     int `json:"total_bookings"`
	ConfirmedBookings int `json:"confirmed_bookings"`
	CancelledBookings int `json:"cancelled_bookings"`
	AvailableSeats    int `json:"available_seats"` // summed over all trains
}

// TrainOccupancy is one train's utilisation and revenue from live bookings.
type TrainOccupancy struct {
	TrainID        string  `json:"train_id"`
	Name           string  `json:"name"`
	Route          string  `json:"route"`
	TotalSeats     int     `json:"total_seats"`
	AvailableSeats int     `json:"available_seats"`
	Confirmed      int     `json:"confirmed_bookings"`
	Utilization    float64 `json:"utilization_percent"`
	Revenue        float64 `json:"revenue"`
}

// SeatDiscrepancy flags a train whose available seat count disagrees with
// TotalSeats minus its Confirmed bookings.
type SeatDiscrepancy struct {
	TrainID        string `json:"train_id"`
	AvailableSeats int    `json:"available_seats"`
	ExpectedSeats  int    `json:"expected_seats"`
}

// ExportRow is one booking flattened together with its train.
// Train fields are empty when the booking references a train that no longer
// exists.
type ExportRow struct {
	BookingID     string  `json:"booking_id"`
	Status        Status  `json:"status"`
	BookingDate   string  `json:"booking_date"`
	JourneyDate   string  `json:"journey_date"`
	TrainID       string  `json:"train_id"`
	TrainName     string  `json:"train_name"`
	Source        string  `json:"source"`
	Destination   string  `json:"destination"`
	DepartureTime string  `json:"departure_time"`
	Price         float64 `json:"price"`
	PassengerName string  `json:"passenger_name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
}
