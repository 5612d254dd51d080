package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/railbook/internal/domain"
	"github.com/pkordes/railbook/internal/handler"
)

// mockLedger is a test double for handler.Ledger.
// Set only the method fields your test needs.
type mockLedger struct {
	search            func(source, destination, date string) []domain.Train
	book              func(ctx context.Context, trainID string, p domain.Passenger, journeyDate string) (domain.Booking, error)
	cancel            func(ctx context.Context, bookingID string) (domain.Booking, error)
	booking           func(id string) (domain.Booking, bool)
	passengerBookings func(email string) []domain.Booking
	train             func(id string) (domain.Train, bool)
	trains            func() []domain.Train
	addTrain          func(ctx context.Context, t domain.Train) (domain.Train, error)
}

func (m *mockLedger) Search(source, destination, date string) []domain.Train {
	return m.search(source, destination, date)
}
func (m *mockLedger) Book(ctx context.Context, trainID string, p domain.Passenger, journeyDate string) (domain.Booking, error) {
	return m.book(ctx, trainID, p, journeyDate)
}
func (m *mockLedger) Cancel(ctx context.Context, bookingID string) (domain.Booking, error) {
	return m.cancel(ctx, bookingID)
}
func (m *mockLedger) Booking(id string) (domain.Booking, bool) {
	return m.booking(id)
}
func (m *mockLedger) PassengerBookings(email string) []domain.Booking {
	return m.passengerBookings(email)
}
func (m *mockLedger) Train(id string) (domain.Train, bool) {
	return m.train(id)
}
func (m *mockLedger) Trains() []domain.Train {
	return m.trains()
}
func (m *mockLedger) AddTrain(ctx context.Context, t domain.Train) (domain.Train, error) {
	return m.addTrain(ctx, t)
}

// compile-time check: mockLedger must satisfy handler.Ledger.
var _ handler.Ledger = (*mockLedger)(nil)

// mockReporter is a test double for handler.Reporter.
type mockReporter struct {
	bookingsByEmail func(email string) []domain.Booking
	bookingsByTrain func(trainID string, p domain.PaginationParams) ([]domain.Booking, int, error)
	status          func() domain.SystemStatus
	occupancy       func() []domain.TrainOccupancy
	audit           func() []domain.SeatDiscrepancy
	export          func() []domain.ExportRow
}

func (m *mockReporter) BookingsByEmail(email string) []domain.Booking {
	return m.bookingsByEmail(email)
}
func (m *mockReporter) BookingsByTrain(trainID string, p domain.PaginationParams) ([]domain.Booking, int, error) {
	return m.bookingsByTrain(trainID, p)
}
func (m *mockReporter) Status() domain.SystemStatus {
	return m.status()
}
func (m *mockReporter) Occupancy() []domain.TrainOccupancy {
	return m.occupancy()
}
func (m *mockReporter) Audit() []domain.SeatDiscrepancy {
	return m.audit()
}
func (m *mockReporter) Export() []domain.ExportRow {
	return m.export()
}

// compile-time check: mockReporter must satisfy handler.Reporter.
var _ handler.Reporter = (*mockReporter)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into a chi router.
// This mirrors how main.go registers the routes in production.
func newHTTPHandler(l handler.Ledger, r handler.Reporter) http.Handler {
	return handler.NewServer(l, r, nil).Routes()
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// errorCode decodes an ErrorResponse body and returns its code.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handler.ErrorResponse](t, rec).Error.Code
}

func trainFixture() domain.Train {
	return domain.NewTrain("T001", "Express Mail", "New York", "Boston", "08:00", "12:00", 100, 50)
}

func bookingFixture() domain.Booking {
	return domain.Booking{
		ID:      "B1",
		TrainID: "T001",
		Passenger: domain.Passenger{
			ID: "P1", Name: "Alice", Age: 30, Gender: "Female",
			Phone: "555-0100", Email: "alice@example.com",
		},
		BookingDate: "2024-03-09 14:05:07",
		JourneyDate: "2024-05-01",
		Status:      domain.StatusConfirmed,
	}
}
