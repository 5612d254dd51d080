package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/railbook/internal/domain"
	"github.com/pkordes/railbook/internal/repo"
	"github.com/pkordes/railbook/internal/service"
)

// mockLedgerView is a hand-written test double for service.LedgerView.
type mockLedgerView struct {
	snapshot func() repo.Snapshot
}

func (m *mockLedgerView) Snapshot() repo.Snapshot {
	return m.snapshot()
}

// compile-time checks: both the mock and the real ledger satisfy LedgerView.
var (
	_ service.LedgerView = (*mockLedgerView)(nil)
	_ service.LedgerView = (*service.Ledger)(nil)
)

// ---- helpers ---------------------------------------------------------------

func booking(id, trainID, email string, status domain.Status) domain.Booking {
	return domain.Booking{
		ID:          id,
		TrainID:     trainID,
		Passenger:   domain.Passenger{ID: "P-" + id, Name: "Pat " + id, Age: 40, Gender: "Other", Phone: "555", Email: email},
		BookingDate: "2024-03-09 14:05:07",
		JourneyDate: "2024-05-01",
		Status:      status,
	}
}

// reportFixture has two trains: T1 with two confirmed and one cancelled booking,
// T2 with none, plus one booking referencing a train that no longer exists.
func reportFixture() repo.Snapshot {
	t1 := domain.NewTrain("T1", "Express", "New York", "Boston", "08:00", "12:00", 4, 50)
	t1.AvailableSeats = 2
	t1.Bookings = []string{"B1", "B2"}
	t2 := domain.NewTrain("T2", "Local", "Boston", "Albany", "09:00", "11:00", 10, 20)

	return repo.Snapshot{
		Trains: []domain.Train{t1, t2},
		Bookings: []domain.Booking{
			booking("B1", "T1", "alice@example.com", domain.StatusConfirmed),
			booking("B2", "T1", "bob@example.com", domain.StatusConfirmed),
			booking("B3", "T1", "alice@example.com", domain.StatusCancelled),
			booking("B4", "GONE", "alice@example.com", domain.StatusConfirmed),
		},
	}
}

func newReportService(snap repo.Snapshot) *service.ReportService {
	return service.NewReportService(&mockLedgerView{
		snapshot: func() repo.Snapshot { return snap },
	})
}

func ids(bookings []domain.Booking) []string {
	out := make([]string, len(bookings))
	for i, b := range bookings {
		out[i] = b.ID
	}
	return out
}

// ---- BookingsByEmail -------------------------------------------------------

func TestReportService_BookingsByEmail_IncludesCancelled(t *testing.T) {
	svc := newReportService(reportFixture())

	got := svc.BookingsByEmail("alice@example.com")

	assert.Equal(t, []string{"B1", "B3", "B4"}, ids(got))
	assert.NotNil(t, svc.BookingsByEmail("nobody@example.com"))
}

// ---- BookingsByTrain -------------------------------------------------------

func TestReportService_BookingsByTrain_Paged(t *testing.T) {
	svc := newReportService(reportFixture())
	page, limit := 2, 2

	got, total, err := svc.BookingsByTrain("T1", domain.NewPaginationParams(&page, &limit))

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"B3"}, ids(got))
}

func TestReportService_BookingsByTrain_PastLastPage(t *testing.T) {
	svc := newReportService(reportFixture())
	page := 9

	got, total, err := svc.BookingsByTrain("T1", domain.NewPaginationParams(&page, nil))

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, got)
}

func TestReportService_BookingsByTrain_UnknownTrain(t *testing.T) {
	svc := newReportService(reportFixture())

	_, _, err := svc.BookingsByTrain("T9", domain.NewPaginationParams(nil, nil))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Status / Occupancy / Audit --------------------------------------------

func TestReportService_Status(t *testing.T) {
	svc := newReportService(reportFixture())

	got := svc.Status()

	assert.Equal(t, domain.SystemStatus{
		TotalTrains:       2,
		TotalBookings:     4,
		ConfirmedBookings: 3,
		CancelledBookings: 1,
		AvailableSeats:    12,
	}, got)
}

func TestReportService_Occupancy(t *testing.T) {
	svc := newReportService(reportFixture())

	got := svc.Occupancy()

	require.Len(t, got, 2)
	assert.Equal(t, "T1", got[0].TrainID)
	assert.Equal(t, "New York → Boston", got[0].Route)
	assert.Equal(t, 2, got[0].Confirmed)
	assert.InDelta(t, 50.0, got[0].Utilization, 0.001)
	assert.InDelta(t, 100.0, got[0].Revenue, 0.001)

	assert.Zero(t, got[1].Confirmed)
	assert.Zero(t, got[1].Utilization)
	assert.Zero(t, got[1].Revenue)
}

func TestReportService_Audit_HealthyLedger(t *testing.T) {
	svc := newReportService(reportFixture())

	got := svc.Audit()

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReportService_Audit_FlagsDrift(t *testing.T) {
	snap := reportFixture()
	snap.Trains[1].AvailableSeats = 7 // T2 has no bookings, so 10 is expected

	got := newReportService(snap).Audit()

	require.Len(t, got, 1)
	assert.Equal(t, domain.SeatDiscrepancy{TrainID: "T2", AvailableSeats: 7, ExpectedSeats: 10}, got[0])
}

// ---- Export ----------------------------------------------------------------

func TestReportService_Export(t *testing.T) {
	svc := newReportService(reportFixture())

	rows := svc.Export()

	require.Len(t, rows, 4)
	assert.Equal(t, domain.ExportRow{
		BookingID:     "B1",
		Status:        domain.StatusConfirmed,
		BookingDate:   "2024-03-09 14:05:07",
		JourneyDate:   "2024-05-01",
		TrainID:       "T1",
		TrainName:     "Express",
		Source:        "New York",
		Destination:   "Boston",
		DepartureTime: "08:00",
		Price:         50,
		PassengerName: "Pat B1",
		Email:         "alice@example.com",
		Phone:         "555",
	}, rows[0])

	// A booking whose train is gone keeps its own fields.
	assert.Equal(t, "GONE", rows[3].TrainID)
	assert.Empty(t, rows[3].TrainName)
	assert.Zero(t, rows[3].Price)
}

func TestReportService_OverRealLedger(t *testing.T) {
	l := openSeeded(t, &memGateway{})
	svc := service.NewReportService(l)

	assert.Equal(t, 5, svc.Status().TotalTrains)
	assert.Equal(t, 540, svc.Status().AvailableSeats)
	assert.Empty(t, svc.Audit())
}
