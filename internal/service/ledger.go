// Package service contains the business logic for the train booking ledger.
// The Ledger owns the train and booking collections and enforces the seat
// occupancy rule; ReportService layers read-only views over it.
// No storage code lives here: the ledger depends on repo.Gateway, not on a
// particular store.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/railbook/internal/domain"
	"github.com/pkordes/railbook/internal/repo"
)

// SeedProvider yields the trains inserted into a ledger that starts empty.
type SeedProvider interface {
	Trains() ([]domain.Train, error)
}

// BookingNotifier is told about bookings after they have been persisted.
// Notification errors are logged and never fail the ledger operation.
type BookingNotifier interface {
	BookingConfirmed(ctx context.Context, b domain.Booking) error
	BookingCancelled(ctx context.Context, b domain.Booking) error
}

// LedgerOptions carries the ledger's optional collaborators.
// Zero values select time.Now, uuid.NewString, slog.Default() and no notifier.
type LedgerOptions struct {
	Now      func() time.Time
	NewID    func() string
	Logger   *slog.Logger
	Notifier BookingNotifier
}

// Ledger is the in-memory aggregate of trains and bookings, written through
// to a repo.Gateway on every mutation.
//
// A single RWMutex serialises the mutating operations (Book, Cancel, AddTrain)
// across their whole read-modify-persist cycle, so concurrent callers cannot
// oversell a train. Reads share the lock.
type Ledger struct {
	mu sync.RWMutex

	store        repo.Gateway
	trains       map[string]*domain.Train
	trainOrder   []string
	bookings     map[string]*domain.Booking
	bookingOrder []string

	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
	notifier BookingNotifier
}

// OpenLedger loads the ledger from store. When no trains were loaded the
// trains from seeds are inserted and the ledger is saved immediately.
// A nil seeds leaves an empty ledger empty.
func OpenLedger(ctx context.Context, store repo.Gateway, seeds SeedProvider, opts LedgerOptions) (*Ledger, error) {
	l := newLedger(store, opts)

	snap, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.OpenLedger: %w", err)
	}
	for _, t := range snap.Trains {
		l.insertTrain(t)
	}
	for _, b := range snap.Bookings {
		l.insertBooking(b)
	}

	if len(l.trainOrder) == 0 && seeds != nil {
		trains, err := seeds.Trains()
		if err != nil {
			return nil, fmt.Errorf("service.OpenLedger: seed: %w", err)
		}
		for _, t := range trains {
			l.insertTrain(t)
		}
		if err := l.persist(ctx); err != nil {
			return nil, fmt.Errorf("service.OpenLedger: seed: %w", err)
		}
		l.logger.InfoContext(ctx, "ledger seeded", "trains", len(trains))
	}

	l.logger.InfoContext(ctx, "ledger opened",
		"trains", len(l.trainOrder),
		"bookings", len(l.bookingOrder),
	)
	return l, nil
}

func newLedger(store repo.Gateway, opts LedgerOptions) *Ledger {
	l := &Ledger{
		store:    store,
		trains:   make(map[string]*domain.Train),
		bookings: make(map[string]*domain.Booking),
		now:      opts.Now,
		newID:    opts.NewID,
		logger:   opts.Logger,
		notifier: opts.Notifier,
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.newID == nil {
		l.newID = uuid.NewString
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	l.logger = l.logger.With("service", "Ledger")
	return l
}

// insertTrain adds or replaces t, keeping the first insertion position.
func (l *Ledger) insertTrain(t domain.Train) {
	t = t.Clone()
	if _, ok := l.trains[t.ID]; !ok {
		l.trainOrder = append(l.trainOrder, t.ID)
	}
	l.trains[t.ID] = &t
}

func (l *Ledger) insertBooking(b domain.Booking) {
	if _, ok := l.bookings[b.ID]; !ok {
		l.bookingOrder = append(l.bookingOrder, b.ID)
	}
	l.bookings[b.ID] = &b
}

// snapshotLocked copies the ledger. Callers must hold l.mu.
func (l *Ledger) snapshotLocked() repo.Snapshot {
	snap := repo.Snapshot{
		Trains:   make([]domain.Train, 0, len(l.trainOrder)),
		Bookings: make([]domain.Booking, 0, len(l.bookingOrder)),
	}
	for _, id := range l.trainOrder {
		snap.Trains = append(snap.Trains, l.trains[id].Clone())
	}
	for _, id := range l.bookingOrder {
		snap.Bookings = append(snap.Bookings, *l.bookings[id])
	}
	return snap
}

// persist writes the whole ledger. Callers must hold l.mu.
func (l *Ledger) persist(ctx context.Context) error {
	return l.store.Save(ctx, l.snapshotLocked())
}

// Search returns the trains running from source to destination that still
// have a free seat, in ledger order. Station names match case-insensitively.
//
// date is accepted for interface compatibility but does not filter results:
// trains carry no calendar, only a daily timetable.
func (l *Ledger) Search(source, destination, date string) []domain.Train {
	_ = date

	l.mu.RLock()
	defer l.mu.RUnlock()

	results := []domain.Train{}
	for _, id := range l.trainOrder {
		t := l.trains[id]
		if t.Serves(source, destination) && t.AvailableSeats > 0 {
			results = append(results, t.Clone())
		}
	}
	return results
}

// Book reserves one seat on trainID for p.
//
// Returns domain.ErrNotFound for an unknown train and domain.ErrNoSeats for a
// full one; neither touches the ledger. journeyDate is stored verbatim. A
// passenger without an id is given one.
//
// If the save fails the booking stays in memory and is returned together with
// an error wrapping domain.ErrNotPersisted.
func (l *Ledger) Book(ctx context.Context, trainID string, p domain.Passenger, journeyDate string) (domain.Booking, error) {
	b, err := l.book(ctx, trainID, p, journeyDate)
	if err != nil {
		return b, err
	}
	if l.notifier != nil {
		if nerr := l.notifier.BookingConfirmed(ctx, b); nerr != nil {
			l.logger.WarnContext(ctx, "booking notification failed", "booking_id", b.ID, "error", nerr)
		}
	}
	return b, nil
}

func (l *Ledger) book(ctx context.Context, trainID string, p domain.Passenger, journeyDate string) (domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	logger := l.logger.With("operation", "Book", "train_id", trainID)

	train, ok := l.trains[trainID]
	if !ok {
		return domain.Booking{}, fmt.Errorf("service.Ledger.Book: train %q: %w", trainID, domain.ErrNotFound)
	}
	if train.AvailableSeats <= 0 {
		logger.InfoContext(ctx, "booking rejected", "reason", "no seats")
		return domain.Booking{}, fmt.Errorf("service.Ledger.Book: train %q: %w", trainID, domain.ErrNoSeats)
	}

	if p.ID == "" {
		p.ID = l.newID()
	}
	b := domain.Booking{
		ID:          l.newID(),
		TrainID:     trainID,
		Passenger:   p,
		BookingDate: l.now().Format(domain.TimestampLayout),
		JourneyDate: journeyDate,
		Status:      domain.StatusConfirmed,
	}
	train.HoldSeat(b.ID)
	l.insertBooking(b)

	if err := l.persist(ctx); err != nil {
		logger.ErrorContext(ctx, "booking kept in memory but not persisted", "booking_id", b.ID, "error", err)
		return b, fmt.Errorf("service.Ledger.Book: %w: %w", domain.ErrNotPersisted, err)
	}

	logger.InfoContext(ctx, "booking confirmed",
		"booking_id", b.ID,
		"available_seats", train.AvailableSeats,
	)
	return b, nil
}

// Cancel moves a Confirmed booking to Cancelled and frees its seat.
//
// Returns domain.ErrNotFound for an unknown booking or a booking whose train
// is gone, and domain.ErrAlreadyCancelled when the booking no longer holds a
// seat on its train. Neither touches the ledger, so a seat is never refunded
// twice. Save failures behave as in Book.
func (l *Ledger) Cancel(ctx context.Context, bookingID string) (domain.Booking, error) {
	b, err := l.cancel(ctx, bookingID)
	if err != nil {
		return b, err
	}
	if l.notifier != nil {
		if nerr := l.notifier.BookingCancelled(ctx, b); nerr != nil {
			l.logger.WarnContext(ctx, "cancellation notification failed", "booking_id", b.ID, "error", nerr)
		}
	}
	return b, nil
}

func (l *Ledger) cancel(ctx context.Context, bookingID string) (domain.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	logger := l.logger.With("operation", "Cancel", "booking_id", bookingID)

	b, ok := l.bookings[bookingID]
	if !ok {
		return domain.Booking{}, fmt.Errorf("service.Ledger.Cancel: booking %q: %w", bookingID, domain.ErrNotFound)
	}
	train, ok := l.trains[b.TrainID]
	if !ok {
		return domain.Booking{}, fmt.Errorf("service.Ledger.Cancel: train %q: %w", b.TrainID, domain.ErrNotFound)
	}
	if !train.HasBooking(bookingID) {
		logger.InfoContext(ctx, "cancellation rejected", "reason", "seat already released")
		return domain.Booking{}, fmt.Errorf("service.Ledger.Cancel: booking %q: %w", bookingID, domain.ErrAlreadyCancelled)
	}
	train.ReleaseSeat(bookingID)
	b.Status = domain.StatusCancelled

	if err := l.persist(ctx); err != nil {
		logger.ErrorContext(ctx, "cancellation kept in memory but not persisted", "error", err)
		return *b, fmt.Errorf("service.Ledger.Cancel: %w: %w", domain.ErrNotPersisted, err)
	}

	logger.InfoContext(ctx, "booking cancelled",
		"train_id", train.ID,
		"available_seats", train.AvailableSeats,
	)
	return *b, nil
}

// AddTrain inserts a new train with every seat available.
// AvailableSeats is reset to TotalSeats; a train arriving with booking ids
// is rejected. Returns domain.ErrValidation for invalid trains and
// domain.ErrConflict when the id is taken.
func (l *Ledger) AddTrain(ctx context.Context, t domain.Train) (domain.Train, error) {
	if len(t.Bookings) > 0 {
		return domain.Train{}, fmt.Errorf("service.Ledger.AddTrain: %w: a new train cannot carry bookings", domain.ErrValidation)
	}
	t.Bookings = []string{}
	t.AvailableSeats = t.TotalSeats
	if err := t.Validate(); err != nil {
		return domain.Train{}, fmt.Errorf("service.Ledger.AddTrain: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.trains[t.ID]; exists {
		return domain.Train{}, fmt.Errorf("service.Ledger.AddTrain: train %q: %w", t.ID, domain.ErrConflict)
	}
	l.insertTrain(t)

	if err := l.persist(ctx); err != nil {
		l.logger.ErrorContext(ctx, "train kept in memory but not persisted", "operation", "AddTrain", "train_id", t.ID, "error", err)
		return t, fmt.Errorf("service.Ledger.AddTrain: %w: %w", domain.ErrNotPersisted, err)
	}
	l.logger.InfoContext(ctx, "train added", "operation", "AddTrain", "train_id", t.ID)
	return t, nil
}

// Booking returns the booking with the given id, cancelled or not.
func (l *Ledger) Booking(id string) (domain.Booking, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, ok := l.bookings[id]
	if !ok {
		return domain.Booking{}, false
	}
	return *b, true
}

// Train returns the train with the given id.
func (l *Ledger) Train(id string) (domain.Train, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t, ok := l.trains[id]
	if !ok {
		return domain.Train{}, false
	}
	return t.Clone(), true
}

// PassengerBookings returns the Confirmed bookings whose passenger email
// equals email exactly (case-sensitive), in ledger order.
func (l *Ledger) PassengerBookings(email string) []domain.Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []domain.Booking{}
	for _, id := range l.bookingOrder {
		b := l.bookings[id]
		if b.Passenger.Email == email && b.Confirmed() {
			out = append(out, *b)
		}
	}
	return out
}

// Trains returns every train in ledger order.
func (l *Ledger) Trains() []domain.Train {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked().Trains
}

// Bookings returns every booking, cancelled ones included, in ledger order.
func (l *Ledger) Bookings() []domain.Booking {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked().Bookings
}

// Snapshot returns a consistent copy of both collections.
func (l *Ledger) Snapshot() repo.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}
