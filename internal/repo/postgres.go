package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/railbook/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test. Begin on a
// pgx.Tx opens a savepoint, so Save still runs atomically inside it.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresGateway stores the ledger in the trains and bookings tables created
// by the migrations package. Like FileGateway it reads and writes the whole
// ledger at once; the position column preserves insertion order.
type PostgresGateway struct {
	db db
}

// NewPostgresGateway constructs a PostgresGateway backed by the provided db.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresGateway(db db) *PostgresGateway {
	return &PostgresGateway{db: db}
}

// Load reads every train and booking ordered by position.
func (g *PostgresGateway) Load(ctx context.Context) (Snapshot, error) {
	trains, err := g.loadTrains(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("repo.PostgresGateway.Load: %w", err)
	}
	bookings, err := g.loadBookings(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("repo.PostgresGateway.Load: %w", err)
	}
	return Snapshot{Trains: trains, Bookings: bookings}, nil
}

func (g *PostgresGateway) loadTrains(ctx context.Context) ([]domain.Train, error) {
	const q = `
		SELECT train_id, name, source, destination, departure_time, arrival_time,
		       total_seats, available_seats, price, booking_ids
		FROM trains
		ORDER BY position`

	rows, err := g.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("trains: %w", err)
	}
	defer rows.Close()

	trains := []domain.Train{}
	for rows.Next() {
		var t domain.Train
		err := rows.Scan(&t.ID, &t.Name, &t.Source, &t.Destination, &t.DepartureTime,
			&t.ArrivalTime, &t.TotalSeats, &t.AvailableSeats, &t.Price, &t.Bookings)
		if err != nil {
			return nil, fmt.Errorf("trains: scan: %w", err)
		}
		if t.Bookings == nil {
			t.Bookings = []string{}
		}
		trains = append(trains, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("trains: rows: %w", err)
	}
	return trains, nil
}

func (g *PostgresGateway) loadBookings(ctx context.Context) ([]domain.Booking, error) {
	const q = `
		SELECT booking_id, train_id, passenger_id, passenger_name, passenger_age,
		       passenger_gender, passenger_phone, passenger_email,
		       booking_date, journey_date, status
		FROM bookings
		ORDER BY position`

	rows, err := g.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("bookings: %w", err)
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		var (
			b      domain.Booking
			status string
		)
		err := rows.Scan(&b.ID, &b.TrainID, &b.Passenger.ID, &b.Passenger.Name, &b.Passenger.Age,
			&b.Passenger.Gender, &b.Passenger.Phone, &b.Passenger.Email,
			&b.BookingDate, &b.JourneyDate, &status)
		if err != nil {
			return nil, fmt.Errorf("bookings: scan: %w", err)
		}
		b.Status = domain.Status(status)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: rows: %w", err)
	}
	return bookings, nil
}

// Save replaces both tables with snap inside a single transaction.
func (g *PostgresGateway) Save(ctx context.Context, snap Snapshot) error {
	const (
		insertTrain = `
			INSERT INTO trains (position, train_id, name, source, destination,
			                    departure_time, arrival_time, total_seats,
			                    available_seats, price, booking_ids)
			VALUES (@position, @train_id, @name, @source, @destination,
			        @departure_time, @arrival_time, @total_seats,
			        @available_seats, @price, @booking_ids)`
		insertBooking = `
			INSERT INTO bookings (position, booking_id, train_id, passenger_id,
			                      passenger_name, passenger_age, passenger_gender,
			                      passenger_phone, passenger_email, booking_date,
			                      journey_date, status)
			VALUES (@position, @booking_id, @train_id, @passenger_id,
			        @passenger_name, @passenger_age, @passenger_gender,
			        @passenger_phone, @passenger_email, @booking_date,
			        @journey_date, @status)`
	)

	err := pgx.BeginFunc(ctx, g.db, func(tx pgx.Tx) error {
		// bookings.train_id carries no foreign key, so delete order is free.
		if _, err := tx.Exec(ctx, `DELETE FROM bookings`); err != nil {
			return fmt.Errorf("clear bookings: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM trains`); err != nil {
			return fmt.Errorf("clear trains: %w", err)
		}

		batch := &pgx.Batch{}
		for i, t := range snap.Trains {
			ids := t.Bookings
			if ids == nil {
				ids = []string{}
			}
			batch.Queue(insertTrain, pgx.NamedArgs{
				"position":        i,
				"train_id":        t.ID,
				"name":            t.Name,
				"source":          t.Source,
				"destination":     t.Destination,
				"departure_time":  t.DepartureTime,
				"arrival_time":    t.ArrivalTime,
				"total_seats":     t.TotalSeats,
				"available_seats": t.AvailableSeats,
				"price":           t.Price,
				"booking_ids":     ids,
			})
		}
		for i, b := range snap.Bookings {
			batch.Queue(insertBooking, pgx.NamedArgs{
				"position":         i,
				"booking_id":       b.ID,
				"train_id":         b.TrainID,
				"passenger_id":     b.Passenger.ID,
				"passenger_name":   b.Passenger.Name,
				"passenger_age":    b.Passenger.Age,
				"passenger_gender": b.Passenger.Gender,
				"passenger_phone":  b.Passenger.Phone,
				"passenger_email":  b.Passenger.Email,
				"booking_date":     b.BookingDate,
				"journey_date":     b.JourneyDate,
				"status":           string(b.Status),
			})
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("repo.PostgresGateway.Save: %w", err)
	}
	return nil
}
