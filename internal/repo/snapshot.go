// Package repo contains the persistence gateways for the booking ledger.
// A gateway loads and saves the whole ledger as one document; there are no
// partial writes and no migrations of the document shape.
// No business logic lives here, only encoding and storage.
package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pkordes/railbook/internal/domain"
)

// ErrMalformed is returned when a stored ledger document cannot be decoded
// into trains and bookings.
var ErrMalformed = errors.New("malformed ledger document")

// Gateway defines the persistence operations for the ledger.
// The service layer depends on this interface, which lets the JSON file store
// be swapped for Postgres (or a test double) without touching ledger logic.
type Gateway interface {
	// Load returns the persisted ledger. A missing store yields an empty
	// Snapshot and a nil error.
	Load(ctx context.Context) (Snapshot, error)

	// Save overwrites the persisted ledger with snap in full.
	Save(ctx context.Context, snap Snapshot) error
}

// Snapshot is the whole ledger in insertion order.
//
// Its JSON form is the persisted document:
//
//	{"trains": {"<train_id>": {...}}, "bookings": {"<booking_id>": {...}}}
//
// Object keys are written and read back in slice order, so iteration order
// survives a save/load round trip.
type Snapshot struct {
	Trains   []domain.Train
	Bookings []domain.Booking
}

// MarshalJSON encodes the snapshot as two id-keyed objects.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"trains":`)
	if err := writeKeyed(&buf, s.Trains, func(t domain.Train) (string, any) {
		if t.Bookings == nil {
			t.Bookings = []string{}
		}
		return t.ID, t
	}); err != nil {
		return nil, fmt.Errorf("encode trains: %w", err)
	}
	buf.WriteString(`,"bookings":`)
	if err := writeKeyed(&buf, s.Bookings, func(b domain.Booking) (string, any) {
		return b.ID, b
	}); err != nil {
		return nil, fmt.Errorf("encode bookings: %w", err)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Every key a stored entry must carry. Dotted names are nested objects.
var (
	trainFields = []string{
		"train_id", "name", "source", "destination", "departure_time",
		"arrival_time", "total_seats", "available_seats", "price", "bookings",
	}
	bookingFields = []string{
		"booking_id", "train_id", "booking_date", "journey_date", "status",
		"passenger.passenger_id", "passenger.name", "passenger.age",
		"passenger.gender", "passenger.phone", "passenger.email",
	}
)

// UnmarshalJSON decodes the persisted document. Absent sections decode as
// empty. An entry missing any of its fields (or holding null for one), or
// whose id does not match its key, is rejected with ErrMalformed.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var doc struct {
		Trains   json.RawMessage `json:"trains"`
		Bookings json.RawMessage `json:"bookings"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	trains, err := readKeyed(doc.Trains, trainFields, func(key string, t domain.Train) error {
		if t.ID == "" || t.ID != key {
			return fmt.Errorf("train %q: train_id %q does not match its key", key, t.ID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: trains: %v", ErrMalformed, err)
	}

	bookings, err := readKeyed(doc.Bookings, bookingFields, func(key string, b domain.Booking) error {
		switch {
		case b.ID == "" || b.ID != key:
			return fmt.Errorf("booking %q: booking_id %q does not match its key", key, b.ID)
		case b.TrainID == "":
			return fmt.Errorf("booking %q: train_id is required", key)
		case b.Passenger.ID == "":
			return fmt.Errorf("booking %q: passenger is required", key)
		case b.Status != domain.StatusConfirmed && b.Status != domain.StatusCancelled:
			return fmt.Errorf("booking %q: unknown status %q", key, b.Status)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: bookings: %v", ErrMalformed, err)
	}

	for i := range trains {
		if trains[i].Bookings == nil {
			trains[i].Bookings = []string{}
		}
	}
	s.Trains = trains
	s.Bookings = bookings
	return nil
}

// writeKeyed writes items as a JSON object whose keys come from keyOf.
func writeKeyed[T any](buf *bytes.Buffer, items []T, keyOf func(T) (string, any)) error {
	buf.WriteByte('{')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, value := keyOf(item)
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return nil
}

// readKeyed decodes a JSON object into its values in document order.
// Each value must carry every name in fields before it is decoded.
// A repeated key replaces the earlier value but keeps the earlier position.
func readKeyed[T any](raw json.RawMessage, fields []string, check func(key string, v T) error) ([]T, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []T{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	out := []T{}
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var entry json.RawMessage
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("%q: %w", key, err)
		}
		if err := requireFields(entry, fields); err != nil {
			return nil, fmt.Errorf("%q: %w", key, err)
		}
		var v T
		if err := json.Unmarshal(entry, &v); err != nil {
			return nil, fmt.Errorf("%q: %w", key, err)
		}
		if err := check(key, v); err != nil {
			return nil, err
		}
		if i, seen := index[key]; seen {
			out[i] = v
			continue
		}
		index[key] = len(out)
		out = append(out, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

// requireFields reports the first name in fields that entry lacks or sets to
// null. A name "a.b" looks up b inside the object at a.
func requireFields(entry json.RawMessage, fields []string) error {
	objects := map[string]map[string]json.RawMessage{}
	object := func(path string, raw json.RawMessage) (map[string]json.RawMessage, error) {
		if m, ok := objects[path]; ok {
			return m, nil
		}
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil || m == nil {
			return nil, fmt.Errorf("%s is not an object", strings.TrimPrefix(path, "."))
		}
		objects[path] = m
		return m, nil
	}

	for _, field := range fields {
		names := strings.Split(field, ".")
		path, raw := "", entry
		for _, name := range names {
			m, err := object(path, raw)
			if err != nil {
				return err
			}
			v, ok := m[name]
			if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				return fmt.Errorf("missing %s", field)
			}
			path, raw = path+"."+name, v
		}
	}
	return nil
}
