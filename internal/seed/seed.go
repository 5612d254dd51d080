// Package seed provides the sample trains inserted into an empty ledger.
// The default dataset is a versioned YAML document compiled into the binary;
// operators can point SEED_FILE at their own document with the same shape.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pkordes/railbook/internal/domain"
)

//go:embed default.yaml
var defaultDataset []byte

// Dataset is the on-disk shape of a seed document.
type Dataset struct {
	Version int          `yaml:"version"`
	Trains  []TrainEntry `yaml:"trains"`
}

// TrainEntry is one train in a seed document. Every seat starts available.
type TrainEntry struct {
	ID            string  `yaml:"train_id"`
	Name          string  `yaml:"name"`
	Source        string  `yaml:"source"`
	Destination   string  `yaml:"destination"`
	DepartureTime string  `yaml:"departure_time"`
	ArrivalTime   string  `yaml:"arrival_time"`
	TotalSeats    int     `yaml:"total_seats"`
	Price         float64 `yaml:"price"`
}

// Provider yields the trains for a fresh ledger.
type Provider struct {
	name   string
	trains []domain.Train
	err    error
}

// Trains returns a fresh copy of the dataset's trains.
func (p Provider) Trains() ([]domain.Train, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([]domain.Train, len(p.trains))
	for i, t := range p.trains {
		out[i] = t.Clone()
	}
	return out, nil
}

// String names the dataset for log lines.
func (p Provider) String() string {
	return p.name
}

// Default returns the built-in five-train timetable.
func Default() Provider {
	trains, err := Parse(defaultDataset)
	if err != nil {
		err = fmt.Errorf("seed.Default: %w", err)
	}
	return Provider{name: "default", trains: trains, err: err}
}

// FromFile returns a provider backed by the YAML document at path.
// Read and parse errors surface from Trains.
func FromFile(path string) Provider {
	data, err := os.ReadFile(path)
	if err != nil {
		return Provider{name: path, err: fmt.Errorf("seed.FromFile: %w", err)}
	}
	trains, err := Parse(data)
	if err != nil {
		return Provider{name: path, err: fmt.Errorf("seed.FromFile %s: %w", path, err)}
	}
	return Provider{name: path, trains: trains}
}

// Static returns a provider for an explicit train list, mostly for tests.
func Static(trains ...domain.Train) Provider {
	return Provider{name: "static", trains: trains}
}

// Parse decodes and validates a seed document.
func Parse(data []byte) ([]domain.Train, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if ds.Version < 1 {
		return nil, fmt.Errorf("unsupported dataset version %d", ds.Version)
	}

	seen := make(map[string]bool, len(ds.Trains))
	trains := make([]domain.Train, 0, len(ds.Trains))
	for _, e := range ds.Trains {
		t := domain.NewTrain(e.ID, e.Name, e.Source, e.Destination,
			e.DepartureTime, e.ArrivalTime, e.TotalSeats, e.Price)
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("train %q: %w", e.ID, err)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("train %q: %w: duplicate train_id", e.ID, domain.ErrConflict)
		}
		seen[t.ID] = true
		trains = append(trains, t)
	}
	return trains, nil
}
