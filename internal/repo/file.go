package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// FileGateway stores the ledger as one indented JSON document on disk.
//
// Save truncates and rewrites the file in place. A crash mid-write can leave a
// corrupt document, which the next Load treats as empty.
type FileGateway struct {
	path   string
	logger *slog.Logger
}

// NewFileGateway constructs a FileGateway for the document at path.
// A nil logger falls back to slog.Default().
func NewFileGateway(path string, logger *slog.Logger) *FileGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileGateway{path: path, logger: logger}
}

// Path returns the location of the ledger document.
func (g *FileGateway) Path() string {
	return g.path
}

// Load reads the ledger document. A missing file yields an empty Snapshot.
// A file that is not a valid ledger document is logged as a warning and also
// yields an empty Snapshot; the bad content is overwritten by the next Save.
func (g *FileGateway) Load(ctx context.Context) (Snapshot, error) {
	data, err := os.ReadFile(g.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("repo.FileGateway.Load: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		g.logger.WarnContext(ctx, "error loading ledger, starting with empty data",
			"path", g.path,
			"error", err,
		)
		return Snapshot{}, nil
	}
	return snap, nil
}

// Save writes snap over the ledger document.
func (g *FileGateway) Save(_ context.Context, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("repo.FileGateway.Save: encode: %w", err)
	}
	if err := os.WriteFile(g.path, data, 0o644); err != nil {
		return fmt.Errorf("repo.FileGateway.Save: %w", err)
	}
	return nil
}
