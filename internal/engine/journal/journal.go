// Package journal records playlist expansion runs.
//
// Two backends are provided: SQLite for single-host deployments and the CLI,
// Postgres for shared deployments. Open picks one from configuration.
package journal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_playlist/internal/engine/sources"
)

// Status is the outcome of one run.
type Status string

const (
	StatusOK          Status = "ok"
	StatusEmpty       Status = "empty"
	StatusUnsupported Status = "unsupported"
	StatusError       Status = "error"
)

// Default and maximum page size of Recent.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Entry is one recorded run.
type Entry struct {
	ID        string        `json:"id" yaml:"id"`
	Locator   string        `json:"locator" yaml:"locator"`
	Parser    string        `json:"parser,omitempty" yaml:"parser,omitempty"`
	Count     int           `json:"count" yaml:"count"`
	Status    Status        `json:"status" yaml:"status"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration"`
	CreatedAt time.Time     `json:"created_at" yaml:"created_at"`
}

// Journal stores entries and lists the most recent ones, newest first.
type Journal interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// NewEntry builds an entry for a finished run, classifying err.
func NewEntry(locator, parser string, count int, err error, elapsed time.Duration) Entry {
	e := Entry{
		ID:        uuid.NewString(),
		Locator:   locator,
		Parser:    parser,
		Count:     count,
		Status:    StatusOK,
		Duration:  elapsed,
		CreatedAt: time.Now().UTC(),
	}
	if err != nil {
		e.Error = err.Error()
	}
	switch {
	case err == nil && count == 0, errors.Is(err, sources.ErrEmptyPlaylist):
		e.Status = StatusEmpty
	case errors.Is(err, sources.ErrUnsupportedLocator), errors.Is(err, sources.ErrNotPlaylist):
		e.Status = StatusUnsupported
	case err != nil:
		e.Status = StatusError
	}
	return e
}

// Open returns the Postgres journal when databaseURL is set, the SQLite
// journal when path is set, and a no-op journal otherwise.
func Open(ctx context.Context, databaseURL, path string) (Journal, error) {
	switch {
	case databaseURL != "":
		pg, err := ConnectPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case path != "":
		lite, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return lite, nil
	default:
		return Nop{}, nil
	}
}

// Nop discards entries.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

func (Nop) Recent(context.Context, int) ([]Entry, error) { return []Entry{}, nil }

func (Nop) Close() error { return nil }

// normalize fills the generated fields of e.
func normalize(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()
	if e.Status == "" {
		e.Status = StatusOK
	}
	return e
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
