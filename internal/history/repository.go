// Package history persists submitted checklists to a flat CSV file.
//
// Every mutation re-reads the whole file, edits it in memory and rewrites it.
// The file holds at most one batch per calendar day: a submit first drops
// every row stamped with today's date, then appends the new batch. Rows from
// other days accumulate without bound.
package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"shift-checklist/internal/checklist"
)

// DefaultFile is the history file name used when none is configured.
const DefaultFile = "checklist_history.csv"

// ClearMode selects what "clear all history" does to the file.
type ClearMode string

const (
	// ClearTruncate leaves an empty file behind.
	ClearTruncate ClearMode = "truncate"
	// ClearRemove deletes the file.
	ClearRemove ClearMode = "remove"
)

func ParseClearMode(s string) (ClearMode, error) {
	switch ClearMode(s) {
	case ClearTruncate, ClearRemove:
		return ClearMode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownClearMode, s)
}

type Options struct {
	Path            string
	Shape           Shape
	ClearMode       ClearMode
	RequireOperator bool
	Logger          *zap.Logger
	Now             func() time.Time
}

type Repository struct {
	opts Options
	log  *zap.Logger

	// mu serializes read-modify-write within this process only.
	mu sync.Mutex
}

func NewRepository(opts Options) *Repository {
	if opts.Path == "" {
		opts.Path = DefaultFile
	}
	if opts.Shape == "" {
		opts.Shape = ShapeWide
	}
	if opts.ClearMode == "" {
		opts.ClearMode = ClearTruncate
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Repository{opts: opts, log: opts.Logger.With(zap.String("file", opts.Path))}
}

func (r *Repository) Path() string { return r.opts.Path }

func (r *Repository) Shape() Shape { return r.opts.Shape }

func (r *Repository) RequireOperator() bool { return r.opts.RequireOperator }

// SubmitResult describes what a submit did to the file.
type SubmitResult struct {
	Timestamp string
	Replaced  int
	Added     int
	Total     int
}

// Submit replaces today's batch with snap.
func (r *Repository) Submit(ctx context.Context, snap checklist.Snapshot) (SubmitResult, error) {
	if err := ctx.Err(); err != nil {
		return SubmitResult{}, err
	}
	if r.opts.RequireOperator && snap.OperatorID == "" {
		return SubmitResult{}, ErrOperatorRequired
	}
	if err := CheckCatalog(snap.Catalog); err != nil {
		return SubmitResult{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.load()
	now := r.opts.Now()
	stamp := now.Format(TimestampLayout)

	kept := existing
	if ts := existing.Index(ColTimestamp); ts >= 0 {
		kept = existing.Filter(func(row []string) bool {
			return !sameDay(row[ts], now)
		})
	}

	cols, records := Flatten(snap, r.opts.Shape, stamp)
	merged := kept.Append(cols, records)
	if err := r.write(merged); err != nil {
		return SubmitResult{}, err
	}

	res := SubmitResult{
		Timestamp: stamp,
		Replaced:  existing.Len() - kept.Len(),
		Added:     len(records),
		Total:     merged.Len(),
	}
	r.log.Info("checklist submitted",
		zap.String("timestamp", stamp),
		zap.String("operator", snap.OperatorID),
		zap.Int("replaced", res.Replaced),
		zap.Int("added", res.Added),
		zap.Int("total", res.Total))
	return res, nil
}

// List returns the full history, unfiltered.
func (r *Repository) List(ctx context.Context) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(), nil
}

// ExportCSV returns the file's bytes as stored; a missing file exports as
// empty.
func (r *Repository) ExportCSV(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := os.ReadFile(r.opts.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return data, nil
}

// Clear discards every record according to the configured clear mode.
func (r *Repository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.opts.ClearMode {
	case ClearRemove:
		if err := os.Remove(r.opts.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove history: %w", err)
		}
	default:
		if err := r.write(Table{}); err != nil {
			return err
		}
	}
	r.log.Warn("history cleared", zap.String("mode", string(r.opts.ClearMode)))
	return nil
}

// load reads the file. Missing, empty and unparsable files all read as an
// empty table.
func (r *Repository) load() Table {
	data, err := os.ReadFile(r.opts.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.log.Warn("history unreadable, treating as empty", zap.Error(err))
		}
		return Table{}
	}
	t, err := decodeCSV(data)
	if err != nil {
		r.log.Warn("history malformed, treating as empty", zap.Error(err))
		return Table{}
	}
	return t
}

func (r *Repository) write(t Table) error {
	data, err := encodeCSV(t)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := writeFileAtomic(r.opts.Path, data); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// writeFileAtomic replaces path with data via a temp file in the same
// directory, so readers never see a half-written file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0644); err != nil {
		os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}

var timestampLayouts = []string{TimestampLayout, time.RFC3339, "2006-01-02T15:04:05", "2006/01/02 15:04:05", "2006-01-02"}

// sameDay reports whether value is a timestamp on now's calendar date.
// Values that parse under none of the known layouts never match, so rows
// with odd timestamps survive a same-day replace.
func sameDay(value string, now time.Time) bool {
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, value, now.Location())
		if err != nil {
			continue
		}
		t = t.In(now.Location())
		y1, m1, d1 := t.Date()
		y2, m2, d2 := now.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	}
	return false
}
