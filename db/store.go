package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/logger"
	"github.com/teranos/logifact/term"
	"github.com/teranos/logifact/writer"
)

const metaFactFormat = "fact_format"

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one recorded generation.
type Run struct {
	ID            string
	Mode          string
	FormatVersion string
	StartedAt     time.Time
	FinishedAt    *time.Time
	Facts         int
	Diagnostics   int
}

// StoredFact is one fact row, addressed by its output-relative path.
type StoredFact struct {
	Path      string
	Kind      string
	Namespace string
	Name      string
	Text      string
}

// Store records runs and their facts in SQLite. Between BeginRun and
// FinishRun it implements traverse.Writer.
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	format string
	now    func() time.Time

	mu    sync.Mutex
	runID string
	facts int
}

// NewStore wraps a migrated database. format is the fact format version
// recorded with every run.
func NewStore(db *sql.DB, format string, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = logger.ComponentLogger("store")
	}
	return &Store{db: db, logger: log, format: format, now: time.Now}
}

// OpenStore opens (creating and migrating if needed) the store at path and
// checks that its fact format is compatible with format.
func OpenStore(ctx context.Context, path, format string, log *zap.SugaredLogger) (*Store, error) {
	db, err := OpenWithMigrations(path, log)
	if err != nil {
		return nil, err
	}
	s := NewStore(db, format, log)
	if err := s.CheckFormat(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CheckFormat compares the store's recorded fact format with ours. A fresh
// store adopts our format; a different major version is incompatible.
func (s *Store) CheckFormat(ctx context.Context) error {
	var stored string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM store_meta WHERE key = ?", metaFactFormat).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO store_meta (key, value) VALUES (?, ?)", metaFactFormat, s.format); err != nil {
			return errors.WrapPersistence(err, "store format")
		}
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read store format")
	}
	return compatibleFormat(stored, s.format)
}

func compatibleFormat(stored, current string) error {
	cur, err := semver.NewVersion(current)
	if err != nil {
		return errors.Wrapf(err, "invalid fact format %s", current)
	}
	have, err := semver.NewVersion(stored)
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "store records unparseable fact format %q", stored), errors.ErrIncompatibleStore)
	}
	constraint, err := semver.NewConstraint(fmt.Sprintf("%d.x", cur.Major()))
	if err != nil {
		return errors.Wrap(err, "build format constraint")
	}
	if !constraint.Check(have) {
		return errors.WithHint(
			errors.Wrapf(errors.ErrIncompatibleStore, "store written with fact format %s, running %s", stored, current),
			"point --store at a new file or remove the old store")
	}
	return nil
}

// BeginRun records a new run and makes it the target of subsequent writes.
func (s *Store) BeginRun(ctx context.Context, mode string) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, mode, format_version, started_at) VALUES (?, ?, ?, ?)",
		id, mode, s.format, s.now().UTC().Format(timeLayout))
	if err != nil {
		return "", errors.WrapPersistence(err, "run "+id)
	}

	s.mu.Lock()
	s.runID = id
	s.facts = 0
	s.mu.Unlock()

	s.logger.Infow("Run started", logger.FieldRunID, id, logger.FieldMode, mode)
	return id, nil
}

// FinishRun closes the active run, storing its fact and diagnostic counts.
func (s *Store) FinishRun(ctx context.Context, diagnostics int) error {
	s.mu.Lock()
	id, facts := s.runID, s.facts
	s.runID = ""
	s.mu.Unlock()

	if id == "" {
		return errors.WithStack(ErrNoActiveRun)
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, facts = ?, diagnostics = ? WHERE id = ?",
		s.now().UTC().Format(timeLayout), facts, diagnostics, id)
	if err != nil {
		return errors.WrapPersistence(err, "run "+id)
	}
	s.logger.Infow("Run finished", logger.FieldRunID, id, logger.FieldFacts, facts)
	return nil
}

func (s *Store) WriteModule(ctx context.Context, module string, fact *term.Compound) error {
	return s.put(ctx, writer.ModulePath(module), module, writer.ModuleFile, fact)
}

func (s *Store) WritePackage(ctx context.Context, pkg string, fact *term.Compound) error {
	return s.put(ctx, writer.PackagePath(pkg), pkg, writer.PackageFile, fact)
}

func (s *Store) WriteType(ctx context.Context, pkg, name string, fact *term.Compound) error {
	return s.put(ctx, writer.TypePath(pkg, name), pkg, name, fact)
}

func (s *Store) WriteIndex(ctx context.Context, name string, fact *term.Compound) error {
	return s.put(ctx, writer.IndexPath(name), "", name, fact)
}

func (s *Store) put(ctx context.Context, path, namespace, name string, fact *term.Compound) error {
	s.mu.Lock()
	id := s.runID
	s.mu.Unlock()
	if id == "" {
		return errors.WrapPersistence(errors.WithStack(ErrNoActiveRun), path)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO facts (run_id, path, kind, namespace, name, text)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, path, fact.Name(), namespace, name, fact.Fact())
	if err != nil {
		if IsDatabaseClosed(err) {
			err = errors.Mark(err, ErrDatabaseClosed)
		}
		return errors.WrapPersistence(err, path)
	}

	s.mu.Lock()
	s.facts++
	s.mu.Unlock()
	return nil
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	runs, err := s.queryRuns(ctx, "ORDER BY started_at DESC LIMIT 1")
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, errors.Wrap(errors.ErrNotFound, "no runs recorded")
	}
	return &runs[0], nil
}

// Runs returns every run, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	return s.queryRuns(ctx, "ORDER BY started_at ASC")
}

func (s *Store) queryRuns(ctx context.Context, suffix string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, mode, format_version, started_at, finished_at, facts, diagnostics FROM runs "+suffix)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Mode, &r.FormatVersion, &started, &finished, &r.Facts, &r.Diagnostics); err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		if r.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, errors.Wrapf(err, "run %s start time", r.ID)
		}
		if finished.Valid {
			t, err := time.Parse(timeLayout, finished.String)
			if err != nil {
				return nil, errors.Wrapf(err, "run %s finish time", r.ID)
			}
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), "iterate runs")
}

// Facts returns every fact of a run ordered by path.
func (s *Store) Facts(ctx context.Context, runID string) ([]StoredFact, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path, kind, namespace, name, text FROM facts WHERE run_id = ? ORDER BY path", runID)
	if err != nil {
		return nil, errors.Wrap(err, "query facts")
	}
	defer rows.Close()

	var out []StoredFact
	for rows.Next() {
		var f StoredFact
		if err := rows.Scan(&f.Path, &f.Kind, &f.Namespace, &f.Name, &f.Text); err != nil {
			return nil, errors.Wrap(err, "scan fact")
		}
		out = append(out, f)
	}
	return out, errors.Wrap(rows.Err(), "iterate facts")
}

// Fact returns the text stored for one path in a run.
func (s *Store) Fact(ctx context.Context, runID, path string) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx,
		"SELECT text FROM facts WHERE run_id = ? AND path = ?", runID, path).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.Wrapf(errors.ErrNotFound, "fact %s in run %s", path, runID)
	}
	if err != nil {
		return "", errors.Wrapf(err, "read fact %s", path)
	}
	return text, nil
}
