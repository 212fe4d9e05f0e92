// Package store persists derivation runs and imported observations in
// SQLite. A run is the list of norms one generalizer derived for one owner
// at one generalization level.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"nadico/internal/deontic"
	"nadico/internal/generalizer"
	"nadico/internal/logging"
	"nadico/internal/nadico"
	"nadico/internal/scenario"
)

// ErrRunNotFound is returned by LoadRun for unknown ids.
var ErrRunNotFound = errors.New("run not found")

// NormStore is the SQLite report store.
type NormStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Run is one derivation result.
type Run struct {
	ID        string
	Owner     string
	Context   string
	Strategy  string
	Level     int
	CreatedAt time.Time
	Norms     []Norm
}

// Norm is a stored statement. OrElse is empty when the statement has no
// consequential part.
type Norm struct {
	Position      int
	Statement     string
	Deontic       float64
	Term          deontic.Term
	Count         int
	Inverted      bool
	OrElse        string
	OrElseDeontic *float64
}

// StoredObservation is an imported observation.
type StoredObservation struct {
	Owner       string
	Position    int
	Observation *scenario.Observation
}

// NewNormStore opens (creating if needed) the database at path.
func NewNormStore(path string) (*NormStore, error) {
	logging.StoreDebug("Initializing NormStore at path: %s", path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("NormStore initialized at %s", path)
	return &NormStore{db: db, dbPath: path}, nil
}

// Close closes the database.
func (s *NormStore) Close() error {
	return s.db.Close()
}

// NewRun converts derived statements into a run. Terms are classified
// against rng.
func NewRun(owner, ctxName string, strategy generalizer.Strategy, level int, rng *deontic.Range, stmts []*nadico.Expression) *Run {
	run := &Run{
		Owner:    owner,
		Context:  ctxName,
		Strategy: string(strategy),
		Level:    level,
	}
	for i, st := range stmts {
		if st == nil {
			continue
		}
		n := Norm{
			Position:  i,
			Statement: generalizer.StringifiedAICStatement(st),
			Deontic:   st.DeonticValue(),
			Term:      rng.TermForValue(st.DeonticValue()),
			Count:     st.CountValue(),
		}
		if c := st.OrElse(); c != nil {
			n.OrElse = generalizer.StringifiedAICStatement(c)
			v := c.DeonticValue()
			n.OrElseDeontic = &v
			n.Inverted = c.DeonticInverted
		}
		run.Norms = append(run.Norms, n)
	}
	return run
}

// SaveRun stores run and returns its id. A missing id or timestamp is
// filled in.
func (s *NormStore) SaveRun(ctx context.Context, run *Run) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO runs (id, owner, context, strategy, created_at) VALUES (?, ?, ?, ?, ?)",
		run.ID, run.Owner, run.Context, run.Strategy, run.CreatedAt,
	); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO norms
		(run_id, position, level, statement, deontic, term, count, inverted, or_else, or_else_deontic)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, n := range run.Norms {
		var orElse sql.NullString
		if n.OrElse != "" {
			orElse = sql.NullString{String: n.OrElse, Valid: true}
		}
		var orElseDeontic sql.NullFloat64
		if n.OrElseDeontic != nil {
			orElseDeontic = sql.NullFloat64{Float64: *n.OrElseDeontic, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID, n.Position, run.Level, n.Statement, n.Deontic, string(n.Term),
			n.Count, n.Inverted, orElse, orElseDeontic,
		); err != nil {
			return "", fmt.Errorf("failed to insert norm %d: %w", n.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	logging.StoreDebug("Stored run %s for %s (%d norms)", run.ID, run.Owner, len(run.Norms))
	return run.ID, nil
}

// LoadRun returns the run with its norms in position order.
func (s *NormStore) LoadRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run := &Run{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, owner, context, strategy, created_at FROM runs WHERE id = ?", id,
	).Scan(&run.ID, &run.Owner, &run.Context, &run.Strategy, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT position, level, statement, deontic, term, count, inverted, or_else, or_else_deontic
		FROM norms WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load norms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n Norm
		var term string
		var orElse sql.NullString
		var orElseDeontic sql.NullFloat64
		if err := rows.Scan(&n.Position, &run.Level, &n.Statement, &n.Deontic, &term,
			&n.Count, &n.Inverted, &orElse, &orElseDeontic); err != nil {
			return nil, err
		}
		n.Term = deontic.Term(term)
		n.OrElse = orElse.String
		if orElseDeontic.Valid {
			v := orElseDeontic.Float64
			n.OrElseDeontic = &v
		}
		run.Norms = append(run.Norms, n)
	}
	return run, rows.Err()
}

// ListRuns returns the runs of owner, newest first, without norms. An
// empty owner lists every run.
func (s *NormStore) ListRuns(ctx context.Context, owner string) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, owner, context, strategy, created_at FROM runs"
	var args []interface{}
	if owner != "" {
		query += " WHERE owner = ?"
		args = append(args, owner)
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Owner, &r.Context, &r.Strategy, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ImportObservations appends obs to owner's stored observations and
// returns how many were written.
func (s *NormStore) ImportObservations(ctx context.Context, owner string, obs []scenario.Observation) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position) + 1, 0) FROM observations WHERE owner = ?", owner,
	).Scan(&next); err != nil {
		return 0, err
	}

	for i := range obs {
		data, err := obs[i].Marshal()
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO observations (owner, position, chain_yaml, valence) VALUES (?, ?, ?, ?)",
			owner, next+i, string(data), obs[i].Valence,
		); err != nil {
			return 0, fmt.Errorf("failed to insert observation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	logging.Store("Imported %d observations for %s", len(obs), owner)
	return len(obs), nil
}

// Observations returns owner's imported observations in import order.
func (s *NormStore) Observations(ctx context.Context, owner string) ([]StoredObservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT position, chain_yaml FROM observations WHERE owner = ? ORDER BY position", owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredObservation
	for rows.Next() {
		var pos int
		var data string
		if err := rows.Scan(&pos, &data); err != nil {
			return nil, err
		}
		o, err := scenario.UnmarshalObservation([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("observation %s/%d: %w", owner, pos, err)
		}
		out = append(out, StoredObservation{Owner: owner, Position: pos, Observation: o})
	}
	return out, rows.Err()
}
