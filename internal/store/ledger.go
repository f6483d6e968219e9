package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/roach88/francagen/internal/ir"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// timeLayout is the storage format for run timestamps.
const timeLayout = time.RFC3339Nano

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Run is one generate invocation.
type Run struct {
	ID               string     `json:"id"`
	Seq              int64      `json:"seq"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	Status           RunStatus  `json:"status"`
	Inputs           []string   `json:"inputs"`
	GeneratorVersion string     `json:"generator_version"`
	Message          string     `json:"message,omitempty"`
}

// FileRecord is one file written by a run.
type FileRecord struct {
	Seq          int64  `json:"seq"`
	Path         string `json:"path"`
	Package      string `json:"package"`
	Container    string `json:"container"`
	Target       string `json:"target"`
	Declarations int    `json:"declarations"`
	Digest       string `json:"digest"`
	Bytes        int    `json:"bytes"`
}

// BeginRun records the start of a run over the given inputs and returns its ID.
func (s *Store) BeginRun(ctx context.Context, inputs []string) (string, error) {
	if inputs == nil {
		inputs = []string{}
	}
	encoded, err := json.Marshal(inputs)
	if err != nil {
		return "", errors.Wrap(err, "encode inputs")
	}

	id := s.ids.Generate()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, seq, started_at, status, inputs, generator_version)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM runs), ?, ?, ?, ?)
	`, id, s.clock().UTC().Format(timeLayout), RunRunning, string(encoded), ir.GeneratorVersion)
	if err != nil {
		return "", errors.Wrap(err, "insert run")
	}
	return id, nil
}

// RecordFile appends a written file to a run. The record's Seq is assigned by
// the store and returned.
func (s *Store) RecordFile(ctx context.Context, runID string, rec FileRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback()

	var status RunStatus
	err = tx.QueryRowContext(ctx, `SELECT status FROM runs WHERE id = ?`, runID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, errors.Wrapf(ErrRunNotFound, "record file for %s", runID)
	}
	if err != nil {
		return 0, errors.Wrap(err, "query run")
	}
	if status != RunRunning {
		return 0, errors.Newf("run %s is %s, cannot record files", runID, status)
	}

	var seq int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM files WHERE run_id = ?`, runID,
	).Scan(&seq)
	if err != nil {
		return 0, errors.Wrap(err, "next file seq")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO files (run_id, seq, path, package, container, target, declarations, digest, bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, runID, seq, rec.Path, rec.Package, rec.Container, rec.Target, rec.Declarations, rec.Digest, rec.Bytes)
	if err != nil {
		return 0, errors.Wrap(err, "insert file")
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit file")
	}
	return seq, nil
}

// FinishRun marks a running run as succeeded or failed.
func (s *Store) FinishRun(ctx context.Context, runID string, status RunStatus, message string) error {
	if status != RunSucceeded && status != RunFailed {
		return errors.Newf("invalid final status %q", status)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, finished_at = ?, message = ?
		WHERE id = ? AND status = ?
	`, status, s.clock().UTC().Format(timeLayout), message, runID, RunRunning)
	if err != nil {
		return errors.Wrap(err, "update run")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		if _, err := s.GetRun(ctx, runID); err != nil {
			return err
		}
		return errors.Newf("run %s already finished", runID)
	}
	return nil
}

const runColumns = `id, seq, started_at, finished_at, status, inputs, generator_version, message`

// GetRun loads a single run.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, errors.Wrapf(ErrRunNotFound, "run %s", runID)
	}
	return run, err
}

// ListRuns returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate runs")
	}
	return runs, nil
}

// ListFiles returns the files of a run in the order they were recorded.
func (s *Store) ListFiles(ctx context.Context, runID string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, path, package, container, target, declarations, digest, bytes
		FROM files WHERE run_id = ? ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query files")
	}
	defer rows.Close()

	var files []FileRecord
	for rows.Next() {
		var f FileRecord
		if err := rows.Scan(&f.Seq, &f.Path, &f.Package, &f.Container, &f.Target,
			&f.Declarations, &f.Digest, &f.Bytes); err != nil {
			return nil, errors.Wrap(err, "scan file")
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate files")
	}
	return files, nil
}

// LastDigest returns the digest most recently recorded for path by a
// succeeded run, or "" when the path has never been recorded.
func (s *Store) LastDigest(ctx context.Context, path string) (string, error) {
	var digest string
	err := s.db.QueryRowContext(ctx, `
		SELECT f.digest FROM files f JOIN runs r ON r.id = f.run_id
		WHERE f.path = ? AND r.status = ?
		ORDER BY r.seq DESC, f.seq DESC LIMIT 1
	`, path, RunSucceeded).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "query digest")
	}
	return digest, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run      Run
		started  string
		finished sql.NullString
		inputs   string
	)
	if err := row.Scan(&run.ID, &run.Seq, &started, &finished, &run.Status,
		&inputs, &run.GeneratorVersion, &run.Message); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, errors.Wrap(err, "scan run")
	}

	t, err := time.Parse(timeLayout, started)
	if err != nil {
		return Run{}, errors.Wrapf(err, "parse started_at of run %s", run.ID)
	}
	run.StartedAt = t
	if finished.Valid {
		f, err := time.Parse(timeLayout, finished.String)
		if err != nil {
			return Run{}, errors.Wrapf(err, "parse finished_at of run %s", run.ID)
		}
		run.FinishedAt = &f
	}
	if err := json.Unmarshal([]byte(inputs), &run.Inputs); err != nil {
		return Run{}, errors.Wrapf(err, "decode inputs of run %s", run.ID)
	}
	return run, nil
}
