package bench

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/driftscope/driftscope/pkg/analytics"
)

// BenchStore wraps database access for the bench plugin's tables.
type BenchStore struct {
	db *sql.DB
}

// NewBenchStore creates a store backed by the shared database.
func NewBenchStore(db *sql.DB) *BenchStore {
	return &BenchStore{db: db}
}

// InsertRun persists a run and its curve rows in one transaction.
func (s *BenchStore) InsertRun(ctx context.Context, run *analytics.EvaluationRun, curve []analytics.PrecisionPoint) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bench_runs
			(id, name, scorer, polarity, sample_count, positive_count,
			 ap, adjusted_ap, best_cutoff, best_cost, fp_cost, fn_cost,
			 notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Name, run.Scorer, run.Polarity, run.SampleCount, run.PositiveCount,
		run.AP, run.AdjustedAP, run.BestCutoff, run.BestCost, run.FPCost, run.FNCost,
		run.Notes, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bench_curve_points (run_id, n, precision, adjusted, cost)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare curve insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range curve {
		if _, err := stmt.ExecContext(ctx, run.ID, p.N, p.Precision, p.Adjusted, p.Cost); err != nil {
			return fmt.Errorf("insert curve point %d: %w", p.N, err)
		}
	}
	return tx.Commit()
}

// ListRuns returns completed runs, newest first.
func (s *BenchStore) ListRuns(ctx context.Context, limit int) ([]analytics.EvaluationRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, scorer, polarity, sample_count, positive_count,
		       ap, adjusted_ap, best_cutoff, best_cost, fp_cost, fn_cost,
		       notes, created_at
		FROM bench_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []analytics.EvaluationRun
	for rows.Next() {
		var r analytics.EvaluationRun
		if err := rows.Scan(
			&r.ID, &r.Name, &r.Scorer, &r.Polarity, &r.SampleCount, &r.PositiveCount,
			&r.AP, &r.AdjustedAP, &r.BestCutoff, &r.BestCost, &r.FPCost, &r.FNCost,
			&r.Notes, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns a run by ID, or nil when it does not exist.
func (s *BenchStore) GetRun(ctx context.Context, id string) (*analytics.EvaluationRun, error) {
	var r analytics.EvaluationRun
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, scorer, polarity, sample_count, positive_count,
		       ap, adjusted_ap, best_cutoff, best_cost, fp_cost, fn_cost,
		       notes, created_at
		FROM bench_runs WHERE id = ?`, id).Scan(
		&r.ID, &r.Name, &r.Scorer, &r.Polarity, &r.SampleCount, &r.PositiveCount,
		&r.AP, &r.AdjustedAP, &r.BestCutoff, &r.BestCost, &r.FPCost, &r.FNCost,
		&r.Notes, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &r, nil
}

// GetCurve returns a run's precision/cost curve ordered by rank.
func (s *BenchStore) GetCurve(ctx context.Context, runID string) ([]analytics.PrecisionPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT n, precision, adjusted, cost
		FROM bench_curve_points WHERE run_id = ? ORDER BY n`, runID)
	if err != nil {
		return nil, fmt.Errorf("get curve: %w", err)
	}
	defer rows.Close()

	var points []analytics.PrecisionPoint
	for rows.Next() {
		var p analytics.PrecisionPoint
		if err := rows.Scan(&p.N, &p.Precision, &p.Adjusted, &p.Cost); err != nil {
			return nil, fmt.Errorf("scan curve point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// DeleteRun removes a run and its curve. Returns false when the run did
// not exist.
func (s *BenchStore) DeleteRun(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete run: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bench_curve_points WHERE run_id = ?`, id); err != nil {
		return false, fmt.Errorf("delete curve: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM bench_runs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete run: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete run: %w", err)
	}
	return n > 0, nil
}
