package drift

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/driftscope/driftscope/pkg/analytics"
	"github.com/driftscope/driftscope/pkg/models"
)

// DriftStore provides database access for the drift detection plugin.
type DriftStore struct {
	db *sql.DB
}

// NewDriftStore creates a new DriftStore backed by the given database.
func NewDriftStore(db *sql.DB) *DriftStore {
	return &DriftStore{db: db}
}

// -- Series --

// EnsureSeries inserts a series row if it does not exist yet. Existing rows
// are left untouched.
func (s *DriftStore) EnsureSeries(ctx context.Context, id, name string, source models.SourceKind, seen time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drift_series (id, name, source, status, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		id, name, string(source), string(models.SeriesStatusLearning), seen, seen,
	)
	if err != nil {
		return fmt.Errorf("ensure series: %w", err)
	}
	return nil
}

// TouchSeries bumps a series' point count and last-seen timestamp.
func (s *DriftStore) TouchSeries(ctx context.Context, id string, seen time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE drift_series SET point_count = point_count + 1, last_seen = ?
		WHERE id = ?`,
		seen, id,
	)
	if err != nil {
		return fmt.Errorf("touch series: %w", err)
	}
	return nil
}

// SetSeriesStatus updates a series' learning state.
func (s *DriftStore) SetSeriesStatus(ctx context.Context, id string, status models.SeriesStatus) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE drift_series SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("set series status: %w", err)
	}
	return nil
}

// MarkStaleSeries flips active series with no samples since the cutoff to
// stale. Returns the number of series affected.
func (s *DriftStore) MarkStaleSeries(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE drift_series SET status = ?
		WHERE status = ? AND last_seen < ?`,
		string(models.SeriesStatusStale), string(models.SeriesStatusActive), before,
	)
	if err != nil {
		return 0, fmt.Errorf("mark stale series: %w", err)
	}
	return result.RowsAffected()
}

// ListSeries returns all tracked series ordered by ID.
func (s *DriftStore) ListSeries(ctx context.Context) ([]models.Series, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, unit, source, status, point_count, first_seen, last_seen, tags
		FROM drift_series ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var series []models.Series
	for rows.Next() {
		sr, err := scanSeries(rows)
		if err != nil {
			return nil, err
		}
		series = append(series, *sr)
	}
	return series, rows.Err()
}

// GetSeries returns a single series by ID, or nil when it does not exist.
func (s *DriftStore) GetSeries(ctx context.Context, id string) (*models.Series, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, unit, source, status, point_count, first_seen, last_seen, tags
		FROM drift_series WHERE id = ?`,
		id,
	)
	sr, err := scanSeries(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sr, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeries(row rowScanner) (*models.Series, error) {
	var sr models.Series
	var source, status, tagsJSON string
	if err := row.Scan(
		&sr.ID, &sr.Name, &sr.Unit, &source, &status,
		&sr.PointCount, &sr.FirstSeen, &sr.LastSeen, &tagsJSON,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan series row: %w", err)
	}
	sr.Source = models.SourceKind(source)
	sr.Status = models.SeriesStatus(status)
	if err := json.Unmarshal([]byte(tagsJSON), &sr.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal series tags: %w", err)
	}
	return &sr, nil
}

// -- Points --

// InsertPoint stores one raw sample.
func (s *DriftStore) InsertPoint(ctx context.Context, p *models.SeriesPoint) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drift_points (series_id, value, timestamp)
		VALUES (?, ?, ?)`,
		p.SeriesID, p.Value, p.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert point: %w", err)
	}
	return nil
}

// InsertPoints stores a batch of samples in one transaction.
func (s *DriftStore) InsertPoints(ctx context.Context, points []models.SeriesPoint) error {
	if len(points) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert points: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO drift_points (series_id, value, timestamp) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert points: %w", err)
	}
	defer stmt.Close()

	for i := range points {
		p := &points[i]
		if _, err := stmt.ExecContext(ctx, p.SeriesID, p.Value, p.Timestamp); err != nil {
			return fmt.Errorf("insert point batch: %w", err)
		}
	}
	return tx.Commit()
}

// GetPointWindow returns points for a series at or after the given time,
// oldest first.
func (s *DriftStore) GetPointWindow(ctx context.Context, seriesID string, since time.Time) ([]models.SeriesPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT series_id, value, timestamp FROM drift_points
		WHERE series_id = ? AND timestamp >= ?
		ORDER BY timestamp`,
		seriesID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("get point window: %w", err)
	}
	defer rows.Close()
	return scanPoints(rows)
}

// GetRecentPoints returns the most recent limit points for a series,
// oldest first.
func (s *DriftStore) GetRecentPoints(ctx context.Context, seriesID string, limit int) ([]models.SeriesPoint, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT series_id, value, timestamp FROM drift_points
		WHERE series_id = ?
		ORDER BY timestamp DESC LIMIT ?`,
		seriesID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get recent points: %w", err)
	}
	defer rows.Close()

	points, err := scanPoints(rows)
	if err != nil {
		return nil, err
	}
	// Reverse into chronological order.
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

func scanPoints(rows *sql.Rows) ([]models.SeriesPoint, error) {
	var points []models.SeriesPoint
	for rows.Next() {
		var p models.SeriesPoint
		if err := rows.Scan(&p.SeriesID, &p.Value, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("scan point row: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// GetPointsBefore returns points for a series strictly older than the
// cutoff, oldest first. Used by the archival pass.
func (s *DriftStore) GetPointsBefore(ctx context.Context, seriesID string, before time.Time) ([]models.SeriesPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT series_id, value, timestamp FROM drift_points
		WHERE series_id = ? AND timestamp < ?
		ORDER BY timestamp`,
		seriesID, before,
	)
	if err != nil {
		return nil, fmt.Errorf("get points before: %w", err)
	}
	defer rows.Close()
	return scanPoints(rows)
}

// ListSeriesWithPointsBefore returns the IDs of series holding live points
// older than the cutoff, for archival.
func (s *DriftStore) ListSeriesWithPointsBefore(ctx context.Context, before time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT series_id FROM drift_points WHERE timestamp < ?`,
		before,
	)
	if err != nil {
		return nil, fmt.Errorf("list series with old points: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan series id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeletePointsBefore removes live points older than the cutoff for one
// series. Returns the number of rows deleted.
func (s *DriftStore) DeletePointsBefore(ctx context.Context, seriesID string, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM drift_points WHERE series_id = ? AND timestamp < ?`,
		seriesID, before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old points: %w", err)
	}
	return result.RowsAffected()
}

// -- Point archive --

// InsertArchive stores one compressed chunk of aged-out points.
func (s *DriftStore) InsertArchive(ctx context.Context, seriesID string, start, end time.Time, count int, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drift_point_archive (series_id, start_at, end_at, count, data)
		VALUES (?, ?, ?, ?, ?)`,
		seriesID, start, end, count, data,
	)
	if err != nil {
		return fmt.Errorf("insert archive: %w", err)
	}
	return nil
}

// ListArchives returns archive chunk headers for a series, oldest first.
func (s *DriftStore) ListArchives(ctx context.Context, seriesID string) ([]models.PointArchive, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, series_id, start_at, end_at, count
		FROM drift_point_archive WHERE series_id = ? ORDER BY start_at`,
		seriesID,
	)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	defer rows.Close()

	var archives []models.PointArchive
	for rows.Next() {
		var a models.PointArchive
		if err := rows.Scan(&a.ID, &a.SeriesID, &a.Start, &a.End, &a.Count); err != nil {
			return nil, fmt.Errorf("scan archive row: %w", err)
		}
		archives = append(archives, a)
	}
	return archives, rows.Err()
}

// GetArchivedPoints decompresses every archive chunk overlapping the window
// and returns the contained points at or after since, oldest first.
func (s *DriftStore) GetArchivedPoints(ctx context.Context, seriesID string, since time.Time) ([]models.SeriesPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT data FROM drift_point_archive
		WHERE series_id = ? AND end_at >= ?
		ORDER BY start_at`,
		seriesID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("get archived points: %w", err)
	}
	defer rows.Close()

	var points []models.SeriesPoint
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scan archive blob: %w", err)
		}
		chunk, err := decodePoints(blob)
		if err != nil {
			return nil, err
		}
		for _, p := range chunk {
			if !p.Timestamp.Before(since) {
				points = append(points, p)
			}
		}
	}
	return points, rows.Err()
}

// DeleteArchivesBefore removes archive chunks whose newest point is older
// than the cutoff. Returns the number of chunks deleted.
func (s *DriftStore) DeleteArchivesBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM drift_point_archive WHERE end_at < ?`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old archives: %w", err)
	}
	return result.RowsAffected()
}

// -- Baselines --

// UpsertBaseline inserts or updates a baseline record.
func (s *DriftStore) UpsertBaseline(ctx context.Context, b *analytics.Baseline) error {
	stable := 0
	if b.Stable {
		stable = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO drift_baselines (
			series_id, algorithm, mean, std_dev, samples, stable, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.SeriesID, b.Algorithm, b.Mean, b.StdDev, b.Samples, stable, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert baseline: %w", err)
	}
	return nil
}

// GetBaseline returns the stored baseline for a series, or nil when none
// has been persisted yet.
func (s *DriftStore) GetBaseline(ctx context.Context, seriesID string) (*analytics.Baseline, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT series_id, algorithm, mean, std_dev, samples, stable, updated_at
		FROM drift_baselines WHERE series_id = ?`,
		seriesID,
	)

	var b analytics.Baseline
	var stableInt int
	err := row.Scan(&b.SeriesID, &b.Algorithm, &b.Mean, &b.StdDev, &b.Samples, &stableInt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get baseline: %w", err)
	}
	b.Stable = stableInt != 0
	return &b, nil
}

// -- Anomalies --

// InsertAnomaly inserts a new anomaly record.
func (s *DriftStore) InsertAnomaly(ctx context.Context, a *analytics.Anomaly) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO drift_anomalies (
			id, series_id, severity, type, value, expected, deviation,
			description, detected_at, resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SeriesID, a.Severity, a.Type, a.Value, a.Expected,
		a.Deviation, a.Description, a.DetectedAt, a.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert anomaly: %w", err)
	}
	return nil
}

// AnomalyFilter narrows ListAnomalies results. Zero values mean no filter.
type AnomalyFilter struct {
	SeriesID string
	Since    time.Time
	Severity string
	Limit    int
}

// ListAnomalies returns anomalies matching the filter, newest first.
func (s *DriftStore) ListAnomalies(ctx context.Context, f AnomalyFilter) ([]analytics.Anomaly, error) {
	query := `
		SELECT id, series_id, severity, type, value, expected, deviation,
			description, detected_at, resolved_at
		FROM drift_anomalies WHERE 1=1`
	var args []any
	if f.SeriesID != "" {
		query += " AND series_id = ?"
		args = append(args, f.SeriesID)
	}
	if !f.Since.IsZero() {
		query += " AND detected_at >= ?"
		args = append(args, f.Since)
	}
	if f.Severity != "" {
		query += " AND severity = ?"
		args = append(args, f.Severity)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " ORDER BY detected_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list anomalies: %w", err)
	}
	defer rows.Close()

	var anomalies []analytics.Anomaly
	for rows.Next() {
		var a analytics.Anomaly
		var resolvedAt sql.NullTime
		if err := rows.Scan(
			&a.ID, &a.SeriesID, &a.Severity, &a.Type, &a.Value,
			&a.Expected, &a.Deviation, &a.Description, &a.DetectedAt, &resolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan anomaly row: %w", err)
		}
		if resolvedAt.Valid {
			a.ResolvedAt = &resolvedAt.Time
		}
		anomalies = append(anomalies, a)
	}
	return anomalies, rows.Err()
}

// ResolveAnomaly marks an anomaly as resolved. Returns false when no
// anomaly with the given ID exists.
func (s *DriftStore) ResolveAnomaly(ctx context.Context, id string, resolvedAt time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE drift_anomalies SET resolved_at = ? WHERE id = ?`,
		resolvedAt, id,
	)
	if err != nil {
		return false, fmt.Errorf("resolve anomaly: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteOldAnomalies deletes resolved anomalies older than the given time.
// Returns the number of rows deleted.
func (s *DriftStore) DeleteOldAnomalies(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM drift_anomalies WHERE resolved_at IS NOT NULL AND resolved_at < ?`,
		before,
	)
	if err != nil {
		return 0, fmt.Errorf("delete old anomalies: %w", err)
	}
	return result.RowsAffected()
}

// -- Correlations --

// InsertCorrelation inserts a new correlated anomaly group.
func (s *DriftStore) InsertCorrelation(ctx context.Context, g *analytics.AlertGroup) error {
	seriesJSON, err := json.Marshal(g.SeriesIDs)
	if err != nil {
		return fmt.Errorf("marshal series_ids: %w", err)
	}
	anomalyJSON, err := json.Marshal(g.AnomalyIDs)
	if err != nil {
		return fmt.Errorf("marshal anomaly_ids: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO drift_correlations (
			id, root_series, series_ids, anomaly_ids, description, created_at
		) VALUES (?, ?, ?, ?, ?, ?)`,
		g.ID, g.RootSeries, string(seriesJSON), string(anomalyJSON), g.Description, g.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert correlation: %w", err)
	}
	return nil
}

// ListActiveCorrelations returns correlation groups that have not been
// resolved, newest first.
func (s *DriftStore) ListActiveCorrelations(ctx context.Context) ([]analytics.AlertGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root_series, series_ids, anomaly_ids, description, created_at
		FROM drift_correlations WHERE resolved_at IS NULL ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list active correlations: %w", err)
	}
	defer rows.Close()

	var groups []analytics.AlertGroup
	for rows.Next() {
		var g analytics.AlertGroup
		var seriesJSON, anomalyJSON string
		if err := rows.Scan(
			&g.ID, &g.RootSeries, &seriesJSON, &anomalyJSON,
			&g.Description, &g.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan correlation row: %w", err)
		}
		if err := json.Unmarshal([]byte(seriesJSON), &g.SeriesIDs); err != nil {
			return nil, fmt.Errorf("unmarshal series_ids: %w", err)
		}
		if err := json.Unmarshal([]byte(anomalyJSON), &g.AnomalyIDs); err != nil {
			return nil, fmt.Errorf("unmarshal anomaly_ids: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
