package drift

import (
	"database/sql"

	"github.com/driftscope/driftscope/pkg/plugin"
)

// migrations returns the drift module's database migrations.
func migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create drift tables",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS drift_series (
						id          TEXT PRIMARY KEY,
						name        TEXT NOT NULL DEFAULT '',
						unit        TEXT NOT NULL DEFAULT '',
						source      TEXT NOT NULL DEFAULT 'ingest',
						status      TEXT NOT NULL DEFAULT 'learning',
						point_count INTEGER NOT NULL DEFAULT 0,
						first_seen  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						last_seen   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						tags        TEXT NOT NULL DEFAULT '[]'
					)`,

					`CREATE TABLE IF NOT EXISTS drift_points (
						id        INTEGER PRIMARY KEY AUTOINCREMENT,
						series_id TEXT NOT NULL,
						value     REAL NOT NULL,
						timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_drift_points_series_time ON drift_points(series_id, timestamp)`,

					`CREATE TABLE IF NOT EXISTS drift_point_archive (
						id        INTEGER PRIMARY KEY AUTOINCREMENT,
						series_id TEXT NOT NULL,
						start_at  DATETIME NOT NULL,
						end_at    DATETIME NOT NULL,
						count     INTEGER NOT NULL DEFAULT 0,
						data      BLOB NOT NULL
					)`,
					`CREATE INDEX IF NOT EXISTS idx_drift_point_archive_series ON drift_point_archive(series_id, end_at)`,

					`CREATE TABLE IF NOT EXISTS drift_baselines (
						series_id  TEXT PRIMARY KEY,
						algorithm  TEXT NOT NULL DEFAULT 'ewma',
						mean       REAL NOT NULL DEFAULT 0,
						std_dev    REAL NOT NULL DEFAULT 0,
						samples    INTEGER NOT NULL DEFAULT 0,
						stable     INTEGER NOT NULL DEFAULT 0,
						updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,

					`CREATE TABLE IF NOT EXISTS drift_anomalies (
						id          TEXT PRIMARY KEY,
						series_id   TEXT NOT NULL,
						severity    TEXT NOT NULL DEFAULT 'warning',
						type        TEXT NOT NULL DEFAULT 'cusum',
						value       REAL NOT NULL,
						expected    REAL NOT NULL,
						deviation   REAL NOT NULL,
						description TEXT NOT NULL DEFAULT '',
						detected_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						resolved_at DATETIME
					)`,
					`CREATE INDEX IF NOT EXISTS idx_drift_anomalies_series ON drift_anomalies(series_id)`,
					`CREATE INDEX IF NOT EXISTS idx_drift_anomalies_detected ON drift_anomalies(detected_at)`,

					`CREATE TABLE IF NOT EXISTS drift_correlations (
						id          TEXT PRIMARY KEY,
						root_series TEXT NOT NULL DEFAULT '',
						series_ids  TEXT NOT NULL DEFAULT '[]',
						anomaly_ids TEXT NOT NULL DEFAULT '[]',
						description TEXT NOT NULL DEFAULT '',
						created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						resolved_at DATETIME
					)`,
					`CREATE INDEX IF NOT EXISTS idx_drift_correlations_created ON drift_correlations(created_at)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
