package bench

import (
	"database/sql"

	"github.com/driftscope/driftscope/pkg/plugin"
)

// migrations returns the bench module's database migrations.
func migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create bench tables",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS bench_runs (
						id             TEXT PRIMARY KEY,
						name           TEXT NOT NULL,
						scorer         TEXT NOT NULL DEFAULT '',
						polarity       TEXT NOT NULL DEFAULT 'low',
						sample_count   INTEGER NOT NULL,
						positive_count INTEGER NOT NULL,
						ap             REAL NOT NULL,
						adjusted_ap    REAL NOT NULL,
						best_cutoff    INTEGER NOT NULL,
						best_cost      REAL NOT NULL,
						fp_cost        REAL NOT NULL,
						fn_cost        REAL NOT NULL,
						notes          TEXT NOT NULL DEFAULT '',
						created_at     DATETIME NOT NULL
					)`,
					`CREATE INDEX IF NOT EXISTS idx_bench_runs_created ON bench_runs(created_at)`,

					`CREATE TABLE IF NOT EXISTS bench_curve_points (
						run_id    TEXT NOT NULL,
						n         INTEGER NOT NULL,
						precision REAL NOT NULL,
						adjusted  REAL NOT NULL,
						cost      REAL NOT NULL,
						PRIMARY KEY (run_id, n)
					)`,
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
