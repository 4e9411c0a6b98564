package drift

import (
	"context"
	"fmt"
	"time"

	"github.com/driftscope/driftscope/pkg/analytics"
	"github.com/driftscope/driftscope/pkg/plugin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// startMaintenance launches a background goroutine that periodically:
// 1. Persists in-memory baselines to the database.
// 2. Marks series with no recent samples as stale.
// 3. Compresses aged-out points into archive chunks.
// 4. Purges archives and resolved anomalies past their retention windows.
// 5. Clusters recent anomalies into cross-series correlation groups.
func (m *Module) startMaintenance() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.cfg.MaintenanceInterval)
		defer ticker.Stop()

		for {
			select {
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				m.runMaintenance()
			}
		}
	}()
}

// runMaintenance executes a single maintenance cycle.
func (m *Module) runMaintenance() {
	if m.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(m.ctx, 60*time.Second)
	defer cancel()

	m.persistBaselines(ctx)

	// Flag series that stopped reporting
	stale, err := m.store.MarkStaleSeries(ctx, time.Now().Add(-m.cfg.StalenessWindow))
	if err != nil {
		m.logger.Warn("failed to mark stale series", zap.Error(err))
	} else if stale > 0 {
		m.logger.Info("marked stale series", zap.Int64("count", stale))
	}

	m.archiveOldPoints(ctx)

	// Purge archives past retention
	purged, err := m.store.DeleteArchivesBefore(ctx, time.Now().Add(-m.cfg.ArchiveRetention))
	if err != nil {
		m.logger.Warn("failed to purge archives", zap.Error(err))
	} else if purged > 0 {
		m.logger.Info("purged old archives", zap.Int64("count", purged))
	}

	// Purge resolved anomalies past retention
	deleted, err := m.store.DeleteOldAnomalies(ctx, time.Now().Add(-m.cfg.AnomalyRetention))
	if err != nil {
		m.logger.Warn("failed to delete old anomalies", zap.Error(err))
	} else if deleted > 0 {
		m.logger.Info("purged old anomalies", zap.Int64("count", deleted))
	}

	m.runCorrelation(ctx)
}

// persistBaselines writes all in-memory baseline states to the database.
func (m *Module) persistBaselines(ctx context.Context) {
	snap := m.states.snapshot()
	persisted := 0
	for seriesID, state := range snap {
		b := m.baselineFromState(seriesID, state)
		if err := m.store.UpsertBaseline(ctx, b); err != nil {
			m.logger.Warn("failed to persist baseline",
				zap.String("series_id", seriesID),
				zap.Error(err))
			continue
		}
		persisted++
	}
	if persisted > 0 {
		m.logger.Debug("persisted baselines", zap.Int("count", persisted))
	}
}

// archiveOldPoints compresses live points older than archive_after into one
// snappy chunk per series, then drops the originals. The chunk header keeps
// the time range queryable without decompression.
func (m *Module) archiveOldPoints(ctx context.Context) {
	cutoff := time.Now().Add(-m.cfg.ArchiveAfter)
	ids, err := m.store.ListSeriesWithPointsBefore(ctx, cutoff)
	if err != nil {
		m.logger.Warn("failed to list archivable series", zap.Error(err))
		return
	}

	archived := 0
	for _, id := range ids {
		points, err := m.store.GetPointsBefore(ctx, id, cutoff)
		if err != nil {
			m.logger.Warn("failed to load points for archive",
				zap.String("series_id", id), zap.Error(err))
			continue
		}
		if len(points) == 0 {
			continue
		}

		blob, err := encodePoints(points)
		if err != nil {
			m.logger.Warn("failed to encode archive chunk",
				zap.String("series_id", id), zap.Error(err))
			continue
		}
		start := points[0].Timestamp
		end := points[len(points)-1].Timestamp
		if err := m.store.InsertArchive(ctx, id, start, end, len(points), blob); err != nil {
			m.logger.Warn("failed to store archive chunk",
				zap.String("series_id", id), zap.Error(err))
			continue
		}
		if _, err := m.store.DeletePointsBefore(ctx, id, cutoff); err != nil {
			m.logger.Warn("failed to drop archived points",
				zap.String("series_id", id), zap.Error(err))
			continue
		}
		archived += len(points)
	}
	if archived > 0 {
		m.logger.Info("archived points",
			zap.Int("count", archived),
			zap.Int("series", len(ids)))
	}
}

// runCorrelation clusters recent anomalies that landed close together
// across different series and records each cluster as an alert group.
func (m *Module) runCorrelation(ctx context.Context) {
	since := time.Now().Add(-2 * m.cfg.CorrelationWindow)
	anomalies, err := m.store.ListAnomalies(ctx, AnomalyFilter{Since: since, Limit: 500})
	if err != nil {
		m.logger.Warn("failed to load anomalies for correlation", zap.Error(err))
		return
	}

	// Skip anomalies already placed in a group, and drop dedup entries old
	// enough to have left the query window.
	m.mu.Lock()
	fresh := anomalies[:0]
	for _, a := range anomalies {
		if _, seen := m.correlated[a.ID]; !seen {
			fresh = append(fresh, a)
		}
	}
	pruneBefore := time.Now().Add(-4 * m.cfg.CorrelationWindow)
	for id, marked := range m.correlated {
		if marked.Before(pruneBefore) {
			delete(m.correlated, id)
		}
	}
	m.mu.Unlock()

	groups := m.correlator.Cluster(fresh)
	for _, g := range groups {
		seriesIDs := g.SeriesIDs()
		anomalyIDs := make([]string, 0, len(g.Members))
		for _, a := range g.Members {
			anomalyIDs = append(anomalyIDs, a.ID)
		}

		group := &analytics.AlertGroup{
			ID:         uuid.NewString(),
			RootSeries: g.Root.SeriesID,
			SeriesIDs:  seriesIDs,
			AnomalyIDs: anomalyIDs,
			CreatedAt:  time.Now(),
			Description: fmt.Sprintf("%d anomalies across %d series within %s of %s",
				len(anomalyIDs), len(seriesIDs), m.cfg.CorrelationWindow, g.Root.SeriesID),
		}
		if err := m.store.InsertCorrelation(ctx, group); err != nil {
			m.logger.Warn("failed to store correlation", zap.Error(err))
			continue
		}

		m.mu.Lock()
		now := time.Now()
		for _, id := range anomalyIDs {
			m.correlated[id] = now
		}
		m.mu.Unlock()

		m.logger.Info("correlated anomalies",
			zap.String("root_series", g.Root.SeriesID),
			zap.Int("series", len(seriesIDs)),
			zap.Int("anomalies", len(anomalyIDs)))

		if m.bus != nil {
			m.bus.PublishAsync(m.ctx, plugin.Event{
				Topic:   TopicCorrelationCreated,
				Source:  "drift",
				Payload: group,
			})
		}
	}
}
