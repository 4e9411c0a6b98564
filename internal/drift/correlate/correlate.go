package correlate

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/driftscope/driftscope/pkg/analytics"
)

// Engine clusters anomalies from different series that fire inside a
// shared time window. The earliest anomaly in a cluster is treated as the
// likely root, on the theory that downstream series react to the same
// underlying shift slightly later.
type Engine struct {
	window time.Duration
	logger *zap.Logger
}

// NewEngine creates a correlation engine with the given window.
func NewEngine(window time.Duration, logger *zap.Logger) *Engine {
	return &Engine{
		window: window,
		logger: logger,
	}
}

// Group holds one cluster of correlated anomalies.
type Group struct {
	Root    analytics.Anomaly   // Earliest anomaly in the cluster
	Members []analytics.Anomaly // All anomalies, ordered by detection time
}

// SeriesIDs returns the distinct series in the group, in first-seen order.
func (g Group) SeriesIDs() []string {
	seen := make(map[string]bool, len(g.Members))
	var ids []string
	for _, a := range g.Members {
		if !seen[a.SeriesID] {
			seen[a.SeriesID] = true
			ids = append(ids, a.SeriesID)
		}
	}
	return ids
}

// Cluster groups the given anomalies by detection-time proximity: each
// anomaly joins the open cluster when it fired within the window of that
// cluster's root, otherwise it starts a new one. Clusters touching fewer
// than two distinct series are dropped, since a lone series drifting is
// not a correlation.
func (e *Engine) Cluster(anomalies []analytics.Anomaly) []Group {
	if len(anomalies) == 0 {
		return nil
	}

	sorted := make([]analytics.Anomaly, len(anomalies))
	copy(sorted, anomalies)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DetectedAt.Before(sorted[j].DetectedAt)
	})

	var clusters []Group
	current := Group{Root: sorted[0], Members: []analytics.Anomaly{sorted[0]}}
	for _, a := range sorted[1:] {
		if a.DetectedAt.Sub(current.Root.DetectedAt) <= e.window {
			current.Members = append(current.Members, a)
			continue
		}
		clusters = append(clusters, current)
		current = Group{Root: a, Members: []analytics.Anomaly{a}}
	}
	clusters = append(clusters, current)

	var groups []Group
	for _, c := range clusters {
		if len(c.SeriesIDs()) < 2 {
			continue
		}
		groups = append(groups, c)
		e.logger.Debug("anomalies correlated",
			zap.String("root_series", c.Root.SeriesID),
			zap.Int("members", len(c.Members)),
			zap.Int("series", len(c.SeriesIDs())),
			zap.Duration("window", e.window),
		)
	}
	return groups
}
