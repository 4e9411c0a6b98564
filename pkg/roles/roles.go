// Package roles defines the typed contracts behind plugin roles. A plugin
// names its roles in PluginInfo.Roles; callers locate it with
// PluginResolver.ResolveByRole and type-assert the matching interface
// from this package.
//
// Apache 2.0 licensed, like the rest of the public plugin SDK.
package roles

import (
	"context"

	"github.com/driftscope/driftscope/pkg/analytics"
	"github.com/driftscope/driftscope/pkg/models"
)

// Role names as they appear in PluginInfo.Roles.
const (
	RoleDetection    = "detection"
	RoleEvaluation   = "evaluation"
	RoleScorer       = "scorer"
	RoleCollector    = "collector"
	RoleNotification = "notification"
)

// DetectionProvider is implemented by plugins that watch series and flag
// anomalies. Resolve via PluginResolver.ResolveByRole(RoleDetection) then
// type-assert.
type DetectionProvider interface {
	// RecentAnomalies returns the most recent anomalies for a series,
	// newest first. Pass empty seriesID to list across all series.
	RecentAnomalies(ctx context.Context, seriesID string) ([]analytics.Anomaly, error)

	// BaselineFor returns the learned baseline for a series, or nil when
	// the series is still in its learning period.
	BaselineFor(ctx context.Context, seriesID string) (*analytics.Baseline, error)
}

// EvaluationProvider is implemented by plugins that grade anomaly scorers
// against labeled data.
type EvaluationProvider interface {
	// Runs returns completed evaluation runs, newest first.
	Runs(ctx context.Context, limit int) ([]analytics.EvaluationRun, error)

	// Run returns a single evaluation run by ID.
	Run(ctx context.Context, id string) (*analytics.EvaluationRun, error)

	// Evaluate grades a labeled score set and persists the resulting run.
	Evaluate(ctx context.Context, req EvaluationRequest) (*analytics.EvaluationRun, error)
}

// ScorerProvider is implemented by plugins that score samples for
// anomalousness. Scores follow the polarity declared in ScorerInfo; the
// repo-wide convention is "low" (lower = more anomalous).
type ScorerProvider interface {
	// Scorers lists the scorers this provider offers.
	Scorers() []analytics.ScorerInfo

	// Score runs the named scorer over a univariate sample and returns one
	// score per input value.
	Score(ctx context.Context, name string, values []float64) ([]float64, error)
}

// Collector is implemented by plugins that feed samples onto the bus.
type Collector interface {
	// Targets returns the series IDs this collector emits.
	Targets() []string
}

// Notifier is implemented by plugins that push events out of the system
// (webhooks, email, chat).
type Notifier interface {
	// Notify delivers one notification to the plugin's configured sinks.
	Notify(ctx context.Context, notification Notification) error
}

// SampleSink is implemented by plugins that accept out-of-band samples, in
// addition to whatever bus topics they subscribe to.
type SampleSink interface {
	// Ingest stores and analyzes a batch of samples. Points carry their
	// own series IDs, so one batch may span series.
	Ingest(ctx context.Context, points []models.SeriesPoint) error
}
