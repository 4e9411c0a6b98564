// Package scorer provides builtin, training-free reference scorers for the
// bench evaluation plugin. Scores follow the repo-wide "low" polarity:
// lower scores mark more anomalous samples.
package scorer

import (
	"context"
	"fmt"
	"strconv"

	"github.com/driftscope/driftscope/pkg/analytics"
	"github.com/driftscope/driftscope/pkg/plugin"
	"github.com/driftscope/driftscope/pkg/rankeval"
	"github.com/driftscope/driftscope/pkg/roles"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin        = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
	_ roles.ScorerProvider = (*Module)(nil)
)

const (
	scorerCenterZ = "center-z"
	scorerIQR     = "iqr"
)

// Module implements the scorer plugin.
type Module struct {
	logger *zap.Logger
}

// New creates a new scorer plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "scorer",
		Version:     "0.1.0",
		Description: "Builtin reference scorers (center-z, iqr)",
		Roles:       []string{roles.RoleScorer},
		Required:    false,
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger
	m.logger.Info("scorer module initialized",
		zap.Int("scorers", len(m.Scorers())))
	return nil
}

func (m *Module) Start(_ context.Context) error {
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	return nil
}

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	return plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"scorers": strconv.Itoa(len(m.Scorers())),
		},
	}
}

// Scorers implements roles.ScorerProvider.
func (m *Module) Scorers() []analytics.ScorerInfo {
	return []analytics.ScorerInfo{
		{
			Name:        scorerCenterZ,
			Description: "Negated absolute z-score against the sample mean",
			Polarity:    string(rankeval.PolarityLow),
		},
		{
			Name:        scorerIQR,
			Description: "Negated distance outside the Tukey fences",
			Polarity:    string(rankeval.PolarityLow),
		},
	}
}

// Score implements roles.ScorerProvider.
func (m *Module) Score(_ context.Context, name string, values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("scorer %q: no values", name)
	}
	switch name {
	case scorerCenterZ:
		return centerZScores(values), nil
	case scorerIQR:
		return iqrScores(values), nil
	default:
		return nil, fmt.Errorf("unknown scorer %q", name)
	}
}
