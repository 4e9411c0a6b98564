package bench

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/driftscope/driftscope/pkg/analytics"
	"github.com/driftscope/driftscope/pkg/plugin"
	"github.com/driftscope/driftscope/pkg/rankeval"
	"github.com/driftscope/driftscope/pkg/roles"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin            = (*Module)(nil)
	_ plugin.HTTPProvider      = (*Module)(nil)
	_ plugin.HealthChecker     = (*Module)(nil)
	_ plugin.Validator         = (*Module)(nil)
	_ roles.EvaluationProvider = (*Module)(nil)
)

// errUnknownScorer reports an evaluation request naming a scorer no
// registered provider offers.
var errUnknownScorer = errors.New("bench: unknown scorer")

// Module implements the bench evaluation plugin: it grades anomaly scorers
// against labeled data and keeps the graded runs queryable.
type Module struct {
	logger  *zap.Logger
	cfg     BenchConfig
	store   *BenchStore
	bus     plugin.EventBus
	plugins plugin.PluginResolver

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new bench plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "bench",
		Version:     "0.1.0",
		Description: "Rank-based evaluation of anomaly scorers",
		Roles:       []string{roles.RoleEvaluation},
		Required:    false,
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal bench config: %w", err)
		}
	}

	if deps.Store != nil {
		if err := deps.Store.Migrate(context.Background(), "bench", migrations()); err != nil {
			return fmt.Errorf("bench migrations: %w", err)
		}
		m.store = NewBenchStore(deps.Store.DB())
	}

	m.bus = deps.Bus
	m.plugins = deps.Plugins

	m.logger.Info("bench module initialized",
		zap.Float64("fp_cost", m.cfg.FPCost),
		zap.Float64("fn_cost", m.cfg.FNCost))
	return nil
}

// ValidateConfig implements plugin.Validator.
func (m *Module) ValidateConfig() error {
	if m.cfg.FPCost < 0 {
		return fmt.Errorf("fp_cost must not be negative, got %v", m.cfg.FPCost)
	}
	if m.cfg.FNCost < 0 {
		return fmt.Errorf("fn_cost must not be negative, got %v", m.cfg.FNCost)
	}
	if m.cfg.MaxSamples < 1 {
		return fmt.Errorf("max_samples must be at least 1, got %d", m.cfg.MaxSamples)
	}
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.logger.Info("bench module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}
	m.logger.Info("bench module stopped")
	return nil
}

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	return plugin.HealthStatus{
		Status: "healthy",
		Details: map[string]string{
			"scorers_available": strconv.Itoa(len(m.scorerInfos())),
		},
	}
}

// scorerInfos aggregates scorer descriptors across registered providers.
func (m *Module) scorerInfos() []analytics.ScorerInfo {
	if m.plugins == nil {
		return nil
	}
	var infos []analytics.ScorerInfo
	for _, p := range m.plugins.ResolveByRole(roles.RoleScorer) {
		provider, ok := p.(roles.ScorerProvider)
		if !ok {
			continue
		}
		infos = append(infos, provider.Scorers()...)
	}
	return infos
}

// findScorer locates the provider offering the named scorer.
func (m *Module) findScorer(name string) (roles.ScorerProvider, analytics.ScorerInfo, bool) {
	if m.plugins == nil {
		return nil, analytics.ScorerInfo{}, false
	}
	for _, p := range m.plugins.ResolveByRole(roles.RoleScorer) {
		provider, ok := p.(roles.ScorerProvider)
		if !ok {
			continue
		}
		for _, info := range provider.Scorers() {
			if info.Name == name {
				return provider, info, true
			}
		}
	}
	return nil, analytics.ScorerInfo{}, false
}

// -- roles.EvaluationProvider --

// Runs implements roles.EvaluationProvider.
func (m *Module) Runs(ctx context.Context, limit int) ([]analytics.EvaluationRun, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.ListRuns(ctx, limit)
}

// Run implements roles.EvaluationProvider.
func (m *Module) Run(ctx context.Context, id string) (*analytics.EvaluationRun, error) {
	if m.store == nil {
		return nil, nil
	}
	return m.store.GetRun(ctx, id)
}

// Evaluate implements roles.EvaluationProvider. It grades one labeled
// score set: scores either arrive in the request or are produced by the
// named scorer over the raw values. Malformed input surfaces the rankeval
// sentinels so callers can branch on them.
func (m *Module) Evaluate(ctx context.Context, req roles.EvaluationRequest) (*analytics.EvaluationRun, error) {
	if len(req.Labels) == 0 {
		return nil, fmt.Errorf("%w: labels are required", rankeval.ErrInvalidArgument)
	}
	if len(req.Labels) > m.cfg.MaxSamples {
		return nil, fmt.Errorf("%w: %d samples exceed the limit of %d", rankeval.ErrInvalidArgument, len(req.Labels), m.cfg.MaxSamples)
	}
	if len(req.Scores) > 0 && req.Scorer != "" {
		return nil, fmt.Errorf("%w: supply either scores or a scorer, not both", rankeval.ErrInvalidArgument)
	}

	polarity, err := rankeval.ParsePolarity(req.Polarity)
	if err != nil {
		return nil, err
	}

	scores := req.Scores
	if req.Scorer != "" {
		if len(req.Values) != len(req.Labels) {
			return nil, fmt.Errorf("%w: %d values vs %d labels", rankeval.ErrInvalidArgument, len(req.Values), len(req.Labels))
		}
		provider, info, ok := m.findScorer(req.Scorer)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errUnknownScorer, req.Scorer)
		}
		scores, err = provider.Score(ctx, req.Scorer, req.Values)
		if err != nil {
			return nil, fmt.Errorf("score values with %q: %w", req.Scorer, err)
		}
		// The provider declares its own orientation; it overrides
		// whatever the request said.
		polarity, err = rankeval.ParsePolarity(info.Polarity)
		if err != nil {
			return nil, err
		}
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: supply scores or a scorer with values", rankeval.ErrInvalidArgument)
	}

	normalized := rankeval.Normalize(scores, polarity)

	curve, err := rankeval.Curve(req.Labels, normalized, req.NMax)
	if err != nil {
		return nil, err
	}
	ap, err := rankeval.AveragePrecision(req.Labels, normalized)
	if err != nil {
		return nil, err
	}
	fraction := rankeval.Fraction(req.Labels)
	adjustedAP, err := rankeval.AdjustedScore(ap, fraction)
	if err != nil {
		// Every label true: the adjustment is undefined, same convention
		// as rankeval.Curve.
		adjustedAP = 0
	}

	fpCost, fnCost := m.cfg.FPCost, m.cfg.FNCost
	if req.FalsePositiveCost > 0 {
		fpCost = req.FalsePositiveCost
	}
	if req.FalseNegativeCost > 0 {
		fnCost = req.FalseNegativeCost
	}

	positives := 0
	for _, l := range req.Labels {
		if l {
			positives++
		}
	}

	// The cost curve always spans the full input, so the best cutoff is a
	// global optimum even when the caller capped the reported curve.
	costs := costCurve(req.Labels, normalized, fpCost, fnCost)
	cutoff, cost := bestCutoff(costs, fnCost*float64(positives))

	name := req.Name
	if name == "" {
		name = "run " + time.Now().Format("2006-01-02 15:04:05")
	}

	run := &analytics.EvaluationRun{
		ID:            uuid.NewString(),
		Name:          name,
		Scorer:        req.Scorer,
		Polarity:      string(polarity),
		SampleCount:   len(req.Labels),
		PositiveCount: positives,
		AP:            ap,
		AdjustedAP:    adjustedAP,
		BestCutoff:    cutoff,
		BestCost:      cost,
		FPCost:        fpCost,
		FNCost:        fnCost,
		CreatedAt:     time.Now(),
		Notes:         req.Notes,
	}

	points := make([]analytics.PrecisionPoint, len(curve))
	for i, p := range curve {
		points[i] = analytics.PrecisionPoint{
			N:         p.N,
			Precision: p.Precision,
			Adjusted:  p.Adjusted,
			Cost:      costs[i],
		}
	}

	if m.store != nil {
		if err := m.store.InsertRun(ctx, run, points); err != nil {
			return nil, fmt.Errorf("persist run: %w", err)
		}
	}

	runsTotal.Inc()
	m.logger.Info("evaluation run completed",
		zap.String("run_id", run.ID),
		zap.String("name", run.Name),
		zap.String("scorer", run.Scorer),
		zap.Int("samples", run.SampleCount),
		zap.Float64("ap", run.AP),
		zap.Int("best_cutoff", run.BestCutoff))

	if m.bus != nil && m.ctx != nil {
		m.bus.PublishAsync(m.ctx, plugin.Event{
			Topic:   TopicRunCompleted,
			Source:  "bench",
			Payload: run,
		})
	}
	return run, nil
}
