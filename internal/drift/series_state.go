package drift

import (
	"sync"
	"time"

	"github.com/driftscope/driftscope/internal/drift/baseline"
	"github.com/driftscope/driftscope/pkg/cusum"
)

// seriesState holds the in-memory detection state for a single series.
// The detector consumes normalized samples (value - mean) / stddev, so its
// shift and threshold stay in stddev units while the baseline moves.
type seriesState struct {
	Estimator  baseline.Estimator
	Detector   *cusum.Detector
	HW         *baseline.HoltWinters
	LastSample time.Time
	Stable     bool // Set once MinSamples is reached
}

// stateManager provides thread-safe access to per-series detection state.
type stateManager struct {
	mu     sync.RWMutex
	states map[string]*seriesState

	algorithm string
	alpha     float64
	window    int
	shift     float64
	threshold float64
	hwAlpha   float64
	hwBeta    float64
	hwGamma   float64
	hwSeason  int
}

// newStateManager creates a state manager that builds per-series state from
// the given baseline and detector parameters.
func newStateManager(cfg DriftConfig) *stateManager {
	return &stateManager{
		states:    make(map[string]*seriesState),
		algorithm: cfg.Baseline,
		alpha:     cfg.EWMAAlpha,
		window:    cfg.RollingWindow,
		shift:     cfg.CUSUMShift,
		threshold: cfg.CUSUMThreshold,
		hwAlpha:   cfg.HWAlpha,
		hwBeta:    cfg.HWBeta,
		hwGamma:   cfg.HWGamma,
		hwSeason:  cfg.HWSeasonLen,
	}
}

// getOrCreate returns the state for a series, creating it if needed.
func (sm *stateManager) getOrCreate(seriesID string) *seriesState {
	sm.mu.RLock()
	s, ok := sm.states[seriesID]
	sm.mu.RUnlock()
	if ok {
		return s
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	// Double-check after acquiring write lock
	if s, ok = sm.states[seriesID]; ok {
		return s
	}

	est, err := baseline.New(sm.algorithm, sm.alpha, sm.window)
	if err != nil {
		// Unknown algorithm is rejected by ValidateConfig; keep a usable
		// fallback anyway.
		est = baseline.NewEWMA(sm.alpha)
	}
	s = &seriesState{
		Estimator: est,
		Detector:  &cusum.Detector{Shift: sm.shift, Threshold: sm.threshold},
		HW:        baseline.NewHoltWinters(sm.hwAlpha, sm.hwBeta, sm.hwGamma, sm.hwSeason),
	}
	sm.states[seriesID] = s
	return s
}

// lookup returns the state for a series without creating one.
func (sm *stateManager) lookup(seriesID string) (*seriesState, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.states[seriesID]
	return s, ok
}

// count returns the number of tracked series.
func (sm *stateManager) count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.states)
}

// snapshot returns a copy of the state map for iteration (avoids holding
// the lock during DB writes).
func (sm *stateManager) snapshot() map[string]*seriesState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	cp := make(map[string]*seriesState, len(sm.states))
	for k, v := range sm.states {
		cp[k] = v
	}
	return cp
}
