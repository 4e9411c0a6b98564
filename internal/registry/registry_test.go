package registry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/driftscope/driftscope/pkg/plugin"
	"go.uber.org/zap"
)

// fake is a configurable plugin for registry tests. Nil hooks succeed.
type fake struct {
	info    plugin.PluginInfo
	onInit  func(plugin.Dependencies) error
	onStart func() error
	onStop  func(context.Context) error
}

func newFake(name string, deps ...string) *fake {
	return &fake{info: plugin.PluginInfo{
		Name:         name,
		Version:      "0.1.0",
		Dependencies: deps,
		APIVersion:   plugin.APIVersionCurrent,
	}}
}

func (f *fake) Info() plugin.PluginInfo { return f.info }

func (f *fake) Init(_ context.Context, deps plugin.Dependencies) error {
	if f.onInit != nil {
		return f.onInit(deps)
	}
	return nil
}

func (f *fake) Start(context.Context) error {
	if f.onStart != nil {
		return f.onStart()
	}
	return nil
}

func (f *fake) Stop(ctx context.Context) error {
	if f.onStop != nil {
		return f.onStop(ctx)
	}
	return nil
}

// routedFake also implements plugin.HTTPProvider.
type routedFake struct {
	*fake
	routes []plugin.Route
}

func (f *routedFake) Routes() []plugin.Route { return f.routes }

// subscribedFake also implements plugin.EventSubscriber.
type subscribedFake struct {
	*fake
	subs []plugin.Subscription
}

func (f *subscribedFake) Subscriptions() []plugin.Subscription { return f.subs }

// validatedFake also implements plugin.Validator.
type validatedFake struct {
	*fake
	validateErr error
}

func (f *validatedFake) ValidateConfig() error { return f.validateErr }

// recordBus captures the topics handed to Subscribe during InitAll.
type recordBus struct {
	topics []string
}

func (b *recordBus) Publish(context.Context, plugin.Event) error { return nil }
func (b *recordBus) PublishAsync(context.Context, plugin.Event)  {}
func (b *recordBus) SubscribeAll(plugin.EventHandler) func()     { return func() {} }

func (b *recordBus) Subscribe(topic string, _ plugin.EventHandler) func() {
	b.topics = append(b.topics, topic)
	return func() {}
}

// recordStop returns a Stop hook that appends the plugin name to order.
// StopAll is sequential, so no locking is needed.
func recordStop(order *[]string, name string) func(context.Context) error {
	return func(context.Context) error {
		*order = append(*order, name)
		return nil
	}
}

func nopDeps(name string) plugin.Dependencies {
	return plugin.Dependencies{Logger: zap.NewNop().Named(name)}
}

// boot registers the given plugins and drives them through Validate,
// InitAll, and StartAll, failing the test on any error.
func boot(t *testing.T, reg *Registry, plugins ...plugin.Plugin) {
	t.Helper()
	for _, p := range plugins {
		if err := reg.Register(p); err != nil {
			t.Fatalf("Register(%q) error = %v", p.Info().Name, err)
		}
	}
	if err := reg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	ctx := context.Background()
	if err := reg.InitAll(ctx, nopDeps); err != nil {
		t.Fatalf("InitAll() error = %v", err)
	}
	if err := reg.StartAll(ctx); err != nil {
		t.Fatalf("StartAll() error = %v", err)
	}
}

func TestRegister_RejectsDuplicatesAndEmptyNames(t *testing.T) {
	reg := New(zap.NewNop())

	if err := reg.Register(newFake("drift")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register(newFake("drift")); err == nil {
		t.Error("Register() error = nil for duplicate name, want error")
	}
	if err := reg.Register(&fake{}); err == nil {
		t.Error("Register() error = nil for empty name, want error")
	}
}

func TestValidate_OrdersByDependency(t *testing.T) {
	reg := New(zap.NewNop())

	// Registered backwards on purpose; Validate must untangle the chain.
	reg.Register(newFake("bench", "drift"))
	reg.Register(newFake("drift", "store"))
	reg.Register(newFake("store"))

	if err := reg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	var got []string
	for _, p := range reg.All() {
		got = append(got, p.Info().Name)
	}
	want := []string{"store", "drift", "bench"}
	if len(got) != len(want) {
		t.Fatalf("All() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("All()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestValidate_CycleIsAnError(t *testing.T) {
	reg := New(zap.NewNop())
	reg.Register(newFake("drift", "bench"))
	reg.Register(newFake("bench", "drift"))

	err := reg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want cycle error")
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("Validate() error = %q, want it to mention the cycle", err)
	}
}

func TestValidate_MissingDependency(t *testing.T) {
	t.Run("required plugin fails validation", func(t *testing.T) {
		reg := New(zap.NewNop())
		p := newFake("drift", "no-such-plugin")
		p.info.Required = true
		reg.Register(p)

		if err := reg.Validate(); err == nil {
			t.Error("Validate() error = nil, want missing dependency error")
		}
	})

	t.Run("optional plugin is disabled", func(t *testing.T) {
		reg := New(zap.NewNop())
		reg.Register(newFake("webhook", "no-such-plugin"))

		if err := reg.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if !reg.IsDisabled("webhook") {
			t.Error("IsDisabled(webhook) = false, want true")
		}
	})
}

func TestValidate_APIVersionRange(t *testing.T) {
	tests := []struct {
		name       string
		apiVersion int
		wantErr    bool
	}{
		{name: "current version", apiVersion: plugin.APIVersionCurrent, wantErr: false},
		{name: "minimum version", apiVersion: plugin.APIVersionMin, wantErr: false},
		{name: "below minimum", apiVersion: plugin.APIVersionMin - 1, wantErr: true},
		{name: "above current", apiVersion: plugin.APIVersionCurrent + 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := New(zap.NewNop())
			p := newFake("probe")
			p.info.APIVersion = tt.apiVersion
			p.info.Required = true
			reg.Register(p)

			if err := reg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_DisablingCascadesToDependents(t *testing.T) {
	reg := New(zap.NewNop())

	probe := newFake("probe")
	probe.info.APIVersion = plugin.APIVersionMin - 1
	reg.Register(probe)
	reg.Register(newFake("seed", "probe"))
	reg.Register(newFake("drift"))

	if err := reg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if !reg.IsDisabled("probe") {
		t.Error("IsDisabled(probe) = false, want true for stale API version")
	}
	if !reg.IsDisabled("seed") {
		t.Error("IsDisabled(seed) = false, want cascade through dependency")
	}
	if reg.IsDisabled("drift") {
		t.Error("IsDisabled(drift) = true, want unrelated plugin untouched")
	}
}

func TestInitAll_FailurePolicy(t *testing.T) {
	t.Run("required failure aborts startup", func(t *testing.T) {
		reg := New(zap.NewNop())
		p := newFake("store")
		p.info.Required = true
		p.onInit = func(plugin.Dependencies) error { return errors.New("no disk") }
		reg.Register(p)
		reg.Validate()

		if err := reg.InitAll(context.Background(), nopDeps); err == nil {
			t.Error("InitAll() error = nil, want required failure")
		}
	})

	t.Run("optional failure disables the plugin", func(t *testing.T) {
		reg := New(zap.NewNop())
		p := newFake("seed")
		p.onInit = func(plugin.Dependencies) error { return errors.New("bad fixture") }
		reg.Register(p)
		reg.Register(newFake("drift"))
		reg.Validate()

		if err := reg.InitAll(context.Background(), nopDeps); err != nil {
			t.Fatalf("InitAll() error = %v", err)
		}
		if !reg.IsDisabled("seed") {
			t.Error("IsDisabled(seed) = false, want true after init failure")
		}
		if reg.IsDisabled("drift") {
			t.Error("IsDisabled(drift) = true, want healthy plugin untouched")
		}
	})
}

func TestInitAll_RunsConfigValidation(t *testing.T) {
	t.Run("optional plugin with bad config is disabled", func(t *testing.T) {
		reg := New(zap.NewNop())
		p := &validatedFake{fake: newFake("webhook"), validateErr: errors.New("bad url")}
		reg.Register(p)
		reg.Validate()

		if err := reg.InitAll(context.Background(), nopDeps); err != nil {
			t.Fatalf("InitAll() error = %v", err)
		}
		if !reg.IsDisabled("webhook") {
			t.Error("IsDisabled(webhook) = false, want true after config rejection")
		}
	})

	t.Run("required plugin with bad config aborts startup", func(t *testing.T) {
		reg := New(zap.NewNop())
		p := &validatedFake{fake: newFake("store"), validateErr: errors.New("bad path")}
		p.info.Required = true
		reg.Register(p)
		reg.Validate()

		if err := reg.InitAll(context.Background(), nopDeps); err == nil {
			t.Error("InitAll() error = nil, want config validation failure")
		}
	})
}

func TestInitAll_WiresDeclaredSubscriptions(t *testing.T) {
	reg := New(zap.NewNop())

	handler := func(context.Context, plugin.Event) {}
	p := &subscribedFake{
		fake: newFake("webhook"),
		subs: []plugin.Subscription{
			{Topic: "drift.anomaly.detected", Handler: handler},
			{Topic: "bench.run.completed", Handler: handler},
		},
	}
	reg.Register(p)
	reg.Validate()

	bus := &recordBus{}
	err := reg.InitAll(context.Background(), func(name string) plugin.Dependencies {
		return plugin.Dependencies{Logger: zap.NewNop().Named(name), Bus: bus}
	})
	if err != nil {
		t.Fatalf("InitAll() error = %v", err)
	}

	want := []string{"drift.anomaly.detected", "bench.run.completed"}
	if len(bus.topics) != len(want) {
		t.Fatalf("subscribed topics = %v, want %v", bus.topics, want)
	}
	for i := range want {
		if bus.topics[i] != want[i] {
			t.Errorf("topics[%d] = %q, want %q", i, bus.topics[i], want[i])
		}
	}
}

func TestStartAll_FailurePolicy(t *testing.T) {
	t.Run("required failure aborts startup", func(t *testing.T) {
		reg := New(zap.NewNop())
		p := newFake("store")
		p.info.Required = true
		p.onStart = func() error { return errors.New("port taken") }
		reg.Register(p)
		reg.Validate()
		reg.InitAll(context.Background(), nopDeps)

		if err := reg.StartAll(context.Background()); err == nil {
			t.Error("StartAll() error = nil, want required failure")
		}
	})

	t.Run("optional failure disables the plugin", func(t *testing.T) {
		reg := New(zap.NewNop())
		p := newFake("probe")
		p.onStart = func() error { return errors.New("no ICMP") }
		reg.Register(p)
		reg.Validate()
		reg.InitAll(context.Background(), nopDeps)

		if err := reg.StartAll(context.Background()); err != nil {
			t.Fatalf("StartAll() error = %v", err)
		}
		if !reg.IsDisabled("probe") {
			t.Error("IsDisabled(probe) = false, want true after start failure")
		}
	})
}

func TestStopAll_ReversesStartOrder(t *testing.T) {
	var order []string
	reg := New(zap.NewNop())

	store := newFake("store")
	store.onStop = recordStop(&order, "store")
	drift := newFake("drift", "store")
	drift.onStop = recordStop(&order, "drift")
	bench := newFake("bench", "drift")
	bench.onStop = recordStop(&order, "bench")

	boot(t, reg, bench, store, drift)
	reg.StopAll(context.Background())

	want := []string{"bench", "drift", "store"}
	if len(order) != len(want) {
		t.Fatalf("stop order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("stop order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestStopAll_DiamondDependencies(t *testing.T) {
	// probe and seed both sit between store and drift; their mutual order
	// is unspecified, but drift must stop first and store last.
	var order []string
	reg := New(zap.NewNop())

	store := newFake("store")
	store.onStop = recordStop(&order, "store")
	probe := newFake("probe", "store")
	probe.onStop = recordStop(&order, "probe")
	seed := newFake("seed", "store")
	seed.onStop = recordStop(&order, "seed")
	drift := newFake("drift", "probe", "seed")
	drift.onStop = recordStop(&order, "drift")

	boot(t, reg, store, probe, seed, drift)
	reg.StopAll(context.Background())

	if len(order) != 4 {
		t.Fatalf("stopped %d plugins, want 4: %v", len(order), order)
	}
	if order[0] != "drift" {
		t.Errorf("first stopped = %q, want drift", order[0])
	}
	if order[3] != "store" {
		t.Errorf("last stopped = %q, want store", order[3])
	}
}

func TestStopAll_ErrorsDoNotShortCircuit(t *testing.T) {
	var order []string
	reg := New(zap.NewNop())

	store := newFake("store")
	store.onStop = recordStop(&order, "store")
	drift := newFake("drift", "store")
	drift.onStop = func(ctx context.Context) error {
		order = append(order, "drift")
		return errors.New("flush failed")
	}
	bench := newFake("bench", "drift")
	bench.onStop = recordStop(&order, "bench")

	boot(t, reg, store, drift, bench)
	reg.StopAll(context.Background())

	want := []string{"bench", "drift", "store"}
	if len(order) != len(want) {
		t.Fatalf("stop order = %v, want %v despite the error", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("stop order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestStopAll_HonorsContextDeadline(t *testing.T) {
	var order []string
	reg := New(zap.NewNop())

	stuck := newFake("stuck")
	stuck.onStop = func(ctx context.Context) error {
		select {
		case <-time.After(5 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	quick := newFake("quick")
	quick.onStop = recordStop(&order, "quick")

	boot(t, reg, stuck, quick)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	reg.StopAll(ctx)
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("StopAll took %v, want well under the 5s sleep", elapsed)
	}

	found := false
	for _, name := range order {
		if name == "quick" {
			found = true
		}
	}
	if !found {
		t.Error("quick plugin never stopped")
	}
}

func TestStopAll_SkipsDisabledPlugins(t *testing.T) {
	var stops int32
	reg := New(zap.NewNop())

	countStop := func(context.Context) error {
		atomic.AddInt32(&stops, 1)
		return nil
	}

	active := newFake("drift")
	active.onStop = countStop
	stale := newFake("stale")
	stale.onStop = countStop
	stale.info.APIVersion = plugin.APIVersionMin - 1

	boot(t, reg, active, stale)
	reg.StopAll(context.Background())

	if got := atomic.LoadInt32(&stops); got != 1 {
		t.Errorf("stop calls = %d, want 1 (disabled plugin skipped)", got)
	}
}

func TestStopAll_ConcurrentCallsAreSafe(t *testing.T) {
	var stops int32
	reg := New(zap.NewNop())

	p := newFake("drift")
	p.onStop = func(ctx context.Context) error {
		atomic.AddInt32(&stops, 1)
		time.Sleep(20 * time.Millisecond)
		return nil
	}
	boot(t, reg, p)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.StopAll(context.Background())
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&stops); got != 3 {
		t.Errorf("stop calls = %d, want 3", got)
	}
}

func TestLifecyclePanicIsolation(t *testing.T) {
	tests := []struct {
		name     string
		phase    string
		required bool
	}{
		{name: "optional init panic disables", phase: "init", required: false},
		{name: "required init panic aborts", phase: "init", required: true},
		{name: "optional start panic disables", phase: "start", required: false},
		{name: "required start panic aborts", phase: "start", required: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flaky := newFake("flaky")
			flaky.info.Required = tt.required
			switch tt.phase {
			case "init":
				flaky.onInit = func(plugin.Dependencies) error { panic("boom") }
			case "start":
				flaky.onStart = func() error { panic("boom") }
			}

			reg := New(zap.NewNop())
			reg.Register(flaky)
			reg.Register(newFake("drift"))
			reg.Validate()

			ctx := context.Background()
			err := reg.InitAll(ctx, nopDeps)
			if err == nil {
				err = reg.StartAll(ctx)
			}

			if tt.required {
				if err == nil {
					t.Fatal("lifecycle error = nil, want panic surfaced as error")
				}
				if !strings.Contains(err.Error(), "panicked") {
					t.Errorf("error = %q, want it to mention the panic", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("lifecycle error = %v, want optional panic contained", err)
			}
			if !reg.IsDisabled("flaky") {
				t.Error("IsDisabled(flaky) = false, want true")
			}
			if reg.IsDisabled("drift") {
				t.Error("IsDisabled(drift) = true, want healthy plugin untouched")
			}
		})
	}
}

func TestStopAll_PanicContained(t *testing.T) {
	var order []string
	reg := New(zap.NewNop())

	flaky := newFake("flaky")
	flaky.onStop = func(context.Context) error { panic("boom") }
	calm := newFake("calm")
	calm.onStop = recordStop(&order, "calm")

	boot(t, reg, flaky, calm)

	// Must not propagate the panic, and the other plugin still stops.
	reg.StopAll(context.Background())

	found := false
	for _, name := range order {
		if name == "calm" {
			found = true
		}
	}
	if !found {
		t.Error("calm plugin never stopped after sibling panic")
	}
}

func TestGet_HidesDisabledPlugins(t *testing.T) {
	reg := New(zap.NewNop())

	stale := newFake("stale")
	stale.info.APIVersion = plugin.APIVersionMin - 1
	reg.Register(stale)
	reg.Register(newFake("drift"))
	reg.Validate()

	if _, ok := reg.Get("drift"); !ok {
		t.Error("Get(drift) = false, want true")
	}
	if _, ok := reg.Get("stale"); ok {
		t.Error("Get(stale) = true, want disabled plugin hidden")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("Get(missing) = true, want false")
	}
	if _, ok := reg.Resolve("drift"); !ok {
		t.Error("Resolve(drift) = false, want true")
	}
}

func TestAllRoutes_OnlyProvidersWithRoutes(t *testing.T) {
	reg := New(zap.NewNop())

	api := &routedFake{
		fake:   newFake("drift"),
		routes: []plugin.Route{{Method: "GET", Path: "/series"}},
	}
	bare := &routedFake{fake: newFake("empty")}

	boot(t, reg, api, bare, newFake("probe"))

	routes := reg.AllRoutes()
	if len(routes) != 1 {
		t.Fatalf("AllRoutes() has %d entries, want 1: %v", len(routes), routes)
	}
	got, ok := routes["drift"]
	if !ok {
		t.Fatal("AllRoutes() missing drift entry")
	}
	if len(got) != 1 || got[0].Path != "/series" {
		t.Errorf("drift routes = %v, want the /series route", got)
	}
}

func TestResolveByRole(t *testing.T) {
	reg := New(zap.NewNop())

	scorer := newFake("scorer")
	scorer.info.Roles = []string{"scorer"}
	evaluation := newFake("bench")
	evaluation.info.Roles = []string{"evaluation"}
	disabledScorer := newFake("stale-scorer")
	disabledScorer.info.Roles = []string{"scorer"}
	disabledScorer.info.APIVersion = plugin.APIVersionMin - 1

	reg.Register(scorer)
	reg.Register(evaluation)
	reg.Register(disabledScorer)
	reg.Validate()

	got := reg.ResolveByRole("scorer")
	if len(got) != 1 {
		t.Fatalf("ResolveByRole(scorer) returned %d plugins, want 1", len(got))
	}
	if got[0].Info().Name != "scorer" {
		t.Errorf("ResolveByRole(scorer)[0] = %q, want scorer", got[0].Info().Name)
	}
	if got := reg.ResolveByRole("notification"); len(got) != 0 {
		t.Errorf("ResolveByRole(notification) returned %d plugins, want 0", len(got))
	}
}
