// Package plugintest provides shared contract tests that verify any
// plugin.Plugin implementation behaves correctly. Every module's test
// file should call TestPluginContract to ensure conformance.
package plugintest

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/driftscope/driftscope/pkg/plugin"
	"go.uber.org/zap"
)

var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
}

// TestPluginContract runs a suite of behavioral contract tests against
// any plugin.Plugin implementation. Call this from each module's _test.go:
//
//	func TestContract(t *testing.T) {
//	    plugintest.TestPluginContract(t, func() plugin.Plugin { return drift.New() })
//	}
func TestPluginContract(t *testing.T, factory func() plugin.Plugin) {
	t.Helper()

	t.Run("metadata is complete", func(t *testing.T) {
		info := factory().Info()
		if info.Name == "" {
			t.Error("Info().Name must not be empty")
		}
		if info.Version == "" {
			t.Error("Info().Version must not be empty")
		}
		if info.APIVersion < plugin.APIVersionMin || info.APIVersion > plugin.APIVersionCurrent {
			t.Errorf("Info().APIVersion = %d, outside supported range [%d, %d]",
				info.APIVersion, plugin.APIVersionMin, plugin.APIVersionCurrent)
		}
	})

	t.Run("metadata is stable across calls", func(t *testing.T) {
		p := factory()
		if a, b := p.Info(), p.Info(); !reflect.DeepEqual(a, b) {
			t.Errorf("Info() changed between calls: %+v then %+v", a, b)
		}
	})

	t.Run("init accepts minimal dependencies", func(t *testing.T) {
		p := factory()
		if err := p.Init(context.Background(), contractDeps(p)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
	})

	t.Run("start then stop", func(t *testing.T) {
		p := initialized(t, factory)
		if err := p.Start(context.Background()); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if err := p.Stop(context.Background()); err != nil {
			t.Fatalf("Stop() error = %v", err)
		}
	})

	t.Run("stop before start is harmless", func(t *testing.T) {
		p := initialized(t, factory)
		if err := p.Stop(context.Background()); err != nil {
			t.Fatalf("Stop() without Start error = %v", err)
		}
	})

	t.Run("declared routes are well formed", func(t *testing.T) {
		hp, ok := initialized(t, factory).(plugin.HTTPProvider)
		if !ok {
			t.Skip("plugin exposes no HTTP routes")
		}
		for _, rt := range hp.Routes() {
			if !knownMethods[rt.Method] {
				t.Errorf("route %s %s: unknown method", rt.Method, rt.Path)
			}
			if !strings.HasPrefix(rt.Path, "/") {
				t.Errorf("route %s %s: path must start with /", rt.Method, rt.Path)
			}
			if rt.Handler == nil {
				t.Errorf("route %s %s: nil handler", rt.Method, rt.Path)
			}
		}
	})

	t.Run("declared subscriptions are well formed", func(t *testing.T) {
		es, ok := initialized(t, factory).(plugin.EventSubscriber)
		if !ok {
			t.Skip("plugin subscribes to no events")
		}
		for i, sub := range es.Subscriptions() {
			if sub.Topic == "" {
				t.Errorf("subscription %d: empty topic", i)
			}
			if sub.Handler == nil {
				t.Errorf("subscription %d: nil handler", i)
			}
		}
	})
}

func initialized(t *testing.T, factory func() plugin.Plugin) plugin.Plugin {
	t.Helper()
	p := factory()
	if err := p.Init(context.Background(), contractDeps(p)); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return p
}

func contractDeps(p plugin.Plugin) plugin.Dependencies {
	return plugin.Dependencies{
		Logger: zap.NewNop().Named(p.Info().Name),
	}
}
