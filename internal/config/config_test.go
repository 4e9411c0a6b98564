package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestTypedGetters(t *testing.T) {
	v := viper.New()
	v.Set("listen", ":8080")
	v.Set("workers", 4)
	v.Set("verbose", true)
	v.Set("interval", "30s")

	c := New(v)
	if got := c.GetString("listen"); got != ":8080" {
		t.Errorf("GetString = %q, want :8080", got)
	}
	if got := c.GetInt("workers"); got != 4 {
		t.Errorf("GetInt = %d, want 4", got)
	}
	if !c.GetBool("verbose") {
		t.Error("GetBool = false, want true")
	}
	if got := c.GetDuration("interval"); got != 30*time.Second {
		t.Errorf("GetDuration = %v, want 30s", got)
	}
	if !c.IsSet("workers") {
		t.Error("IsSet(workers) = false, want true")
	}
	if c.IsSet("absent") {
		t.Error("IsSet(absent) = true, want false")
	}
}

func TestUnmarshal(t *testing.T) {
	v := viper.New()
	v.Set("shift", 0.5)
	v.Set("threshold", 5.0)

	var cfg struct {
		Shift     float64 `mapstructure:"shift"`
		Threshold float64 `mapstructure:"threshold"`
	}
	if err := New(v).Unmarshal(&cfg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if cfg.Shift != 0.5 || cfg.Threshold != 5.0 {
		t.Errorf("cfg = %+v, want shift 0.5 threshold 5.0", cfg)
	}
}

func TestSub(t *testing.T) {
	v := viper.New()
	v.Set("plugins.drift.baseline", "ewma")
	c := New(v)

	t.Run("existing subtree", func(t *testing.T) {
		sub := c.Sub("plugins.drift")
		if got := sub.GetString("baseline"); got != "ewma" {
			t.Errorf("baseline = %q, want ewma", got)
		}
	})
	t.Run("missing subtree is empty, not nil", func(t *testing.T) {
		sub := c.Sub("plugins.unknown")
		if sub == nil {
			t.Fatal("Sub returned nil")
		}
		if sub.IsSet("baseline") {
			t.Error("empty subtree reports keys as set")
		}
	})
}

func TestNew_NilViper(t *testing.T) {
	c := New(nil)
	if c.Viper() == nil {
		t.Fatal("Viper() = nil, want an empty instance")
	}
	if c.IsSet("anything") {
		t.Error("empty config reports keys as set")
	}
}
