// Package config adapts Viper to the plugin.Config interface.
package config

import (
	"time"

	"github.com/driftscope/driftscope/pkg/plugin"
	"github.com/spf13/viper"
)

// ViperConfig implements plugin.Config on top of a Viper instance.
type ViperConfig struct {
	v *viper.Viper
}

var _ plugin.Config = (*ViperConfig)(nil)

// New wraps v, or an empty Viper when v is nil.
func New(v *viper.Viper) *ViperConfig {
	if v == nil {
		v = viper.New()
	}
	return &ViperConfig{v: v}
}

// Viper exposes the underlying instance for top-level lookups the server
// does directly (server.port and friends).
func (c *ViperConfig) Viper() *viper.Viper { return c.v }

func (c *ViperConfig) Unmarshal(target any) error { return c.v.Unmarshal(target) }

func (c *ViperConfig) Get(key string) any { return c.v.Get(key) }

func (c *ViperConfig) GetString(key string) string { return c.v.GetString(key) }

func (c *ViperConfig) GetInt(key string) int { return c.v.GetInt(key) }

func (c *ViperConfig) GetBool(key string) bool { return c.v.GetBool(key) }

func (c *ViperConfig) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }

func (c *ViperConfig) IsSet(key string) bool { return c.v.IsSet(key) }

// Sub scopes the config to a subtree. A missing subtree yields an empty
// config rather than nil so plugins can read defaults without guards.
func (c *ViperConfig) Sub(key string) plugin.Config {
	return New(c.v.Sub(key))
}
