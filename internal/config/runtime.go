package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// RuntimeConfig holds the settings an operator may change without a
// restart: the API token and how long idempotent responses are replayed.
type RuntimeConfig struct {
	AuthToken             string `mapstructure:"authToken"`
	IdempotencyTTLSeconds int64  `mapstructure:"idempotencyTtlSeconds"`
}

// RuntimeConfigHolder keeps the current RuntimeConfig behind an atomic
// swap so readers never block on a reload.
type RuntimeConfigHolder struct {
	current atomic.Value // holds RuntimeConfig
}

// NewRuntimeConfigHolder loads runtime.yml when present, falls back to the
// environment configuration otherwise, and watches the file for changes.
// Invalid updates are logged and ignored; the previous config stays live.
func NewRuntimeConfigHolder(cfg Config) (*RuntimeConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("runtime")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/orgmgr")
	v.AddConfigPath(".")

	v.SetEnvPrefix("ORGMGR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("runtime.authToken", cfg.AuthToken)
	v.SetDefault("runtime.idempotencyTtlSeconds", cfg.IdempotencyTTLSeconds)

	watchable := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		watchable = false
	}

	var rc RuntimeConfig
	if err := v.UnmarshalKey("runtime", &rc); err != nil {
		return nil, err
	}
	if err := validateRuntimeConfig(rc); err != nil {
		return nil, err
	}

	holder := &RuntimeConfigHolder{}
	holder.current.Store(rc)

	if watchable {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated RuntimeConfig
			if err := v.UnmarshalKey("runtime", &updated); err != nil {
				log.Printf("[runtime-config] reload failed: %v", err)
				return
			}
			if err := validateRuntimeConfig(updated); err != nil {
				log.Printf("[runtime-config] invalid config ignored: %v", err)
				return
			}
			holder.current.Store(updated)
			log.Printf("[runtime-config] reloaded from %s", e.Name)
		})
	}

	return holder, nil
}

// Get returns the currently effective runtime configuration.
func (h *RuntimeConfigHolder) Get() RuntimeConfig {
	return h.current.Load().(RuntimeConfig)
}

func validateRuntimeConfig(rc RuntimeConfig) error {
	if rc.IdempotencyTTLSeconds <= 0 {
		return errors.New("runtime.idempotencyTtlSeconds must be positive")
	}
	return nil
}
