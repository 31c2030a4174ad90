package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AlertingConfig holds the defaults applied to monitoring configs that have
// no stored row, plus the bounds enforced on user-supplied thresholds.
type AlertingConfig struct {
	DefaultFrequency string   `mapstructure:"defaultFrequency"`
	DefaultThreshold int      `mapstructure:"defaultThreshold"`
	DefaultMetrics   []string `mapstructure:"defaultMetrics"`
	MinThreshold     int      `mapstructure:"minThreshold"`
	MaxThreshold     int      `mapstructure:"maxThreshold"`
}

func DefaultAlertingConfig() AlertingConfig {
	return AlertingConfig{
		DefaultFrequency: "WEEKLY",
		DefaultThreshold: 10,
		DefaultMetrics:   []string{"overallScore", "seoScore", "performanceScore"},
		MinThreshold:     1,
		MaxThreshold:     50,
	}
}

// AlertingConfigHolder serves the current alerting defaults and hot-reloads
// them when the backing file changes.
type AlertingConfigHolder struct {
	current atomic.Value // holds AlertingConfig
}

func NewAlertingConfigHolder() (*AlertingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("alerting")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/sitepulse/config")
	v.AddConfigPath("/etc/sitepulse")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SITEPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultAlertingConfig()
	v.SetDefault("alerting.defaultFrequency", defaults.DefaultFrequency)
	v.SetDefault("alerting.defaultThreshold", defaults.DefaultThreshold)
	v.SetDefault("alerting.defaultMetrics", defaults.DefaultMetrics)
	v.SetDefault("alerting.minThreshold", defaults.MinThreshold)
	v.SetDefault("alerting.maxThreshold", defaults.MaxThreshold)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg AlertingConfig
	if err := v.UnmarshalKey("alerting", &cfg); err != nil {
		return nil, err
	}
	if err := validateAlertingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &AlertingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated AlertingConfig
		if err := v.UnmarshalKey("alerting", &updated); err != nil {
			log.Printf("[alerting-config] reload failed: %v", err)
			return
		}
		if err := validateAlertingConfig(updated); err != nil {
			log.Printf("[alerting-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[alerting-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticAlertingConfigHolder wraps a fixed config with no file watching,
// for tests and tooling.
func NewStaticAlertingConfigHolder(cfg AlertingConfig) *AlertingConfigHolder {
	holder := &AlertingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *AlertingConfigHolder) Get() AlertingConfig {
	return h.current.Load().(AlertingConfig)
}

func validateAlertingConfig(cfg AlertingConfig) error {
	if strings.TrimSpace(cfg.DefaultFrequency) == "" {
		return errors.New("alerting.defaultFrequency cannot be empty")
	}
	if len(cfg.DefaultMetrics) == 0 {
		return errors.New("alerting.defaultMetrics cannot be empty")
	}
	if cfg.MinThreshold < 1 || cfg.MaxThreshold < cfg.MinThreshold {
		return errors.New("alerting threshold bounds are invalid")
	}
	if cfg.DefaultThreshold < cfg.MinThreshold || cfg.DefaultThreshold > cfg.MaxThreshold {
		return errors.New("alerting.defaultThreshold is out of bounds")
	}
	return nil
}
