// Package config loads service configuration from an optional YAML file and
// the environment. Environment variables win over file values; every knob has
// a default, so a bare process starts with the original deployment's settings.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CompletionConfig holds the settings for the upstream chat-completion API.
type CompletionConfig struct {
	BaseURL string
	Model   string
	APIKey  string
}

// Config is the full runtime configuration of the service.
type Config struct {
	Port int

	// Quota and session lifecycle.
	DailyLimit    int
	Idle          time.Duration
	SessionMax    time.Duration
	SweepInterval time.Duration
	EvictAfter    time.Duration
	EvictInterval time.Duration

	// Reply generation.
	ReinjectionProbability float64
	HistoryTail            int
	MaxReplyTokens         int
	Temperature            float64
	AskTimeout             time.Duration

	// Proactive messages.
	PromptsPath  string
	PromptsWatch bool
	Greeting     string

	Completion CompletionConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 3000)
	v.SetDefault("daily_limit", 20)
	v.SetDefault("idle", "3m")
	v.SetDefault("session_max", "1h")
	v.SetDefault("sweep_interval", "30s")
	v.SetDefault("evict_after", "48h")
	v.SetDefault("evict_interval", "1h")
	v.SetDefault("reinjection_probability", 0.2)
	v.SetDefault("history_tail", 3)
	v.SetDefault("max_reply_tokens", 150)
	v.SetDefault("temperature", 0.9)
	v.SetDefault("ask_timeout", "30s")
	v.SetDefault("prompts_path", "prompts.json")
	v.SetDefault("prompts_watch", false)
	v.SetDefault("greeting", "Annyeong~ ")
	v.SetDefault("completion.base_url", "https://api.zukijourney.com/v1")
	v.SetDefault("completion.model", "gpt-3.5-turbo")
	v.SetDefault("completion.api_key", "")
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("port", "PORT")
	v.BindEnv("daily_limit", "DAILY_LIMIT")
	v.BindEnv("idle", "IDLE_MS")
	v.BindEnv("session_max", "SESSION_MAX_MS")
	v.BindEnv("sweep_interval", "SWEEP_INTERVAL")
	v.BindEnv("evict_after", "EVICT_AFTER")
	v.BindEnv("evict_interval", "EVICT_INTERVAL")
	v.BindEnv("reinjection_probability", "REINJECTION_PROBABILITY")
	v.BindEnv("history_tail", "HISTORY_TAIL")
	v.BindEnv("max_reply_tokens", "MAX_REPLY_TOKENS")
	v.BindEnv("temperature", "TEMPERATURE")
	v.BindEnv("ask_timeout", "ASK_TIMEOUT")
	v.BindEnv("prompts_path", "PROMPTS_PATH")
	v.BindEnv("prompts_watch", "PROMPTS_WATCH")
	v.BindEnv("greeting", "GREETING")
	v.BindEnv("completion.base_url", "COMPLETION_BASE_URL")
	v.BindEnv("completion.model", "COMPLETION_MODEL")
	v.BindEnv("completion.api_key", "ZUKI_API_KEY")
}

// Load reads configuration from path (optional, "" skips the file) and the
// environment. A missing config file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:                   v.GetInt("port"),
		DailyLimit:             v.GetInt("daily_limit"),
		ReinjectionProbability: v.GetFloat64("reinjection_probability"),
		HistoryTail:            v.GetInt("history_tail"),
		MaxReplyTokens:         v.GetInt("max_reply_tokens"),
		Temperature:            v.GetFloat64("temperature"),
		PromptsPath:            v.GetString("prompts_path"),
		PromptsWatch:           v.GetBool("prompts_watch"),
		Greeting:               v.GetString("greeting"),
		Completion: CompletionConfig{
			BaseURL: v.GetString("completion.base_url"),
			Model:   v.GetString("completion.model"),
			APIKey:  v.GetString("completion.api_key"),
		},
	}

	var err error
	if cfg.Idle, err = durationValue(v, "idle"); err != nil {
		return nil, err
	}
	if cfg.SessionMax, err = durationValue(v, "session_max"); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = durationValue(v, "sweep_interval"); err != nil {
		return nil, err
	}
	if cfg.EvictAfter, err = durationValue(v, "evict_after"); err != nil {
		return nil, err
	}
	if cfg.EvictInterval, err = durationValue(v, "evict_interval"); err != nil {
		return nil, err
	}
	if cfg.AskTimeout, err = durationValue(v, "ask_timeout"); err != nil {
		return nil, err
	}

	if cfg.DailyLimit < 1 {
		return nil, fmt.Errorf("daily_limit must be positive, got %d", cfg.DailyLimit)
	}
	if cfg.ReinjectionProbability < 0 || cfg.ReinjectionProbability > 1 {
		return nil, fmt.Errorf("reinjection_probability must be within [0,1], got %g", cfg.ReinjectionProbability)
	}

	return cfg, nil
}

// durationValue accepts either a Go duration string ("3m") or a bare integer,
// which is taken as milliseconds. The millisecond form matches the legacy
// IDLE_MS / SESSION_MAX_MS environment variables.
func durationValue(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, fmt.Errorf("%s: empty duration", key)
	}
	var d time.Duration
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		d = time.Duration(ms) * time.Millisecond
	} else if d, err = time.ParseDuration(raw); err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}
