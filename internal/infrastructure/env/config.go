package env

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/domain/entity"
)

var ErrMissing = errors.New("value is required")

// ConfigError reports the variable that could not be used.
type ConfigError struct {
	Key   string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config %s: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("config %s=%q: %v", e.Key, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

type Config struct {
	OpenRouterAPIKey string
	OpenRouterModel  string
	LLMBaseURL       string
	LLMMaxTokens     int

	DeviceBackend   entity.DeviceMode
	BrowserHeadless bool
	ClickOffset     entity.Point
	ClickDebug      bool
	DisplayWidth    int
	DisplayHeight   int
	TargetsFile     string

	MedicalHomeURL string
	AuxServices    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TranscriptTTL time.Duration

	HTTPAddr  string
	LogLevel  string
	LogFormat string
}

const (
	DefaultModel       = "anthropic/claude-3.7-sonnet"
	DefaultLLMBaseURL  = "https://openrouter.ai/api/v1"
	DefaultAuxServices = "eligibility=self"
	DefaultHTTPAddr    = ":8000"
)

// LoadConfig reads every setting from cfg. Malformed values are errors,
// unset values take their defaults.
func LoadConfig(cfg output.ConfigPort) (*Config, error) {
	p := parser{cfg: cfg}

	c := &Config{
		OpenRouterAPIKey: cfg.Get("OPENROUTER_API_KEY"),
		OpenRouterModel:  cfg.GetWithDefault("OPENROUTER_MODEL_NAME", DefaultModel),
		LLMBaseURL:       cfg.GetWithDefault("LLM_BASE_URL", DefaultLLMBaseURL),
		LLMMaxTokens:     p.int("LLM_MAX_TOKENS", 4096),

		BrowserHeadless: p.bool("BROWSER_HEADLESS", false),
		ClickOffset:     entity.Point{X: p.int("CLICK_OFFSET_X", 0), Y: p.int("CLICK_OFFSET_Y", 0)},
		ClickDebug:      p.bool("CLICK_DEBUG", false),
		DisplayWidth:    p.int("DISPLAY_WIDTH", 1710),
		DisplayHeight:   p.int("DISPLAY_HEIGHT", 1107),
		TargetsFile:     cfg.Get("TARGETS_FILE"),

		MedicalHomeURL: cfg.Get("MEDICAL_HOME_URL"),
		AuxServices:    cfg.GetWithDefault("AUX_SERVICES", DefaultAuxServices),

		RedisAddr:     cfg.Get("REDIS_ADDR"),
		RedisPassword: cfg.Get("REDIS_PASSWORD"),
		RedisDB:       p.int("REDIS_DB", 0),
		TranscriptTTL: p.duration("TRANSCRIPT_TTL", 24*time.Hour),

		HTTPAddr:  cfg.GetWithDefault("HTTP_ADDR", DefaultHTTPAddr),
		LogLevel:  cfg.GetWithDefault("LOG_LEVEL", "info"),
		LogFormat: cfg.GetWithDefault("LOG_FORMAT", "json"),
	}

	mode, err := entity.ParseDeviceMode(strings.ToLower(cfg.Get("DEVICE_BACKEND")))
	if err != nil {
		p.fail("DEVICE_BACKEND", cfg.Get("DEVICE_BACKEND"), err)
	}
	c.DeviceBackend = mode

	if c.DisplayWidth <= 0 || c.DisplayHeight <= 0 {
		p.fail("DISPLAY_WIDTH", fmt.Sprintf("%dx%d", c.DisplayWidth, c.DisplayHeight), errors.New("display size must be positive"))
	}

	if p.err != nil {
		return nil, p.err
	}
	return c, nil
}

// RequireModel checks the settings needed to talk to the model.
func (c *Config) RequireModel() error {
	if c.OpenRouterAPIKey == "" {
		return &ConfigError{Key: "OPENROUTER_API_KEY", Err: ErrMissing}
	}
	return nil
}

// parser keeps the first error so LoadConfig reads like a list of keys.
type parser struct {
	cfg output.ConfigPort
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = &ConfigError{Key: key, Value: value, Err: err}
	}
}

func (p *parser) int(key string, def int) int {
	raw := strings.TrimSpace(p.cfg.Get(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) bool(key string, def bool) bool {
	raw := strings.TrimSpace(p.cfg.Get(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(p.cfg.Get(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.fail(key, raw, err)
		return def
	}
	return v
}
