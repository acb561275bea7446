package di

import (
	"context"
	"errors"
	"fmt"

	"medi-cal-assistant/internal/application/port/input"
	"medi-cal-assistant/internal/application/port/output"
	"medi-cal-assistant/internal/application/service"
	"medi-cal-assistant/internal/domain/entity"
	"medi-cal-assistant/internal/infrastructure/browser/rod"
	"medi-cal-assistant/internal/infrastructure/device"
	"medi-cal-assistant/internal/infrastructure/env"
	"medi-cal-assistant/internal/infrastructure/llm/openrouter"
	"medi-cal-assistant/internal/infrastructure/logger"
	"medi-cal-assistant/internal/infrastructure/mcp"
	"medi-cal-assistant/internal/infrastructure/prompts"
	"medi-cal-assistant/internal/infrastructure/transcript"
	"medi-cal-assistant/internal/usecase/assistant"
	"medi-cal-assistant/internal/usecase/eligibility"
	"medi-cal-assistant/internal/usecase/heuristics"
	"medi-cal-assistant/internal/usecase/orchestrator"

	"github.com/redis/go-redis/v9"
)

var _ device.PageBackend = (*rod.BrowserAdapter)(nil)

type Container struct {
	Config      *env.Config
	Logger      output.LoggerPort
	LLM         output.LLMPort
	Registry    *service.ToolRegistryImpl
	Transcripts output.TranscriptStore
	Devices     output.DeviceFactory
	Assistant   input.TurnProcessor

	redis *redis.Client
}

// NewContainer wires the assistant. Auxiliary services are connected here,
// before any session can start, and stay connected until Close.
func NewContainer(ctx context.Context, cfg *env.Config, version string) (*Container, error) {
	log, err := logger.NewLoggerAdapter(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	c := &Container{Config: cfg, Logger: log}

	if err := cfg.RequireModel(); err != nil {
		c.Close()
		return nil, err
	}

	if cfg.DeviceBackend == entity.ModeOS {
		backend, err := device.NewOSBackend(log)
		if err != nil {
			c.Close()
			return nil, err
		}
		_ = backend.Close()
	}

	targets := device.DefaultTargetTable()
	if cfg.TargetsFile != "" {
		targets, err = device.LoadTargetTable(cfg.TargetsFile)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to load targets: %w", err)
		}
		log.Info("Named targets loaded", "file", cfg.TargetsFile, "count", targets.Len())
	}

	c.Registry = service.NewToolRegistry(log)
	if err := connectServices(ctx, c.Registry, cfg.AuxServices, version, log); err != nil {
		c.Close()
		return nil, err
	}

	c.Transcripts = transcript.NopStore{}
	if cfg.RedisAddr != "" {
		client, err := transcript.Connect(ctx, transcript.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to connect transcript store: %w", err)
		}
		c.redis = client
		c.Transcripts = transcript.NewRedisStore(client, cfg.TranscriptTTL)
	}

	c.LLM = openrouter.NewOpenRouterAdapter(openrouter.Config{
		APIKey:  cfg.OpenRouterAPIKey,
		Model:   cfg.OpenRouterModel,
		BaseURL: cfg.LLMBaseURL,
		Logger:  log,
	})

	orch := orchestrator.New(c.LLM, c.Registry, log, orchestrator.Config{
		MaxTokens:     cfg.LLMMaxTokens,
		DisplayWidth:  cfg.DisplayWidth,
		DisplayHeight: cfg.DisplayHeight,
	})
	shortcut := eligibility.NewShortcut(c.Registry, cfg.MedicalHomeURL, log)
	c.Assistant = assistant.New(heuristics.Default(), shortcut, orch, c.Transcripts, log, prompts.SystemPrompt)
	c.Devices = NewDeviceFactory(cfg, targets, log)

	return c, nil
}

// connectServices registers every configured service. A service that fails
// to start is logged and skipped; its tools are simply not offered.
func connectServices(ctx context.Context, registry *service.ToolRegistryImpl, raw, version string, log output.LoggerPort) error {
	services, err := mcp.ParseServices(raw)
	if err != nil {
		return &env.ConfigError{Key: "AUX_SERVICES", Value: raw, Err: err}
	}
	for id, addr := range services {
		conn := mcp.NewConnector(addr, version, log.WithField("service", id))
		if err := registry.Connect(ctx, id, conn); err != nil {
			log.Warn("Auxiliary service unavailable", "service", id, "addr", addr, "error", err)
			_ = conn.Close()
		}
	}
	return nil
}

// NewDeviceFactory opens a fresh backend and facade for every connection.
func NewDeviceFactory(cfg *env.Config, targets *device.TargetTable, log output.LoggerPort) output.DeviceFactory {
	devCfg := device.Config{Mode: cfg.DeviceBackend, Offset: cfg.ClickOffset, Debug: cfg.ClickDebug}
	return func(ctx context.Context) (output.DevicePort, error) {
		backend, err := openBackend(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return device.NewFacade(devCfg, backend, targets, log), nil
	}
}

func openBackend(ctx context.Context, cfg *env.Config, log output.LoggerPort) (device.Backend, error) {
	if cfg.DeviceBackend == entity.ModeOS {
		return device.NewOSBackend(log)
	}

	browserCfg := rod.DefaultConfig()
	browserCfg.Headless = cfg.BrowserHeadless
	browserCfg.Width = cfg.DisplayWidth
	browserCfg.Height = cfg.DisplayHeight
	browser, err := rod.NewBrowserAdapter(ctx, browserCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", device.ErrBackendUnavailable, err)
	}
	return browser, nil
}

func (c *Container) Close() error {
	var errs []error
	if c.Registry != nil {
		errs = append(errs, c.Registry.Close())
	}
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}
	if c.Logger != nil {
		errs = append(errs, c.Logger.Close())
	}
	return errors.Join(errs...)
}
