package cli

import (
	"context"
	"fmt"

	"ui_resolver/application/finder"
	"ui_resolver/application/repository"
	"ui_resolver/application/resolver"
	"ui_resolver/domain/interfaces"
	"ui_resolver/infrastructure/ai"
	"ui_resolver/infrastructure/config"
	"ui_resolver/infrastructure/security"
	"ui_resolver/infrastructure/storage"

	"github.com/sirupsen/logrus"
)

// App holds the wired resolver stack shared by all commands
type App struct {
	cfg    *config.Config
	logger *logrus.Logger
	repo   *repository.ObjectRepository
	engine *resolver.Engine
	finder *finder.Service
}

// NewApp - wires storage, repository, engine and (optionally) the healer
func NewApp(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *App {
	store := storage.NewDefinitionStore(cfg.Repository.Dir)
	repo := repository.NewObjectRepository(store, storage.NewMemoryCache(), logger)

	healer := newHealer(ctx, cfg, logger)
	engine := resolver.NewEngine(resolver.Options{
		DefaultTimeout: cfg.Wait.DefaultTimeout,
		PollInterval:   cfg.Wait.PollInterval,
		MaxDepth:       cfg.Resolver.MaxDepth,
		SelfHealing:    healer != nil,
	}, healer, logger)

	return &App{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		engine: engine,
		finder: finder.NewService(repo, engine),
	}
}

// newHealer returns nil when self-healing is off or cannot be set up.
// A misconfigured model never prevents lookups from running.
func newHealer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) interfaces.SelfHealer {
	if !cfg.SelfHealing.Enabled {
		return nil
	}

	model, err := newSelectorModel(ctx, cfg.SelfHealing, logger)
	if err != nil {
		logger.Warnf("Self-healing disabled: %v", err)
		return nil
	}

	logger.Infof("Self-healing enabled (provider=%s)", cfg.SelfHealing.Provider)
	return resolver.NewModelHealer(model, security.NewSelectorGuard(logger), resolver.HealerOptions{
		Timeout:       cfg.SelfHealing.Timeout,
		PollInterval:  cfg.Wait.PollInterval,
		SnapshotLimit: cfg.SelfHealing.SnapshotLimit,
	}, logger)
}

func newSelectorModel(ctx context.Context, cfg config.SelfHealingConfig, logger *logrus.Logger) (interfaces.SelectorModel, error) {
	switch cfg.Provider {
	case "openai":
		return ai.NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.RequestTimeout, logger)
	case "gemini":
		return ai.NewGeminiClient(ctx, cfg.APIKey, cfg.Model, logger)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
