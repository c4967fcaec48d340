package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/adapters/file"
	"github.com/aretw0/waypoint/internal/config"
	"github.com/aretw0/waypoint/pkg/adapters/llm"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/adapters/redis"
	"github.com/aretw0/waypoint/pkg/adapters/sqlstore"
	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/extract"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/aretw0/waypoint/pkg/persistence/middleware"
	"github.com/aretw0/waypoint/pkg/ports"
)

// Stack is a fully wired client plus the resources it owns.
type Stack struct {
	Client  *waypoint.Client
	Metrics *observability.Metrics
	Config  *config.Config

	closers []func() error
}

// Close releases stores and connections.
func (s *Stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

// Build wires the client described by cfg.
func Build(cfg *config.Config, logger *slog.Logger) (*Stack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	s := &Stack{Config: cfg, Metrics: observability.NewMetrics()}
	cat := catalog.Default()

	opts := []waypoint.Option{
		waypoint.WithLogger(logger),
		waypoint.WithCatalog(cat),
		waypoint.WithMode(domain.Mode(cfg.Mode)),
		waypoint.WithDomain(cfg.Domain),
		waypoint.WithClarifyTolerance(cfg.ClarifyTolerance),
		waypoint.WithTopicDetector(extract.NewKeywords(cat)),
		waypoint.WithLifecycleHooks(observability.Combine(s.Metrics.Hooks(), observability.LogHooks(logger))),
	}

	store, locker, err := s.conversationStore(cfg, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	opts = append(opts, waypoint.WithConversationStore(store))
	if locker != nil {
		opts = append(opts, waypoint.WithLocker(locker))
	}

	activities, err := s.activityStore(cfg, logger)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	opts = append(opts, waypoint.WithActivityStore(activities))

	rules := extract.NewRules(cat, extract.WithRulesLogger(logger))
	if cfg.OpenAI.Enabled {
		model := llm.New(llm.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
		}, cat, llm.WithLogger(logger))
		opts = append(opts, waypoint.WithExtractor(extract.NewFailback(model, rules)))
	} else {
		opts = append(opts, waypoint.WithExtractor(rules))
	}

	client, err := waypoint.New(opts...)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.Client = client
	return s, nil
}

func (s *Stack) conversationStore(cfg *config.Config, logger *slog.Logger) (ports.ConversationStore, ports.DistributedLocker, error) {
	var store ports.ConversationStore
	var locker ports.DistributedLocker

	switch cfg.Store.Backend {
	case "memory":
		store = memory.NewStore()
	case "file":
		store = file.New(cfg.Store.Path)
	case "redis":
		r := redis.New(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB,
			redis.WithTTL(cfg.Store.Redis.TTL),
			redis.WithPrefix(cfg.Store.Redis.Prefix))
		s.closers = append(s.closers, r.Close)
		store = r
		locker = redis.NewLocker(r.Client(), cfg.Store.Redis.Prefix)
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	var mws []middleware.Middleware
	if cfg.Store.MaskPII {
		pii, err := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
		if err != nil {
			return nil, nil, err
		}
		mws = append(mws, pii)
	}
	if cfg.Store.EncryptionKey != "" {
		key, err := middleware.ParseKey(cfg.Store.EncryptionKey)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid store.encryption_key: %w", err)
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, nil, err
		}
		mws = append(mws, enc)
	}
	logger.Debug("Conversation store ready", "backend", cfg.Store.Backend, "middlewares", len(mws))
	return middleware.Chain(store, mws...), locker, nil
}

func (s *Stack) activityStore(cfg *config.Config, logger *slog.Logger) (ports.ActivityStore, error) {
	switch cfg.Activities.Backend {
	case "memory":
		return memory.NewActivityStore(), nil
	case "sqlite":
		st, err := sqlstore.OpenSQLite(cfg.Activities.DSN, sqlstore.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, st.Close)
		return st, nil
	case "postgres":
		st, err := sqlstore.OpenPostgres(cfg.Activities.DSN, sqlstore.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, st.Close)
		return st, nil
	}
	return nil, fmt.Errorf("unknown activities backend %q", cfg.Activities.Backend)
}
