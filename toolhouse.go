package toolhouse

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/toolhouse/internal/logging"
	"github.com/aretw0/toolhouse/pkg/adapters/memory"
	"github.com/aretw0/toolhouse/pkg/adapters/redis"
	"github.com/aretw0/toolhouse/pkg/config"
	"github.com/aretw0/toolhouse/pkg/observability"
	"github.com/aretw0/toolhouse/pkg/ports"
	"github.com/aretw0/toolhouse/pkg/registry"
	"github.com/aretw0/toolhouse/pkg/runner"
	"github.com/aretw0/toolhouse/pkg/tools/dicetool"
	"github.com/aretw0/toolhouse/pkg/tools/github"
	"github.com/aretw0/toolhouse/pkg/tools/social"
	"github.com/aretw0/toolhouse/pkg/tools/websearch"
	"github.com/prometheus/client_golang/prometheus"
)

// Name is the server name announced to MCP clients.
const Name = "toolhouse"

// Version is set at build time via -ldflags.
var Version = "dev"

// Server is the assembled tool host: a registry with every enabled tool,
// wrapped in metrics, logging and input sanitising.
type Server struct {
	Registry     *registry.Registry
	Dice         *dicetool.Tool
	Capabilities config.Capabilities

	metrics  *observability.Metrics
	gatherer prometheus.Gatherer
	history  ports.HistoryStore
	logger   *slog.Logger
	client   *http.Client
}

// Option defines a functional option for configuring the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithHistoryStore injects a history store, bypassing the configured backend.
func WithHistoryStore(store ports.HistoryStore) Option {
	return func(s *Server) {
		s.history = store
	}
}

// WithHTTPClient sets the client used for outbound API calls.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Server) {
		s.client = client
	}
}

// WithMetricsRegistry registers collectors on reg instead of a fresh registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.gatherer = reg
		s.metrics = observability.NewMetrics(reg)
	}
}

// New builds a Server from cfg. Tools whose capability is missing are not
// registered at all.
func New(cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{Capabilities: cfg.Capabilities()}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.client == nil {
		s.client = &http.Client{Timeout: cfg.HTTP.Timeout}
	}
	if s.metrics == nil {
		reg := observability.NewRegistry()
		s.gatherer = reg
		s.metrics = observability.NewMetrics(reg)
	}
	if s.history == nil && s.Capabilities.History {
		store, err := openHistory(cfg.History)
		if err != nil {
			return nil, err
		}
		s.history = store
	}
	s.Capabilities.History = s.history != nil

	s.Registry = registry.NewRegistry()
	s.Registry.Use(
		s.metrics.Middleware(),
		runner.LoggingMiddleware(s.logger),
		runner.SanitizeMiddleware(s.logger, cfg.MaxInputSize),
	)

	diceOpts := []dicetool.Option{
		dicetool.WithObserver(s.metrics),
		dicetool.WithLogger(s.logger),
	}
	if s.history != nil {
		diceOpts = append(diceOpts, dicetool.WithHistory(s.history))
	}
	s.Dice = dicetool.New(diceOpts...)
	s.Dice.Register(s.Registry)

	if s.Capabilities.WebSearch {
		search := websearch.New(cfg.Tavily.APIKey).WithHTTPClient(s.client)
		if cfg.Tavily.BaseURL != "" {
			search.WithBaseURL(cfg.Tavily.BaseURL)
		}
		search.Register(s.Registry)
	}

	gh, err := github.New(
		github.WithToken(cfg.GitHub.Token),
		github.WithBaseURL(cfg.GitHub.BaseURL),
		github.WithHTTPClient(s.client),
	)
	if err != nil {
		return nil, err
	}
	gh.Register(s.Registry)

	social.New(social.NewClient(
		social.WithUnsplashKey(cfg.Social.UnsplashKey),
		social.WithEndpoints(cfg.Social.QuotableURL, cfg.Social.UnsplashURL, cfg.Social.PicsumURL),
		social.WithHTTPClient(s.client),
		social.WithLogger(s.logger),
	)).Register(s.Registry)

	s.logger.Debug("Tools registered", "count", len(s.Registry.List()), "history", s.Capabilities.History, "web_search", s.Capabilities.WebSearch)
	return s, nil
}

func openHistory(cfg config.HistoryConfig) (ports.HistoryStore, error) {
	switch cfg.Backend {
	case "memory":
		return memory.NewStore(cfg.Size), nil
	case "redis":
		prefix := cfg.Redis.Prefix
		if prefix == "" {
			prefix = redis.DefaultPrefix
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(prefix),
			redis.WithTTL(cfg.TTL),
			redis.WithCapacity(cfg.Size),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to redis history at %s: %w", cfg.Redis.Addr, err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
}

// MetricsHandler serves this server's Prometheus metrics.
func (s *Server) MetricsHandler() http.Handler {
	return observability.Handler(s.gatherer)
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// Close releases the history store.
func (s *Server) Close() error {
	if s.history == nil {
		return nil
	}
	if err := s.history.Close(); err != nil {
		return fmt.Errorf("failed to close history store: %w", err)
	}
	return nil
}
