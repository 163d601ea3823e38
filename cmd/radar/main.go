// Package main is the entry point for the radar client.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/guildradar/core/internal/adapters/cache"
	"github.com/guildradar/core/internal/adapters/clients"
	"github.com/guildradar/core/internal/adapters/radarapi"
	"github.com/guildradar/core/internal/app"
	"github.com/guildradar/core/internal/data"
	"github.com/guildradar/core/internal/domain"
	"github.com/guildradar/core/internal/events"
	"github.com/guildradar/core/internal/platform/config"
	"github.com/guildradar/core/internal/platform/logging"
	"github.com/guildradar/core/internal/platform/telemetry"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD)"
var (
	// Version is the semantic version of the client.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	slog.SetDefault(logger)

	logger.Info("starting radar client",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}

	// 5. Create HTTP client for the platform API
	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.API.BaseURL,
		ServiceName: cfg.API.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       cfg.Client.Retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("creating HTTP client: %w", err)
	}

	// 6. Wire the data layer: remote source, local cache, repository
	remote := radarapi.NewRemoteDataSource(httpClient, logger)
	store := cache.NewMemory(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	local := cache.NewLocalDataSource(store, cfg.Cache.TTL)
	repo := data.NewRepository(remote, local, metrics, logger)

	// 7. Event bus and session
	bus := events.NewBus(logger)
	session := app.NewSession(cfg.Auth.Token, repo, bus, logger)

	if !session.LoggedIn() {
		return fmt.Errorf("no credential configured: set APP_AUTH_TOKEN")
	}

	// 8. Presentation state machines
	userModel := app.NewUserModel(repo, session, bus, logger)
	defer userModel.Close()

	mapModel := app.NewMapModel(ctx, repo, session, bus, cfg.Refresh.Interval, logger)
	defer mapModel.Close()

	// 9. Initial fetch cycle
	userModel.Load(ctx)
	mapModel.ProcessIntent(ctx, app.LoadUsers{})

	reportState(logger, mapModel.State(), userModel.State(), domain.Distance(cfg.Refresh.NearbyRadius))

	// 10. Background refresh until interrupted
	mapModel.StartPeriodicRefresh(ctx)
	defer mapModel.StopPeriodicRefresh()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("received shutdown signal", slog.String("signal", sig.String()))

	return nil
}

// reportState logs a one-line view of both screens after the initial fetch.
func reportState(logger *slog.Logger, mapState app.MapState, userState app.UserState, radius domain.Distance) {
	if mapState.Phase == app.PhaseError {
		logger.Warn("map load failed", slog.String("message", mapState.Message))
	} else {
		logger.Info("map loaded",
			slog.Int("visible_users", len(mapState.Users)),
			slog.Int("nearby_users", countNearby(userState.CurrentUser, mapState.Users, radius)),
		)
	}

	if userState.Phase == app.PhaseError {
		logger.Warn("profile load failed", slog.String("message", userState.Message))
		return
	}

	if userState.CurrentUser != nil {
		logger.Info("profile loaded",
			slog.String("username", userState.CurrentUser.DisplayName()),
			slog.Int("guilds", len(userState.Guilds)),
		)
	}
}

// countNearby counts users within radius of the viewer's last location.
func countNearby(viewer *domain.User, users []domain.User, radius domain.Distance) int {
	if viewer == nil {
		return 0
	}

	var count int
	for _, user := range users {
		if user.ID != viewer.ID && viewer.IsNearby(user, radius) {
			count++
		}
	}

	return count
}
