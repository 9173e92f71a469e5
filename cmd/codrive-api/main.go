// README: Entry point; loads config, wires stores, routing and services, serves the HTTP API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"codrive/internal/config"
	httptransport "codrive/internal/http"
	"codrive/internal/infra"
	"codrive/internal/logging"
	"codrive/internal/maps"
	"codrive/internal/modules/codrive"
	"codrive/internal/modules/ledger"
	"codrive/internal/modules/location"
	"codrive/internal/modules/pricing"
	"codrive/internal/modules/ride"
	"codrive/internal/modules/route"
	"codrive/internal/types"
)

func main() {
	if err := run(); err != nil {
		slog.Error("codrive-api stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	logger := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		return errors.New("CODRIVE_FIREBASE_PROJECT_ID is required")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		return err
	}

	pool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	if cfg.DB.Migrate {
		if err := infra.Migrate(ctx, pool, logger); err != nil {
			return err
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer redisClient.Close()
	}

	var locker infra.Locker = infra.NewLocalLocker()
	if redisClient != nil {
		locker = infra.NewRedisLocker(redisClient, cfg.Redis.LockTTL)
	} else {
		logger.Warn("no redis configured; ride locks are process-local, run a single instance")
	}

	router, geocoder, err := newRouting(cfg.Routing, redisClient, logger)
	if err != nil {
		return err
	}

	tx := infra.NewTxManager(pool)
	planner := route.NewPlanner(route.NewRecalculator(router, cfg.Routing.Timeout, cfg.Routing.Provider))
	locations := location.NewService(location.NewStore(pool), geocoder)
	points := ledger.NewService(ledger.NewStore(pool))
	rideStore := ride.NewStore(pool)

	rides := ride.NewService(ride.Deps{
		Store:     rideStore,
		Locations: locations,
		Planner:   planner,
		Ledger:    points,
		Tx:        tx,
		Locker:    locker,
		Logger:    logger.With("module", "ride"),
		TimeZone:  cfg.TimeZone,
	})
	requests := codrive.NewService(codrive.Deps{
		Requests:  codrive.NewStore(pool),
		Rides:     rideStore,
		Locations: locations,
		Planner:   planner,
		Estimator: pricing.NewEstimator(cfg.Pricing.MetersPerPoint),
		Ledger:    points,
		Tx:        tx,
		Locker:    locker,
		Logger:    logger.With("module", "codrive"),
	})

	admins := make([]types.ID, 0, len(cfg.AdminUIDs))
	for _, uid := range cfg.AdminUIDs {
		admins = append(admins, types.ID(uid))
	}
	bonuses := ledger.NewBonusService(ledger.NewStore(pool), points, tx, admins)

	gin.SetMode(gin.ReleaseMode)
	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Rides:    rides,
		Views:    requests,
		Requests: requests,
		Points:   points,
		Bonuses:  bonuses,
		Verifier: verifier,
		Logger:   logger,
		Health:   pool.Ping,
	})

	server := httptransport.NewServer(cfg.HTTP.Addr, handler)
	return httptransport.Serve(ctx, server, cfg.HTTP.ShutdownTimeout, logger)
}

// newRouting builds the configured routing provider, memoised in Redis when available.
// Geocoding always goes through Google Maps when a key is configured.
func newRouting(cfg config.RoutingConfig, redisClient *redis.Client, logger *slog.Logger) (maps.Router, maps.Geocoder, error) {
	var geocoder maps.Geocoder = maps.DisabledGeocoder{}
	var router maps.Router

	if cfg.MapsAPIKey != "" {
		client, err := maps.NewGoogleClient(cfg.MapsAPIKey)
		if err != nil {
			return nil, nil, err
		}
		geocoder = maps.NewGoogleGeocoder(client)
		if cfg.Provider == config.ProviderGoogle {
			router = maps.NewGoogleRouter(client)
		}
	} else {
		logger.Warn("no maps api key; only stored addresses resolve")
	}

	switch cfg.Provider {
	case config.ProviderOSRM:
		router = maps.NewOSRMRouter(cfg.OSRMURL)
	case config.ProviderStraight:
		router = maps.NewStraightLineRouter(cfg.StraightSpeed)
	}

	if redisClient != nil && cfg.CacheTTL > 0 {
		router = maps.NewCachedRouter(router, redisClient, cfg.CacheTTL, logger)
	}
	logger.Info("routing configured", "provider", cfg.Provider, "cache", redisClient != nil && cfg.CacheTTL > 0)
	return router, geocoder, nil
}
