package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"what-to-watch/internal/api"
	"what-to-watch/internal/config"
	grpcServer "what-to-watch/internal/grpc"
	"what-to-watch/internal/logger"
	"what-to-watch/internal/service"
	"what-to-watch/internal/store"
	"what-to-watch/internal/telemetry"
	"what-to-watch/internal/validation"
	"what-to-watch/pkg/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("what-to-watch stopped with error")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdownTracer, err := telemetry.InitTracer(cfg.Telemetry.ServiceName, os.Stdout, log)
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				log.Error().Err(err).Msg("Failed to shut down tracer")
			}
		}()
	}

	stores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close store")
		}
	}()

	revoker, closeRevoker, err := newRevoker(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRevoker()

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("init token manager: %w", err)
	}

	services := service.New(stores, auth.NewPasswordHasher(cfg.Auth.BcryptCost), service.Options{
		PromoFilmID:      cfg.Films.PromoID,
		DefaultFilmLimit: cfg.Films.DefaultLimit,
		CommentLimit:     cfg.Films.CommentLimit,
	}, log)

	router := api.NewRouter(api.RouterConfig{
		Logger:         log,
		Tokens:         tokens,
		Revoker:        revoker,
		Validator:      validation.New(),
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
	}, services)

	var handler http.Handler = router
	if cfg.Telemetry.Enabled {
		handler = otelhttp.NewHandler(router, cfg.Telemetry.ServiceName)
	}

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var grpcSrv *grpcServer.Server
	if cfg.GRPC.Port > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
		if err != nil {
			return fmt.Errorf("listen for gRPC on %d: %w", cfg.GRPC.Port, err)
		}
		grpcSrv = grpcServer.NewServer(stores, log)
		go grpcSrv.Watch(ctx, cfg.GRPC.HealthInterval)
		go func() {
			log.Info().Int("port", cfg.GRPC.Port).Msg("gRPC health server starting")
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("Server failed, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	} else {
		log.Info().Msg("HTTP server gracefully stopped")
	}
	if grpcSrv != nil {
		grpcSrv.Stop()
		log.Info().Msg("gRPC server gracefully stopped")
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store.Stores, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		return store.NewMemory(log), nil
	}

	db, err := store.Connect(ctx, cfg.Storage.DSN, store.PoolConfig{
		MaxOpenConns:    cfg.Storage.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Connected to PostgreSQL")

	if cfg.Storage.Migrate {
		if err := store.Migrate(db, log); err != nil {
			db.Close()
			return nil, err
		}
	}
	return store.NewPostgres(db, log), nil
}

// newRevoker uses Redis when an address is configured, process memory otherwise.
func newRevoker(ctx context.Context, cfg *config.Config, log zerolog.Logger) (auth.Revoker, func(), error) {
	if cfg.Redis.Address == "" {
		return auth.NewMemoryRevoker(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Address, err)
	}
	log.Info().Str("address", cfg.Redis.Address).Msg("Token revocations stored in Redis")

	return auth.NewRedisRevoker(client), func() {
		if err := client.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis client")
		}
	}, nil
}
