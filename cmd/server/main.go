package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/networth-backend/internal/adapter/grpc"
	"github.com/simaogato/networth-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/networth-backend/internal/config"
	"github.com/simaogato/networth-backend/internal/logger"
	"github.com/simaogato/networth-backend/internal/usecase/forecast"
	"github.com/simaogato/networth-backend/internal/usecase/seeder"
	"github.com/simaogato/networth-backend/internal/usecase/valuation"
)

const dbConnectTimeout = 30 * time.Second

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		// logger is not configured yet
		bootLog := logger.New(logger.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	// 2. Setup Database
	ctx, cancel := context.WithTimeout(context.Background(), dbConnectTimeout)
	db, err := postgres.NewDB(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// 3. Initialize Repositories (Postgres)
	snapshotRepo := postgres.NewSnapshotRepository(db)
	assetRepo := postgres.NewAssetRepository(db)
	settingsRepo := postgres.NewUserSettingsRepository(db)
	exchangeRateRepo := postgres.NewExchangeRateRepository(db)

	// 4. Initialize Services (Use Cases)
	valuationService := valuation.NewValuationService(assetRepo, settingsRepo, exchangeRateRepo, log)
	parameterSeeder := seeder.NewParameterSeeder(cfg.DefaultInflationPercent)
	forecastService := forecast.NewForecastService(snapshotRepo, assetRepo, settingsRepo, valuationService, parameterSeeder, log)

	// 5. Start gRPC Server
	if cfg.APIToken == "" {
		log.Warn().Msg("API_TOKEN is not set, requests are not authenticated")
	}

	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(log),
			grpcadapter.AuthInterceptor(cfg.APIToken),
		),
	)

	grpcadapter.RegisterForecastServiceServer(grpcServer, grpcadapter.NewServer(forecastService, valuationService))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("Failed to listen")
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("Failed to serve gRPC server")
		}
	}()

	// Graceful shutdown
	waitForShutdown(grpcServer, log)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(grpcServer *grpclib.Server, log zerolog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully")

	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")
}
