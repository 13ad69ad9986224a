package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"ledger-utility-service/internal/config"
	"ledger-utility-service/internal/crypto"
	"ledger-utility-service/internal/handlers"
	"ledger-utility-service/internal/server"
	"ledger-utility-service/internal/token"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	configPath := pflag.StringP("config", "c", "config.yaml", "path to the YAML configuration file")
	pflag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatal().Caller().Err(err).Msg("server failed")
	}
}

func run(configPath string) error {
	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Server.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().
			Str("config", configPath).
			Int("port", cfg.Server.Port).
			Dur("read_timeout", cfg.ReadTimeout).
			Dur("write_timeout", cfg.WriteTimeout).
			Dur("idle_timeout", cfg.IdleTimeout).
			Strs("cors_origins", cfg.CORS.AllowedOrigins).
			Bool("metrics", cfg.MetricsEnabled).
			Msg("configuration loaded")
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Initialize services
	cryptoService := crypto.NewCryptoService(cfg.Server.Verbose)
	tokenService := token.NewTokenService(cfg.Server.Verbose)

	// Initialize handlers and server
	handler := handlers.NewHandler(cryptoService, tokenService, cfg.Server.Verbose)
	srv := server.NewServer(handler, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info().Int("port", cfg.Server.Port).Msg("starting ledger utility service")
		return srv.Start()
	})

	group.Go(func() error {
		<-ctx.Done()
		return srv.Shutdown(context.Background())
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}
