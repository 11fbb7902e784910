// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Firmdeck Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/firmdeck/firmdeck/internal/access"
	"github.com/firmdeck/firmdeck/internal/auth"
	authpg "github.com/firmdeck/firmdeck/internal/auth/postgres"
	"github.com/firmdeck/firmdeck/internal/company"
	companypg "github.com/firmdeck/firmdeck/internal/company/postgres"
	"github.com/firmdeck/firmdeck/internal/config"
	"github.com/firmdeck/firmdeck/internal/logging"
	"github.com/firmdeck/firmdeck/internal/observability"
	"github.com/firmdeck/firmdeck/internal/store"
	"github.com/firmdeck/firmdeck/internal/web"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API server, serving signup, signin, profile,
and company endpoints, plus a separate metrics/health listener.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("listen-addr", config.DefaultListenAddr, "API listen address")
	cmd.Flags().String("metrics-addr", config.DefaultMetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("database-url", "", "PostgreSQL connection string (default: DATABASE_URL env)")
	cmd.Flags().String("jwt-secret", "", "session token signing secret (default: FIRMDECK_JWT_SECRET env)")
	cmd.Flags().Duration("token-ttl", config.DefaultTokenTTL, "session token validity window")
	cmd.Flags().String("log-format", config.DefaultLogFormat, "log format (json or text)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logging.SetDefault("firmdeck", version, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Process-wide state: signing key and role taxonomy, built once here
	// and passed explicitly into the services that need them.
	tokens, err := auth.NewTokenService([]byte(cfg.JWTSecret), cfg.TokenTTL)
	if err != nil {
		return err
	}
	checker := access.NewChecker()

	users := authpg.NewUserRepository(pool)
	companies := companypg.NewCompanyRepository(pool)

	authSvc, err := auth.NewService(users, auth.NewArgon2idHasher(), tokens)
	if err != nil {
		return err
	}
	guard, err := auth.NewGuard(users, tokens)
	if err != nil {
		return err
	}
	policy, err := company.NewPolicy(checker)
	if err != nil {
		return err
	}
	companySvc, err := company.NewService(companies, policy)
	if err != nil {
		return err
	}

	var metrics *observability.Metrics
	var obsErrCh <-chan error
	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			return pool.Ping(ctx) == nil
		})
		obsErrCh, err = obsServer.Start()
		if err != nil {
			return err
		}
		metrics = obsServer.Metrics()
	}

	apiServer, err := web.NewServer(cfg.ListenAddr, authSvc, companySvc, guard, metrics)
	if err != nil {
		return err
	}
	apiErrCh, err := apiServer.Start()
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case serveErr := <-apiErrCh:
		if serveErr != nil {
			return oops.Code("SERVE_FAILED").Wrap(serveErr)
		}
	case obsErr := <-obsErrCh:
		if obsErr != nil {
			return oops.Code("SERVE_FAILED").Wrap(obsErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		return err
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
