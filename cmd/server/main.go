// Copyright 2026 The GymFit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gymfit/gymfit/internal/audit"
	"github.com/gymfit/gymfit/internal/authz"
	"github.com/gymfit/gymfit/internal/config"
	"github.com/gymfit/gymfit/internal/identity"
	"github.com/gymfit/gymfit/internal/observability/logger"
	"github.com/gymfit/gymfit/internal/observability/metrics"
	"github.com/gymfit/gymfit/internal/observability/tracing"
	"github.com/gymfit/gymfit/internal/plan"
	"github.com/gymfit/gymfit/internal/roster"
	"github.com/gymfit/gymfit/internal/session"
	"github.com/gymfit/gymfit/internal/store/postgres"
	"github.com/gymfit/gymfit/internal/store/redis"
	"github.com/gymfit/gymfit/internal/tenant"
	transportHTTP "github.com/gymfit/gymfit/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting gymfit tenant engine")

	// CLI commands
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if len(os.Args) > 1 && os.Args[1] == "bootstrap" {
		if err := runBootstrap(cfg); err != nil {
			fmt.Printf("Bootstrap failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	_, err = metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	// Initialize database
	db, err := postgres.New(ctx, databaseConfig(cfg))
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Initialize repositories
	planRepo := postgres.NewPlanRepository(db)
	tenantRepo := postgres.NewTenantRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Session store: Redis when configured, Postgres otherwise.
	var sessionStore session.Store
	if cfg.Redis.Addr != "" {
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			slog.Error("failed to connect to redis", logger.Error(err))
			os.Exit(1)
		}
		sessionStore = redis.NewSessionStore(client, cfg.Session.Lifetime)
		slog.Info("using redis session store")
	} else {
		sessionStore = postgres.NewSessionRepository(db)
	}

	// Plan catalog: loaded from the database, seeded by migrate.
	catalog, err := plan.Load(ctx, planRepo)
	if err != nil {
		slog.Warn("failed to load plan catalog from database, using builtin", logger.Error(err))
		catalog = plan.Builtin()
	}

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()
	passwordHasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)
	tokenCodec := session.NewTokenCodec([]byte(cfg.Session.SigningSecret), cfg.Session.Issuer, cfg.Session.Lifetime)

	// Initialize services
	resolver := tenant.NewResolver(tenantRepo)
	tenantService := tenant.NewService(tenantRepo, catalog, auditLogger)
	identityService := identity.NewService(userRepo, passwordHasher, auditLogger)
	authenticator := identity.NewAuthenticator(userRepo, passwordHasher, auditLogger)
	sessionManager := session.NewManager(sessionStore, tokenCodec, auditLogger, cfg.Session.Lifetime)
	rosterService := roster.NewService(userRepo, catalog, passwordHasher, auditLogger)
	gate := authz.NewGate(catalog, userRepo, userRepo)

	// Rate Limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Configure SameSite mode
	sameSite := http.SameSiteLaxMode
	switch cfg.Session.CookieSameSite {
	case "Strict":
		sameSite = http.SameSiteStrictMode
	case "None":
		sameSite = http.SameSiteNoneMode
	}

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		resolver,
		authenticator,
		sessionManager,
		identityService,
		tenantService,
		rosterService,
		gate,
		catalog,
		auditLogger,
		transportHTTP.SessionConfig{
			CookieName:     cfg.Session.CookieName,
			CookieDomain:   cfg.Session.CookieDomain,
			CookiePath:     cfg.Session.CookiePath,
			CookieSecure:   cfg.Session.CookieSecure,
			CookieHTTPOnly: cfg.Session.CookieHTTPOnly,
			CookieSameSite: sameSite,
			CookieMaxAge:   int(cfg.Session.Lifetime.Seconds()),
		},
	)

	// Create router
	router := transportHTTP.NewRouter(handler, rateLimiter)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start session cleanup goroutine
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := sessionManager.CleanupExpired(ctx); err != nil {
				slog.ErrorContext(ctx, "failed to cleanup expired sessions", logger.Error(err))
			}
		}
	}()

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func databaseConfig(cfg *config.Config) postgres.Config {
	return postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	}
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := postgres.New(ctx, databaseConfig(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying initial schema...")
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}

// runBootstrap provisions the first system operator, ENV driven. Running it
// again with the same email fails on the uniqueness constraint, which is
// the intended guard against accidental duplicates.
func runBootstrap(cfg *config.Config) error {
	email := os.Getenv("BOOTSTRAP_OPERATOR_EMAIL")
	password := os.Getenv("BOOTSTRAP_OPERATOR_PASSWORD")
	name := os.Getenv("BOOTSTRAP_OPERATOR_NAME")
	if email == "" || password == "" {
		return fmt.Errorf("BOOTSTRAP_OPERATOR_EMAIL and BOOTSTRAP_OPERATOR_PASSWORD are required")
	}
	if name == "" {
		name = "System Operator"
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, databaseConfig(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	auditLogger := audit.NewSlogLogger()
	passwordHasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)
	identityService := identity.NewService(userRepo, passwordHasher, auditLogger)

	operator, err := identityService.ProvisionUser(ctx, nil, name, email, identity.RoleSystemOperator, identity.Grants{})
	if err != nil {
		return fmt.Errorf("failed to provision operator: %w", err)
	}
	if err := identityService.AddPassword(ctx, operator.ID, password); err != nil {
		return fmt.Errorf("failed to set operator password: %w", err)
	}

	fmt.Printf("System operator %s provisioned.\n", email)
	return nil
}
