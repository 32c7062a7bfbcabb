package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/research-doc-backend/config"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/assistant"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/auth"
	authmw "github.com/GoSim-25-26J-441/research-doc-backend/internal/auth/middleware"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/bootstrap"
	cronjob "github.com/GoSim-25-26J-441/research-doc-backend/internal/cron"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/documents"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/editor"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/export"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/generator"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/llm"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/logging"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/observability"
	projectshttp "github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/http"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/repository"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/projects/service"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/storage/objectstore"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/storage/postgres"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/templates"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/users"
)

const serviceName = "research-doc-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.App.Environment)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrap.SetGinMode(cfg.App.Environment)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: postgres.DSN(&cfg.Database)})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := bootstrap.Migrate(ctx, pool, logger); err != nil {
		return err
	}

	sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("analysis cache disabled", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	authenticate, err := authenticator(ctx, cfg, logger)
	if err != nil {
		return err
	}

	registry := templates.Default()
	gateway := llm.NewGateway(llm.GatewayConfig{
		BaseURL: cfg.LLM.GatewayURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
	}, metrics)

	analyzerOpts := []documents.Option{documents.WithMaxTokens(cfg.LLM.AnalysisMaxTokens)}
	if rdb != nil {
		analyzerOpts = append(analyzerOpts, documents.WithCache(documents.NewRedisCache(rdb, cfg.Redis.AnalysisTTL)))
	}
	analyzer := documents.NewAnalyzer(gateway, registry, analyzerOpts...)

	projectRepo := repository.NewProjectRepository(sqlDB)
	sectionRepo := repository.NewSectionRepository(sqlDB)

	sessions := editor.NewRegistry(repository.NewEditorStorage(projectRepo, sectionRepo), editor.Options{
		Debounce: cfg.Editor.Debounce,
		Metrics:  metrics,
	})

	projectSvc := service.NewProjectService(
		projectRepo,
		generator.New(gateway, registry, cfg.LLM.GenerationMaxTokens, metrics),
		sessions,
	)

	deps := projectshttp.Deps{
		Projects:  projectSvc,
		Sessions:  sessions,
		Analyzer:  analyzer,
		Assistant: assistant.New(gateway, cfg.LLM.AssistantMaxTokens),
		Templates: registry,
		Renderer:  export.NewRenderer(),
	}
	if cfg.Export.ArchiveEnabled() {
		archive, err := objectstore.NewS3Archive(ctx, cfg.Export)
		if err != nil {
			return fmt.Errorf("export archive: %w", err)
		}
		deps.Archive = archive
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	deps.AILimit = limiter.Middleware(auth.UserDBID)

	scheduler := cronjob.NewScheduler(sessions, cfg.Editor.IdleTTL, logger)
	scheduler.PruneLimiter(limiter)
	if err := scheduler.Start(); err != nil {
		return err
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
		DB:             pool,
		Redis:          rdb,
		Gatherer:       reg,
		Authenticate:   authenticate,
		Users:          users.NewRepo(pool),
		Features:       []bootstrap.Registrar{projectshttp.New(deps)},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)
	if err := sessions.FlushAll(shutdownCtx); err != nil {
		logger.Error("unsaved edits at shutdown", zap.Error(err))
	}
	return nil
}

// authenticator verifies Firebase ID tokens when credentials are
// configured. Otherwise it trusts the X-User-Id header, which Validate
// already refuses in production.
func authenticator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (gin.HandlerFunc, error) {
	if cfg.Firebase.CredentialsPath == "" {
		logger.Warn("firebase not configured, using X-User-Id header auth")
		return auth.OptionalUser(), nil
	}
	client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
	if err != nil {
		return nil, err
	}
	return authmw.FirebaseAuthMiddleware(client), nil
}
