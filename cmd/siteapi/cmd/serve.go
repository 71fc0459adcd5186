package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/assets"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/auth"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/config"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/content"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/bunx"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/db/models"
	sitemiddleware "github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/middleware"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/mutation"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/repository"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/revalidate"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/server"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the site API server",
	Long:  `Starts the HTTP server with the public content API and the admin console routes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		shutdownTelemetry, err := telemetry.Init(ctx, cfg.Observability)
		if err != nil {
			return fmt.Errorf("failed to initialize telemetry: %w", err)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				log.Printf("telemetry shutdown: %v", err)
			}
		}()

		// Connect to database
		db, err := bunx.NewDB(ctx, cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		log.Printf("Connected to database")

		// Initialize repositories
		userRepo := repository.NewBunUserRepository(db)
		adminRepo := repository.NewBunAdministratorRepository(db)
		sessionRepo := repository.NewBunSessionRepository(db)
		contentRepo := repository.NewBunContentRepository(db)
		renderCacheRepo := repository.NewBunRenderCacheRepository(db)
		records := mutation.Records{
			Testimonials: repository.NewBunRecordRepository[models.Testimonial](db),
			Videos:       repository.NewBunRecordRepository[models.Video](db),
			ProcessSteps: repository.NewBunRecordRepository[models.ProcessStep](db),
			Services:     repository.NewBunRecordRepository[models.Service](db),
			Projects:     repository.NewBunRecordRepository[models.Project](db),
		}

		siteMetrics := telemetry.Site()
		serverMetrics, err := telemetry.NewServerMetrics()
		if err != nil {
			return fmt.Errorf("failed to create server metrics: %w", err)
		}

		sessions := auth.NewSessionResolver(userRepo, sessionRepo, cfg.Session.Duration)
		cookie := auth.SessionCookie{Name: cfg.Session.CookieName, Secure: cfg.Session.Secure}
		permissions, err := auth.NewPermissions()
		if err != nil {
			return fmt.Errorf("failed to load permissions: %w", err)
		}
		guard := sitemiddleware.NewGuard(sitemiddleware.GuardConfig{
			ProtectedPrefix: cfg.Routes.ProtectedPrefix,
			LoginPath:       cfg.Routes.LoginPath,
			AdminHome:       cfg.Routes.AdminHome,
			PublicHome:      cfg.Routes.PublicHome,
			Timeout:         cfg.Session.GuardTimeout,
		}, sessions, auth.NewProfileStore(adminRepo), cookie, siteMetrics)

		validator, err := content.NewSchemaValidator(0)
		if err != nil {
			return fmt.Errorf("failed to load section schemas: %w", err)
		}
		store := content.NewStore(contentRepo, validator)

		pageCache, closeCache, err := openPageCache(ctx, cfg.Cache, renderCacheRepo)
		if err != nil {
			return err
		}
		defer closeCache()

		pipeline := mutation.NewPipeline(store, records,
			mutation.WithRegistry(mutation.Registry{
				AdminPrefix:  cfg.Routes.ProtectedPrefix,
				PublicPrefix: mutation.DefaultRegistry.PublicPrefix,
			}),
			mutation.WithHook(mutation.InvalidateHook(revalidate.NewInvalidator(pageCache))),
			mutation.WithMetrics(siteMetrics),
		)

		var assetService *assets.Service
		if cfg.Blob.Enabled() {
			blobs, err := assets.NewMinIOStore(cfg.Blob)
			if err != nil {
				return fmt.Errorf("failed to create blob store: %w", err)
			}
			if err := blobs.EnsureBucket(ctx, cfg.Blob.Region); err != nil {
				return fmt.Errorf("failed to prepare asset bucket: %w", err)
			}
			assetService = assets.NewService(blobs,
				assets.WithMaxBytes(cfg.Blob.MaxUploadBytes),
				assets.WithMetrics(siteMetrics),
			)
			log.Printf("Asset uploads enabled (bucket %s)", cfg.Blob.Bucket)
		} else {
			log.Printf("WARNING: BLOB_ENDPOINT not set, asset uploads disabled")
		}

		corsOptions := server.DefaultCORSOptions(cfg.AllowedOrigins)
		router := server.NewRouter(server.RouterOptions{
			Routes:         cfg.Routes,
			Guard:          guard,
			Sessions:       sessions,
			Cookie:         cookie,
			Permissions:    permissions,
			Content:        store,
			Records:        records,
			Pipeline:       pipeline,
			Assets:         assetService,
			MaxUploadBytes: cfg.Blob.MaxUploadBytes,
			PageCache:      pageCache,
			CacheTTL:       cfg.Cache.TTL,
			Metrics:        serverMetrics,
			CORSOptions:    &corsOptions,
			HealthHandler:  healthHandler(db),
		})

		srv := &http.Server{
			Addr:              cfg.ServerAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		cleanupCtx, stopCleanup := context.WithCancel(context.Background())
		defer stopCleanup()
		go runCleanup(cleanupCtx, cfg.Session.CleanupInterval, sessionRepo, renderCacheRepo)

		serverErr := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			log.Printf("Public API: %s%s", cfg.ServerURL, mutation.DefaultRegistry.PublicPrefix)
			log.Printf("Admin console: %s%s", cfg.ServerURL, cfg.Routes.ProtectedPrefix)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
			close(serverErr)
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err, ok := <-serverErr:
			if ok && err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil

		case sig := <-shutdown:
			log.Printf("Received signal %v, shutting down gracefully", sig)

			// Graceful shutdown with timeout
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("Server stopped")
			return nil
		}
	},
}

// openPageCache selects the render cache backend. The returned close
// function is always safe to call.
func openPageCache(ctx context.Context, cc config.CacheConfig, repo repository.RenderCacheRepository) (revalidate.PageCache, func(), error) {
	noop := func() {}
	switch cc.Backend {
	case config.CacheBackendNone:
		log.Printf("Render cache disabled")
		return nil, noop, nil
	case config.CacheBackendRedis:
		rc, err := revalidate.NewRedisCache(ctx, cc.RedisURL, cc.TTL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to connect to render cache: %w", err)
		}
		log.Printf("Render cache: redis")
		return rc, closer(rc), nil
	default:
		log.Printf("Render cache: database")
		return revalidate.NewDBCache(repo), noop, nil
	}
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}
}

// runCleanup purges expired sessions and render cache rows until ctx ends.
func runCleanup(ctx context.Context, interval time.Duration, sessions repository.SessionRepository, renders repository.RenderCacheRepository) {
	if interval <= 0 {
		log.Printf("Session cleanup disabled")
		return
	}
	cleanup := func() {
		if n, err := sessions.DeleteExpired(ctx); err != nil {
			log.Printf("WARNING: session cleanup failed: %v", err)
		} else if n > 0 {
			log.Printf("Removed %d expired sessions", n)
		}
		// Tombstones outlive their expiry by one interval so a slow render
		// that started before the invalidation still finds them.
		if n, err := renders.DeleteExpired(ctx, time.Now().Add(-interval)); err != nil {
			log.Printf("WARNING: render cache cleanup failed: %v", err)
		} else if n > 0 {
			log.Printf("Removed %d expired render cache rows", n)
		}
	}

	cleanup()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanup()
		}
	}
}

func healthHandler(db *bun.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
