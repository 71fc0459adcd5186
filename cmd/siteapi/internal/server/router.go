package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/assets"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/auth"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/config"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/content"
	sitemiddleware "github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/middleware"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/mutation"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/revalidate"
	"github.com/jonathanboda/PRECIOUS-INTERIORS-sub001/cmd/siteapi/internal/telemetry"
)

// RouterOptions controls the construction of the site HTTP router.
type RouterOptions struct {
	Routes      config.RoutesConfig
	Guard       *sitemiddleware.Guard
	Sessions    *auth.SessionResolver
	Cookie      auth.SessionCookie
	Permissions *auth.Permissions
	Content     *content.Store
	Records     mutation.Records
	Pipeline    *mutation.Pipeline
	// Assets is nil when blob storage is not configured; upload routes then answer 503.
	Assets         *assets.Service
	MaxUploadBytes int64
	// PageCache fronts the public read API when set.
	PageCache     revalidate.PageCache
	CacheTTL      time.Duration
	Metrics       *telemetry.ServerMetrics
	CORSOptions   *cors.Options
	Middleware    []func(http.Handler) http.Handler
	HealthHandler http.HandlerFunc
	ExtraRoutes   func(chi.Router)
}

// DefaultCORSOptions returns the shared development CORS policy for the console SPA.
func DefaultCORSOptions(origins []string) cors.Options {
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept", "X-Requested-With"},
		ExposedHeaders:   []string{"Location", revalidate.CacheStatusHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NewRouter assembles a chi.Router with shared middleware, the public read
// API and the guarded console.
func NewRouter(opts RouterOptions) chi.Router {
	r := chi.NewRouter()

	// Baseline middleware shared across entrypoints.
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	corsCfg := DefaultCORSOptions(nil)
	if opts.CORSOptions != nil {
		corsCfg = *opts.CORSOptions
	}
	r.Use(cors.Handler(corsCfg))

	for _, mw := range opts.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	healthHandler := opts.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}
	r.Get("/health", healthHandler)

	registry := mutation.DefaultRegistry
	if opts.Pipeline != nil {
		registry = opts.Pipeline.Registry()
	}

	if opts.Content != nil {
		r.Route(registry.PublicPrefix, func(r chi.Router) {
			r.Use(revalidate.ReadThrough(opts.PageCache, opts.CacheTTL))
			r.Get("/home", HandleHome(opts.Content, opts.Records))
			r.Get("/sections/{key}", HandleSection(opts.Content))
			for _, kind := range mutation.RecordKinds {
				r.Get("/"+kind.Slug(), HandleRecordList(opts.Records, kind))
			}
		})
	}

	if opts.Guard != nil {
		mountConsole(r, opts)
	} else {
		log.Println("WARNING: Skipping console routes - no route guard configured")
	}

	if opts.ExtraRoutes != nil {
		opts.ExtraRoutes(r)
	}

	return r
}

// mountConsole mounts every console route under the protected prefix behind the guard.
func mountConsole(r chi.Router, opts RouterOptions) {
	routes := opts.Routes
	prefix := strings.TrimSuffix(routes.ProtectedPrefix, "/")
	rel := func(path string) string {
		p := strings.TrimPrefix(path, prefix)
		if p == "" {
			return "/"
		}
		return p
	}

	r.Route(prefix, func(r chi.Router) {
		r.Use(opts.Guard.Middleware)

		r.Get(rel(routes.LoginPath), HandleLoginPage(routes))
		r.Post(rel(routes.LoginPath), HandleLogin(opts.Sessions, opts.Cookie, routes))
		r.Post("/logout", HandleLogout(opts.Sessions, opts.Cookie, routes))
		r.Get(rel(routes.AdminHome), HandleDashboard(opts.Content, opts.Records))

		r.Get("/sections", HandleAdminSections(opts.Content))
		r.Get("/sections/{key}", HandleAdminSection(opts.Content, opts.Permissions))
		r.Post("/sections/{key}", HandleSectionWrite(opts.Pipeline, opts.Permissions))

		r.Post("/assets", HandleAssetUpload(opts.Assets, opts.Permissions, opts.MaxUploadBytes))
		r.Delete("/assets/{key}", HandleAssetDelete(opts.Assets, opts.Permissions))

		r.Route("/{kind}", func(r chi.Router) {
			r.Get("/", HandleAdminRecordList(opts.Records, opts.Permissions))
			r.Post("/", HandleRecordCreate(opts.Pipeline, opts.Permissions))
			r.Get("/{id}", HandleAdminRecord(opts.Records, opts.Permissions))
			r.Post("/{id}", HandleRecordUpdate(opts.Pipeline, opts.Permissions))
			r.Post("/{id}/delete", HandleRecordDelete(opts.Pipeline, opts.Permissions))
			r.Delete("/{id}", HandleRecordDelete(opts.Pipeline, opts.Permissions))
		})
	})
}
