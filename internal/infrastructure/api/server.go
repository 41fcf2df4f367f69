package api

import (
	"encoding/json"
	"net/http"

	"theme-images-manager/internal/application"
	"theme-images-manager/internal/infrastructure/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// WebhookVerifier checks the signature of a webhook delivery
type WebhookVerifier interface {
	Verify(header http.Header, payload []byte) error
}

// Config holds the web layer settings
type Config struct {
	// StaticDir is served at / when set
	StaticDir string
	// SwaggerFile is the OpenAPI document behind /swagger
	SwaggerFile    string
	UploadMaxBytes int64
	SecureCookies  bool
	AllowedOrigins []string
}

// Server wires the HTTP routes to the application services
type Server struct {
	cfg          Config
	oauth        *application.OAuthService
	assets       *application.AssetService
	integrations *application.IntegrationService
	dispatcher   *application.WebhookDispatcher
	verifier     WebhookVerifier
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// NewServer creates the web layer. metrics may be nil.
func NewServer(
	cfg Config,
	oauth *application.OAuthService,
	assets *application.AssetService,
	integrations *application.IntegrationService,
	dispatcher *application.WebhookDispatcher,
	verifier WebhookVerifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Server {
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = 32 << 20
	}
	return &Server{
		cfg:          cfg,
		oauth:        oauth,
		assets:       assets,
		integrations: integrations,
		dispatcher:   dispatcher,
		verifier:     verifier,
		metrics:      m,
		logger:       logger,
	}
}

// Router builds the chi router
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLoggerMiddleware(s.logger))
	r.Use(middleware.Recoverer)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
	}
	r.Use(SecurityHeadersMiddleware())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", integrationKeyHeader},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	if s.cfg.SwaggerFile != "" {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
		r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			http.ServeFile(w, r, s.cfg.SwaggerFile)
		})
	}

	r.Post("/webhooks/shopify", s.handleWebhook)

	s.appRoutes(r)
	// Legacy prefix: /shopify starts an install, /shopify/callback/... as below
	r.Route("/shopify", func(r chi.Router) {
		r.Get("/", s.handleInstall)
		s.appRoutes(r)
	})

	if s.cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
	return r
}

func (s *Server) appRoutes(r chi.Router) {
	r.Get("/install", s.handleInstall)
	r.Get("/callback", s.handleCallback)

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(s.integrations, s.logger))
		r.Get("/callback/images", s.handleListImages)
		r.Put("/callback/upload", s.handleUpload)
		r.Post("/callback/delete", s.handleDelete)
	})
}
