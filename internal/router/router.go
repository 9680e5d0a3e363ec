package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"coursegen-backend/internal/handlers"
	"coursegen-backend/internal/middleware"
	"coursegen-backend/internal/websocket"
)

// Uploads serves a local image directory under a URL prefix. A zero value
// disables it.
type Uploads struct {
	Dir    string
	Prefix string
}

func New(
	logger *zap.Logger,
	jwtAuth *middleware.JWTAuth,
	generateLimiter *middleware.RateLimiter,
	courseHandler *handlers.CourseHandler,
	jobHandler *handlers.JobHandler,
	wsHub *websocket.Hub,
	uploads Uploads,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(frontendURL))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	if uploads.Dir != "" && strings.HasPrefix(uploads.Prefix, "/") {
		prefix := strings.TrimSuffix(uploads.Prefix, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(uploads.Dir))))
	}

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Course Routes ────
		r.Route("/courses", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			r.Group(func(r chi.Router) {
				if generateLimiter != nil {
					r.Use(generateLimiter.Middleware)
				}
				r.Post("/generate", courseHandler.Generate)
			})

			r.Get("/", courseHandler.List)
			r.Get("/{id}", courseHandler.Get)
			r.Put("/{id}", courseHandler.Update)
			r.Delete("/{id}", courseHandler.Delete)
			r.Get("/{id}/view", courseHandler.View)
			r.Get("/{id}/narration", courseHandler.Narration)
			r.Get("/{id}/export/pdf", courseHandler.ExportPDF)
			r.Get("/{id}/export/print", courseHandler.ExportPrint)
		})

		// ──── Job Routes ────
		r.Route("/jobs", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/{id}", jobHandler.GetJob)
			r.Delete("/{id}", jobHandler.CancelJob)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
