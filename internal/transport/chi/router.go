package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/figdex/internal/metrics"
)

// RouterConfig holds the request-admission settings of the router.
type RouterConfig struct {
	// APIKeys maps Bearer tokens to owners; empty means X-Owner-ID is trusted.
	APIKeys   map[string]string
	RateLimit RateLimit
}

// NewRouter mounts the server's routes behind the standard middleware stack.
func NewRouter(s *Server, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(OwnerAuthMiddleware(cfg.APIKeys))
	r.Use(OwnerRateLimitMiddleware(cfg.RateLimit))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Get("/search", s.SearchFull)
	r.Get("/search/wordwheel", s.SearchWordWheel)
	r.Get("/search/partial", s.SearchPartial)

	r.Route("/figures", func(r chi.Router) {
		r.Post("/", s.CreateFigure)
		r.Get("/", s.ListFigures)
		r.Post("/resync", s.ResyncFigures)
		r.Get("/{id}", s.GetFigure)
		r.Put("/{id}", s.UpdateFigure)
		r.Delete("/{id}", s.DeleteFigure)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})

	return r
}
