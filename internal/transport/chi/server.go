package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/figdex/internal/domain"
	"github.com/kailas-cloud/figdex/internal/domain/figure"
	"github.com/kailas-cloud/figdex/internal/domain/search/request"
	"github.com/kailas-cloud/figdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/figdex/internal/usecase/health"
)

// maxBodyBytes bounds figure request bodies.
const maxBodyBytes = 1 << 20

// indexStatusHeader tells the client whether the search index caught up with a write.
const indexStatusHeader = "X-Index-Status"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	figures       Figures
	search        Searcher
	health        HealthChecker
	queryTimeout  time.Duration
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. queryTimeout bounds each search call.
func NewServer(
	figures Figures,
	search Searcher,
	health HealthChecker,
	queryTimeout time.Duration,
	logger *zap.Logger,
) *Server {
	s := &Server{
		figures:      figures,
		search:       search,
		health:       health,
		queryTimeout: queryTimeout,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrConflict, http.StatusConflict, codeConflict),
		sentinelHandler(domain.ErrInvalidFigure, http.StatusBadRequest, codeValidation),
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidation),
		sentinelHandler(domain.ErrOwnerRequired, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, codeTimeout),
	}
	return s
}

// SearchWordWheel handles GET /search/wordwheel.
func (s *Server) SearchWordWheel(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	ctx, cancel := withQueryTimeout(r.Context(), s.queryTimeout)
	defer cancel()

	records, err := s.search.WordWheel(ctx, r.URL.Query().Get("q"), OwnerFromContext(ctx), limit)
	s.writeSearch(w, records, err)
}

// SearchPartial handles GET /search/partial.
func (s *Server) SearchPartial(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	ctx, cancel := withQueryTimeout(r.Context(), s.queryTimeout)
	defer cancel()

	records, err := s.search.Partial(ctx, r.URL.Query().Get("q"), OwnerFromContext(ctx),
		request.Page{Limit: limit, Offset: offset})
	s.writeSearch(w, records, err)
}

// SearchFull handles GET /search.
func (s *Server) SearchFull(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withQueryTimeout(r.Context(), s.queryTimeout)
	defer cancel()

	records, err := s.search.FullSearch(ctx, r.URL.Query().Get("q"), OwnerFromContext(ctx))
	s.writeSearch(w, records, err)
}

// CreateFigure handles POST /figures.
func (s *Server) CreateFigure(w http.ResponseWriter, r *http.Request) {
	f, ok := s.decodeFigure(w, r)
	if !ok {
		return
	}

	res, err := s.figures.Create(r.Context(), &f)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/figures/"+res.Figure.ID)
	setIndexStatus(w, res.Indexed)
	writeJSON(w, http.StatusCreated, figureToBody(res.Figure))
}

// ListFigures handles GET /figures.
func (s *Server) ListFigures(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	figs, err := s.figures.ListByOwner(r.Context(), OwnerFromContext(r.Context()), limit, offset)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]FigureBody, len(figs))
	for i := range figs {
		items[i] = figureToBody(&figs[i])
	}
	writeJSON(w, http.StatusOK, FigureListResponse{Items: items, Limit: limit, Offset: offset})
}

// GetFigure handles GET /figures/{id}.
func (s *Server) GetFigure(w http.ResponseWriter, r *http.Request) {
	f, err := s.figures.Get(r.Context(), OwnerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, figureToBody(f))
}

// UpdateFigure handles PUT /figures/{id}.
func (s *Server) UpdateFigure(w http.ResponseWriter, r *http.Request) {
	f, ok := s.decodeFigure(w, r)
	if !ok {
		return
	}
	f.ID = chi.URLParam(r, "id")

	res, err := s.figures.Update(r.Context(), &f)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setIndexStatus(w, res.Indexed)
	writeJSON(w, http.StatusOK, figureToBody(res.Figure))
}

// DeleteFigure handles DELETE /figures/{id}.
func (s *Server) DeleteFigure(w http.ResponseWriter, r *http.Request) {
	unindexed, err := s.figures.Delete(r.Context(), OwnerFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setIndexStatus(w, unindexed)
	w.WriteHeader(http.StatusNoContent)
}

// ResyncFigures handles POST /figures/resync.
func (s *Server) ResyncFigures(w http.ResponseWriter, r *http.Request) {
	res, err := s.figures.Resync(r.Context(), OwnerFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ResyncResponse{Figures: res.Figures, Indexed: res.Indexed, Failed: res.Failed})
}

// HealthCheck handles GET /health. A degraded service still answers 200.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) writeSearch(w http.ResponseWriter, records []result.Record, err error) {
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if records == nil {
		records = []result.Record{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Items: records, Total: len(records)})
}

func (s *Server) decodeFigure(w http.ResponseWriter, r *http.Request) (figure.Figure, bool) {
	var body FigureBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return figure.Figure{}, false
	}
	f, err := figureFromBody(&body, OwnerFromContext(r.Context()))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "release date must be YYYY-MM-DD")
		return figure.Figure{}, false
	}
	return f, true
}

// queryInt binds an optional form-style integer parameter. Absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	var v int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

func setIndexStatus(w http.ResponseWriter, indexed bool) {
	if indexed {
		w.Header().Set(indexStatusHeader, "ok")
		return
	}
	w.Header().Set(indexStatusHeader, "stale")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrConflict,
		domain.ErrInvalidFigure,
		domain.ErrInvalidQuery,
		domain.ErrOwnerRequired,
		context.DeadlineExceeded,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			// Validation messages carry the offending field.
			if s == domain.ErrInvalidFigure || s == domain.ErrInvalidQuery {
				return err.Error()
			}
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}
