package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medtriage/internal/domain"
	logpkg "github.com/kailas-cloud/medtriage/internal/logger"
	catalogsvc "github.com/kailas-cloud/medtriage/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/medtriage/internal/usecase/health"
	triageuc "github.com/kailas-cloud/medtriage/internal/usecase/triage"
)

// maxBodyBytes bounds triage request bodies.
const maxBodyBytes = 64 << 10

// TriageService runs triage.
type TriageService interface {
	Triage(ctx context.Context, req triageuc.Request) (triageuc.Report, error)
}

// CatalogService lists categories.
type CatalogService interface {
	List(ctx context.Context) ([]catalogsvc.Entry, error)
}

// HealthService checks dependencies.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the triage HTTP API.
type Server struct {
	triage        TriageService
	catalog       CatalogService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(triage TriageService, catalog CatalogService, health HealthService, logger *zap.Logger) *Server {
	s := &Server{
		triage:  triage,
		catalog: catalog,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeNotFound),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, ErrorResponseCodeRateLimited),
		sentinelHandler(domain.ErrStorageUnavailable,
			http.StatusServiceUnavailable, ErrorResponseCodeStorageUnavailable),
	}
	return s
}

// Triage handles POST /v1/triage.
func (s *Server) Triage(w http.ResponseWriter, r *http.Request) {
	var params TriageParams
	err := runtime.BindQueryParameter("form", true, false, "evidence_limit", r.URL.Query(), &params.EvidenceLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid format for parameter evidence_limit")
		return
	}

	var req TriageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	rep, err := s.triage.Triage(r.Context(), triageuc.Request{
		Symptoms:      req.Symptoms,
		History:       req.History,
		Age:           req.Age,
		EvidenceLimit: derefInt(params.EvidenceLimit),
	})
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewTriageResponse(&rep))
}

// ListCategories handles GET /v1/categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.List(r.Context())
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	items := make([]Category, len(entries))
	for i, e := range entries {
		items[i] = Category{
			Name:         e.Name,
			SpecialtyID:  e.SpecialtyID,
			KeywordCount: e.KeywordCount,
			HintCount:    e.HintCount,
			Fallback:     e.Fallback,
			Documents:    e.Documents,
		}
	}
	writeJSON(w, http.StatusOK, CategoryListResponse{Items: items, Count: len(items)})
}

// HealthCheck handles GET /health.
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

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// NewTriageResponse converts a triage report to its wire form.
func NewTriageResponse(rep *triageuc.Report) TriageResponse {
	evidence := make([]EvidenceItem, len(rep.Evidence))
	for i, e := range rep.Evidence {
		evidence[i] = EvidenceItem{
			Text:       e.Text,
			Confidence: e.Confidence,
			Source:     e.Source,
			Title:      e.Title,
		}
	}
	return TriageResponse{
		ID:             rep.ID,
		Category:       rep.Category,
		SpecialtyID:    rep.SpecialtyID,
		Urgency:        string(rep.Urgency),
		Alerts:         nonNil(rep.Alerts),
		DiagnosesHint:  nonNil(rep.DiagnosesHint),
		Evidence:       evidence,
		Sources:        nonNil(rep.Sources),
		Recommendation: rep.Recommendation,
		Outcome:        string(rep.Outcome),
		Narrative:      rep.Narrative,
		Disclaimer:     rep.Disclaimer,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrStorageUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// validationHandler reports the offending field of a ValidationError.
func validationHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		msg = ve.Error()
	}
	writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, msg)
	return true
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logpkg.FromContextOr(ctx, s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
