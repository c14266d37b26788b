// Package chi exposes the bias calibration services over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/seqlab-cloud/biascal/internal/domain"
	logpkg "github.com/seqlab-cloud/biascal/internal/logger"
	estimateuc "github.com/seqlab-cloud/biascal/internal/usecase/estimate"
	experimentuc "github.com/seqlab-cloud/biascal/internal/usecase/experiment"
	healthuc "github.com/seqlab-cloud/biascal/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use case services into an HTTP API.
type Server struct {
	experiments   *experimentuc.Service
	estimates     *estimateuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	experiments *experimentuc.Service,
	estimates *estimateuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		experiments: experiments,
		estimates:   estimates,
		health:      health,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownMethod, http.StatusBadRequest, codeUnknownMethod),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrEstimateNotFound, http.StatusNotFound, codeEstimateNotFound),
		sentinelHandler(domain.ErrSampleNotFound, http.StatusNotFound, codeExperimentNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeExperimentNotFound),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, codeExperimentExists),
	}
	return s
}

// Routes registers all API routes on the given router.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/experiments", func(r gochi.Router) {
		r.Post("/", s.CreateExperiment)
		r.Get("/", s.ListExperiments)
		r.Route("/{experiment}", func(r gochi.Router) {
			r.Get("/", s.GetExperiment)
			r.Delete("/", s.DeleteExperiment)
			r.Put("/samples", s.AddSamples)
			r.Get("/samples", s.ListSamples)
			r.Post("/estimate", s.RunEstimate)
			r.Get("/estimate", s.GetEstimate)
			r.Post("/predict", s.Predict)
		})
	})
}

// CreateExperiment handles POST /experiments.
func (s *Server) CreateExperiment(w http.ResponseWriter, r *http.Request) {
	var req createExperimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "experiment name is required")
		return
	}

	exp, err := s.experiments.Create(r.Context(), req.Name, req.Taxa)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, experimentToDTO(exp))
}

// ListExperiments handles GET /experiments.
func (s *Server) ListExperiments(w http.ResponseWriter, r *http.Request) {
	exps, err := s.experiments.List(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]experimentResponse, len(exps))
	for i, e := range exps {
		items[i] = experimentToDTO(e)
	}
	writeJSON(w, http.StatusOK, experimentListResponse{Items: items})
}

// GetExperiment handles GET /experiments/{experiment}.
func (s *Server) GetExperiment(w http.ResponseWriter, r *http.Request) {
	name := gochi.URLParam(r, "experiment")

	exp, err := s.experiments.Get(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, experimentToDTO(exp))
}

// DeleteExperiment handles DELETE /experiments/{experiment}.
// Samples and stored estimates are removed along with the experiment.
func (s *Server) DeleteExperiment(w http.ResponseWriter, r *http.Request) {
	name := gochi.URLParam(r, "experiment")

	if err := s.experiments.Delete(r.Context(), name); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddSamples handles PUT /experiments/{experiment}/samples.
func (s *Server) AddSamples(w http.ResponseWriter, r *http.Request) {
	name := gochi.URLParam(r, "experiment")

	var req addSamplesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Samples) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "at least one sample is required")
		return
	}

	exp, err := s.experiments.Get(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	converted, err := samplesFromDTO(exp.Taxa(), req.Samples)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if err := s.experiments.AddSamples(r.Context(), name, converted); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, addSamplesResponse{Added: len(converted)})
}

// ListSamples handles GET /experiments/{experiment}/samples.
func (s *Server) ListSamples(w http.ResponseWriter, r *http.Request) {
	name := gochi.URLParam(r, "experiment")

	exp, err := s.experiments.Get(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	samples, err := s.experiments.ListSamples(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]sampleDTO, len(samples))
	for i, sm := range samples {
		items[i] = sampleToDTO(exp.Taxa(), sm)
	}
	writeJSON(w, http.StatusOK, sampleListResponse{Items: items})
}

// RunEstimate handles POST /experiments/{experiment}/estimate.
func (s *Server) RunEstimate(w http.ResponseWriter, r *http.Request) {
	name := gochi.URLParam(r, "experiment")

	var req estimateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	est, err := s.estimates.Estimate(r.Context(), name, req.Method, req.BootstrapReps)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, estimateToDTO(est))
}

// GetEstimate handles GET /experiments/{experiment}/estimate.
// The ?method= query selects the estimator; default is rss.
func (s *Server) GetEstimate(w http.ResponseWriter, r *http.Request) {
	name := gochi.URLParam(r, "experiment")
	method := r.URL.Query().Get("method")

	est, err := s.estimates.Latest(r.Context(), name, method)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, estimateToDTO(est))
}

// Predict handles POST /experiments/{experiment}/predict.
func (s *Server) Predict(w http.ResponseWriter, r *http.Request) {
	name := gochi.URLParam(r, "experiment")

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Observed) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "observed composition is required")
		return
	}

	exp, err := s.experiments.Get(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	observed, err := vectorFromMap(exp.Taxa(), req.Observed)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	pred, err := s.estimates.Predict(r.Context(), name, req.Method, observed)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{
		Method:    methodOrDefault(req.Method),
		Predicted: vectorToMap(exp.Taxa(), pred),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthToDTO(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrUnknownMethod,
		domain.ErrNotFound,
		domain.ErrSampleNotFound,
		domain.ErrEstimateNotFound,
		domain.ErrAlreadyExists,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// Prefer the request-scoped logger (carries request_id) when middleware
	// put one in the context.
	log := logpkg.FromContext(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
