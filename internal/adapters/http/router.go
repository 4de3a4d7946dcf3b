package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kirillkom/hsa-claims-engine/internal/config"
	"github.com/kirillkom/hsa-claims-engine/internal/core/ports"
	"github.com/kirillkom/hsa-claims-engine/internal/observability/metrics"
)

const maxRequestBodyBytes = 1 << 20

type Router struct {
	claims      ports.ClaimService
	eligibility ports.EligibilityChecker
	metrics     *metrics.HTTPServerMetrics
	mcp         http.Handler
	validator   *requestValidator

	apiKey         string
	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int
	queueWait      time.Duration
}

type Option func(*Router)

func WithMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(rt *Router) {
		rt.metrics = m
	}
}

// WithMCP mounts the MCP streamable HTTP endpoint at /mcp.
func WithMCP(handler http.Handler) Option {
	return func(rt *Router) {
		rt.mcp = handler
	}
}

func NewRouter(
	cfg config.Config,
	claims ports.ClaimService,
	eligibility ports.EligibilityChecker,
	opts ...Option,
) *Router {
	rt := &Router{
		claims:         claims,
		eligibility:    eligibility,
		validator:      mustRequestValidator(),
		apiKey:         cfg.APIKey,
		rateLimitRPS:   cfg.APIRateLimitRPS,
		rateLimitBurst: cfg.APIRateLimitBurst,
		maxInFlight:    cfg.APIMaxInFlight,
		queueWait:      cfg.APIQueueWait,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}
	if rt.mcp != nil {
		mux.Handle("/mcp", rt.mcp)
	}

	mux.HandleFunc("GET /v1/account", rt.getAccount)
	mux.HandleFunc("POST /v1/claims", rt.submitClaim)
	mux.HandleFunc("GET /v1/claims", rt.listClaims)
	mux.HandleFunc("GET /v1/claims/{id}", rt.getClaim)
	mux.HandleFunc("PUT /v1/claims/{id}", rt.updateClaim)
	mux.HandleFunc("POST /v1/public/card-transactions", rt.submitCardTransaction)
	mux.HandleFunc("POST /v1/eligibility/check", rt.checkEligibility)

	var handler http.Handler = mux
	handler = rt.validator.middleware(handler)
	handler = apiKeyMiddleware(handler, rt.apiKey)
	handler = backpressureMiddleware(handler, rt.maxInFlight, rt.queueWait)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
