package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/givebridge/distribution/internal/allocation/usecase/query"
	"github.com/givebridge/distribution/pkg/logger"
)

// AllocationHandler handles HTTP requests for allocation recommendations
type AllocationHandler struct {
	recommendHandler *query.RecommendAllocationsHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.SummaryVec
}

// NewAllocationHandler creates a new allocation handler
func NewAllocationHandler(recommendHandler *query.RecommendAllocationsHandler) *AllocationHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "allocation_service_requests_total",
			Help: "Total number of requests to allocation service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "allocation_service_request_duration_seconds",
			Help:       "Duration of allocation service requests in seconds",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &AllocationHandler{
		recommendHandler: recommendHandler,
		requestCounter:   requestCounter,
		requestLatency:   requestLatency,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (h *AllocationHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// Recommend handles GET /api/allocations/recommendations
func (h *AllocationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	requestID, _ := strconv.ParseUint(r.URL.Query().Get("request_id"), 10, 32)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recommendations, err := h.recommendHandler.Handle(r.Context(), query.RecommendAllocationsQuery{
		RequestID: uint(requestID),
		Limit:     limit,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to build recommendations")
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    recommendations,
	})
}

// RegisterRoutes registers all allocation routes
func (h *AllocationHandler) RegisterRoutes(router *mux.Router, staff func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/api/allocations/recommendations",
		h.metricsMiddleware("/api/allocations/recommendations", staff(h.Recommend))).Methods("GET")
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
