package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/givebridge/distribution/internal/inventory/domain"
	"github.com/givebridge/distribution/internal/inventory/usecase/command"
	"github.com/givebridge/distribution/internal/inventory/usecase/query"
	"github.com/givebridge/distribution/pkg/logger"
)

// InventoryHandler handles HTTP requests for the inventory ledger
type InventoryHandler struct {
	// Command handlers
	creditHandler       *command.CreditStockHandler
	receiveHandler      *command.ReceiveStockHandler
	updateStatusHandler *command.UpdateStatusHandler

	// Query handlers
	getHandler      *query.GetRecordHandler
	listHandler     *query.ListInventoryHandler
	statsHandler    *query.GetStatsHandler
	lowStockHandler *query.GetLowStockHandler
	entriesHandler  *query.ListEntriesHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	lowStockGauge  prometheus.Gauge
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(repo domain.InventoryRepository) *InventoryHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_service_requests_total",
			Help: "Total number of requests to inventory service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_service_request_duration_seconds",
			Help:    "Duration of inventory service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	lowStockGauge := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "inventory_service_low_stock_records",
			Help: "Number of inventory records at or below the low stock threshold",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(lowStockGauge)

	return &InventoryHandler{
		creditHandler:       command.NewCreditStockHandler(repo),
		receiveHandler:      command.NewReceiveStockHandler(repo),
		updateStatusHandler: command.NewUpdateStatusHandler(repo),
		getHandler:          query.NewGetRecordHandler(repo),
		listHandler:         query.NewListInventoryHandler(repo),
		statsHandler:        query.NewGetStatsHandler(repo),
		lowStockHandler:     query.NewGetLowStockHandler(repo),
		entriesHandler:      query.NewListEntriesHandler(repo),
		requestCounter:      requestCounter,
		requestLatency:      requestLatency,
		lowStockGauge:       lowStockGauge,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *InventoryHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// CreditStock handles POST /api/inventory/credit
func (h *InventoryHandler) CreditStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemName  string          `json:"item_name"`
		Category  string          `json:"category"`
		Location  string          `json:"location"`
		Quantity  int             `json:"quantity"`
		Value     decimal.Decimal `json:"value"`
		Received  bool            `json:"received"`
		Reference string          `json:"reference"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	record, err := h.creditHandler.Handle(r.Context(), command.CreditStockCommand{
		ItemName:  req.ItemName,
		Category:  req.Category,
		Location:  req.Location,
		Quantity:  req.Quantity,
		Value:     req.Value,
		Received:  req.Received,
		Reference: req.Reference,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to credit stock")
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Stock credited successfully",
		Data:    record,
	})
}

// ReceiveStock handles POST /api/inventory/{id}/receive
func (h *InventoryHandler) ReceiveStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid record ID",
		})
		return
	}

	var req struct {
		Quantity  int    `json:"quantity"`
		Reference string `json:"reference"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	record, err := h.receiveHandler.Handle(r.Context(), command.ReceiveStockCommand{
		RecordID:  uint(id),
		Quantity:  req.Quantity,
		Reference: req.Reference,
	})
	if err != nil {
		respondJSON(w, statusForInventoryError(err), Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock received successfully",
		Data:    record,
	})
}

// UpdateStatus handles PATCH /api/inventory/{id}/status
func (h *InventoryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid record ID",
		})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	err = h.updateStatusHandler.Handle(r.Context(), command.UpdateStatusCommand{
		RecordID: uint(id),
		Status:   domain.ItemStatus(req.Status),
	})
	if err != nil {
		respondJSON(w, statusForInventoryError(err), Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Status updated successfully",
	})
}

// GetRecord handles GET /api/inventory/{id}
func (h *InventoryHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid record ID",
		})
		return
	}

	record, err := h.getHandler.Handle(r.Context(), query.GetRecordQuery{ID: uint(id)})
	if err != nil {
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Inventory record not found",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    record,
	})
}

// ListInventory handles GET /api/inventory
func (h *InventoryHandler) ListInventory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	allocatable := r.URL.Query().Get("allocatable") == "true"

	records, err := h.listHandler.Handle(r.Context(), query.ListInventoryQuery{
		Limit:       limit,
		Offset:      offset,
		Allocatable: allocatable,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list inventory")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list inventory",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

// GetStats handles GET /api/inventory/stats
func (h *InventoryHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsHandler.Handle(r.Context(), query.GetStatsQuery{})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to get inventory stats")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to get inventory stats",
		})
		return
	}

	h.lowStockGauge.Set(float64(stats.LowStockCount))

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    stats,
	})
}

// GetLowStock handles GET /api/inventory/low-stock
func (h *InventoryHandler) GetLowStock(w http.ResponseWriter, r *http.Request) {
	threshold, _ := strconv.Atoi(r.URL.Query().Get("threshold"))

	records, err := h.lowStockHandler.Handle(r.Context(), query.GetLowStockQuery{Threshold: threshold})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to get low stock records")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to get low stock records",
		})
		return
	}

	h.lowStockGauge.Set(float64(len(records)))

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    records,
	})
}

// ListEntries handles GET /api/inventory/{id}/entries
func (h *InventoryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid record ID",
		})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.entriesHandler.Handle(r.Context(), query.ListEntriesQuery{
		RecordID: uint(id),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list ledger entries",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    entries,
	})
}

// RegisterRoutes registers all inventory routes
func (h *InventoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/inventory", h.metricsMiddleware("/api/inventory", h.ListInventory)).Methods("GET")
	router.HandleFunc("/api/inventory/credit", h.metricsMiddleware("/api/inventory/credit", StaffMiddleware(h.CreditStock))).Methods("POST")
	router.HandleFunc("/api/inventory/stats", h.metricsMiddleware("/api/inventory/stats", h.GetStats)).Methods("GET")
	router.HandleFunc("/api/inventory/low-stock", h.metricsMiddleware("/api/inventory/low-stock", h.GetLowStock)).Methods("GET")
	router.HandleFunc("/api/inventory/{id}", h.metricsMiddleware("/api/inventory/{id}", h.GetRecord)).Methods("GET")
	router.HandleFunc("/api/inventory/{id}/receive", h.metricsMiddleware("/api/inventory/{id}/receive", StaffMiddleware(h.ReceiveStock))).Methods("POST")
	router.HandleFunc("/api/inventory/{id}/status", h.metricsMiddleware("/api/inventory/{id}/status", StaffMiddleware(h.UpdateStatus))).Methods("PATCH")
	router.HandleFunc("/api/inventory/{id}/entries", h.metricsMiddleware("/api/inventory/{id}/entries", StaffMiddleware(h.ListEntries))).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *InventoryHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Distribution service is healthy",
		})
	}).Methods("GET")
}

// statusForInventoryError maps domain errors onto HTTP status codes.
func statusForInventoryError(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case domain.IsInsufficientStock(err):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
