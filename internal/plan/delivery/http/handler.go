package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/givebridge/distribution/internal/allocation"
	"github.com/givebridge/distribution/internal/plan/domain"
	"github.com/givebridge/distribution/internal/plan/usecase/command"
	"github.com/givebridge/distribution/internal/plan/usecase/query"
	"github.com/givebridge/distribution/kafka"
	"github.com/givebridge/distribution/pkg/logger"
)

// PlanHandler handles HTTP requests for distribution plans
type PlanHandler struct {
	// Command handlers
	createHandler  *command.CreatePlanHandler
	approveHandler *command.ApprovePlanHandler
	cancelHandler  *command.CancelPlanHandler
	executeHandler *command.ExecutePlanHandler

	// Query handlers
	getHandler   *query.GetPlanHandler
	listHandler  *query.ListPlansHandler
	logsHandler  *query.ListLogsHandler

	publisher *kafka.Publisher

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	executedPlans  prometheus.Counter
}

// NewPlanHandler creates a new plan handler. The publisher may be nil when
// Kafka is disabled; execution then skips event emission.
func NewPlanHandler(store domain.Store, publisher *kafka.Publisher) *PlanHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_service_requests_total",
			Help: "Total number of requests to plan service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plan_service_request_duration_seconds",
			Help:    "Duration of plan service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	executedPlans := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "plan_service_executed_plans_total",
			Help: "Total number of distribution plans executed",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(executedPlans)

	return &PlanHandler{
		createHandler:  command.NewCreatePlanHandler(store),
		approveHandler: command.NewApprovePlanHandler(store),
		cancelHandler:  command.NewCancelPlanHandler(store),
		executeHandler: command.NewExecutePlanHandler(store),
		getHandler:     query.NewGetPlanHandler(store),
		listHandler:    query.NewListPlansHandler(store),
		logsHandler:    query.NewListLogsHandler(store),
		publisher:      publisher,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		executedPlans:  executedPlans,
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

func (h *PlanHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// CreatePlan handles POST /api/plans
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RequestID   uint   `json:"request_id"`
		PlannedDate string `json:"planned_date"`
		Notes       string `json:"notes"`
		Items       []struct {
			InventoryRecordID uint   `json:"inventory_record_id"`
			Quantity          int    `json:"quantity"`
			Notes             string `json:"notes"`
		} `json:"items"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	cmd := command.CreatePlanCommand{
		RequestID: req.RequestID,
		Notes:     req.Notes,
		CreatedBy: usernameFromContext(r),
	}
	if req.PlannedDate != "" {
		plannedDate, err := time.Parse("2006-01-02", req.PlannedDate)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, Response{
				Success: false,
				Error:   "Invalid planned_date, expected YYYY-MM-DD",
			})
			return
		}
		cmd.PlannedDate = plannedDate
	}
	for _, item := range req.Items {
		cmd.Items = append(cmd.Items, command.CreatePlanItem{
			InventoryRecordID: item.InventoryRecordID,
			Quantity:          item.Quantity,
			Notes:             item.Notes,
		})
	}

	result, err := h.createHandler.Handle(r.Context(), cmd)
	if err != nil {
		respondJSON(w, statusForPlanError(err), Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	if result.IsExisting {
		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Plan already exists for this request",
			Data:    result,
		})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Plan created successfully",
		Data:    result,
	})
}

// GetPlan handles GET /api/plans/{id}
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid plan ID",
		})
		return
	}

	plan, err := h.getHandler.Handle(r.Context(), query.GetPlanQuery{ID: uint(id)})
	if err != nil {
		respondJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   "Plan not found",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    plan,
	})
}

// ListPlans handles GET /api/plans
func (h *PlanHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	filter := domain.ListFilter{
		Status:    domain.PlanStatus(r.URL.Query().Get("status")),
		CreatedBy: r.URL.Query().Get("created_by"),
		Limit:     limit,
		Offset:    offset,
	}
	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &t
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = &t
		}
	}

	plans, err := h.listHandler.Handle(r.Context(), query.ListPlansQuery{Filter: filter})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list plans")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list plans",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    plans,
	})
}

// ApprovePlan handles POST /api/plans/{id}/approve
func (h *PlanHandler) ApprovePlan(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(id uint) (*domain.DistributionPlan, error) {
		return h.approveHandler.Handle(r.Context(), command.ApprovePlanCommand{
			PlanID:     id,
			ApprovedBy: usernameFromContext(r),
		})
	}, "Plan approved successfully")
}

// CancelPlan handles POST /api/plans/{id}/cancel
func (h *PlanHandler) CancelPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional for cancellation
	_ = json.NewDecoder(r.Body).Decode(&req)

	h.transition(w, r, func(id uint) (*domain.DistributionPlan, error) {
		return h.cancelHandler.Handle(r.Context(), command.CancelPlanCommand{
			PlanID:      id,
			Reason:      req.Reason,
			CancelledBy: usernameFromContext(r),
		})
	}, "Plan cancelled successfully")
}

// ExecutePlan handles POST /api/plans/{id}/execute
func (h *PlanHandler) ExecutePlan(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid plan ID",
		})
		return
	}

	executedBy := usernameFromContext(r)
	plan, err := h.executeHandler.Handle(r.Context(), command.ExecutePlanCommand{
		PlanID:     uint(id),
		ExecutedBy: executedBy,
	})
	if err != nil {
		respondJSON(w, statusForPlanError(err), Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	h.executedPlans.Inc()
	h.publishCompleted(r, plan, executedBy)

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Plan executed successfully",
		Data:    plan,
	})
}

// publishCompleted emits the completion event. Emission is best-effort: the
// distribution already committed, so a broker failure is logged, not
// surfaced to the caller.
func (h *PlanHandler) publishCompleted(r *http.Request, plan *domain.DistributionPlan, executedBy string) {
	if h.publisher == nil {
		return
	}

	event := kafka.DistributionCompletedEvent{
		PlanID:        plan.ID,
		PlanReference: plan.Reference,
		RequestID:     plan.RequestID,
		BeneficiaryID: plan.BeneficiaryID,
		TotalValue:    plan.TotalValue,
		ExecutedBy:    executedBy,
	}
	for _, item := range plan.Items {
		event.Items = append(event.Items, kafka.DistributedItem{
			InventoryRecordID: item.InventoryRecordID,
			ItemName:          item.ItemName,
			Quantity:          item.Quantity,
			Value:             item.AllocatedValue,
		})
	}

	if err := h.publisher.PublishDistributionCompleted(r.Context(), event); err != nil {
		logger.Logger.Error().
			Err(err).
			Uint("plan_id", plan.ID).
			Msg("Failed to publish distribution completed event")
	}
}

// ListLogs handles GET /api/distributions
func (h *PlanHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	planID, _ := strconv.ParseUint(r.URL.Query().Get("plan_id"), 10, 32)
	beneficiaryID, _ := strconv.ParseUint(r.URL.Query().Get("beneficiary_id"), 10, 32)

	logs, err := h.logsHandler.Handle(r.Context(), query.ListLogsQuery{
		Filter: domain.LogFilter{
			PlanID:        uint(planID),
			BeneficiaryID: uint(beneficiaryID),
			Limit:         limit,
			Offset:        offset,
		},
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list distribution logs")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list distribution logs",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    logs,
	})
}

func (h *PlanHandler) transition(w http.ResponseWriter, r *http.Request, fn func(id uint) (*domain.DistributionPlan, error), message string) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid plan ID",
		})
		return
	}

	plan, err := fn(uint(id))
	if err != nil {
		respondJSON(w, statusForPlanError(err), Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    plan,
	})
}

// RegisterRoutes registers all plan routes
func (h *PlanHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/plans", h.metricsMiddleware("/api/plans", StaffMiddleware(h.CreatePlan))).Methods("POST")
	router.HandleFunc("/api/plans", h.metricsMiddleware("/api/plans", StaffMiddleware(h.ListPlans))).Methods("GET")
	router.HandleFunc("/api/plans/{id}", h.metricsMiddleware("/api/plans/{id}", StaffMiddleware(h.GetPlan))).Methods("GET")
	router.HandleFunc("/api/plans/{id}/approve", h.metricsMiddleware("/api/plans/{id}/approve", StaffMiddleware(h.ApprovePlan))).Methods("POST")
	router.HandleFunc("/api/plans/{id}/cancel", h.metricsMiddleware("/api/plans/{id}/cancel", StaffMiddleware(h.CancelPlan))).Methods("POST")
	router.HandleFunc("/api/plans/{id}/execute", h.metricsMiddleware("/api/plans/{id}/execute", StaffMiddleware(h.ExecutePlan))).Methods("POST")
	router.HandleFunc("/api/distributions", h.metricsMiddleware("/api/distributions", StaffMiddleware(h.ListLogs))).Methods("GET")
}

// statusForPlanError maps domain and validation errors onto HTTP status
// codes.
func statusForPlanError(err error) int {
	var (
		notApproved  *domain.RequestNotApprovedError
		invalidMove  *domain.InvalidTransitionError
		insufficient *domain.InsufficientInventoryError
		unknownItem  *allocation.UnknownInventoryItemError
		unavailable  *allocation.InventoryUnavailableError
		shortStock   *allocation.InsufficientQuantityError
	)
	switch {
	case errors.Is(err, domain.ErrPlanNotFound):
		return http.StatusNotFound
	case errors.As(err, &unknownItem):
		return http.StatusNotFound
	case errors.As(err, &invalidMove):
		return http.StatusConflict
	case errors.As(err, &insufficient), errors.As(err, &shortStock):
		return http.StatusConflict
	case errors.As(err, &notApproved), errors.As(err, &unavailable):
		return http.StatusUnprocessableEntity
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
