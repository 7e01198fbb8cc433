package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/givebridge/distribution/internal/allocation"
	"github.com/givebridge/distribution/internal/request/domain"
	"github.com/givebridge/distribution/pkg/logger"
)

// RequestHandler exposes the beneficiary request read model. The request
// lifecycle itself is owned by the beneficiary workflow; these endpoints
// exist for intake sync and staff lookups.
type RequestHandler struct {
	repo domain.RequestRepository
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(repo domain.RequestRepository) *RequestHandler {
	return &RequestHandler{repo: repo}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateRequest handles POST /api/requests
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BeneficiaryID   uint   `json:"beneficiary_id"`
		BeneficiaryType string `json:"beneficiary_type"`
		Purpose         string `json:"purpose"`
		Urgency         string `json:"urgency"`
		Status          string `json:"status"`
		RequestDate     string `json:"request_date"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if req.BeneficiaryID == 0 {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "beneficiary_id is required",
		})
		return
	}

	request := &domain.BeneficiaryRequest{
		BeneficiaryID:   req.BeneficiaryID,
		BeneficiaryType: domain.BeneficiaryType(req.BeneficiaryType),
		Purpose:         req.Purpose,
		PurposeCategory: allocation.CategorizePurpose(req.Purpose),
		Urgency:         domain.Urgency(req.Urgency),
		Status:          domain.RequestStatus(req.Status),
		RequestDate:     time.Now(),
	}
	if request.BeneficiaryType == "" {
		request.BeneficiaryType = domain.TypeIndividual
	}
	if request.Urgency == "" {
		request.Urgency = domain.UrgencyMedium
	}
	if request.Status == "" {
		request.Status = domain.StatusPending
	}
	if req.RequestDate != "" {
		if date, err := time.Parse("2006-01-02", req.RequestDate); err == nil {
			request.RequestDate = date
		}
	}

	if err := h.repo.Create(r.Context(), request); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to create request")
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Request created successfully",
		Data:    request,
	})
}

// GetRequest handles GET /api/requests/{id}
func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request ID",
		})
		return
	}

	request, err := h.repo.FindByID(r.Context(), uint(id))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrRequestNotFound) {
			status = http.StatusNotFound
		}
		respondJSON(w, status, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    request,
	})
}

// ListApproved handles GET /api/requests/approved
func (h *RequestHandler) ListApproved(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	requests, err := h.repo.FindApproved(r.Context(), limit, offset)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list approved requests")
		respondJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to list approved requests",
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    requests,
	})
}

// UpdateStatus handles PATCH /api/requests/{id}/status
func (h *RequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Invalid request ID",
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

	if err := h.repo.UpdateStatus(r.Context(), uint(id), domain.RequestStatus(req.Status)); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrRequestNotFound) {
			status = http.StatusNotFound
		}
		respondJSON(w, status, Response{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Request status updated successfully",
	})
}

// RegisterRoutes registers all request routes
func (h *RequestHandler) RegisterRoutes(router *mux.Router, staff func(http.HandlerFunc) http.HandlerFunc) {
	router.HandleFunc("/api/requests", staff(h.CreateRequest)).Methods("POST")
	router.HandleFunc("/api/requests/approved", staff(h.ListApproved)).Methods("GET")
	router.HandleFunc("/api/requests/{id}", staff(h.GetRequest)).Methods("GET")
	router.HandleFunc("/api/requests/{id}/status", staff(h.UpdateStatus)).Methods("PATCH")
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
