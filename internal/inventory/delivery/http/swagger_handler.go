package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation for the distribution service
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// CreditStock godoc
// @Summary Credit donated stock
// @Description Book donated stock into the ledger, creating the record on first contribution (Staff only)
// @Tags Inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{item_name=string,category=string,location=string,quantity=int,value=number,received=bool,reference=string} true "Donation data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 403 {object} object{success=bool,error=string}
// @Router /api/inventory/credit [post]
func (h *InventoryHandler) CreditStockDoc() {}

// ReceiveStock godoc
// @Summary Receive inbound stock
// @Description Move inbound stock into the allocatable pool (Staff only)
// @Tags Inventory
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Record ID"
// @Param request body object{quantity=int,reference=string} true "Receipt data"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Failure 409 {object} object{success=bool,error=string}
// @Router /api/inventory/{id}/receive [post]
func (h *InventoryHandler) ReceiveStockDoc() {}

// ListInventory godoc
// @Summary List inventory records
// @Description Get inventory records with pagination, or only allocatable ones
// @Tags Inventory
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Param allocatable query bool false "Only allocatable records"
// @Success 200 {object} object{success=bool,data=array}
// @Failure 500 {object} object{success=bool,error=string}
// @Router /api/inventory [get]
func (h *InventoryHandler) ListInventoryDoc() {}

// GetRecord godoc
// @Summary Get inventory record by ID
// @Description Get a specific inventory record by its ID
// @Tags Inventory
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 400 {object} object{success=bool,error=string}
// @Failure 404 {object} object{success=bool,error=string}
// @Router /api/inventory/{id} [get]
func (h *InventoryHandler) GetRecordDoc() {}

// GetStats godoc
// @Summary Inventory statistics
// @Description Aggregate quantities and value, broken down by category
// @Tags Inventory
// @Produce json
// @Success 200 {object} object{success=bool,data=object}
// @Failure 500 {object} object{success=bool,error=string}
// @Router /api/inventory/stats [get]
func (h *InventoryHandler) GetStatsDoc() {}

// GetLowStock godoc
// @Summary Low stock records
// @Description Records at or below the given availability threshold
// @Tags Inventory
// @Produce json
// @Param threshold query int false "Availability threshold (default: 10)"
// @Success 200 {object} object{success=bool,data=array}
// @Failure 500 {object} object{success=bool,error=string}
// @Router /api/inventory/low-stock [get]
func (h *InventoryHandler) GetLowStockDoc() {}

// ListEntries godoc
// @Summary Ledger entries for a record
// @Description Append-only audit trail of ledger mutations (Staff only)
// @Tags Inventory
// @Security BearerAuth
// @Produce json
// @Param id path int true "Record ID"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=array}
// @Failure 400 {object} object{success=bool,error=string}
// @Router /api/inventory/{id}/entries [get]
func (h *InventoryHandler) ListEntriesDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func (h *InventoryHandler) HealthCheckDoc() {}
