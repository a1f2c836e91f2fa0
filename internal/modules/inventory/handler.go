package inventory

import (
	"errors"
	"net/http"
	"strconv"

	"salonbooking/internal/domain"
	"salonbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/branches/:id/stock", h.ListBatches)
	rg.POST("/stock/deplete", h.Deplete)
}

// RegisterManagerRoutes holds the endpoints reserved for branch managers.
func (h *Handler) RegisterManagerRoutes(rg *gin.RouterGroup) {
	rg.POST("/stock/batches", h.ReceiveBatch)
}

func (h *Handler) ReceiveBatch(c *gin.Context) {
	var req ReceiveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.ReceiveBatch(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"batch": b})
}

func (h *Handler) ListBatches(c *gin.Context) {
	branchID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid branch ID")
		return
	}
	productID, err := strconv.ParseInt(c.Query("product_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "product_id is required")
		return
	}
	usage := domain.StockUsage(c.DefaultQuery("usage", string(domain.StockRetail)))

	batches, err := h.service.ListBatches(c.Request.Context(), branchID, productID, usage)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"batches": batches})
}

type depleteRequest struct {
	BranchID  int64  `json:"branch_id" binding:"required"`
	ProductID int64  `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Usage     string `json:"usage" binding:"required,oneof=internal retail"`
}

// Deplete serves salon-internal consumption (a stylist opening a product for
// use on the floor); retail depletion normally rides on booking completion.
func (h *Handler) Deplete(c *gin.Context) {
	var req depleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	err := h.service.DepleteBatch(c.Request.Context(), req.BranchID, req.ProductID, req.Quantity, domain.StockUsage(req.Usage))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"depleted": req.Quantity})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid stock request")
	case errors.Is(err, ErrInsufficientStock):
		response.Error(c, http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", "Not enough stock to cover the request")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Stock operation failed")
	}
}
