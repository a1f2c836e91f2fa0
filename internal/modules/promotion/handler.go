package promotion

import (
	"errors"
	"net/http"
	"strconv"

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
	rg.POST("/promotions/validate", h.ValidateCode)
	rg.POST("/promotions/:id/usage", h.TrackUsage)
}

// RegisterManagerRoutes holds the endpoints reserved for branch managers.
func (h *Handler) RegisterManagerRoutes(rg *gin.RouterGroup) {
	rg.POST("/promotions", h.CreatePromotion)
}

func (h *Handler) CreatePromotion(c *gin.Context) {
	var req CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.CreatePromotion(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid promotion definition")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create promotion")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"promotion": toPromotionResponse(p)})
}

func (h *Handler) ValidateCode(c *gin.Context) {
	var req ValidateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	p, err := h.service.Validate(c.Request.Context(), req.Code, req.BranchID, req.ClientID)
	if err != nil {
		h.writeValidationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"promotion": toPromotionResponse(p)})
}

func (h *Handler) TrackUsage(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid promotion ID")
		return
	}

	var req TrackUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.TrackUsage(c.Request.Context(), id, req.ClientID); err != nil {
		h.writeValidationError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tracked": true})
}

// writeValidationError maps every promotion rejection to its own code so the
// UI can surface the reason verbatim; none of these are retryable.
func (h *Handler) writeValidationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Client is required for one-time codes")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "PROMOTION_NOT_FOUND", "No such discount code")
	case errors.Is(err, ErrInactive):
		response.Error(c, http.StatusUnprocessableEntity, "PROMOTION_INACTIVE", "This code is not active")
	case errors.Is(err, ErrNotYetValid):
		response.Error(c, http.StatusUnprocessableEntity, "PROMOTION_NOT_YET_VALID", "This code is not valid yet")
	case errors.Is(err, ErrExpired):
		response.Error(c, http.StatusUnprocessableEntity, "PROMOTION_EXPIRED", "This code has expired")
	case errors.Is(err, ErrAlreadyUsed):
		response.Error(c, http.StatusUnprocessableEntity, "PROMOTION_ALREADY_USED", "This client already used the code")
	case errors.Is(err, ErrLimitReached):
		response.Error(c, http.StatusUnprocessableEntity, "PROMOTION_LIMIT_REACHED", "This code reached its usage limit")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Promotion check failed")
	}
}
