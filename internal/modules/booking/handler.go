package booking

import (
	"errors"
	"net/http"
	"strconv"

	"salonbooking/internal/modules/promotion"
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
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.GET("/branches/:id/bookings", h.ListByBranch)
	rg.POST("/bookings/:id/confirm", h.Confirm)
	rg.POST("/bookings/:id/start", h.StartService)
	rg.POST("/bookings/:id/complete", h.Complete)
	rg.POST("/bookings/:id/cancel", h.Cancel)
	rg.POST("/bookings/:id/no-show", h.MarkNoShow)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ListByBranch(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	list, err := h.service.ListByBranch(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) Confirm(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	b, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) StartService(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var draft SettlementDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	b, err := h.service.StartService(c.Request.Context(), id, draft)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	b, err := h.service.Complete(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Cancellation reason is required")
		return
	}
	b, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) MarkNoShow(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	b, err := h.service.MarkNoShow(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking data")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusUnprocessableEntity, "INVALID_TRANSITION", "Status transition is not allowed")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "Booking was modified concurrently, retry")
	case errors.Is(err, promotion.ErrNotFound):
		response.Error(c, http.StatusNotFound, "PROMOTION_NOT_FOUND", "No such discount code")
	case errors.Is(err, promotion.ErrInactive):
		response.Error(c, http.StatusUnprocessableEntity, "PROMOTION_INACTIVE", "This code is not active")
	case errors.Is(err, promotion.ErrNotYetValid):
		response.Error(c, http.StatusUnprocessableEntity, "PROMOTION_NOT_YET_VALID", "This code is not valid yet")
	case errors.Is(err, promotion.ErrExpired):
		response.Error(c, http.StatusUnprocessableEntity, "PROMOTION_EXPIRED", "This code has expired")
	case errors.Is(err, promotion.ErrAlreadyUsed):
		response.Error(c, http.StatusUnprocessableEntity, "PROMOTION_ALREADY_USED", "This client already used the code")
	case errors.Is(err, promotion.ErrLimitReached):
		response.Error(c, http.StatusUnprocessableEntity, "PROMOTION_LIMIT_REACHED", "This code reached its usage limit")
	case errors.Is(err, promotion.ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid promotion usage")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
	}
}
