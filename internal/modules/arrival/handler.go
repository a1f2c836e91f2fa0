package arrival

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"salonbooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // reception screens connect from their own origin
	},
}

type Handler struct {
	service *Service
	hub     *Hub
	logf    func(format string, args ...interface{})
}

func NewHandler(service *Service, hub *Hub, logf func(string, ...interface{})) *Handler {
	if logf == nil {
		logf = func(string, ...interface{}) {}
	}
	return &Handler{service: service, hub: hub, logf: logf}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/arrivals", h.CheckIn)
	rg.POST("/arrivals/:id/begin", h.BeginService)
	rg.POST("/arrivals/:id/finish", h.Finish)
	rg.GET("/branches/:id/queue", h.Queue)
}

// RegisterFeedRoutes is wired outside the JWT group: browsers cannot set an
// Authorization header on a websocket handshake.
func (h *Handler) RegisterFeedRoutes(rg *gin.RouterGroup) {
	rg.GET("/branches/:id/queue/ws", h.QueueFeed)
}

func (h *Handler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	a, err := h.service.CheckIn(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"arrival": a})
}

func (h *Handler) BeginService(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	a, err := h.service.BeginService(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"arrival": a})
}

func (h *Handler) Finish(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	a, err := h.service.Finish(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"arrival": a})
}

func (h *Handler) Queue(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	snap, err := h.service.Queue(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"queue": snap})
}

// QueueFeed upgrades to a websocket and streams queue snapshots until the
// client disconnects. The current snapshot is sent immediately on connect.
func (h *Handler) QueueFeed(c *gin.Context) {
	branchID, ok := h.parseID(c)
	if !ok {
		return
	}

	snap, err := h.service.Queue(c.Request.Context(), branchID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logf("level=error msg=websocket upgrade failed branch=%d err=%v", branchID, err)
		return
	}

	fc := h.hub.Register(branchID, conn)
	defer h.hub.Unregister(branchID, fc)

	if err := fc.writeJSON(snap); err != nil {
		return
	}

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	go h.pingLoop(fc)

	// snapshots are pushed by the hub; the read loop only detects disconnect
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) pingLoop(conn *feedConn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.ping(); err != nil {
			return
		}
	}
}

func (h *Handler) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid arrival data")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "ARRIVAL_NOT_FOUND", "Arrival not found")
	case errors.Is(err, ErrAlreadyCheckedIn):
		response.Error(c, http.StatusConflict, "ALREADY_CHECKED_IN", "Booking already has an active arrival")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "Arrival was modified concurrently, retry")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Operation failed")
	}
}
