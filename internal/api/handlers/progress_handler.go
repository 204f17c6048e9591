package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/dto"
	"github.com/goto-masaaki-dm/praise-todo/internal/api/middleware"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/events"
	"github.com/goto-masaaki-dm/praise-todo/internal/domain/gamification"
	"github.com/goto-masaaki-dm/praise-todo/internal/infrastructure/cache"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsPingInterval = 30 * time.Second
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// ProgressSubscriber opens a confirmed subscription to a user's progress events.
type ProgressSubscriber interface {
	SubscribeProgress(ctx context.Context, userID uuid.UUID) (*cache.ProgressSubscription, error)
}

// ProgressHandler serves points, streak and achievement reads, manual
// adjustments and the live progress stream.
type ProgressHandler struct {
	service    gamification.Service
	subscriber ProgressSubscriber
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

// NewProgressHandler builds the handler. A nil subscriber disables the
// websocket endpoint.
func NewProgressHandler(service gamification.Service, subscriber ProgressSubscriber, allowedOrigins []string, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		service:    service,
		subscriber: subscriber,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// GetProgress godoc
// @Summary Points, streak and achievements for the caller
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ProgressResponse
// @Router /api/progress [get]
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	progress, err := h.service.GetProgress(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ProgressToResponse(progress)})
}

// ListPoints pages through the ledger, newest first.
func (h *ProgressHandler) ListPoints(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, ok := middleware.GetValidatedQuery[dto.PageRequest](c)
	if !ok {
		page = &dto.PageRequest{}
		if err := c.ShouldBindQuery(page); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}
	}

	points, total, err := h.service.ListPoints(c.Request.Context(), userID, page.Page, page.PageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": dto.PointListResponse{
		Points:     PointsToResponse(points),
		TotalCount: total,
		Page:       page.Page,
		PageSize:   page.PageSize,
	}})
}

func (h *ProgressHandler) AdjustPoints(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	req, ok := boundBody[dto.AdjustPointsRequest](c)
	if !ok {
		return
	}

	point, err := h.service.AdjustPoints(c.Request.Context(), userID, req.Amount, req.Note)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": PointsToResponse([]gamification.Point{*point})[0]})
}

func (h *ProgressHandler) ListAchievements(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	achievements, err := h.service.ListAchievements(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": AchievementsToResponse(achievements)})
}

// Catalog lists every achievement that can be unlocked.
func (h *ProgressHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": CatalogToResponse(h.service.Catalog())})
}

// Stream upgrades to a websocket, sends the current progress and then
// forwards every progress event published for the caller.
func (h *ProgressHandler) Stream(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if h.subscriber == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live progress is disabled"})
		return
	}

	// Subscribe before reading the snapshot so no event falls between them.
	sub, err := h.subscriber.SubscribeProgress(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to subscribe to progress events", zap.Error(err), zap.String("user_id", userID.String()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live progress is unavailable"})
		return
	}
	defer sub.Close()

	progress, err := h.service.GetProgress(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade to WebSocket", zap.Error(err), zap.String("user_id", userID.String()))
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	logger := h.logger.With(zap.String("user_id", userID.String()))
	logger.Debug("Progress stream opened")

	if err := writeJSON(ws, gin.H{"type": "snapshot", "progress": ProgressToResponse(progress)}); err != nil {
		return
	}

	updates := make(chan *events.ProgressEvent, 16)
	go func() {
		err := sub.Listen(ctx, func(e *events.ProgressEvent) error {
			select {
			case updates <- e:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn("Progress subscription ended", zap.Error(err))
		}
		cancel()
	}()

	// The reader only handles control frames and notices the client leaving.
	ws.SetReadLimit(1024)
	_ = ws.SetReadDeadline(time.Now().Add(wsReadTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Debug("WebSocket read error", zap.Error(err))
				}
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case e := <-updates:
			if err := writeJSON(ws, gin.H{"type": "event", "event": e}); err != nil {
				return
			}
		case <-ping.C:
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			logger.Debug("Progress stream closed")
			return
		}
	}
}

func writeJSON(ws *websocket.Conn, v interface{}) error {
	_ = ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return ws.WriteJSON(v)
}
