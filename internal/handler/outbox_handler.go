package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultReplayLimit = 100

// FailedEventReplayer re-publishes parked outbox events.
type FailedEventReplayer interface {
	ReplayFailedEvents(ctx context.Context, limit int) (int, error)
}

// OutboxHandler exposes the operational recovery surface for the outbox.
type OutboxHandler struct {
	replayer FailedEventReplayer
	logger   *zap.Logger
}

func NewOutboxHandler(replayer FailedEventReplayer, logger *zap.Logger) *OutboxHandler {
	return &OutboxHandler{replayer: replayer, logger: logger}
}

// ReplayFailed replays outbox events that exhausted dispatcher retries.
func (h *OutboxHandler) ReplayFailed(c *gin.Context) {
	limit := defaultReplayLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	count, err := h.replayer.ReplayFailedEvents(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Outbox replay failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "replay failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"replayed": count})
}
