package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"milestone-service/internal/model"
	"milestone-service/internal/transition"
	"milestone-service/pkg/util"
)

type TransitionHandler struct {
	engine *transition.Engine
	logger *zap.Logger
}

func NewTransitionHandler(engine *transition.Engine, logger *zap.Logger) *TransitionHandler {
	return &TransitionHandler{engine: engine, logger: logger}
}

type submitProofRequest struct {
	FileRef string `json:"file_ref"`
	LinkRef string `json:"link_ref"`
	Notes   string `json:"notes"`
}

type rejectRequest struct {
	Feedback string `json:"feedback"`
}

func (h *TransitionHandler) SubmitProof(c *gin.Context) {
	var req submitProofRequest
	// an empty body is allowed here; the engine reports the missing proof
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.applyAction(c, model.SubmitProof{
		FileRef: req.FileRef,
		LinkRef: req.LinkRef,
		Notes:   req.Notes,
	})
}

func (h *TransitionHandler) Approve(c *gin.Context) {
	h.applyAction(c, model.Approve{})
}

func (h *TransitionHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.applyAction(c, model.Reject{Feedback: req.Feedback})
}

func (h *TransitionHandler) applyAction(c *gin.Context, action model.Action) {
	projectID := c.Param("id")
	milestoneID := c.Param("mid")

	actor, ok := util.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	h.logger.Info("Transition request received",
		zap.String("project_id", projectID),
		zap.String("milestone_id", milestoneID),
		zap.String("action", action.Name()),
		zap.String("actor_id", actor.ID),
	)

	err := h.engine.ApplyTransition(c.Request.Context(), actor, projectID, milestoneID, action)
	if err != nil {
		h.writeError(c, projectID, milestoneID, action, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps the engine's failure kinds to HTTP responses. Internal
// detail stays in the logs; callers only see a short message.
func (h *TransitionHandler) writeError(c *gin.Context, projectID, milestoneID string, action model.Action, err error) {
	var ve *transition.ValidationError

	switch {
	case errors.Is(err, transition.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, transition.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
	case errors.Is(err, transition.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "project or milestone not found"})
	case errors.Is(err, transition.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "action not permitted from current milestone state"})
	case errors.Is(err, transition.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "project was modified concurrently, please retry"})
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Msg})
	default:
		h.logger.Error("Transition failed",
			zap.String("project_id", projectID),
			zap.String("milestone_id", milestoneID),
			zap.String("action", action.Name()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
