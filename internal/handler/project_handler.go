package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"milestone-service/internal/model"
	"milestone-service/internal/repository"
	"milestone-service/internal/transition"
	"milestone-service/internal/viewcache"
	"milestone-service/pkg/util"
)

type ProjectHandler struct {
	repo   *repository.ProjectRepository
	views  *viewcache.Cache
	logger *zap.Logger
}

func NewProjectHandler(repo *repository.ProjectRepository, views *viewcache.Cache, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{repo: repo, views: views, logger: logger}
}

type projectView struct {
	Project *model.Project `json:"project"`
}

// GetProject serves the project milestone view to its owner or vendor,
// backed by the redis view cache.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID := c.Param("id")

	actor, ok := util.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	if h.views != nil {
		if cached := h.views.GetProjectView(c.Request.Context(), projectID); cached != "" {
			var view projectView
			if err := json.Unmarshal([]byte(cached), &view); err == nil && view.Project != nil {
				if !canViewProject(actor, view.Project) {
					c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
					return
				}
				c.Data(http.StatusOK, "application/json", []byte(cached))
				return
			}
		}
	}

	p, err := h.repo.Load(c.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, transition.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("Failed to load project view",
			zap.String("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch project"})
		return
	}

	if !canViewProject(actor, p) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	rendered, err := json.Marshal(projectView{Project: p})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if h.views != nil {
		h.views.SetProjectView(c.Request.Context(), projectID, string(rendered))
	}

	c.Data(http.StatusOK, "application/json", rendered)
}

func canViewProject(actor model.Actor, p *model.Project) bool {
	if actor.ID == p.OwnerID {
		return true
	}
	if p.VendorID != "" && actor.ID == p.VendorID {
		return true
	}
	return p.VendorEmail != "" && strings.EqualFold(actor.Email, p.VendorEmail)
}
