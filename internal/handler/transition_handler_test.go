package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"milestone-service/internal/model"
	"milestone-service/internal/transition"
)

type memStore struct {
	projects map[string]*model.Project
}

func (s *memStore) Load(ctx context.Context, projectID string) (*model.Project, error) {
	p, ok := s.projects[projectID]
	if !ok {
		return nil, transition.ErrNotFound
	}
	b, _ := json.Marshal(p)
	var cp model.Project
	_ = json.Unmarshal(b, &cp)
	return &cp, nil
}

func (s *memStore) Save(ctx context.Context, p *model.Project, events []transition.Event) error {
	stored := s.projects[p.ID]
	if p.Version != stored.Version {
		return transition.ErrConflict
	}
	p.Version++
	cp := *p
	s.projects[p.ID] = &cp
	return nil
}

func setupRouter(store *memStore, actor model.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := transition.NewEngine(store, nil, zap.NewNop(), true)
	h := NewTransitionHandler(engine, zap.NewNop())

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actor.ID != "" {
			c.Set("actor", actor)
		}
		c.Next()
	})
	r.POST("/projects/:id/milestones/:mid/submit-proof", h.SubmitProof)
	r.POST("/projects/:id/milestones/:mid/approve", h.Approve)
	r.POST("/projects/:id/milestones/:mid/reject", h.Reject)
	return r
}

func handlerProject(status string) *memStore {
	return &memStore{projects: map[string]*model.Project{
		"proj-1": {
			ID:          "proj-1",
			OwnerID:     "owner-1",
			VendorID:    "vendor-1",
			VendorEmail: "vendor@example.test",
			Status:      model.ProjectStatusActive,
			Version:     1,
			Milestones:  []model.Milestone{{ID: "ms-1", Title: "Milestone 1", Status: status}},
		},
	}}
}

func doPost(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmitProofEndpoint(t *testing.T) {
	store := handlerProject(model.MilestoneStatusPending)
	r := setupRouter(store, model.Actor{ID: "vendor-1", Email: "vendor@example.test"})

	w := doPost(t, r, "/projects/proj-1/milestones/ms-1/submit-proof", `{"link_ref":"https://x.test/proof","notes":"done"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	m := store.projects["proj-1"].FindMilestone("ms-1")
	assert.Equal(t, model.MilestoneStatusInReview, m.Status)
}

func TestSubmitProofEmptyBodyIsValidationError(t *testing.T) {
	store := handlerProject(model.MilestoneStatusPending)
	r := setupRouter(store, model.Actor{ID: "vendor-1", Email: "vendor@example.test"})

	w := doPost(t, r, "/projects/proj-1/milestones/ms-1/submit-proof", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Proof content is missing")
}

func TestApproveEndpointByNonOwner(t *testing.T) {
	store := handlerProject(model.MilestoneStatusInReview)
	r := setupRouter(store, model.Actor{ID: "vendor-1", Email: "vendor@example.test"})

	w := doPost(t, r, "/projects/proj-1/milestones/ms-1/approve", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized")
}

func TestApproveEndpointByOwner(t *testing.T) {
	store := handlerProject(model.MilestoneStatusInReview)
	r := setupRouter(store, model.Actor{ID: "owner-1", Email: "owner@example.test"})

	w := doPost(t, r, "/projects/proj-1/milestones/ms-1/approve", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.ProjectStatusCompleted, store.projects["proj-1"].Status)
}

func TestRejectEndpointRequiresFeedback(t *testing.T) {
	store := handlerProject(model.MilestoneStatusInReview)
	r := setupRouter(store, model.Actor{ID: "owner-1", Email: "owner@example.test"})

	w := doPost(t, r, "/projects/proj-1/milestones/ms-1/reject", `{"feedback":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Feedback is required")
}

func TestInvalidTransitionIs422(t *testing.T) {
	store := handlerProject(model.MilestoneStatusPending)
	r := setupRouter(store, model.Actor{ID: "owner-1", Email: "owner@example.test"})

	w := doPost(t, r, "/projects/proj-1/milestones/ms-1/approve", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUnknownProjectIs404(t *testing.T) {
	store := handlerProject(model.MilestoneStatusPending)
	r := setupRouter(store, model.Actor{ID: "owner-1", Email: "owner@example.test"})

	w := doPost(t, r, "/projects/no-such/milestones/ms-1/approve", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMissingActorIs401(t *testing.T) {
	store := handlerProject(model.MilestoneStatusPending)
	r := setupRouter(store, model.Actor{})

	w := doPost(t, r, "/projects/proj-1/milestones/ms-1/approve", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMalformedBodyIs400(t *testing.T) {
	store := handlerProject(model.MilestoneStatusInReview)
	r := setupRouter(store, model.Actor{ID: "owner-1", Email: "owner@example.test"})

	w := doPost(t, r, "/projects/proj-1/milestones/ms-1/reject", `{"feedback": 42}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
