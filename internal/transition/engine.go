package transition

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"milestone-service/internal/model"
	"milestone-service/pkg/metrics"
)

// Event is a domain event to be committed atomically with the aggregate.
type Event struct {
	RoutingKey string
	Payload    any
}

// Store is the persistence boundary for the Project aggregate. Save must
// compare-and-increment the aggregate version and return ErrConflict when
// the loaded version is stale.
type Store interface {
	Load(ctx context.Context, projectID string) (*model.Project, error)
	Save(ctx context.Context, p *model.Project, events []Event) error
}

// CacheInvalidator drops the cached display surfaces for a project after a
// successful transition.
type CacheInvalidator interface {
	InvalidateProject(ctx context.Context, projectID string) error
}

// Engine applies milestone transitions: load, authorize, mutate, recompute,
// persist. Dispute summarization is not called inline; the reject path emits
// a milestone.rejected event and enrichment happens after commit.
type Engine struct {
	store              Store
	cache              CacheInvalidator
	logger             *zap.Logger
	enforceVendorCheck bool
	now                func() time.Time
}

func NewEngine(store Store, cache CacheInvalidator, logger *zap.Logger, enforceVendorCheck bool) *Engine {
	return &Engine{
		store:              store,
		cache:              cache,
		logger:             logger,
		enforceVendorCheck: enforceVendorCheck,
		now:                time.Now,
	}
}

// ApplyTransition runs one transition as a single unit of work.
func (e *Engine) ApplyTransition(ctx context.Context, actor model.Actor, projectID, milestoneID string, action model.Action) error {
	start := time.Now()
	err := e.apply(ctx, actor, projectID, milestoneID, action)
	metrics.RecordTransition(action.Name(), Outcome(err), time.Since(start))
	return err
}

func (e *Engine) apply(ctx context.Context, actor model.Actor, projectID, milestoneID string, action model.Action) error {
	if actor.ID == "" {
		return ErrUnauthenticated
	}

	p, err := e.store.Load(ctx, projectID)
	if err != nil {
		return err
	}

	if err := Authorize(actor, action, p, e.enforceVendorCheck); err != nil {
		e.logger.Warn("Transition denied",
			zap.String("project_id", projectID),
			zap.String("milestone_id", milestoneID),
			zap.String("action", action.Name()),
			zap.String("actor_id", actor.ID),
		)
		return err
	}

	m := p.FindMilestone(milestoneID)
	if m == nil {
		return ErrNotFound
	}

	events, err := e.applyAction(m, p, action)
	if err != nil {
		return err
	}

	oldStatus := p.Status
	Recompute(p)
	if p.Status != oldStatus {
		events = append(events, Event{
			RoutingKey: model.EventProjectStatusChanged,
			Payload: model.ProjectStatusChangedPayload{
				ProjectID: p.ID,
				OldStatus: oldStatus,
				NewStatus: p.Status,
				ChangedAt: e.now(),
			},
		})
	}

	if err := e.store.Save(ctx, p, events); err != nil {
		return err
	}

	e.logger.Info("Milestone transition applied",
		zap.String("project_id", projectID),
		zap.String("milestone_id", milestoneID),
		zap.String("action", action.Name()),
		zap.String("milestone_status", m.Status),
		zap.String("project_status", p.Status),
	)

	// Stale display surfaces are dropped best-effort; a cache miss later is
	// cheaper than failing a committed transition here.
	if e.cache != nil {
		if err := e.cache.InvalidateProject(ctx, projectID); err != nil {
			e.logger.Warn("Failed to invalidate project views",
				zap.String("project_id", projectID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// applyAction mutates the milestone in memory and returns the domain events
// the mutation produced. No I/O happens here.
func (e *Engine) applyAction(m *model.Milestone, p *model.Project, action model.Action) ([]Event, error) {
	switch a := action.(type) {
	case model.SubmitProof:
		if m.Status != model.MilestoneStatusPending && m.Status != model.MilestoneStatusDispute {
			return nil, ErrInvalidTransition
		}
		if a.FileRef == "" && a.LinkRef == "" {
			return nil, &ValidationError{Msg: "Proof content is missing"}
		}

		proofURL := a.LinkRef
		if a.FileRef != "" {
			proofURL = a.FileRef
		}

		m.ProofURL = proofURL
		// a resubmission after rejection keeps the rejection trail in front
		// of the fresh notes so the dispute history is never dropped
		switch {
		case m.Status == model.MilestoneStatusDispute && m.ProofNotes != "" && a.Notes != "":
			m.ProofNotes = m.ProofNotes + "\n\n" + a.Notes
		case m.Status == model.MilestoneStatusDispute && m.ProofNotes != "":
			// keep the trail as-is
		default:
			m.ProofNotes = a.Notes
		}
		m.Status = model.MilestoneStatusInReview
		t := e.now()
		m.SubmittedAt = &t
		return nil, nil

	case model.Approve:
		if m.Status != model.MilestoneStatusInReview {
			return nil, ErrInvalidTransition
		}
		m.Status = model.MilestoneStatusApproved
		return nil, nil

	case model.Reject:
		if m.Status != model.MilestoneStatusInReview {
			return nil, ErrInvalidTransition
		}
		if strings.TrimSpace(a.Feedback) == "" {
			return nil, &ValidationError{Msg: "Feedback is required"}
		}

		priorNotes := m.ProofNotes
		m.Status = model.MilestoneStatusDispute
		m.ProofURL = ""
		m.ProofNotes = model.RejectionPrefix + a.Feedback + "\n\n" + priorNotes

		return []Event{{
			RoutingKey: model.EventMilestoneRejected,
			Payload: model.MilestoneRejectedPayload{
				ProjectID:   p.ID,
				MilestoneID: m.ID,
				OwnerID:     p.OwnerID,
				Title:       m.Title,
				Criteria:    m.Criteria,
				Feedback:    a.Feedback,
				ProofNotes:  priorNotes,
				RejectedAt:  e.now(),
			},
		}}, nil

	default:
		return nil, ErrInvalidTransition
	}
}
