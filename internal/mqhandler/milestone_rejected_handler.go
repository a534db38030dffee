package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"milestone-service/internal/dispute"
	"milestone-service/internal/model"
	"milestone-service/internal/plan"
	"milestone-service/pkg/metrics"
	"milestone-service/pkg/util"
)

// maxEnrichmentRetries caps how often one rejected-milestone message may be
// requeued before it is parked.
const maxEnrichmentRetries = 5

// PlanResolver yields the owning party's tier.
type PlanResolver interface {
	Resolve(ctx context.Context, ownerID string) plan.Tier
}

// Summarizer generates the dispute summary for a paid tier.
type Summarizer interface {
	Summarize(ctx context.Context, tier plan.Tier, req dispute.Request) (string, error)
}

// SummaryStore performs the scoped, idempotent dispute_summary write. The
// bool reports whether the write landed; false means the milestone moved on
// or was already enriched.
type SummaryStore interface {
	UpdateDisputeSummary(ctx context.Context, projectID, milestoneID, summary string) (bool, error)
}

// DLQPublisher parks messages that can never succeed.
type DLQPublisher interface {
	PublishToDLQ(routingKey string, payload []byte, originalError string) error
}

// RetryTracker counts redeliveries of one message across requeues.
type RetryTracker interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// MilestoneRejectedHandler consumes milestone.rejected events and enriches
// the disputed milestone with an AI summary. The reject transition has
// already committed by the time this runs, so every failure here is
// non-fatal to the transition itself: retryable errors requeue until the
// retry budget is spent, everything else is logged and parked.
type MilestoneRejectedHandler struct {
	plans      PlanResolver
	summarizer Summarizer
	store      SummaryStore
	dlq        DLQPublisher
	retries    RetryTracker
	logger     *zap.Logger
}

func NewMilestoneRejectedHandler(
	plans PlanResolver,
	summarizer Summarizer,
	store SummaryStore,
	dlq DLQPublisher,
	retries RetryTracker,
	logger *zap.Logger,
) *MilestoneRejectedHandler {
	return &MilestoneRejectedHandler{
		plans:      plans,
		summarizer: summarizer,
		store:      store,
		dlq:        dlq,
		retries:    retries,
		logger:     logger,
	}
}

func (h *MilestoneRejectedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p model.MilestoneRejectedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Malformed milestone.rejected payload", zap.Error(err))
		h.park(raw, err.Error())
		return nil
	}

	tier := h.plans.Resolve(ctx, p.OwnerID)
	if tier == plan.TierFree {
		// free tier never gets a summary; drop the event
		metrics.IncrementEnrichment(string(tier), "skipped_free")
		return nil
	}

	retryKey := util.FormatRetryKey("milestone.rejected", p.ProjectID, p.MilestoneID)
	var retryCount int64
	if h.retries != nil {
		retryCount, _ = h.retries.IncrementAndGet(ctx, retryKey)
	}

	summary, err := h.summarizer.Summarize(ctx, tier, dispute.Request{
		Title:      p.Title,
		Criteria:   p.Criteria,
		Feedback:   p.Feedback,
		ProofNotes: p.ProofNotes,
	})
	if err != nil {
		return h.handleEnrichmentError(ctx, err, raw, &p, tier, retryKey, retryCount, "Dispute summarization failed")
	}

	applied, err := h.store.UpdateDisputeSummary(ctx, p.ProjectID, p.MilestoneID, summary)
	if err != nil {
		return h.handleEnrichmentError(ctx, err, raw, &p, tier, retryKey, retryCount, "Failed to attach dispute summary")
	}

	h.resetRetries(ctx, retryKey)

	if !applied {
		// milestone left dispute or was already enriched while we generated
		metrics.IncrementEnrichment(string(tier), "skipped_stale")
		h.logger.Info("Dispute summary no longer wanted, skipped",
			zap.String("project_id", p.ProjectID),
			zap.String("milestone_id", p.MilestoneID),
		)
		return nil
	}

	metrics.IncrementEnrichment(string(tier), "written")
	h.logger.Info("Dispute summary attached",
		zap.String("project_id", p.ProjectID),
		zap.String("milestone_id", p.MilestoneID),
		zap.String("tier", string(tier)),
	)
	return nil
}

// handleEnrichmentError decides between requeue and park: retryable errors
// requeue until the retry budget is spent, everything else parks right away.
func (h *MilestoneRejectedHandler) handleEnrichmentError(
	ctx context.Context,
	err error,
	raw json.RawMessage,
	p *model.MilestoneRejectedPayload,
	tier plan.Tier,
	retryKey string,
	retryCount int64,
	msg string,
) error {
	retryable, kind := util.IsRetryableError(err)

	if retryable && retryCount <= maxEnrichmentRetries {
		h.logger.Warn(msg+", requeueing",
			zap.String("project_id", p.ProjectID),
			zap.String("milestone_id", p.MilestoneID),
			zap.String("error_type", kind),
			zap.Int64("retry", retryCount),
			zap.Error(err),
		)
		return err
	}

	if retryable {
		h.logger.Warn(msg+", retry budget spent, parking",
			zap.String("project_id", p.ProjectID),
			zap.String("milestone_id", p.MilestoneID),
			zap.Int64("retry", retryCount),
			zap.Error(err),
		)
	} else {
		h.logger.Warn(msg+", dropping",
			zap.String("project_id", p.ProjectID),
			zap.String("milestone_id", p.MilestoneID),
			zap.Error(err),
		)
	}

	metrics.IncrementEnrichment(string(tier), "failed")
	h.park(raw, err.Error())
	h.resetRetries(ctx, retryKey)
	return nil
}

func (h *MilestoneRejectedHandler) resetRetries(ctx context.Context, retryKey string) {
	if h.retries == nil {
		return
	}
	if err := h.retries.Reset(ctx, retryKey); err != nil {
		h.logger.Warn("Failed to reset retry counter", zap.String("key", retryKey), zap.Error(err))
	}
}

func (h *MilestoneRejectedHandler) park(raw json.RawMessage, reason string) {
	if h.dlq == nil {
		return
	}
	if err := h.dlq.PublishToDLQ(model.EventMilestoneRejected, raw, reason); err != nil {
		h.logger.Error("Failed to publish to DLQ", zap.Error(err))
	}
}
