package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"milestone-service/internal/model"
	"milestone-service/internal/transition"
	"milestone-service/pkg/metrics"
	"milestone-service/pkg/outbox"
)

// ProjectRepository stores the Project aggregate as a single row with the
// milestones held in a jsonb document, guarded by an integer version for
// optimistic concurrency.
type ProjectRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		outbox: outboxRepo,
		logger: logger,
	}
}

func (r *ProjectRepository) Load(ctx context.Context, projectID string) (*model.Project, error) {
	query := `
        SELECT id, owner_id, vendor_id, vendor_email, status, milestones, version, created_at, updated_at
        FROM projects
        WHERE id = $1
    `

	var p model.Project
	var milestonesJSON []byte
	err := r.db.QueryRow(ctx, query, projectID).Scan(
		&p.ID,
		&p.OwnerID,
		&p.VendorID,
		&p.VendorEmail,
		&p.Status,
		&milestonesJSON,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transition.ErrNotFound
		}
		r.logger.Error("Failed to load project", zap.String("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	if err := json.Unmarshal(milestonesJSON, &p.Milestones); err != nil {
		r.logger.Error("Failed to decode milestones", zap.String("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("failed to decode milestones: %w", err)
	}

	return &p, nil
}

// Save writes the aggregate back with a compare-and-increment on version and
// inserts any domain events into the outbox in the same transaction. A stale
// version yields transition.ErrConflict and nothing is persisted.
func (r *ProjectRepository) Save(ctx context.Context, p *model.Project, events []transition.Event) error {
	milestonesJSON, err := json.Marshal(p.Milestones)
	if err != nil {
		return fmt.Errorf("failed to encode milestones: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        UPDATE projects
        SET status = $2, milestones = $3, version = version + 1, updated_at = NOW()
        WHERE id = $1 AND version = $4
    `

	tag, err := tx.Exec(ctx, query, p.ID, p.Status, milestonesJSON, p.Version)
	if err != nil {
		r.logger.Error("Failed to save project", zap.String("project_id", p.ID), zap.Error(err))
		return fmt.Errorf("failed to save project: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// the row existed at load time, so zero rows means a concurrent writer won
		metrics.SaveConflictCount.Inc()
		r.logger.Warn("Optimistic lock conflict on project save",
			zap.String("project_id", p.ID),
			zap.Int64("loaded_version", p.Version),
		)
		return transition.ErrConflict
	}

	for _, ev := range events {
		if err := outbox.InsertEventInTx(ctx, tx, r.outbox, "project", p.ID, ev.RoutingKey, ev.Payload); err != nil {
			return fmt.Errorf("failed to enqueue %s event: %w", ev.RoutingKey, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit project save: %w", err)
	}

	p.Version++
	return nil
}

// summaryStillWanted reports whether the enrichment write should land: only
// a milestone still in dispute with no summary attached takes one.
func summaryStillWanted(m *model.Milestone) bool {
	return m.Status == model.MilestoneStatusDispute && m.DisputeSummary == ""
}

// UpdateDisputeSummary attaches a summary to a disputed milestone. The write
// is scoped and idempotent: it only lands if the milestone is still in
// dispute and has no summary yet, and it retries version conflicts since it
// races with regular transitions. Returns false when the milestone moved on
// or was already enriched and nothing was written.
func (r *ProjectRepository) UpdateDisputeSummary(ctx context.Context, projectID, milestoneID, summary string) (bool, error) {
	applied := false

	operation := func() error {
		p, err := r.Load(ctx, projectID)
		if err != nil {
			if errors.Is(err, transition.ErrNotFound) {
				return backoff.Permanent(err)
			}
			return err
		}

		m := p.FindMilestone(milestoneID)
		if m == nil {
			return backoff.Permanent(transition.ErrNotFound)
		}

		if !summaryStillWanted(m) {
			applied = false
			return nil
		}

		m.DisputeSummary = summary

		if err := r.Save(ctx, p, nil); err != nil {
			if errors.Is(err, transition.ErrConflict) {
				return err
			}
			return backoff.Permanent(err)
		}
		applied = true
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		return false, err
	}
	return applied, nil
}
