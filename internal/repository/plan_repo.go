package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PlanRepository backs the plan resolver with the plans table.
type PlanRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPlanRepository(db *pgxpool.Pool, logger *zap.Logger) *PlanRepository {
	return &PlanRepository{db: db, logger: logger}
}

// GetPlan returns the raw stored plan value, or "" when no row exists.
// Normalization happens in the plan resolver, never here.
func (r *PlanRepository) GetPlan(ctx context.Context, ownerID string) (string, error) {
	query := `SELECT plan FROM plans WHERE user_id = $1`

	var plan string
	err := r.db.QueryRow(ctx, query, ownerID).Scan(&plan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		r.logger.Error("Failed to fetch plan", zap.String("owner_id", ownerID), zap.Error(err))
		return "", err
	}

	return plan, nil
}
