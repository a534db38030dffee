package plan

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Tier is the owning party's subscription level.
type Tier string

const (
	TierFree    Tier = "free"
	TierStarter Tier = "starter"
	TierAgency  Tier = "agency"
)

const cacheTTL = 5 * time.Minute

// Store looks up the raw stored plan value for an owner. Empty string means
// no stored value.
type Store interface {
	GetPlan(ctx context.Context, ownerID string) (string, error)
}

// Resolver is the single home of plan tier normalization. Every consumer of
// plan semantics goes through Resolve; nothing else may interpret the raw
// stored string.
type Resolver struct {
	store  Store
	cache  *redis.Client
	logger *zap.Logger
}

func NewResolver(store Store, cache *redis.Client, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Resolve returns the owner's tier. Lookup failures and unknown values both
// degrade to free; plan gating must never take a paid path by accident.
func (r *Resolver) Resolve(ctx context.Context, ownerID string) Tier {
	key := "plan:" + ownerID

	if r.cache != nil {
		if cached, err := r.cache.Get(ctx, key).Result(); err == nil {
			return Normalize(cached)
		}
	}

	raw, err := r.store.GetPlan(ctx, ownerID)
	if err != nil {
		r.logger.Warn("Plan lookup failed, defaulting to free",
			zap.String("owner_id", ownerID),
			zap.Error(err),
		)
		return TierFree
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
			r.logger.Warn("Failed to cache plan",
				zap.String("owner_id", ownerID),
				zap.Error(err),
			)
		}
	}

	return Normalize(raw)
}

// Normalize maps a raw stored plan value onto the closed tier set. Anything
// unrecognized, including absence, is free.
func Normalize(raw string) Tier {
	switch Tier(raw) {
	case TierStarter:
		return TierStarter
	case TierAgency:
		return TierAgency
	default:
		return TierFree
	}
}
