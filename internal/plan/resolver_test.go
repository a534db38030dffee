package plan

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakePlanStore struct {
	plans map[string]string
	err   error
	calls int
}

func (f *fakePlanStore) GetPlan(ctx context.Context, ownerID string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.plans[ownerID], nil
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw  string
		want Tier
	}{
		{"free", TierFree},
		{"starter", TierStarter},
		{"agency", TierAgency},
		{"", TierFree},
		{"FREE", TierFree},
		{"Starter", TierFree},
		{"enterprise", TierFree},
		{"pro", TierFree},
		{"null", TierFree},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.raw), "raw %q", tc.raw)
	}
}

func TestResolveKnownTiers(t *testing.T) {
	store := &fakePlanStore{plans: map[string]string{
		"owner-starter": "starter",
		"owner-agency":  "agency",
	}}
	r := NewResolver(store, nil, zap.NewNop())
	ctx := context.Background()

	assert.Equal(t, TierStarter, r.Resolve(ctx, "owner-starter"))
	assert.Equal(t, TierAgency, r.Resolve(ctx, "owner-agency"))
	assert.Equal(t, TierFree, r.Resolve(ctx, "owner-without-plan"))
}

func TestResolveLookupFailureDefaultsToFree(t *testing.T) {
	store := &fakePlanStore{err: errors.New("connection refused")}
	r := NewResolver(store, nil, zap.NewNop())

	assert.Equal(t, TierFree, r.Resolve(context.Background(), "owner-1"))
}

func TestResolveUnknownValueDefaultsToFree(t *testing.T) {
	store := &fakePlanStore{plans: map[string]string{"owner-1": "platinum"}}
	r := NewResolver(store, nil, zap.NewNop())

	assert.Equal(t, TierFree, r.Resolve(context.Background(), "owner-1"))
	assert.Equal(t, 1, store.calls)
}
