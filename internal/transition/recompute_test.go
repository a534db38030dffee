package transition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"milestone-service/internal/model"
)

func TestRecompute(t *testing.T) {
	cases := []struct {
		name       string
		statuses   []string
		initial    string
		wantStatus string
	}{
		{"all approved completes", []string{model.MilestoneStatusApproved, model.MilestoneStatusApproved}, model.ProjectStatusActive, model.ProjectStatusCompleted},
		{"one pending stays active", []string{model.MilestoneStatusApproved, model.MilestoneStatusPending}, model.ProjectStatusActive, model.ProjectStatusActive},
		{"dispute keeps active", []string{model.MilestoneStatusApproved, model.MilestoneStatusDispute}, model.ProjectStatusActive, model.ProjectStatusActive},
		{"in_review keeps active", []string{model.MilestoneStatusInReview}, model.ProjectStatusActive, model.ProjectStatusActive},
		{"no milestones is active", nil, model.ProjectStatusCompleted, model.ProjectStatusActive},
		{"reopened dispute reverts completed", []string{model.MilestoneStatusDispute}, model.ProjectStatusCompleted, model.ProjectStatusActive},
		{"single approved completes", []string{model.MilestoneStatusApproved}, model.ProjectStatusActive, model.ProjectStatusCompleted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &model.Project{Status: tc.initial}
			for _, st := range tc.statuses {
				p.Milestones = append(p.Milestones, model.Milestone{Status: st})
			}

			Recompute(p)
			assert.Equal(t, tc.wantStatus, p.Status)
		})
	}
}
