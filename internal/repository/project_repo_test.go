package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"milestone-service/internal/model"
)

func TestSummaryStillWanted(t *testing.T) {
	cases := []struct {
		name string
		m    model.Milestone
		want bool
	}{
		{"disputed and unenriched takes the write", model.Milestone{Status: model.MilestoneStatusDispute}, true},
		{"already enriched is skipped", model.Milestone{Status: model.MilestoneStatusDispute, DisputeSummary: "existing"}, false},
		{"resubmitted milestone is skipped", model.Milestone{Status: model.MilestoneStatusInReview}, false},
		{"approved milestone is skipped", model.Milestone{Status: model.MilestoneStatusApproved}, false},
		{"pending milestone is skipped", model.Milestone{Status: model.MilestoneStatusPending}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, summaryStillWanted(&tc.m))
		})
	}
}
