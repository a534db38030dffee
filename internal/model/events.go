package model

import "time"

// Routing keys for domain events on the events exchange.
const (
	EventMilestoneRejected    = "milestone.rejected"
	EventProjectStatusChanged = "project.status.changed"
)

// MilestoneRejectedPayload drives async dispute summary enrichment.
type MilestoneRejectedPayload struct {
	ProjectID   string    `json:"project_id"`
	MilestoneID string    `json:"milestone_id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Criteria    string    `json:"criteria"`
	Feedback    string    `json:"feedback"`
	ProofNotes  string    `json:"proof_notes"`
	RejectedAt  time.Time `json:"rejected_at"`
}

// ProjectStatusChangedPayload is published when the derived aggregate status flips.
type ProjectStatusChangedPayload struct {
	ProjectID string    `json:"project_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	ChangedAt time.Time `json:"changed_at"`
}
