package model

import "time"

// Project statuses written by the engine. Display-only statuses used by the
// UI never reach storage through this service.
const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
)

// Milestone statuses. Closed set; nothing outside the transition engine may
// write Status.
const (
	MilestoneStatusPending  = "pending"
	MilestoneStatusInReview = "in_review"
	MilestoneStatusApproved = "approved"
	MilestoneStatusDispute  = "dispute"
)

// RejectionPrefix marks client feedback prepended to proof notes on reject.
const RejectionPrefix = "[CLIENT REJECTED]: "

type Project struct {
	ID          string      `json:"id"`
	OwnerID     string      `json:"owner_id"`
	VendorID    string      `json:"vendor_id,omitempty"`
	VendorEmail string      `json:"vendor_email,omitempty"`
	Status      string      `json:"status"` // active / completed, derived from milestones
	Milestones  []Milestone `json:"milestones"`
	Version     int64       `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type Milestone struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Criteria       string     `json:"criteria"`
	DueDate        time.Time  `json:"due_date"`
	Amount         int64      `json:"amount"` // cents
	Status         string     `json:"status"`
	ProofURL       string     `json:"proof_url,omitempty"`
	ProofNotes     string     `json:"proof_notes,omitempty"`
	DisputeSummary string     `json:"dispute_summary,omitempty"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
}

// FindMilestone returns a pointer into the project's milestone slice, or nil.
func (p *Project) FindMilestone(milestoneID string) *Milestone {
	for i := range p.Milestones {
		if p.Milestones[i].ID == milestoneID {
			return &p.Milestones[i]
		}
	}
	return nil
}

// Actor is the authenticated caller resolved from the bearer token.
type Actor struct {
	ID    string
	Email string
}
