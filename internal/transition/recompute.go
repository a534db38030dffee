package transition

import "milestone-service/internal/model"

// Recompute derives the project status from its milestones: completed when
// every milestone is approved, active otherwise. The derived status is never
// written independently; this runs after every successful transition so the
// aggregate can never drift from its milestones.
func Recompute(p *model.Project) {
	if len(p.Milestones) == 0 {
		// the engine never creates empty aggregates; an empty contract is
		// not a finished one
		p.Status = model.ProjectStatusActive
		return
	}

	for i := range p.Milestones {
		if p.Milestones[i].Status != model.MilestoneStatusApproved {
			p.Status = model.ProjectStatusActive
			return
		}
	}

	p.Status = model.ProjectStatusCompleted
}
