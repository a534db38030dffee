package model

// Action names as they appear in routing keys and metrics labels.
const (
	ActionSubmitProof = "submit_proof"
	ActionApprove     = "approve"
	ActionReject      = "reject"
)

// Action is the sealed set of milestone transitions. Each variant carries
// only the fields its transition needs, so payload shape is checked at
// compile time instead of by field sniffing.
type Action interface {
	Name() string
}

// SubmitProof submits delivery evidence. At least one of FileRef/LinkRef is
// required; FileRef wins when both are present.
type SubmitProof struct {
	FileRef string
	LinkRef string
	Notes   string
}

func (SubmitProof) Name() string { return ActionSubmitProof }

// Approve accepts the milestone's submitted proof. Owner only.
type Approve struct{}

func (Approve) Name() string { return ActionApprove }

// Reject disputes the milestone's submitted proof. Owner only; Feedback is
// mandatory.
type Reject struct {
	Feedback string
}

func (Reject) Name() string { return ActionReject }
