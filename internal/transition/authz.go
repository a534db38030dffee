package transition

import (
	"strings"

	"milestone-service/internal/model"
)

// Authorize decides whether actor may run action against project.
//
// approve/reject are owner-only. submit_proof is bound to the assigned
// vendor when enforceVendorCheck is on; a project whose vendor fields are
// still empty accepts proof from any authenticated actor, since vendor
// identity is only loosely bound until the email invite is accepted.
func Authorize(actor model.Actor, action model.Action, project *model.Project, enforceVendorCheck bool) error {
	if actor.ID == "" {
		return ErrUnauthenticated
	}

	switch action.(type) {
	case model.Approve, model.Reject:
		if actor.ID != project.OwnerID {
			return ErrUnauthorized
		}
	case model.SubmitProof:
		if !enforceVendorCheck {
			return nil
		}
		if project.VendorID == "" && project.VendorEmail == "" {
			return nil
		}
		if actor.ID == project.VendorID {
			return nil
		}
		if project.VendorEmail != "" && strings.EqualFold(actor.Email, project.VendorEmail) {
			return nil
		}
		return ErrUnauthorized
	}

	return nil
}
