package transition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"milestone-service/internal/model"
)

func authzProject() *model.Project {
	return &model.Project{
		ID:          "proj-1",
		OwnerID:     "owner-1",
		VendorID:    "vendor-1",
		VendorEmail: "vendor@example.test",
	}
}

func TestAuthorize(t *testing.T) {
	ownerActor := model.Actor{ID: "owner-1", Email: "owner@example.test"}
	vendorActor := model.Actor{ID: "vendor-1", Email: "vendor@example.test"}
	otherActor := model.Actor{ID: "other", Email: "other@example.test"}

	cases := []struct {
		name    string
		actor   model.Actor
		action  model.Action
		project *model.Project
		enforce bool
		want    error
	}{
		{"owner can approve", ownerActor, model.Approve{}, authzProject(), true, nil},
		{"owner can reject", ownerActor, model.Reject{}, authzProject(), true, nil},
		{"vendor cannot approve", vendorActor, model.Approve{}, authzProject(), true, ErrUnauthorized},
		{"vendor cannot reject", vendorActor, model.Reject{}, authzProject(), true, ErrUnauthorized},
		{"stranger cannot approve", otherActor, model.Approve{}, authzProject(), true, ErrUnauthorized},
		{"vendor can submit by id", vendorActor, model.SubmitProof{}, authzProject(), true, nil},
		{"stranger cannot submit", otherActor, model.SubmitProof{}, authzProject(), true, ErrUnauthorized},
		{"owner cannot submit when vendor bound", ownerActor, model.SubmitProof{}, authzProject(), true, ErrUnauthorized},
		{"enforcement off opens submit", otherActor, model.SubmitProof{}, authzProject(), false, nil},
		{"enforcement off still gates approve", otherActor, model.Approve{}, authzProject(), false, ErrUnauthorized},
		{"anonymous actor rejected", model.Actor{}, model.Approve{}, authzProject(), true, ErrUnauthenticated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.actor, tc.action, tc.project, tc.enforce)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestAuthorizeSubmitByEmailIsCaseInsensitive(t *testing.T) {
	p := authzProject()
	p.VendorID = ""

	actor := model.Actor{ID: "whoever", Email: "Vendor@Example.TEST"}
	assert.NoError(t, Authorize(actor, model.SubmitProof{}, p, true))
}

func TestAuthorizeSubmitWithUnboundVendor(t *testing.T) {
	p := authzProject()
	p.VendorID = ""
	p.VendorEmail = ""

	actor := model.Actor{ID: "anyone", Email: "anyone@example.test"}
	assert.NoError(t, Authorize(actor, model.SubmitProof{}, p, true))
}

func TestAuthorizeEmptyEmailDoesNotMatchEmptyVendorEmail(t *testing.T) {
	p := authzProject()
	p.VendorEmail = ""

	actor := model.Actor{ID: "other", Email: ""}
	assert.ErrorIs(t, Authorize(actor, model.SubmitProof{}, p, true), ErrUnauthorized)
}
