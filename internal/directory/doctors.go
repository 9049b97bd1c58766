package directory

import (
	"context"
	"net/http"

	"github.com/jwalitptl/directory-admin/internal/model"
	"github.com/jwalitptl/directory-admin/internal/store"
	apperrors "github.com/jwalitptl/directory-admin/pkg/errors"
)

// Doctors is the doctor store plus the admin-only verify toggle.
type Doctors struct {
	*store.Store[model.Doctor]
}

// ToggleVerified flips the verified flag of a loaded doctor and swaps in the
// record the API returns.
func (d *Doctors) ToggleVerified(ctx context.Context, id string) (model.Doctor, error) {
	cur, ok := d.Find(id)
	if !ok {
		return model.Doctor{}, d.Reject(ctx, "verify", apperrors.NewNotFound("doctor "+id, nil))
	}

	return d.Mutate(ctx, store.Call[model.Doctor]{
		Action:  "verify",
		Method:  http.MethodPatch,
		Path:    d.ItemPath(id) + "/verify",
		Body:    map[string]any{"isVerified": !bool(cur.IsVerified)},
		Success: "Doctor status updated successfully.",
		Failure: "Failed to update status.",
		Apply: func(items []model.Doctor, res store.Single[model.Doctor]) []model.Doctor {
			for i := range items {
				if items[i].ID != id {
					continue
				}
				if res.Found {
					items[i] = res.Item
				} else {
					items[i].IsVerified = !cur.IsVerified
				}
			}
			return items
		},
	})
}
