package directory

import (
	"context"

	"github.com/jwalitptl/directory-admin/internal/model"
	"github.com/jwalitptl/directory-admin/internal/normalize"
	"github.com/jwalitptl/directory-admin/internal/store"
)

// Treatments is the treatment store plus the edit flow.
type Treatments struct {
	*store.Store[model.Treatment]
}

// LoadDraft fetches one treatment and makes it the edit draft. The existing
// image stays as its URL, which is left out of update payloads so the API
// keeps it until a new file is set.
func (t *Treatments) LoadDraft(ctx context.Context, id string) (store.Draft, error) {
	tr, err := t.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := TreatmentDraft(tr)
	t.ReplaceDraft(d)
	return d, nil
}

// TreatmentDraft converts a record into its edit representation.
func TreatmentDraft(tr model.Treatment) store.Draft {
	currency := tr.Currency
	if currency == "" {
		currency = "USD"
	}
	d := store.Draft{
		"parentDisease":   tr.ParentDisease.ID,
		"name":            tr.Name,
		"summary":         tr.Summary,
		"price":           tr.Price.Float(),
		"currency":        currency,
		"discountPercent": tr.DiscountPercent.Float(),
		"heroImage":       tr.Image(),
		"precautions":     normalize.ArrayToString(tr.Precautions, normalize.Comma),
		"tests":           normalize.ArrayToString(tr.Tests, normalize.Comma),
		"symptoms":        normalize.ArrayToString(tr.Symptoms, normalize.Comma),
		"tags":            normalize.ArrayToString(tr.Tags, normalize.Comma),
		"published":       bool(tr.Published),
	}
	if tr.MinPrice != 0 {
		d["minPrice"] = tr.MinPrice.Float()
	}
	if tr.MaxPrice != 0 {
		d["maxPrice"] = tr.MaxPrice.Float()
	}
	return d
}
