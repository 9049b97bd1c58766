package view

import (
	"strings"

	"github.com/jwalitptl/directory-admin/internal/model"
)

type LabRow struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Logo          string   `json:"logo"`
	Accreditation string   `json:"accreditation"`
	Email         string   `json:"email"`
	Phone         string   `json:"phone"`
	Location      string   `json:"location"`
	Services      []string `json:"services"`
	Hours         string   `json:"hours"`
	Status        string   `json:"status"`
}

func NewLabRow(l model.Lab, assetBase string) LabRow {
	status := StatusPending
	if l.IsVerified {
		status = StatusVerified
	}
	services := []string(l.ServicesOffered)
	if services == nil {
		services = []string{}
	}
	return LabRow{
		ID:            l.ID,
		Name:          orNA(l.LabName),
		Logo:          ResolveImageURL(l.LabLogo, assetBase),
		Accreditation: orNA(l.Accreditation),
		Email:         l.Email,
		Phone:         l.Phone,
		Location:      location(l.Address),
		Services:      services,
		Hours:         l.OperatingHours,
		Status:        status,
	}
}

type TestRow struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Lab            string `json:"lab"`
	Category       string `json:"category"`
	Price          string `json:"price"`
	SampleType     string `json:"sampleType"`
	TurnaroundTime string `json:"turnaroundTime"`
}

func NewTestRow(t model.LabTest) TestRow {
	return TestRow{
		ID:             t.ID,
		Name:           orNA(t.TestName),
		Lab:            orNA(t.LabName),
		Category:       t.Category,
		Price:          FormatPrice(t.Price.Float(), defaultFeeCurrency),
		SampleType:     t.SampleType,
		TurnaroundTime: t.TurnaroundTime,
	}
}

// NameRow is a disease or specialization.
type NameRow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewDiseaseRow(d model.Disease) NameRow { return NameRow{ID: d.ID, Name: d.Name} }

func NewSpecializationRow(s model.Specialization) NameRow { return NameRow{ID: s.ID, Name: s.Name} }

type TreatmentRow struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Image         string   `json:"image"`
	ParentDisease string   `json:"parentDisease"`
	PriceRange    string   `json:"priceRange"`
	Discount      float64  `json:"discount"`
	Tags          []string `json:"tags"`
	Status        string   `json:"status"`
	Published     bool     `json:"published"`
}

func NewTreatmentRow(t model.Treatment, assetBase string) TreatmentRow {
	image := ResolveImageURL(t.Image(), assetBase)
	if image == "" {
		image = TreatmentNoImage
	}

	lo, hi := t.MinPrice.Float(), t.MaxPrice.Float()
	if lo == 0 && hi == 0 {
		lo = t.Price.Float()
	}

	status := StatusUnpublished
	if t.Published {
		status = StatusPublished
	}
	tags := []string(t.Tags)
	if tags == nil {
		tags = []string{}
	}

	return TreatmentRow{
		ID:            t.ID,
		Name:          orNA(t.Name),
		Image:         image,
		ParentDisease: parentName(t.ParentDisease),
		PriceRange:    FormatPriceRange(lo, hi, t.Currency),
		Discount:      t.DiscountPercent.Float(),
		Tags:          tags,
		Status:        status,
		Published:     bool(t.Published),
	}
}

// parentName shows the populated disease name; a bare id is not a name.
func parentName(r model.Ref) string {
	if strings.TrimSpace(r.Name) == "" {
		return NotAvailable
	}
	return r.Name
}
