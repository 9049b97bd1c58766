// Package view flattens API records into the rows and cards the console and
// CLI render. Every function is pure and total: absent nested data falls back
// to a blank, "N/A" or a placeholder image.
package view

import (
	"strings"

	"github.com/jwalitptl/directory-admin/internal/model"
)

const (
	NotAvailable       = "N/A"
	DoctorPlaceholder  = "https://via.placeholder.com/150"
	TreatmentNoImage   = "https://via.placeholder.com/150?text=No+Image"
	StatusVerified     = "Verified"
	StatusNotVerified  = "Not Verified"
	StatusPending      = "Pending"
	StatusPublished    = "Published"
	StatusUnpublished  = "Draft"
	defaultFeeCurrency = "INR"
)

// DoctorCard is the public directory card.
type DoctorCard struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Image          string  `json:"image"`
	Specialization string  `json:"specialization"`
	Experience     int     `json:"experience"`
	Degrees        string  `json:"degrees"`
	Location       string  `json:"location"`
	Fee            float64 `json:"fee"`
	FeeText        string  `json:"feeText"`
	IsVerified     bool    `json:"isVerified"`
}

func NewDoctorCard(d model.Doctor, assetBase string) DoctorCard {
	image := ResolveImageURL(d.ProfilePicture, assetBase)
	if image == "" {
		image = DoctorPlaceholder
	}

	return DoctorCard{
		ID:             d.ID,
		Name:           orNA(d.FullName()),
		Image:          image,
		Specialization: orNA(d.Specialization.Label()),
		Experience:     int(d.YearsOfExperience),
		Degrees:        degrees(d.Qualifications),
		Location:       location(d.ClinicAddress),
		Fee:            d.ConsultationFee.Float(),
		FeeText:        FormatPrice(d.ConsultationFee.Float(), defaultFeeCurrency),
		IsVerified:     bool(d.IsVerified),
	}
}

func DoctorCards(ds []model.Doctor, assetBase string) []DoctorCard {
	out := make([]DoctorCard, 0, len(ds))
	for _, d := range ds {
		out = append(out, NewDoctorCard(d, assetBase))
	}
	return out
}

// DoctorRow is one line of the admin doctor table and its CSV export.
type DoctorRow struct {
	ID             string `json:"id" csv:"ID"`
	Name           string `json:"name" csv:"Name"`
	Email          string `json:"email" csv:"Email"`
	Phone          string `json:"phone" csv:"Phone"`
	Specialization string `json:"specialization" csv:"Specialization"`
	Status         string `json:"status" csv:"Status"`
	Verified       bool   `json:"verified" csv:"-"`
}

func NewDoctorRow(d model.Doctor) DoctorRow {
	status := StatusNotVerified
	if d.IsVerified {
		status = StatusVerified
	}
	return DoctorRow{
		ID:             d.ID,
		Name:           orNA(d.FullName()),
		Email:          d.ContactEmail(),
		Phone:          d.ContactPhone(),
		Specialization: orNA(d.Specialization.Label()),
		Status:         status,
		Verified:       bool(d.IsVerified),
	}
}

func DoctorRows(ds []model.Doctor) []DoctorRow {
	out := make([]DoctorRow, 0, len(ds))
	for _, d := range ds {
		out = append(out, NewDoctorRow(d))
	}
	return out
}

// ProfileRow summarizes an extended doctor profile.
type ProfileRow struct {
	ID             string `json:"id"`
	FullName       string `json:"fullName"`
	Designation    string `json:"designation"`
	Specialization string `json:"specialization"`
	Experience     int    `json:"experience"`
	Education      string `json:"education"`
	Image          string `json:"image"`
}

func NewProfileRow(p model.DoctorProfile, assetBase string) ProfileRow {
	image := ResolveImageURL(p.ProfileImg, assetBase)
	if image == "" {
		image = DoctorPlaceholder
	}
	return ProfileRow{
		ID:             p.ID,
		FullName:       orNA(p.FullName),
		Designation:    p.Designation,
		Specialization: orNA(p.Specialization),
		Experience:     int(p.WorkExperience),
		Education:      strings.Join(p.Education, " | "),
		Image:          image,
	}
}

func degrees(qs []model.Qualification) string {
	var parts []string
	for _, q := range qs {
		if d := strings.TrimSpace(q.Degree); d != "" {
			parts = append(parts, d)
		}
	}
	return strings.Join(parts, ", ")
}

func location(a *model.Address) string {
	if a == nil {
		return NotAvailable
	}
	var parts []string
	for _, p := range []string{a.City, a.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return NotAvailable
	}
	return strings.Join(parts, ", ")
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return NotAvailable
	}
	return s
}
