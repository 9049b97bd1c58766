package view

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/gocarina/gocsv"
)

// DefaultPerPage is the admin table page size.
const DefaultPerPage = 5

// Status filter values.
const (
	FilterAll         = "all"
	FilterVerified    = "verified"
	FilterNotVerified = "not-verified"
)

// TableQuery selects a page of the admin doctor table.
type TableQuery struct {
	Search  string `form:"search"`
	Status  string `form:"status"`
	Sort    string `form:"sort"`
	Desc    bool   `form:"desc"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
}

type Stats struct {
	Total       int `json:"total"`
	Verified    int `json:"verified"`
	NotVerified int `json:"notVerified"`
}

// TablePage is one rendered page. Stats cover every row, Matched only the
// rows that passed the search and filter.
type TablePage struct {
	Rows       []DoctorRow `json:"rows"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
	Matched    int         `json:"matched"`
	Showing    string      `json:"showing"`
	Stats      Stats       `json:"stats"`
}

// DoctorStats counts verified and unverified rows.
func DoctorStats(rows []DoctorRow) Stats {
	s := Stats{Total: len(rows)}
	for _, r := range rows {
		if r.Verified {
			s.Verified++
		}
	}
	s.NotVerified = s.Total - s.Verified
	return s
}

// FilterDoctors applies search (name or specialization, case-insensitive) and
// the status filter, then sorts.
func FilterDoctors(rows []DoctorRow, q TableQuery) []DoctorRow {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]DoctorRow, 0, len(rows))
	for _, r := range rows {
		if term != "" &&
			!strings.Contains(strings.ToLower(r.Name), term) &&
			!strings.Contains(strings.ToLower(r.Specialization), term) {
			continue
		}
		switch q.Status {
		case FilterVerified:
			if !r.Verified {
				continue
			}
		case FilterNotVerified:
			if r.Verified {
				continue
			}
		}
		out = append(out, r)
	}

	if key := sortKey(q.Sort); key != nil {
		slices.SortStableFunc(out, func(a, b DoctorRow) int {
			c := cmp.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
			if q.Desc {
				return -c
			}
			return c
		})
	}
	return out
}

func sortKey(name string) func(DoctorRow) string {
	switch strings.ToLower(name) {
	case "id":
		return func(r DoctorRow) string { return r.ID }
	case "name":
		return func(r DoctorRow) string { return r.Name }
	case "email":
		return func(r DoctorRow) string { return r.Email }
	case "phone":
		return func(r DoctorRow) string { return r.Phone }
	case "specialization":
		return func(r DoctorRow) string { return r.Specialization }
	case "status", "verified":
		return func(r DoctorRow) string { return r.Status }
	}
	return nil
}

// DoctorTable filters, sorts and paginates rows. Out-of-range pages clamp to
// the nearest valid page.
func DoctorTable(rows []DoctorRow, q TableQuery) TablePage {
	per := q.PerPage
	if per <= 0 {
		per = DefaultPerPage
	}
	matched := FilterDoctors(rows, q)

	totalPages := (len(matched) + per - 1) / per
	page := min(max(q.Page, 1), max(totalPages, 1))

	first := (page - 1) * per
	last := min(first+per, len(matched))

	tp := TablePage{
		Rows:       matched[first:last],
		Page:       page,
		TotalPages: totalPages,
		Matched:    len(matched),
		Stats:      DoctorStats(rows),
		Showing:    "No doctors found",
	}
	if len(matched) > 0 {
		tp.Showing = fmt.Sprintf("Showing %d-%d of %d", first+1, last, len(matched))
	}
	return tp
}

// WriteDoctorsCSV writes rows with the ID, Name, Email, Phone,
// Specialization, Status header.
func WriteDoctorsCSV(w io.Writer, rows []DoctorRow) error {
	if rows == nil {
		rows = []DoctorRow{}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write doctors csv: %w", err)
	}
	return nil
}
