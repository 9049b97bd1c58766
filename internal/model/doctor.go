package model

import "strings"

// DoctorUser is the account record the API populates on admin listings.
type DoctorUser struct {
	ID        string `json:"_id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type Doctor struct {
	ID                string          `json:"_id"`
	User              *DoctorUser     `json:"user,omitempty"`
	Name              string          `json:"name,omitempty"`
	FirstName         string          `json:"firstName,omitempty"`
	LastName          string          `json:"lastName,omitempty"`
	Email             string          `json:"email,omitempty"`
	Phone             string          `json:"phone,omitempty"`
	Specialization    Ref             `json:"specialization"`
	Qualifications    []Qualification `json:"qualifications,omitempty"`
	LicenseNumber     string          `json:"licenseNumber,omitempty"`
	YearsOfExperience Number          `json:"yearsOfExperience,omitempty"`
	ConsultationFee   Number          `json:"consultationFee,omitempty"`
	LanguagesSpoken   StringList      `json:"languagesSpoken,omitempty"`
	ClinicAddress     *Address        `json:"clinicAddress,omitempty"`
	Bio               string          `json:"bio,omitempty"`
	ProfilePicture    string          `json:"profilePicture,omitempty"`
	IsVerified        Bool            `json:"isVerified"`
}

func (d Doctor) EntityID() string { return d.ID }

// FullName prefers the populated user record, then the flat fields.
func (d Doctor) FullName() string {
	first, last := d.FirstName, d.LastName
	if d.User != nil && (d.User.FirstName != "" || d.User.LastName != "") {
		first, last = d.User.FirstName, d.User.LastName
	}
	if n := strings.TrimSpace(first + " " + last); n != "" {
		return n
	}
	return d.Name
}

func (d Doctor) ContactEmail() string {
	if d.User != nil && d.User.Email != "" {
		return d.User.Email
	}
	return d.Email
}

func (d Doctor) ContactPhone() string {
	if d.User != nil && d.User.Phone != "" {
		return d.User.Phone
	}
	return d.Phone
}

// DoctorProfile is the extended public profile managed under /api/new-doctors.
type DoctorProfile struct {
	ID                 string     `json:"_id"`
	FullName           string     `json:"fullName"`
	Designation        string     `json:"designation,omitempty"`
	Specialization     string     `json:"specialization,omitempty"`
	WorkExperience     Number     `json:"workExperience,omitempty"`
	WorkHistory        StringList `json:"workHistory,omitempty"`
	Education          StringList `json:"education,omitempty"`
	Memberships        StringList `json:"memberships,omitempty"`
	Awards             StringList `json:"awards,omitempty"`
	SpecialtyInterests StringList `json:"specialtyInterests,omitempty"`
	ResearchPaper      StringList `json:"researchPaper,omitempty"`
	ProfileImg         string     `json:"profileImg,omitempty"`
}

func (p DoctorProfile) EntityID() string { return p.ID }
