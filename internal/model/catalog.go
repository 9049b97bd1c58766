package model

type Disease struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func (d Disease) EntityID() string { return d.ID }
func (d Disease) SortKey() string  { return d.Name }

type Specialization struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

func (s Specialization) EntityID() string { return s.ID }
func (s Specialization) SortKey() string  { return s.Name }

type Lab struct {
	ID              string     `json:"_id"`
	LabName         string     `json:"labName"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	Address         *Address   `json:"address,omitempty"`
	ServicesOffered StringList `json:"servicesOffered,omitempty"`
	OperatingHours  string     `json:"operatingHours,omitempty"`
	Accreditation   string     `json:"accreditation,omitempty"`
	LabLogo         string     `json:"labLogo,omitempty"`
	IsVerified      Bool       `json:"isVerified"`
}

func (l Lab) EntityID() string { return l.ID }

// LabTest is a diagnostic test offered by a lab. Labs are referenced by name.
type LabTest struct {
	ID             string `json:"_id"`
	LabName        string `json:"labName"`
	TestName       string `json:"testName"`
	Category       string `json:"category,omitempty"`
	Description    string `json:"description,omitempty"`
	Price          Number `json:"price"`
	CPTCode        string `json:"cptCode,omitempty"`
	SampleType     string `json:"sampleType,omitempty"`
	TurnaroundTime string `json:"turnaroundTime,omitempty"`
	Prerequisites  string `json:"prerequisites,omitempty"`
}

func (t LabTest) EntityID() string { return t.ID }

type Treatment struct {
	ID              string     `json:"_id"`
	ParentDisease   Ref        `json:"parentDisease"`
	Name            string     `json:"name"`
	Summary         string     `json:"summary,omitempty"`
	Price           Number     `json:"price"`
	MinPrice        Number     `json:"minPrice,omitempty"`
	MaxPrice        Number     `json:"maxPrice,omitempty"`
	Currency        string     `json:"currency,omitempty"`
	DiscountPercent Number     `json:"discountPercent,omitempty"`
	HeroImage       string     `json:"heroImage,omitempty"`
	FeaturedImage   string     `json:"featuredImage,omitempty"`
	Precautions     StringList `json:"precautions,omitempty"`
	Tests           StringList `json:"tests,omitempty"`
	Symptoms        StringList `json:"symptoms,omitempty"`
	Tags            StringList `json:"tags,omitempty"`
	Published       Bool       `json:"published"`
}

func (t Treatment) EntityID() string { return t.ID }

// Image is the stored hero image path under whichever key the API used.
func (t Treatment) Image() string {
	if t.HeroImage != "" {
		return t.HeroImage
	}
	return t.FeaturedImage
}
