package directory

import (
	"cmp"
	"strings"

	"github.com/jwalitptl/directory-admin/internal/model"
	"github.com/jwalitptl/directory-admin/internal/normalize"
	"github.com/jwalitptl/directory-admin/internal/store"
)

// Resource names, as used in console routes and CLI commands.
const (
	ResDoctors         = "doctors"
	ResLabs            = "labs"
	ResTests           = "tests"
	ResDiseases        = "diseases"
	ResSpecializations = "specializations"
	ResTreatments      = "treatments"
	ResProfiles        = "profiles"
)

// DefaultUploadKeys maps each entity's file field to the multipart key the
// API expects. Config may override single entries.
var DefaultUploadKeys = map[string]map[string]string{
	ResDoctors:    {"profilePicture": "doctordp"},
	ResTreatments: {"heroImage": "featuredImage"},
	ResLabs:       {"labLogo": "labLogo"},
	ResProfiles:   {"profileImg": "profileImg"},
}

// OperatingHours are the lab hours a lab may be listed with.
var OperatingHours = []string{
	"24/7",
	"Mon-Fri: 9 AM - 5 PM",
	"Mon-Sat: 8 AM - 6 PM",
	"Mon-Sat: 7 AM - 9 PM",
	"Mon-Sun: 8 AM - 8 PM",
}

func uploadKeys(entity string, overrides map[string]map[string]string) normalize.FieldMap {
	fm := normalize.FieldMap{}
	for k, v := range DefaultUploadKeys[entity] {
		fm[k] = v
	}
	for k, v := range overrides[entity] {
		if strings.TrimSpace(v) == "" {
			continue
		}
		// file config keys arrive lowercased
		for field := range fm {
			if strings.EqualFold(field, k) {
				k = field
				break
			}
		}
		fm[k] = v
	}
	return fm
}

func byName[T interface{ SortKey() string }](a, b T) int {
	return cmp.Compare(strings.ToLower(a.SortKey()), strings.ToLower(b.SortKey()))
}

func addressDraft() map[string]any {
	return map[string]any{"street": "", "city": "", "state": "", "postalCode": ""}
}

func doctorConfig(keys map[string]map[string]string) store.Config[model.Doctor] {
	return store.Config[model.Doctor]{
		Name:       "doctor",
		Plural:     ResDoctors,
		Label:      "Doctor",
		ListPath:   "/api/doctors",
		CreatePath: "/api/admin/doctors",
		ItemPath:   "/api/admin/doctors",
		Required:   []string{"firstName", "lastName"},
		FieldLabels: map[string]string{
			"firstName": "First Name",
			"lastName":  "Last Name",
		},
		Rules: map[string]string{
			"email":             "omitempty,email",
			"yearsOfExperience": "gte=0",
			"consultationFee":   "gte=0",
		},
		ListFields:    []string{"qualifications", "languagesSpoken"},
		NumericFields: []string{"yearsOfExperience", "consultationFee"},
		FileFields:    []string{"profilePicture"},
		FieldMap:      uploadKeys(ResDoctors, keys),
		ErrorField:    "error",
		Empty: func() store.Draft {
			return store.Draft{
				"firstName":         "",
				"lastName":          "",
				"email":             "",
				"phone":             "",
				"password":          "",
				"specialization":    "",
				"qualifications":    "",
				"licenseNumber":     "",
				"yearsOfExperience": "",
				"bio":               "",
				"consultationFee":   "",
				"languagesSpoken":   "",
				"clinicAddress":     addressDraft(),
				"profilePicture":    nil,
			}
		},
	}
}

func labConfig(keys map[string]map[string]string) store.Config[model.Lab] {
	return store.Config[model.Lab]{
		Name:       "lab",
		Plural:     ResLabs,
		Label:      "Lab",
		ListPath:   "/api/admin/labs",
		CreatePath: "/api/admin/labs",
		ItemPath:   "/api/admin/labs",
		Required:   []string{"labName", "email", "phone"},
		FieldLabels: map[string]string{
			"labName": "Lab Name",
			"email":   "Email",
			"phone":   "Phone",
		},
		Rules:      map[string]string{"email": "email"},
		Choices:    map[string][]string{"operatingHours": OperatingHours},
		ListFields: []string{"servicesOffered"},
		FileFields: []string{"labLogo"},
		FieldMap:   uploadKeys(ResLabs, keys),
		ErrorField: "error",
		Empty: func() store.Draft {
			return store.Draft{
				"labName":         "",
				"email":           "",
				"phone":           "",
				"address":         addressDraft(),
				"servicesOffered": "",
				"operatingHours":  "",
				"accreditation":   "",
				"labLogo":         nil,
			}
		},
	}
}

func testConfig() store.Config[model.LabTest] {
	return store.Config[model.LabTest]{
		Name:       "test",
		Plural:     ResTests,
		Label:      "Test",
		ListPath:   "/api/admin/tests",
		CreatePath: "/api/admin/tests",
		ItemPath:   "/api/admin/tests",
		Required:   []string{"labName", "testName", "category", "price", "sampleType"},
		FieldLabels: map[string]string{
			"labName":    "Lab Name",
			"testName":   "Test Name",
			"category":   "Category",
			"price":      "Price",
			"sampleType": "Sample Type",
		},
		Rules:         map[string]string{"price": "gte=0"},
		NumericFields: []string{"price"},
		ErrorField:    "error",
		NoUpdate:      true,
		Empty: func() store.Draft {
			return store.Draft{
				"labName":        "",
				"testName":       "",
				"category":       "",
				"description":    "",
				"price":          "",
				"cptCode":        "",
				"sampleType":     "",
				"turnaroundTime": "",
				"prerequisites":  "",
			}
		},
	}
}

func diseaseConfig() store.Config[model.Disease] {
	return store.Config[model.Disease]{
		Name:        "disease",
		Plural:      ResDiseases,
		Label:       "Disease",
		ListPath:    "/api/diseases",
		CreatePath:  "/api/diseases",
		ItemPath:    "/api/diseases",
		Required:    []string{"name"},
		FieldLabels: map[string]string{"name": "Disease name"},
		ErrorField:  "error",
		Empty:       func() store.Draft { return store.Draft{"name": ""} },
		Compare:     byName[model.Disease],
	}
}

func specializationConfig() store.Config[model.Specialization] {
	return store.Config[model.Specialization]{
		Name:        "specialization",
		Plural:      ResSpecializations,
		Label:       "Specialization",
		ListPath:    "/api/specializations",
		CreatePath:  "/api/specializations",
		ItemPath:    "/api/specializations",
		Required:    []string{"name"},
		FieldLabels: map[string]string{"name": "Specialization name"},
		ErrorField:  "error",
		Empty:       func() store.Draft { return store.Draft{"name": ""} },
		Compare:     byName[model.Specialization],
	}
}

func treatmentConfig(keys map[string]map[string]string) store.Config[model.Treatment] {
	return store.Config[model.Treatment]{
		Name:       "treatment",
		Plural:     ResTreatments,
		Label:      "Treatment",
		ListPath:   "/api/treatments",
		CreatePath: "/api/treatments",
		ItemPath:   "/api/treatments",
		Required:   []string{"parentDisease", "name", "price", "heroImage"},
		FieldLabels: map[string]string{
			"parentDisease": "Parent Disease",
			"name":          "Name",
			"price":         "Price",
			"heroImage":     "Hero Image",
		},
		Rules: map[string]string{
			"price":           "gte=0",
			"minPrice":        "gte=0",
			"maxPrice":        "gte=0",
			"discountPercent": "gte=0,lte=100",
		},
		ListFields:    []string{"precautions", "tests", "symptoms", "tags"},
		NumericFields: []string{"price", "minPrice", "maxPrice", "discountPercent"},
		BoolFields:    []string{"published"},
		FileFields:    []string{"heroImage"},
		FieldMap:      uploadKeys(ResTreatments, keys),
		ErrorField:    "error",
		Empty: func() store.Draft {
			return store.Draft{
				"parentDisease":   "",
				"name":            "",
				"summary":         "",
				"price":           "",
				"currency":        "USD",
				"discountPercent": 0,
				"heroImage":       nil,
				"precautions":     "",
				"tests":           "",
				"symptoms":        "",
				"tags":            "",
				"published":       false,
			}
		},
	}
}

func profileConfig(keys map[string]map[string]string) store.Config[model.DoctorProfile] {
	return store.Config[model.DoctorProfile]{
		Name:       "profile",
		Plural:     ResProfiles,
		Label:      "Doctor profile",
		ListPath:   "/api/new-doctors",
		CreatePath: "/api/new-doctors",
		ItemPath:   "/api/new-doctors",
		Shape:      store.Shape{Key: "doctors", TotalKey: "totalDoctors"},
		ItemKey:    "doctor",
		Required:   []string{"fullName", "profileImg"},
		FieldLabels: map[string]string{
			"fullName":   "Full Name",
			"profileImg": "Profile Image",
		},
		Rules:         map[string]string{"workExperience": "gte=0"},
		ListFields:    []string{"workHistory", "education", "memberships", "awards", "specialtyInterests", "researchPaper"},
		NumericFields: []string{"workExperience"},
		FileFields:    []string{"profileImg"},
		Delimiter:     normalize.Pipe,
		FieldMap:      uploadKeys(ResProfiles, keys),
		ErrorField:    "message",
		Empty: func() store.Draft {
			return store.Draft{
				"fullName":           "",
				"designation":        "",
				"specialization":     "",
				"workExperience":     "",
				"workHistory":        "",
				"education":          "",
				"memberships":        "",
				"awards":             "",
				"specialtyInterests": "",
				"researchPaper":      "",
				"profileImg":         nil,
			}
		},
	}
}
