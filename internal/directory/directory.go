// Package directory instantiates the entity stores of the healthcare
// directory and wires their cross-store reads.
package directory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jwalitptl/directory-admin/internal/model"
	"github.com/jwalitptl/directory-admin/internal/store"
	"github.com/jwalitptl/directory-admin/internal/view"
	apperrors "github.com/jwalitptl/directory-admin/pkg/errors"
	"github.com/jwalitptl/directory-admin/pkg/logger"
)

type Options struct {
	Notifier store.Notifier
	Recorder store.Recorder
	Logger   *logger.Logger
	// UploadKeys overrides DefaultUploadKeys per resource and field.
	UploadKeys map[string]map[string]string
	// AssetBaseURL prefixes relative image paths in view rows.
	AssetBaseURL string
}

// Directory holds one store per entity.
type Directory struct {
	Doctors         *Doctors
	Labs            *store.Store[model.Lab]
	Tests           *store.Store[model.LabTest]
	Diseases        *store.Store[model.Disease]
	Specializations *store.Store[model.Specialization]
	Treatments      *Treatments
	Profiles        *store.Store[model.DoctorProfile]

	assetBase string
	resources map[string]Resource
}

func New(api store.API, opts Options) *Directory {
	so := []store.Option{
		store.WithNotifier(opts.Notifier),
		store.WithRecorder(opts.Recorder),
		store.WithLogger(opts.Logger),
	}
	keys := opts.UploadKeys
	base := opts.AssetBaseURL

	d := &Directory{
		Doctors:         &Doctors{store.New(doctorConfig(keys), api, so...)},
		Labs:            store.New(labConfig(keys), api, so...),
		Tests:           store.New(testConfig(), api, so...),
		Diseases:        store.New(diseaseConfig(), api, so...),
		Specializations: store.New(specializationConfig(), api, so...),
		Treatments:      &Treatments{store.New(treatmentConfig(keys), api, so...)},
		Profiles:        store.New(profileConfig(keys), api, so...),
		assetBase:       base,
	}

	d.resources = map[string]Resource{
		ResDoctors: newResource(ResDoctors, d.Doctors.Store, func(m model.Doctor) any {
			return view.NewDoctorCard(m, base)
		}),
		ResLabs: newResource(ResLabs, d.Labs, func(m model.Lab) any {
			return view.NewLabRow(m, base)
		}),
		ResTests: newResource(ResTests, d.Tests, func(m model.LabTest) any {
			return view.NewTestRow(m)
		}),
		ResDiseases: newResource(ResDiseases, d.Diseases, func(m model.Disease) any {
			return view.NewDiseaseRow(m)
		}),
		ResSpecializations: newResource(ResSpecializations, d.Specializations, func(m model.Specialization) any {
			return view.NewSpecializationRow(m)
		}),
		ResTreatments: newResource(ResTreatments, d.Treatments.Store, func(m model.Treatment) any {
			return view.NewTreatmentRow(m, base)
		}),
		ResProfiles: newResource(ResProfiles, d.Profiles, func(m model.DoctorProfile) any {
			return view.NewProfileRow(m, base)
		}),
	}
	return d
}

// AssetBaseURL is the prefix for relative image paths.
func (d *Directory) AssetBaseURL() string { return d.assetBase }

// Resource looks up a store by its route name.
func (d *Directory) Resource(name string) (Resource, bool) {
	r, ok := d.resources[name]
	return r, ok
}

// Names lists the resource names in order.
func (d *Directory) Names() []string {
	out := make([]string, 0, len(d.resources))
	for k := range d.resources {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FormOptions returns the dropdown choices of a resource's form, keyed by
// field. Source stores are loaded on first use and only read afterwards.
func (d *Directory) FormOptions(ctx context.Context, name string) (map[string][]view.Option, error) {
	out := map[string][]view.Option{}

	switch name {
	case ResTreatments:
		if err := ensureLoaded(ctx, d.Diseases); err != nil {
			return nil, err
		}
		out["parentDisease"] = view.DiseaseOptions(d.Diseases.Items())
	case ResDoctors, ResProfiles:
		if err := ensureLoaded(ctx, d.Specializations); err != nil {
			return nil, err
		}
		out["specialization"] = view.SpecializationOptions(d.Specializations.Items())
	case ResTests:
		if err := ensureLoaded(ctx, d.Labs); err != nil {
			return nil, err
		}
		out["labName"] = view.LabNameOptions(d.Labs.Items())
	case ResLabs:
		out["operatingHours"] = view.ChoiceOptions(OperatingHours)
	case ResDiseases, ResSpecializations:
	default:
		return nil, apperrors.NewNotFound(fmt.Sprintf("resource %q", name), nil)
	}
	return out, nil
}

func ensureLoaded[T store.Entity](ctx context.Context, s *store.Store[T]) error {
	if len(s.Items()) > 0 {
		return nil
	}
	return s.FetchAll(ctx)
}
