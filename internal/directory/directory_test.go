package directory

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/directory-admin/internal/apiclient"
	"github.com/jwalitptl/directory-admin/internal/normalize"
	"github.com/jwalitptl/directory-admin/internal/store"
	"github.com/jwalitptl/directory-admin/internal/view"
	apperrors "github.com/jwalitptl/directory-admin/pkg/errors"
)

type hit struct {
	Method string
	Path   string
	Form   map[string][]string
	Files  map[string]string
	JSON   map[string]any
}

type fakeServer struct {
	t    *testing.T
	mu   sync.Mutex
	hits []hit
	mux  *http.ServeMux
}

func newDirectory(t *testing.T, routes map[string]string, opts Options) (*Directory, *fakeServer) {
	t.Helper()
	fs := &fakeServer{t: t, mux: http.NewServeMux()}
	for pattern, body := range routes {
		status := http.StatusOK
		if rest, ok := strings.CutPrefix(body, "!400"); ok {
			status, body = http.StatusBadRequest, rest
		}
		fs.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, body)
		})
	}

	srv := httptest.NewServer(http.HandlerFunc(fs.record))
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL}, nil)
	require.NoError(t, err)
	return New(client, opts), fs
}

func (fs *fakeServer) record(w http.ResponseWriter, r *http.Request) {
	h := hit{Method: r.Method, Path: r.URL.Path}
	switch ct := r.Header.Get("Content-Type"); {
	case strings.HasPrefix(ct, "multipart/form-data"):
		require.NoError(fs.t, r.ParseMultipartForm(1<<20))
		h.Form = r.MultipartForm.Value
		h.Files = map[string]string{}
		for k, fhs := range r.MultipartForm.File {
			h.Files[k] = fhs[0].Filename
		}
	case ct == "application/json":
		_ = json.NewDecoder(r.Body).Decode(&h.JSON)
	}

	fs.mu.Lock()
	fs.hits = append(fs.hits, h)
	fs.mu.Unlock()
	fs.mux.ServeHTTP(w, r)
}

func (fs *fakeServer) calls() []hit {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]hit(nil), fs.hits...)
}

func TestDoctorCreateUsesUploadKey(t *testing.T) {
	dir, fs := newDirectory(t, map[string]string{
		"POST /api/admin/doctors": `{"doctor":{"_id":"doc1","firstName":"Asha","lastName":"Rao"},"message":"Doctor created successfully!"}`,
	}, Options{})

	dir.Doctors.SetField("firstName", "Asha")
	dir.Doctors.SetField("lastName", "Rao")
	dir.Doctors.SetField("qualifications", "MBBS, MD")
	dir.Doctors.SetField("consultationFee", "800")
	dir.Doctors.SetNested("clinicAddress", "city", "Pune")
	dir.Doctors.SetFile("profilePicture", &normalize.File{Name: "asha.png", Data: []byte("png")})

	doc, err := dir.Doctors.Create(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "doc1", doc.ID)

	calls := fs.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "asha.png", calls[0].Files["doctordp"])
	assert.Equal(t, []string{`["MBBS","MD"]`}, calls[0].Form["qualifications"])
	assert.Equal(t, []string{"800"}, calls[0].Form["consultationFee"])
	assert.JSONEq(t, `{"city":"Pune","postalCode":"","state":"","street":""}`, calls[0].Form["clinicAddress"][0])

	assert.Equal(t, "", dir.Doctors.Draft().Get("firstName"), "draft reset")
	assert.Len(t, dir.Doctors.Items(), 1)
}

func TestUploadKeyOverride(t *testing.T) {
	dir, fs := newDirectory(t, map[string]string{
		"POST /api/admin/doctors": `{}`,
	}, Options{UploadKeys: map[string]map[string]string{ResDoctors: {"profilepicture": "profilePicture"}}})

	_, err := dir.Doctors.Create(context.Background(), store.Draft{
		"firstName":      "A",
		"lastName":       "B",
		"profilePicture": &normalize.File{Name: "a.png"},
	})
	require.NoError(t, err)
	assert.Contains(t, fs.calls()[0].Files, "profilePicture")
	assert.NotContains(t, fs.calls()[0].Files, "doctordp")
}

func TestToggleVerified(t *testing.T) {
	dir, fs := newDirectory(t, map[string]string{
		"GET /api/doctors": `{"doctors":[{"_id":"doc1","firstName":"Asha","isVerified":false}],"totalPages":1,"currentPage":1,"totalDoctors":1}`,
		"PATCH /api/admin/doctors/doc1/verify": `{"doctor":{"_id":"doc1","firstName":"Asha","isVerified":true}}`,
	}, Options{})

	require.NoError(t, dir.Doctors.FetchAll(context.Background()))
	doc, err := dir.Doctors.ToggleVerified(context.Background(), "doc1")
	require.NoError(t, err)
	assert.True(t, bool(doc.IsVerified))

	got, ok := dir.Doctors.Find("doc1")
	require.True(t, ok)
	assert.True(t, bool(got.IsVerified))

	calls := fs.calls()
	assert.Equal(t, map[string]any{"isVerified": true}, calls[1].JSON)
}

func TestToggleVerifiedUnknownDoctor(t *testing.T) {
	dir, fs := newDirectory(t, nil, Options{})

	_, err := dir.Doctors.ToggleVerified(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Empty(t, fs.calls())
	assert.NotEmpty(t, dir.Doctors.Err())
}

func TestDoctorDeleteDecrementsTotal(t *testing.T) {
	dir, _ := newDirectory(t, map[string]string{
		"GET /api/doctors":              `{"doctors":[{"_id":"doc1"},{"_id":"doc2"}],"totalDoctors":40}`,
		"DELETE /api/admin/doctors/doc1": `{"message":"Doctor deleted successfully!"}`,
	}, Options{})

	require.NoError(t, dir.Doctors.FetchAll(context.Background()))
	require.NoError(t, dir.Doctors.Delete(context.Background(), "doc1", store.AlwaysConfirm))
	assert.Equal(t, 39, dir.Doctors.State().Page.Total)
	assert.Len(t, dir.Doctors.Items(), 1)
}

func TestCreateTestMissingName(t *testing.T) {
	dir, fs := newDirectory(t, nil, Options{})

	_, err := dir.Tests.Create(context.Background(), store.Draft{
		"labName": "Prime Medical Labs", "category": "Hematology", "price": "300", "sampleType": "Blood",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, fs.calls())

	st := dir.Tests.State()
	assert.Equal(t, "Test Name is required.", st.Error)
	assert.False(t, st.Loading)
}

func TestTestsCannotBeUpdated(t *testing.T) {
	dir, fs := newDirectory(t, nil, Options{})

	_, err := dir.Tests.Update(context.Background(), "t1", store.Draft{"price": "10"})
	assert.Equal(t, apperrors.ErrUnsupported, apperrors.CodeOf(err))
	assert.Empty(t, fs.calls())
}

func TestTreatmentRequiresAll(t *testing.T) {
	dir, fs := newDirectory(t, nil, Options{})

	_, err := dir.Treatments.Create(context.Background(), store.Draft{})
	require.Error(t, err)
	assert.Equal(t, "Parent Disease, Name, Price, and Hero Image are required.", apperrors.MessageOf(err))
	assert.Empty(t, fs.calls())
}

func TestTreatmentEditFlow(t *testing.T) {
	dir, fs := newDirectory(t, map[string]string{
		"GET /api/treatments/t1": `{"treatment":{"_id":"t1","name":"Knee","parentDisease":{"_id":"d1","name":"Arthritis"},"price":22000,"tags":["knee","surgery"],"heroImage":"uploads\\knee.png","published":true}}`,
		"PATCH /api/treatments/t1": `{"treatment":{"_id":"t1","name":"Knee Replacement"}}`,
	}, Options{})

	d, err := dir.Treatments.LoadDraft(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "d1", d["parentDisease"])
	assert.Equal(t, "knee, surgery", d["tags"])
	assert.Equal(t, `uploads\knee.png`, d["heroImage"])
	assert.Equal(t, "USD", d["currency"])
	assert.Equal(t, d, dir.Treatments.Draft())

	dir.Treatments.SetField("name", "Knee Replacement")
	_, err = dir.Treatments.Update(context.Background(), "t1", nil)
	require.NoError(t, err)

	patch := fs.calls()[1]
	assert.Equal(t, http.MethodPatch, patch.Method)
	assert.Equal(t, "Knee Replacement", patch.JSON["name"])
	assert.Equal(t, []any{"knee", "surgery"}, patch.JSON["tags"])
	assert.Equal(t, true, patch.JSON["published"])
	assert.NotContains(t, patch.JSON, "featuredImage")
	assert.NotContains(t, patch.JSON, "heroImage")
}

func TestTreatmentUpdateReplacesImage(t *testing.T) {
	dir, fs := newDirectory(t, map[string]string{
		"PATCH /api/treatments/t1": `{}`,
	}, Options{})

	_, err := dir.Treatments.Update(context.Background(), "t1", store.Draft{
		"heroImage": &normalize.File{Name: "new.png", Data: []byte("x")},
	})
	require.NoError(t, err)
	assert.Equal(t, "new.png", fs.calls()[0].Files["featuredImage"])
}

func TestProfileErrorReadsMessage(t *testing.T) {
	dir, _ := newDirectory(t, map[string]string{
		"POST /api/new-doctors": `!400{"error":"ValidationError","message":"Profile image too large"}`,
	}, Options{})

	_, err := dir.Profiles.Create(context.Background(), store.Draft{
		"fullName":    "Dr. Meera Iyer",
		"workHistory": "Hospital A, Pune | Clinic B",
		"profileImg":  &normalize.File{Name: "m.png"},
	})
	require.Error(t, err)
	assert.Equal(t, "Profile image too large", dir.Profiles.Err())
}

func TestProfileUsesPipeDelimiter(t *testing.T) {
	dir, fs := newDirectory(t, map[string]string{
		"POST /api/new-doctors": `{"doctor":{"_id":"p1","fullName":"Dr. Meera Iyer"}}`,
	}, Options{})

	_, err := dir.Profiles.Create(context.Background(), store.Draft{
		"fullName":    "Dr. Meera Iyer",
		"workHistory": "Hospital A, Pune | Clinic B",
		"profileImg":  &normalize.File{Name: "m.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{`["Hospital A, Pune","Clinic B"]`}, fs.calls()[0].Form["workHistory"])
	assert.Equal(t, "m.png", fs.calls()[0].Files["profileImg"])
}

func TestLabOperatingHoursChoice(t *testing.T) {
	dir, fs := newDirectory(t, nil, Options{})

	_, err := dir.Labs.Create(context.Background(), store.Draft{
		"labName": "Prime", "email": "lab@example.com", "phone": "123", "operatingHours": "whenever",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, dir.Labs.Err(), "operatingHours must be one of")
	assert.Empty(t, fs.calls())
}

func TestFormOptionsReadsOtherStores(t *testing.T) {
	dir, fs := newDirectory(t, map[string]string{
		"GET /api/diseases": `[{"_id":"d2","name":"Migraine"},{"_id":"d1","name":"Arthritis"}]`,
		"GET /api/admin/labs": `[{"_id":"l1","labName":"Prime Medical Labs"}]`,
	}, Options{})

	opts, err := dir.FormOptions(context.Background(), ResTreatments)
	require.NoError(t, err)
	assert.Equal(t, []view.Option{{Value: "d1", Label: "Arthritis"}, {Value: "d2", Label: "Migraine"}}, opts["parentDisease"])

	_, err = dir.FormOptions(context.Background(), ResTreatments)
	require.NoError(t, err)
	assert.Len(t, fs.calls(), 1, "diseases fetched once")

	opts, err = dir.FormOptions(context.Background(), ResTests)
	require.NoError(t, err)
	assert.Equal(t, "Prime Medical Labs", opts["labName"][0].Value)

	opts, err = dir.FormOptions(context.Background(), ResLabs)
	require.NoError(t, err)
	assert.Len(t, opts["operatingHours"], len(OperatingHours))

	_, err = dir.FormOptions(context.Background(), "nurses")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestResourceFacade(t *testing.T) {
	dir, _ := newDirectory(t, map[string]string{
		"GET /api/diseases":  `{"diseases":[{"_id":"d1","name":"Flu"}]}`,
		"POST /api/diseases": `{"disease":{"_id":"d2","name":"Asthma"}}`,
	}, Options{})

	res, ok := dir.Resource(ResDiseases)
	require.True(t, ok)
	require.NoError(t, res.Load(context.Background()))

	row, err := res.Create(context.Background(), store.Draft{"name": "Asthma"})
	require.NoError(t, err)
	assert.Equal(t, view.NameRow{ID: "d2", Name: "Asthma"}, row)
	assert.Equal(t, []any{view.NameRow{ID: "d2", Name: "Asthma"}, view.NameRow{ID: "d1", Name: "Flu"}}, res.Rows())
	assert.Equal(t, 2, res.Status().Count)

	doctors, _ := dir.Resource(ResDoctors)
	form := doctors.Form()
	assert.Equal(t, []string{"clinicAddress"}, form.Nested)
	assert.Equal(t, []string{"profilePicture"}, form.Files)
	assert.Contains(t, form.Fields, "firstName")

	assert.Len(t, dir.Names(), 7)
	_, ok = dir.Resource("nurses")
	assert.False(t, ok)
}
