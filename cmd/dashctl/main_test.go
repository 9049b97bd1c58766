package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/directory-admin/internal/directory"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	last  *http.Request
	form  *multipart.Form
	body  []byte
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.last = r
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "multipart/form-data" {
		_ = r.ParseMultipartForm(1 << 20)
		f.form = r.MultipartForm
	} else {
		f.body, _ = io.ReadAll(r.Body)
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch key {
	case "GET /api/diseases":
		io.WriteString(w, `[{"_id":"d2","name":"Migraine"},{"_id":"d1","name":"Asthma"}]`)
	case "POST /api/diseases":
		io.WriteString(w, `{"disease":{"_id":"d3","name":"Flu"}}`)
	case "DELETE /api/diseases/d1":
		io.WriteString(w, `{"message":"ok"}`)
	case "GET /api/doctors":
		io.WriteString(w, `{"doctors":[
			{"_id":"a","firstName":"Asha","lastName":"Rao","email":"asha@example.com","specialization":"Cardiology","isVerified":true},
			{"_id":"b","firstName":"Ben","lastName":"Ode","specialization":"Dermatology","isVerified":false}
		],"totalDoctors":2}`)
	case "PATCH /api/admin/doctors/b/verify":
		io.WriteString(w, `{"doctor":{"_id":"b","firstName":"Ben","lastName":"Ode","isVerified":true}}`)
	case "POST /api/admin/doctors":
		io.WriteString(w, `{"doctor":{"_id":"c","firstName":"Cara","lastName":"Lin"}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"not found"}`)
	}
}

func (f *fakeAPI) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type result struct {
	out, errOut string
	err         error
}

func run(t *testing.T, api *fakeAPI, stdin string, args ...string) result {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	load := func() (envConfig, error) {
		return envConfig{BaseURI: srv.URL, LogLevel: "disabled"}, nil
	}
	var out, errOut bytes.Buffer
	cmd := newRootCmd(load, strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func TestListPrintsRows(t *testing.T) {
	api := &fakeAPI{}
	res := run(t, api, "", "diseases", "list")
	require.NoError(t, res.err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Asthma", rows[0]["name"])
	assert.Contains(t, res.errOut, "Loaded 2 diseases.")
}

func TestCreateWithSet(t *testing.T) {
	api := &fakeAPI{}
	res := run(t, api, "", "diseases", "create", "--set", "name=Flu")
	require.NoError(t, res.err)

	assert.Equal(t, []string{"POST /api/diseases"}, api.called())
	assert.JSONEq(t, `{"name":"Flu"}`, string(api.body))
	assert.Contains(t, res.out, `"d3"`)
}

func TestCreateValidationNeverCallsAPI(t *testing.T) {
	api := &fakeAPI{}
	res := run(t, api, "", "diseases", "create")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "is required")
	assert.Empty(t, api.called())
}

func TestUnknownFieldRejected(t *testing.T) {
	api := &fakeAPI{}
	res := run(t, api, "", "diseases", "create", "--set", "colour=red")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), `unknown field "colour"`)
	assert.Empty(t, api.called())
}

func TestDoctorCreateWithFileAndNested(t *testing.T) {
	img := filepath.Join(t.TempDir(), "cara.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o600))

	api := &fakeAPI{}
	res := run(t, api, "", "doctors", "create",
		"--set", "firstName=Cara",
		"--set", "lastName=Lin",
		"--set", "clinicAddress.city=Pune",
		"--file", "profilePicture="+img,
	)
	require.NoError(t, res.err)
	require.NotNil(t, api.form)

	assert.Equal(t, []string{"Cara"}, api.form.Value["firstName"])
	assert.Contains(t, api.form.Value["clinicAddress"][0], `"city":"Pune"`)
	require.Contains(t, api.form.File, "doctordp")
	assert.Equal(t, "cara.png", api.form.File["doctordp"][0].Filename)
}

func TestFileFlagRequiresFileField(t *testing.T) {
	res := run(t, &fakeAPI{}, "", "doctors", "create", "--file", "firstName=/tmp/x")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "is not a file field")
}

func TestDeletePromptDeclined(t *testing.T) {
	api := &fakeAPI{}
	res := run(t, api, "n\n", "diseases", "delete", "d1")
	require.NoError(t, res.err)
	assert.Contains(t, res.errOut, "[y/N]")
	assert.Contains(t, res.errOut, "Deletion cancelled.")
	assert.Empty(t, api.called())
}

func TestDeletePromptAccepted(t *testing.T) {
	api := &fakeAPI{}
	res := run(t, api, "yes\n", "diseases", "delete", "d1")
	require.NoError(t, res.err)
	assert.Equal(t, []string{"DELETE /api/diseases/d1"}, api.called())
}

func TestDeleteYesSkipsPrompt(t *testing.T) {
	api := &fakeAPI{}
	res := run(t, api, "", "diseases", "delete", "--yes", "d1")
	require.NoError(t, res.err)
	assert.NotContains(t, res.errOut, "[y/N]")
	assert.Equal(t, []string{"DELETE /api/diseases/d1"}, api.called())
}

func TestDoctorsVerifyLoadsFirst(t *testing.T) {
	api := &fakeAPI{}
	res := run(t, api, "", "doctors", "verify", "b")
	require.NoError(t, res.err)
	assert.Equal(t, []string{"GET /api/doctors", "PATCH /api/admin/doctors/b/verify"}, api.called())
	assert.JSONEq(t, `{"isVerified":true}`, string(api.body))
	assert.Contains(t, res.out, `"verified": true`)
}

func TestDoctorsExportFiltered(t *testing.T) {
	res := run(t, &fakeAPI{}, "", "doctors", "export", "--status", "verified")
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ID,Name,Email,Phone,Specialization,Status", lines[0])
	assert.Contains(t, lines[1], "Asha Rao")
}

func TestDoctorsTable(t *testing.T) {
	res := run(t, &fakeAPI{}, "", "doctors", "table", "--search", "derma")
	require.NoError(t, res.err)

	var page struct {
		Showing string `json:"showing"`
		Stats   struct {
			Total int `json:"total"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.out), &page))
	assert.Equal(t, "Showing 1-1 of 1", page.Showing)
	assert.Equal(t, 2, page.Stats.Total)
}

func TestEveryResourceHasCommands(t *testing.T) {
	cmd := newRootCmd(nil, strings.NewReader(""), io.Discard, io.Discard)
	for _, name := range resourceNames {
		sub, _, err := cmd.Find([]string{name, "list"})
		require.NoError(t, err, name)
		assert.Equal(t, "list", sub.Name())
	}
	_, _, err := cmd.Find([]string{directory.ResDoctors, "export"})
	assert.NoError(t, err)
}
