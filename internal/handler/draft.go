package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/jwalitptl/directory-admin/internal/directory"
	"github.com/jwalitptl/directory-admin/internal/normalize"
	"github.com/jwalitptl/directory-admin/internal/store"
	apperrors "github.com/jwalitptl/directory-admin/pkg/errors"
)

// MaxFileSize caps a single uploaded file.
const MaxFileSize = 8 << 20

// BindDraft reads a JSON, urlencoded or multipart body into a draft holding
// only the keys the form knows. Nested fields are addressed as
// "clinicAddress.city" or, in JSON, as an object. Only the submitted keys end
// up in the draft, so an update stays partial.
func BindDraft(c *gin.Context, form directory.Form) (store.Draft, error) {
	d := store.Draft{}

	switch c.ContentType() {
	case binding.MIMEMultipartPOSTForm:
		mf, err := c.MultipartForm()
		if err != nil {
			return nil, apperrors.NewBadRequest("invalid multipart body", err)
		}
		for key, vals := range mf.Value {
			if len(vals) > 0 {
				setKey(d, form, key, vals[len(vals)-1])
			}
		}
		for _, field := range form.Files {
			fhs := mf.File[field]
			if len(fhs) == 0 {
				continue
			}
			f, err := readFile(fhs[0])
			if err != nil {
				return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid file %s", field), err)
			}
			d.SetFile(field, f)
		}

	case binding.MIMEPOSTForm:
		if err := c.Request.ParseForm(); err != nil {
			return nil, apperrors.NewBadRequest("invalid form body", err)
		}
		for key, vals := range c.Request.PostForm {
			if len(vals) > 0 {
				setKey(d, form, key, vals[len(vals)-1])
			}
		}

	default:
		var body map[string]interface{}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			return nil, apperrors.NewBadRequest("invalid JSON body", err)
		}
		for key, value := range body {
			if sub, ok := value.(map[string]interface{}); ok {
				for field, v := range sub {
					setKey(d, form, key+"."+field, v)
				}
				continue
			}
			setKey(d, form, key, value)
		}
	}
	return d, nil
}

func setKey(d store.Draft, form directory.Form, key string, value interface{}) {
	if group, field, ok := strings.Cut(key, "."); ok {
		if slices.Contains(form.Nested, group) {
			d.SetNested(group, field, value)
		}
		return
	}
	if slices.Contains(form.Fields, key) {
		d.Set(key, value)
	}
}

func readFile(fh *multipart.FileHeader) (*normalize.File, error) {
	if fh.Size > MaxFileSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", fh.Filename, MaxFileSize)
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	return &normalize.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
