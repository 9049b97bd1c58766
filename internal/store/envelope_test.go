package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCollection(t *testing.T) {
	shape := Shape{Key: "doctors", TotalKey: "totalDoctors"}
	want := []item{{ID: "1", Name: "A"}}

	tests := []struct {
		name     string
		body     string
		wantPage Page
	}{
		{"bare array", `[{"_id":"1","name":"A"}]`, Page{}},
		{"named envelope", `{"doctors":[{"_id":"1","name":"A"}],"totalPages":"3","currentPage":2,"totalDoctors":21}`,
			Page{TotalPages: 3, CurrentPage: 2, Total: 21, Known: true}},
		{"items envelope", `{"items":[{"_id":"1","name":"A"}],"total":1}`, Page{Total: 1, Known: true}},
		{"data envelope", ` {"data":[{"_id":"1","name":"A"}]}`, Page{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := DecodeCollection[item]([]byte(tt.body), shape)
			require.NoError(t, err)
			assert.Equal(t, want, col.Items)
			assert.Equal(t, tt.wantPage, col.Page)
		})
	}
}

func TestDecodeCollectionRejectsUnknownShapes(t *testing.T) {
	for _, body := range []string{`{"doctors":{"_id":"1"}}`, `{"message":"ok"}`, `"hello"`, `null`, ``, `42`} {
		_, err := DecodeCollection[item]([]byte(body), Shape{Key: "doctors"})
		var se *ShapeError
		assert.ErrorAs(t, err, &se, body)
	}
}

func TestDecodeCollectionEmptyList(t *testing.T) {
	col, err := DecodeCollection[item]([]byte(`{"doctors":[]}`), Shape{Key: "doctors"})
	require.NoError(t, err)
	assert.NotNil(t, col.Items)
	assert.Empty(t, col.Items)
}

func TestDecodeSingle(t *testing.T) {
	res, err := DecodeSingle[item]([]byte(`{"disease":{"_id":"d1","name":"Flu"},"message":"Disease created successfully!"}`), "disease")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, item{ID: "d1", Name: "Flu"}, res.Item)
	assert.Equal(t, "Disease created successfully!", res.Message)

	res, err = DecodeSingle[item]([]byte(`{"data":{"_id":"d2"}}`), "disease")
	require.NoError(t, err)
	assert.Equal(t, "d2", res.Item.ID)

	res, err = DecodeSingle[item]([]byte(`{"_id":"d3","name":"Gout"}`), "disease")
	require.NoError(t, err)
	assert.Equal(t, "Gout", res.Item.Name)

	for _, body := range []string{``, `"deleted"`, `{"message":"gone"}`} {
		res, err = DecodeSingle[item]([]byte(body), "disease")
		require.NoError(t, err)
		assert.False(t, res.Found, body)
	}
}
