package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", NewValidation("name is required"), http.StatusBadRequest},
		{"transport", NewTransport("Failed to fetch labs.", fmt.Errorf("dial tcp")), http.StatusBadGateway},
		{"shape", NewShape("unexpected format"), http.StatusBadGateway},
		{"server 4xx mirrored", NewServer(http.StatusConflict, "exists"), http.StatusConflict},
		{"server 5xx becomes bad gateway", NewServer(http.StatusInternalServerError, "boom"), http.StatusBadGateway},
		{"unsupported", NewUnsupported("no update"), http.StatusMethodNotAllowed},
		{"not found", NewNotFound("disease", nil), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestCodeOfWrapped(t *testing.T) {
	err := fmt.Errorf("create disease: %w", NewValidation("Name is required."))

	assert.True(t, IsValidation(err))
	assert.False(t, IsServer(err))
	assert.Equal(t, "Name is required.", MessageOf(err))
	assert.Equal(t, ErrInternal, CodeOf(fmt.Errorf("plain")))
	assert.Equal(t, "", MessageOf(nil))
}

func TestErrorIncludesCause(t *testing.T) {
	err := NewTransport("Failed to create lab.", fmt.Errorf("connection refused"))

	assert.Equal(t, "Failed to create lab.: connection refused", err.Error())
	assert.Equal(t, "Failed to create lab.", MessageOf(err))
}
