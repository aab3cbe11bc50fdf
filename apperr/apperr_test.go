package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad %s", "input"), http.StatusBadRequest},
		{"quota", Quota(5, "menus", "restaurant"), http.StatusBadRequest},
		{"not found", NotFound("Menu"), http.StatusNotFound},
		{"unauthorized", Unauthorized("nope"), http.StatusUnauthorized},
		{"conflict", Conflict("taken"), http.StatusConflict},
		{"internal", Internal("boom", errors.New("db down")), http.StatusInternalServerError},
		{"foreign error", errors.New("raw"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("load: %w", NotFound("Category")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := Internal("Failed to delete menu", errors.New("pq: connection reset"))
	assert.Equal(t, "Failed to delete menu", Message(err))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "Unexpected error occurred", Message(errors.New("raw")))
}

func TestQuotaNamesLimit(t *testing.T) {
	err := Quota(10, "categories", "menu")
	assert.Equal(t, "Maximum of 10 categories allowed per menu", err.Error())
	assert.True(t, Is(err, KindQuota))
	assert.False(t, Is(nil, KindQuota))
}
