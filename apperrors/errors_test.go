package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHttp(t *testing.T) {
	m := NewMapper()
	cause := errors.New("disk I/O error")

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"nil", nil, http.StatusOK, ""},
		{"validation", NewValidationError("bad date"), http.StatusBadRequest, "bad date"},
		{"wrapped validation", fmt.Errorf("query: %w", NewValidationError("bad region")), http.StatusBadRequest, "query: bad region"},
		{"not found", NewNotFoundError("no such region"), http.StatusNotFound, "no such region"},
		{"unavailable", NewUnavailableError("price source", cause), http.StatusServiceUnavailable, "price source unavailable: disk I/O error"},
		{"database", NewDatabaseError("query news", cause), http.StatusInternalServerError, "internal server error"},
		{"plain", cause, http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := m.MapErrorToHttp(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("locked")
	err := NewDatabaseError("insert news", cause)
	assert.True(t, IsDatabaseError(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "insert news: locked", err.Error())

	assert.True(t, IsUnavailableError(fmt.Errorf("chart: %w", NewUnavailableError("yahoo", nil))))
	assert.False(t, IsNotFoundError(err))
}
