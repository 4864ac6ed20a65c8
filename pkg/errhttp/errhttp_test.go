package errhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/itemtree/pkg/auth"
	itemdomain "github.com/ghuser/itemtree/services/item/domain"
	"github.com/ghuser/itemtree/services/item/domain/models"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"item not found", itemdomain.ErrItemNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("item x: %w", itemdomain.ErrItemNotFound), http.StatusNotFound},
		{"parent not found", itemdomain.ErrParentNotFound, http.StatusNotFound},
		{"location mismatch", itemdomain.ErrLocationTenancyMismatch, http.StatusNotFound},
		{"cycle", itemdomain.ErrCircularDependency, http.StatusConflict},
		{"self parent", itemdomain.ErrSelfParent, http.StatusConflict},
		{"has children", itemdomain.ErrHasChildren, http.StatusConflict},
		{"active work", itemdomain.ErrHasActiveWork, http.StatusConflict},
		{"duplicate code", itemdomain.ErrDuplicateIdentifierCode, http.StatusConflict},
		{"transition", &itemdomain.TransitionError{From: models.StatusDisposed, To: models.StatusOperational}, http.StatusConflict},
		{"invalid name", itemdomain.ErrInvalidItemName, http.StatusUnprocessableEntity},
		{"custom fields", &itemdomain.CustomFieldsError{Fields: map[string]string{"serial": "is required"}}, http.StatusUnprocessableEntity},
		{"unauthenticated", auth.ErrTenantIDNotFound, http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorToStatus(tt.err))
		})
	}
}

func TestWriteError_CustomFieldDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("create: %w", &itemdomain.CustomFieldsError{Fields: map[string]string{
		"serial": "is required",
		"rpm":    "must be a number",
	}}))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "validation", body.Kind)
	assert.Equal(t, "is required", body.Fields["serial"])
	assert.Equal(t, "must be a number", body.Fields["rpm"])
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: connection refused to 10.0.0.3"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Internal Server Error", body.Error)
	assert.Empty(t, body.Kind)
}
