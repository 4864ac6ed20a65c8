package validator_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgvalidator "github.com/ghuser/itemtree/pkg/validator"
)

type sampleStruct struct {
	ParentID string `validate:"required,uuid"`
	Name     string `validate:"required,min=1,max=10"`
	Status   string `validate:"omitempty,oneof=operational maintenance"`
}

func TestValidate_valid(t *testing.T) {
	s := sampleStruct{
		ParentID: "550e8400-e29b-41d4-a716-446655440000",
		Name:     "pump",
	}
	assert.NoError(t, pkgvalidator.Validate(&s))
}

func TestValidate_missingRequired(t *testing.T) {
	assert.Error(t, pkgvalidator.Validate(&sampleStruct{}))
}

func TestFormatValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    sampleStruct
		field string
		want  string
	}{
		{"required", sampleStruct{Name: "ok"}, "ParentID", "This field is required"},
		{"uuid", sampleStruct{ParentID: "not-a-uuid", Name: "ok"}, "ParentID", "Must be a valid UUID"},
		{"max", sampleStruct{ParentID: "550e8400-e29b-41d4-a716-446655440000", Name: "12345678901"}, "Name", "Maximum length is 10"},
		{"oneof", sampleStruct{ParentID: "550e8400-e29b-41d4-a716-446655440000", Name: "ok", Status: "broken"}, "Status", "Must be one of: operational, maintenance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := pkgvalidator.FormatValidationErrors(pkgvalidator.Validate(&tt.in))
			assert.Equal(t, tt.want, m[tt.field])
		})
	}
}

func TestFormatValidationErrors_nonValidationError(t *testing.T) {
	assert.Empty(t, pkgvalidator.FormatValidationErrors(http.ErrNoCookie))
}

// --- ValidateRequest ---

type moveReq struct {
	ParentID string `json:"parent_id" validate:"required,uuid"`
	Name     string `json:"name"      validate:"required,min=1,max=255"`
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestValidateRequest_valid(t *testing.T) {
	body := `{"parent_id":"550e8400-e29b-41d4-a716-446655440000","name":"pump"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	req, ok := pkgvalidator.ValidateRequest[moveReq](w, r)
	require.True(t, ok, "response: %s", w.Body.String())
	assert.Equal(t, "pump", req.Name)
}

func TestValidateRequest_invalidJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{bad json"))
	w := httptest.NewRecorder()

	_, ok := pkgvalidator.ValidateRequest[moveReq](w, r)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Invalid JSON", body["error"])
	assert.Equal(t, "bad_request", body["kind"])
}

func TestValidateRequest_emptyBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	w := httptest.NewRecorder()

	_, ok := pkgvalidator.ValidateRequest[moveReq](w, r)
	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Request body is required", decodeBody(t, w)["error"])
}

func TestValidateRequest_fieldErrorsUseJSONNames(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"parent_id":"not-uuid"}`))
	w := httptest.NewRecorder()

	_, ok := pkgvalidator.ValidateRequest[moveReq](w, r)
	require.False(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "validation", body["kind"])
	fields, _ := body["fields"].(map[string]any)
	assert.Equal(t, "Must be a valid UUID", fields["parent_id"])
	assert.Equal(t, "This field is required", fields["name"])
}

func TestValidateRequest_bodyTooLarge(t *testing.T) {
	body := `{"parent_id":"550e8400-e29b-41d4-a716-446655440000","name":"` + strings.Repeat("x", 64) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.Body = http.MaxBytesReader(w, r.Body, 32)

	_, ok := pkgvalidator.ValidateRequest[moveReq](w, r)
	require.False(t, ok)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "payload_too_large", decodeBody(t, w)["kind"])
}
