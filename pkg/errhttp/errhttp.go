// Package errhttp maps domain errors to HTTP status codes.
// Item errors are classified through itemdomain.KindOf, so a new sentinel only
// needs to be registered with its kind in the domain package.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/itemtree/pkg/auth"
	"github.com/ghuser/itemtree/pkg/httpx"
	itemdomain "github.com/ghuser/itemtree/services/item/domain"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteError maps err to an HTTP status code and writes a JSON error response.
// Uses errors.Is() so wrapped sentinel errors are matched correctly.
// Defaults to 500 Internal Server Error for unrecognized errors.
func WriteError(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)
	body := ErrorBody{Error: err.Error()}
	if kind := itemdomain.KindOf(err); kind != itemdomain.KindUnknown {
		body.Kind = kind.String()
	}

	var cfErr *itemdomain.CustomFieldsError
	if errors.As(err, &cfErr) {
		body.Fields = cfErr.Fields
	}
	if status == http.StatusInternalServerError {
		body.Error = http.StatusText(status)
	}
	httpx.JSON(w, status, body)
}

func mapErrorToStatus(err error) int {
	if errors.Is(err, auth.ErrTenantIDNotFound) {
		return http.StatusUnauthorized // 401
	}
	switch itemdomain.KindOf(err) {
	case itemdomain.KindNotFound:
		return http.StatusNotFound // 404
	case itemdomain.KindConflict:
		return http.StatusConflict // 409
	case itemdomain.KindValidation:
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
