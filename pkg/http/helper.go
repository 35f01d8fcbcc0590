package http

import (
	"encoding/json"
	"net/http"
	"strings"

	apperrors "medibites/pkg/errors"
)

// RequiredQuery returns the trimmed value of a query parameter or an INVALID_INPUT error.
func RequiredQuery(r *http.Request, key string) (string, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return "", apperrors.InvalidInput("missing required query parameter: " + key)
	}
	return value, nil
}

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperrors.InvalidInput("invalid JSON body: " + err.Error())
	}
	return nil
}
