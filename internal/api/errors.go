package api

import (
	"errors"
	"net/http"
)

// IsUnauthorized reports whether err is a server-reported credential failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a missing-entity response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Detail returns the server-supplied error message when present, otherwise
// fallback. Network errors and empty bodies both yield the fallback so view
// code always has something displayable.
func Detail(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
