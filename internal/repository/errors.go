package repository

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Common repository errors
var (
	ErrInvalidInput = errors.New("invalid input")
)

// isPermissionError checks if the spreadsheet refused the write because the
// service account lacks access, which retrying will not fix
func isPermissionError(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code == http.StatusForbidden || gerr.Code == http.StatusUnauthorized
}
