package v1

import (
	"errors"
	"net/http"

	"github.com/Tantanok221/agentbudget/internal/ledger"
	"github.com/Tantanok221/agentbudget/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"there is no envelope matching your query"`

	// Code carries a machine readable code for errors clients need to
	// distinguish programmatically.
	Code string `json:"code,omitempty" example:"MISSING_TBB"`
}

// newHTTPError builds the error body, attaching the machine readable
// code where one exists.
func newHTTPError(err error) httpError {
	e := httpError{Error: err.Error()}

	if errors.Is(err, ledger.ErrMissingTBB) {
		e.Code = "MISSING_TBB"
	}

	return e
}

// status returns the appropriate HTTP status for a database or domain
// error.
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	// The whole budget is unusable until the system envelope exists.
	if errors.Is(err, ledger.ErrMissingTBB) {
		return http.StatusPreconditionFailed
	}

	// Posting the same occurrence twice is a conflict, not a bad
	// request: the first post won.
	if errors.Is(err, models.ErrAlreadyPosted) {
		return http.StatusConflict
	}

	return http.StatusBadRequest
}
