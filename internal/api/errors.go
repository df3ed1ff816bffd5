// Package api is the thin Admission HTTP surface (§2 item 12):
// handlers decode the request, call through the Admission service, and
// encode the response. No business logic lives here, matching the
// teacher's handlers-call-services REST layer.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pipelineerrors "github.com/smilemakc/contentforge/internal/domain/errors"
)

// APIError is the envelope every error response takes.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string { return e.Message }

func NewAPIError(code, message string, httpStatus int) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: httpStatus}
}

var (
	ErrInvalidJSON      = NewAPIError("INVALID_JSON", "invalid JSON in request body", http.StatusBadRequest)
	ErrMissingParameter = NewAPIError("MISSING_PARAMETER", "required parameter is missing", http.StatusBadRequest)
	ErrInternalServer   = NewAPIError("INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
)

// TranslateError maps a domain error into an APIError, defaulting to a
// 500 for anything it doesn't recognize.
func TranslateError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var notFound *pipelineerrors.JobNotFoundError
	if errors.As(err, &notFound) {
		return NewAPIError("JOB_NOT_FOUND", notFound.Error(), http.StatusNotFound)
	}

	var validation *pipelineerrors.ValidationError
	if errors.As(err, &validation) {
		return NewAPIError("VALIDATION_FAILED", validation.Error(), http.StatusBadRequest)
	}

	return ErrInternalServer
}

func respondJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

func respondAPIError(c *gin.Context, err error) {
	apiErr := TranslateError(err)
	c.JSON(apiErr.HTTPStatus, apiErr)
}

func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondAPIError(c, ErrInvalidJSON)
		return err
	}
	return nil
}

func getParam(c *gin.Context, name string) (string, bool) {
	value := c.Param(name)
	if value == "" {
		respondAPIError(c, ErrMissingParameter)
		return "", false
	}
	return value, true
}
