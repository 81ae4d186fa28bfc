package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	. "github.com/schoolfeed/schoolfeed/utils/log"
)

// response is the JSON envelope every endpoint returns.
type response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// APIError is the request-boundary error taxonomy. Every failure a
// handler can produce maps onto one of the constructors below; anything
// else renders as a 500 without leaking its cause.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

func errNotFound(msg string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: msg}
}

func errForbidden(msg string) *APIError {
	return &APIError{Status: http.StatusForbidden, Message: msg}
}

func errUnauthenticated(msg string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: msg}
}

func errConflict(msg string) *APIError {
	return &APIError{Status: http.StatusConflict, Message: msg}
}

func errValidation(msg string) *APIError {
	return &APIError{Status: http.StatusUnprocessableEntity, Message: msg}
}

// renderError writes the error to the response. Unexpected errors are
// logged with the request id and rendered as a generic 500.
func renderError(c *gin.Context, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, response{Message: apiErr.Message})
		return
	}
	Log.WithField("request_id", c.GetString("request_id")).Error("unexpected error: ", err)
	c.JSON(http.StatusInternalServerError, response{Message: "unexpected server error"})
}
