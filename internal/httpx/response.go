package httpx

import (
	"errors"
	"net/http"

	"github.com/MikeMC777/storefront-api/internal/apperr"
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Field   string `json:"field,omitempty"`
	Path    string `json:"path,omitempty"`
}

func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// List writes data together with its element count.
func List(c *gin.Context, data any, n int) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Count: &n})
}

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindInvalidIdentifier:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Fail renders err as an error envelope. Internal errors hide their cause.
func Fail(c *gin.Context, err error) {
	status := StatusFor(err)
	body := Envelope{Error: err.Error()}

	var e *apperr.Error
	if errors.As(err, &e) {
		body.Kind = string(e.Kind)
		body.Reason = string(e.Reason)
		body.Field = e.Field
		body.Error = e.Message
	} else {
		body.Kind = string(apperr.KindInternal)
	}
	if status == http.StatusInternalServerError {
		body.Error = "internal error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}

// BadRequest renders a malformed-body failure.
func BadRequest(c *gin.Context, msg string) {
	_ = c.Error(errors.New(msg))
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
		Error: msg,
		Kind:  string(apperr.KindValidation),
	})
}

// NoRoute answers unknown paths.
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, Envelope{Error: "Route not found", Path: c.Request.URL.Path})
}
