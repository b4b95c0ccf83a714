package api

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/Domenick1991/domora/internal/domain"
)

var logger = loggo.GetLogger("domora.api")

type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
}

// statusFor maps the error taxonomy onto HTTP status codes. Conflicts are
// reported as 400.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.NotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.Forbidden):
		return http.StatusForbidden
	case errors.Is(err, errors.Unauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errors.AlreadyExists), errors.Is(err, errors.BadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errors.NotValid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, errors.ErrorStack(err))
		msg = "internal server error"
	case http.StatusBadGateway:
		logger.Warningf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		msg = "upstream service unavailable"
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}

// writeBindError reports request decoding failures. Field validation
// failures are 422 with the offending fields, malformed bodies are 400.
func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	fields := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fieldError{Field: fieldPath(fe.Namespace()), Rule: fe.Tag()})
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, errorResponse{
		Error:  "request validation failed",
		Fields: fields,
	})
}

// fieldPath drops the top-level struct name, e.g.
// "CreateBookingInput.ServiceAddress.City" becomes "ServiceAddress.City".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
