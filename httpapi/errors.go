package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/jonwraymond/catalogd/account"
	"github.com/jonwraymond/catalogd/auth"
	"github.com/jonwraymond/catalogd/catalog"
	"github.com/jonwraymond/catalogd/observe"
)

var errBadRequest = errors.New("invalid request body")

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps err to a status code. Authentication failures share
// one message so the reply does not say which check failed.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials), errors.Is(err, auth.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", `Bearer realm="catalogd"`)
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	case errors.Is(err, auth.ErrInsufficientPermissions):
		writeErrorCode(c, http.StatusForbidden, "FORBIDDEN", "forbidden")
	case errors.Is(err, account.ErrDuplicateIdentifier):
		writeErrorCode(c, http.StatusConflict, "CONFLICT", "email already registered")
	case errors.Is(err, errBadRequest), errors.Is(err, account.ErrInvalidInput), errors.Is(err, catalog.ErrInvalidBook):
		writeErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	case errors.Is(err, catalog.ErrBookNotFound):
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "book not found")
	default:
		s.log.Error(c.Request.Context(), "internal error",
			observe.Field{Key: "request_id", Value: requestIDFrom(c)},
			observe.Field{Key: "error", Value: err.Error()},
		)
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}

// bindStrict decodes the JSON body into dst, rejecting unknown fields,
// and runs dst's binding validations.
func bindStrict(c *gin.Context, dst any) error {
	if c.Request.Body == nil {
		return fmt.Errorf("%w: empty body", errBadRequest)
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", errBadRequest)
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}
	return nil
}
