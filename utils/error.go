package utils

import (
	"errors"
	"net/http"

	"cityportal/i18n"
	"cityportal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// ErrorResponse defines the structure of error responses
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorMapping struct {
	status int
	code   string
	key    string
}

var errorTable = []struct {
	target error
	errorMapping
}{
	{models.ErrNotFound, errorMapping{http.StatusNotFound, "not_found", i18n.ErrNotFound}},
	{models.ErrAlreadyExists, errorMapping{http.StatusConflict, "already_exists", i18n.ErrAlreadyExists}},
	{models.ErrValidation, errorMapping{http.StatusBadRequest, "validation_error", i18n.ErrValidation}},
	{models.ErrInvalidCredentials, errorMapping{http.StatusUnauthorized, "invalid_credentials", i18n.ErrInvalidCredentials}},
	{models.ErrUnauthorized, errorMapping{http.StatusUnauthorized, "unauthorized", i18n.ErrUnauthorized}},
	{models.ErrForbidden, errorMapping{http.StatusForbidden, "forbidden", i18n.ErrForbidden}},
	{models.ErrInvalidTransition, errorMapping{http.StatusConflict, "invalid_transition", i18n.ErrInvalidTransition}},
	{models.ErrTooLarge, errorMapping{http.StatusRequestEntityTooLarge, "too_large", i18n.ErrTooLarge}},
	{models.ErrStorage, errorMapping{http.StatusBadGateway, "storage_error", i18n.ErrStorage}},
}

var internalError = errorMapping{http.StatusInternalServerError, "internal_error", i18n.ErrInternal}

func lookupError(err error) errorMapping {
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			return e.errorMapping
		}
	}
	return internalError
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	return lookupError(err).status
}

// RequestLanguage returns the language resolved for the request.
func RequestLanguage(c *gin.Context) language.Tag {
	if v, ok := c.Get(CtxLang); ok {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	return i18n.Default()
}

// RequestLang returns the two letter code of the request language.
func RequestLang(c *gin.Context) string {
	return i18n.Code(RequestLanguage(c))
}

// ErrorHandler is a middleware to catch panics and return structured errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				GetLogger().Error("Unhandled panic", zap.Any("error", err), zap.String("path", c.Request.URL.Path))

				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
					Error:   internalError.code,
					Message: i18n.T(RequestLanguage(c), i18n.ErrInternal),
				})
			}
		}()
		c.Next()
	}
}

// RespondError logs err and writes the localized error response matching it.
func RespondError(c *gin.Context, err error) {
	m := lookupError(err)
	resp := ErrorResponse{
		Error:   m.code,
		Message: i18n.T(RequestLanguage(c), m.key),
	}

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		resp.Fields = map[string]string{ve.Field: ve.Message}
	}

	logger := GetLogger()
	if m.status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		logger.Warn("Request rejected", zap.String("path", c.FullPath()), zap.Int("status", m.status), zap.Error(err))
		if ve == nil {
			resp.Details = err.Error()
		}
	}
	c.AbortWithStatusJSON(m.status, resp)
}

// RespondBindError answers a request whose body or query could not be bound.
func RespondBindError(c *gin.Context, err error) {
	resp := ErrorResponse{
		Error:   "validation_error",
		Message: i18n.T(RequestLanguage(c), i18n.ErrValidation),
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Fields = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			resp.Fields[fe.Field()] = fe.Tag()
		}
	} else {
		resp.Error = "bad_request"
		resp.Message = i18n.T(RequestLanguage(c), i18n.ErrBadRequest)
		resp.Details = err.Error()
	}
	GetLogger().Warn("Invalid request payload", zap.String("path", c.FullPath()), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusBadRequest, resp)
}

// JSONError sends a localized JSON error response for a message key.
func JSONError(c *gin.Context, status int, code, key string) {
	GetLogger().Warn(code, zap.String("path", c.FullPath()), zap.Int("status", status))
	c.AbortWithStatusJSON(status, ErrorResponse{Error: code, Message: i18n.T(RequestLanguage(c), key)})
}
