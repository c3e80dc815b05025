package httpserver

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/techcart/internal/domain"
	"github.com/phenrril/techcart/internal/usecase"
)

type okBody struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

type errorBody struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Code    domain.Kind `json:"code,omitempty"`
	Details []string    `json:"details,omitempty"`
}

func writeJSON(c *gin.Context, code int, data any) {
	c.JSON(code, okBody{Success: true, Data: data})
}

func writeMessage(c *gin.Context, code int, msg string, data any) {
	c.JSON(code, okBody{Success: true, Message: msg, Data: data})
}

// fail maps a usecase error onto the response envelope. what names the entity for
// not-found messages.
func fail(c *gin.Context, err error, what string) {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindValidation:
		c.JSON(http.StatusBadRequest, errorBody{Message: "Validation error", Code: kind, Details: domain.FieldErrors(err)})
	case domain.KindNotFound:
		c.JSON(http.StatusNotFound, errorBody{Message: what + " not found", Code: kind})
	case domain.KindConflict:
		c.JSON(http.StatusBadRequest, errorBody{Message: conflictMessage(err), Code: kind})
	default:
		log.Error().Err(err).
			Str("request_id", c.GetString(ctxRequestID)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, errorBody{Message: "Internal server error", Code: kind})
	}
}

func conflictMessage(err error) string {
	if reason := domain.ConflictReason(err); reason != "" {
		return reason
	}
	return "Conflict"
}

func badRequest(c *gin.Context, err error) {
	fail(c, usecase.ValidationFrom(err), "")
}

// pathID parses a uuid path parameter. A malformed id cannot name an existing
// entity, so it is reported as not found.
func pathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		fail(c, domain.ErrNotFound, what)
		return uuid.Nil, false
	}
	return id, true
}

var registerOnce sync.Once

// registerValidation makes gin binding errors report json field names.
func registerValidation() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(usecase.JSONFieldName)
		}
	})
}
