package response

import (
	"errors"
	"net/http"

	"plotsure-backend/internal/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Body is the envelope every endpoint returns: a success flag plus a
// human-readable message.
type Body struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Success sends 200 with the standard envelope.
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(http.StatusOK).JSON(Body{Success: true, Message: message, Data: data})
}

// Created sends 201 with the standard envelope.
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(http.StatusCreated).JSON(Body{Success: true, Message: message, Data: data})
}

// Error sends the standard error envelope.
func Error(c *fiber.Ctx, message string, status int, details interface{}) error {
	return c.Status(status).JSON(Body{Success: false, Message: message, Errors: details})
}

// FromError maps an application error to its HTTP response. Internal
// failures are logged with the request trace id and masked with a generic
// message.
func FromError(c *fiber.Ctx, err error) error {
	status := apperr.StatusCode(err)
	var e *apperr.Error
	if !errors.As(err, &e) || status == http.StatusInternalServerError {
		traceID, _ := c.Locals("trace_id").(string)
		log.Error().Err(err).Str("trace_id", traceID).Str("path", c.Path()).Msg("request failed")
		return Error(c, "Internal server error", http.StatusInternalServerError, nil)
	}
	var details interface{}
	if len(e.Fields) > 0 {
		details = e.Fields
	}
	return Error(c, e.Message, status, details)
}
