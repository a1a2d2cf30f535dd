// Package response renders the JSON envelopes every endpoint answers with.
package response

import (
	"github.com/gofiber/fiber/v2"
	"github.com/saeid-a/FitTrackBack/internal/apperr"
	"github.com/saeid-a/FitTrackBack/internal/models"
)

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

type PageEnvelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
	models.PaginationMeta
}

type ErrorEnvelope struct {
	Success bool                `json:"success"`
	Data    any                 `json:"data"`
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

func OK(c *fiber.Ctx, data any, message string) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Data: data, Message: message})
}

func Created(c *fiber.Ctx, data any, message string) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data, Message: message})
}

// List writes a page of items with its pagination totals beside data.
func List[T any](c *fiber.Ctx, page models.Page[T], message string) error {
	return c.Status(fiber.StatusOK).JSON(PageEnvelope{
		Success:        true,
		Data:           page.Items,
		Message:        message,
		PaginationMeta: page.PaginationMeta,
	})
}

// Error maps err to its status and client-safe message.
func Error(c *fiber.Ctx, err error) error {
	return c.Status(apperr.Status(err)).JSON(ErrorEnvelope{
		Message: apperr.Message(err),
		Errors:  apperr.Fields(err),
	})
}
