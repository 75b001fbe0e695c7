package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

const (
	maxJobDescriptionChars = 10000
	minResumeTextChars     = 100
	maxResumeTextChars     = 50000
)

// errorStatus maps a failure kind to the HTTP status returned to clients.
var errorStatus = map[string]int{
	"UnsupportedFormat":      fiber.StatusBadRequest,
	"EmptyContent":           fiber.StatusBadRequest,
	"ExtractionFailed":       fiber.StatusUnprocessableEntity,
	"TextTooShort":           fiber.StatusBadRequest,
	"ValidationFailed":       fiber.StatusBadRequest,
	"ModelInvocationFailed":  fiber.StatusBadGateway,
	"MalformedModelResponse": fiber.StatusBadGateway,
	"RenderFailed":           fiber.StatusInternalServerError,
	"Internal":               fiber.StatusInternalServerError,
}

var errorMessage = map[string]string{
	"UnsupportedFormat":      "Only PDF, DOC, DOCX and TXT files are allowed",
	"EmptyContent":           "Could not extract text from the uploaded file",
	"ExtractionFailed":       "Failed to read the uploaded file",
	"TextTooShort":           "Resume text is too short or missing",
	"ValidationFailed":       "The provided content does not appear to be a valid resume",
	"ModelInvocationFailed":  "The analysis service is unavailable, please try again later",
	"MalformedModelResponse": "The analysis service returned an unexpected response",
	"RenderFailed":           "Failed to generate the PDF document",
	"Internal":               "Internal server error",
}

// errorResponder writes the failure envelope. Internal error text is only
// exposed in development.
type errorResponder struct {
	development bool
}

func (r errorResponder) fail(c *fiber.Ctx, err error) error {
	kind := services.ErrorKind(err)
	status, ok := errorStatus[kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}

	log.Printf("❌ %s %s failed (%s): %v\n", c.Method(), c.Path(), kind, err)

	resp := models.APIResponse{Success: false, Message: errorMessage[kind]}
	if r.development {
		resp.Error = err.Error()
	}
	return c.Status(status).JSON(resp)
}

func (r errorResponder) badRequest(c *fiber.Ctx, message string, err error) error {
	resp := models.APIResponse{Success: false, Message: message}
	if r.development && err != nil {
		resp.Error = err.Error()
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}

// invalidPayload answers a failed analysisData schema check.
func (r errorResponder) invalidPayload(c *fiber.Ctx, err error) error {
	var schemaErr *models.SchemaError
	if errors.As(err, &schemaErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid analysis data",
			"details": schemaErr.Details,
		})
	}
	return r.badRequest(c, "Invalid analysis data", err)
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

func ok(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(models.APIResponse{Success: true, Message: message, Data: data})
}
