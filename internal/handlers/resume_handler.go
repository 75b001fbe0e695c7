package handlers

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type ResumeHandler struct {
	analyzer services.ResumeAnalyzer
	uploads  uploadReceiver
	errs     errorResponder
}

func NewResumeHandler(
	analyzer services.ResumeAnalyzer,
	storage services.StorageService,
	uploadRepo repositories.UploadRepository,
	maxFileSize int64,
	development bool,
) *ResumeHandler {
	return &ResumeHandler{
		analyzer: analyzer,
		uploads:  uploadReceiver{storage: storage, uploadRepo: uploadRepo, maxFileSize: maxFileSize},
		errs:     errorResponder{development: development},
	}
}

// HandleUploadAnalyze stores the uploaded résumé and runs the full analysis.
func (h *ResumeHandler) HandleUploadAnalyze(c *fiber.Ctx) error {
	jobDescription := c.FormValue("jobDescription")
	if len([]rune(jobDescription)) > maxJobDescriptionChars {
		return h.errs.badRequest(c, fmt.Sprintf("Job description must be at most %d characters", maxJobDescriptionChars), nil)
	}

	stored, _, err := h.uploads.receive(c)
	if err != nil {
		return h.uploads.respondUploadError(c, h.errs, err)
	}

	response, err := h.analyzer.AnalyzeUpload(c.UserContext(), services.AnalyzeUploadInput{
		RequestID:        requestID(c),
		File:             stored,
		JobDescription:   jobDescription,
		WithImprovements: c.FormValue("withImprovements") == "true",
		ImprovementType:  c.FormValue("improvementType"),
	})
	if err != nil {
		return h.errs.fail(c, err)
	}

	return ok(c, "", response)
}

// HandleAnalyzeText analyzes résumé text sent as JSON.
func (h *ResumeHandler) HandleAnalyzeText(c *fiber.Ctx) error {
	var req models.AnalyzeTextRequest
	if err := c.BodyParser(&req); err != nil {
		return h.errs.badRequest(c, "Invalid request body", err)
	}

	if msg := validateAnalyzeText(req); msg != "" {
		return h.errs.badRequest(c, msg, nil)
	}

	response, err := h.analyzer.AnalyzeText(c.UserContext(), requestID(c), req.ResumeText, req.JobDescription)
	if err != nil {
		return h.errs.fail(c, err)
	}

	return ok(c, "", response)
}

func validateAnalyzeText(req models.AnalyzeTextRequest) string {
	n := len([]rune(strings.TrimSpace(req.ResumeText)))
	switch {
	case n == 0:
		return "Resume text is required and must be a string"
	case n < minResumeTextChars:
		return fmt.Sprintf("Resume text must be at least %d characters", minResumeTextChars)
	case n > maxResumeTextChars:
		return fmt.Sprintf("Resume text must be at most %d characters", maxResumeTextChars)
	case len([]rune(req.JobDescription)) > maxJobDescriptionChars:
		return fmt.Sprintf("Job description must be at most %d characters", maxJobDescriptionChars)
	}
	return ""
}
