package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type ImprovementHandler struct {
	analyzer    services.ResumeAnalyzer
	exporter    services.ReportExporter
	synthesizer *services.ImprovementSynthesizer
	errs        errorResponder
}

func NewImprovementHandler(analyzer services.ResumeAnalyzer, exporter services.ReportExporter, development bool) *ImprovementHandler {
	return &ImprovementHandler{
		analyzer:    analyzer,
		exporter:    exporter,
		synthesizer: services.NewImprovementSynthesizer(),
		errs:        errorResponder{development: development},
	}
}

// HandleGenerateImprovements never fails on model errors: the fallback
// bundle is returned with source "fallback".
func (h *ImprovementHandler) HandleGenerateImprovements(c *fiber.Ctx) error {
	var req models.GenerateImprovementsRequest
	if err := c.BodyParser(&req); err != nil {
		return h.errs.badRequest(c, "Invalid request body", err)
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		return h.errs.badRequest(c, "Analysis data and resume text are required", nil)
	}

	analysis, err := models.ValidateAnalysisPayload(req.AnalysisData)
	if err != nil {
		return h.errs.invalidPayload(c, err)
	}

	bundle := h.analyzer.GenerateImprovements(
		c.UserContext(),
		requestID(c),
		analysis,
		req.ResumeText,
		services.ParseImprovementCategory(req.ImprovementType),
	)

	return ok(c, "", models.ImprovementsResponse{
		Improvements: bundle,
		Plan:         h.synthesizer.Synthesize(analysis),
	})
}

// HandleGenerateImprovedPDF rewrites the résumé and returns it as a PDF attachment.
func (h *ImprovementHandler) HandleGenerateImprovedPDF(c *fiber.Ctx) error {
	var req models.GenerateImprovedPDFRequest
	if err := c.BodyParser(&req); err != nil {
		return h.errs.badRequest(c, "Invalid request body", err)
	}
	if strings.TrimSpace(req.ResumeText) == "" {
		return h.errs.badRequest(c, "Analysis data and resume text are required", nil)
	}

	analysis, err := models.ValidateAnalysisPayload(req.AnalysisData)
	if err != nil {
		return h.errs.invalidPayload(c, err)
	}

	improved, err := h.analyzer.GenerateImprovedResume(c.UserContext(), requestID(c), analysis, req.ResumeText)
	if err != nil {
		return h.errs.fail(c, err)
	}

	return sendAttachment(c, "application/pdf", improved.Filename, improved.PDF)
}

// HandleExportReport returns the analysis as an xlsx workbook.
func (h *ImprovementHandler) HandleExportReport(c *fiber.Ctx) error {
	var req models.ExportReportRequest
	if err := c.BodyParser(&req); err != nil {
		return h.errs.badRequest(c, "Invalid request body", err)
	}

	analysis, err := models.ValidateAnalysisPayload(req.AnalysisData)
	if err != nil {
		return h.errs.invalidPayload(c, err)
	}

	now := time.Now()
	report, err := h.exporter.Export(services.ExportInput{
		Analysis:     analysis,
		Plan:         h.synthesizer.Synthesize(analysis),
		Improvements: req.Improvements,
		GeneratedAt:  now,
	})
	if err != nil {
		return h.errs.fail(c, err)
	}

	return sendAttachment(c, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", services.ReportFilename(now), report)
}

func sendAttachment(c *fiber.Ctx, contentType, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(body)
}
