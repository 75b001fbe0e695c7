package handlers

import "github.com/gofiber/fiber/v2"

// RegisterResumeRoutes mounts the résumé endpoints on router.
func RegisterResumeRoutes(
	router fiber.Router,
	resume *ResumeHandler,
	improvements *ImprovementHandler,
	uploads *UploadHandler,
	stats *StatsHandler,
) {
	router.Post("/upload-analyze", resume.HandleUploadAnalyze)
	router.Post("/analyze-text", resume.HandleAnalyzeText)
	router.Post("/upload", uploads.HandleUpload)
	router.Get("/stats", stats.HandleStats)
	router.Get("/health", stats.HandleHealth)
	router.Post("/generate-improvements", improvements.HandleGenerateImprovements)
	router.Post("/generate-improved-pdf", improvements.HandleGenerateImprovedPDF)
	router.Post("/export-report", improvements.HandleExportReport)
}
