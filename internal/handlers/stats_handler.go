package handlers

import (
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type StatsHandler struct {
	storage    services.StorageService
	uploadRepo repositories.UploadRepository
	startedAt  time.Time
	errs       errorResponder
}

func NewStatsHandler(storage services.StorageService, uploadRepo repositories.UploadRepository, development bool) *StatsHandler {
	return &StatsHandler{
		storage:    storage,
		uploadRepo: uploadRepo,
		startedAt:  time.Now(),
		errs:       errorResponder{development: development},
	}
}

type memoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"totalAlloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"numGC"`
	Goroutines int    `json:"goroutines"`
}

type systemStats struct {
	Status    string      `json:"status"`
	Uptime    float64     `json:"uptime"`
	Memory    memoryStats `json:"memory"`
	Timestamp time.Time   `json:"timestamp"`
}

type statsResponse struct {
	System  systemStats                   `json:"system"`
	Files   *models.StorageStats          `json:"files"`
	Uploads map[models.UploadStatus]int64 `json:"uploads"`
}

// HandleStats reports storage usage, upload registry counts and process health.
func (h *StatsHandler) HandleStats(c *fiber.Ctx) error {
	files, err := h.storage.Stats(c.UserContext())
	if err != nil {
		return h.errs.fail(c, err)
	}

	uploads, err := h.uploadRepo.CountByStatus(c.UserContext())
	if err != nil {
		return h.errs.fail(c, err)
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return ok(c, "", statsResponse{
		System: systemStats{
			Status: "operational",
			Uptime: time.Since(h.startedAt).Seconds(),
			Memory: memoryStats{
				Alloc:      mem.Alloc,
				TotalAlloc: mem.TotalAlloc,
				Sys:        mem.Sys,
				NumGC:      mem.NumGC,
				Goroutines: runtime.NumGoroutine(),
			},
			Timestamp: time.Now(),
		},
		Files:   files,
		Uploads: uploads,
	})
}

func (h *StatsHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "OK",
		"timestamp": time.Now(),
		"uptime":    time.Since(h.startedAt).Seconds(),
	})
}
