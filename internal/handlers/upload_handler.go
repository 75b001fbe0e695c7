package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

const resumeFormField = "resume"

var (
	errNoFile       = errors.New("no resume file uploaded")
	errFileTooLarge = errors.New("file too large")
)

// uploadReceiver stores the multipart "resume" file and records it in the registry.
type uploadReceiver struct {
	storage     services.StorageService
	uploadRepo  repositories.UploadRepository
	maxFileSize int64
}

func (u uploadReceiver) receive(c *fiber.Ctx) (*models.StoredFile, uuid.UUID, error) {
	fileHeader, err := c.FormFile(resumeFormField)
	if err != nil {
		return nil, uuid.Nil, errNoFile
	}

	if fileHeader.Size > u.maxFileSize {
		return nil, uuid.Nil, fmt.Errorf("%w. Max size: %s", errFileTooLarge, services.FormatFileSize(u.maxFileSize))
	}

	stored, err := u.storage.SaveUpload(c.UserContext(), fileHeader)
	if err != nil {
		return nil, uuid.Nil, err
	}

	upload := models.Upload{
		ID:           uuid.New(),
		Key:          stored.Key,
		OriginalName: stored.OriginalName,
		MimeType:     stored.MimeType,
		Size:         stored.Size,
		Status:       models.UploadStatusStored,
	}
	if err := u.uploadRepo.Create(c.UserContext(), &upload); err != nil {
		// Cleanup uploaded file if the registry insert fails
		if derr := u.storage.Delete(context.Background(), stored.Key); derr != nil {
			log.Printf("⚠️  Failed to delete %s after registry error: %v\n", stored.Key, derr)
		}
		return nil, uuid.Nil, fmt.Errorf("failed to record upload: %w", err)
	}

	return stored, upload.ID, nil
}

// respondUploadError answers a receive failure.
func (u uploadReceiver) respondUploadError(c *fiber.Ctx, errs errorResponder, err error) error {
	switch {
	case errors.Is(err, errNoFile):
		return errs.badRequest(c, "No resume file uploaded", nil)
	case errors.Is(err, errFileTooLarge):
		return errs.badRequest(c, err.Error(), nil)
	default:
		return errs.fail(c, err)
	}
}

type UploadHandler struct {
	uploads uploadReceiver
	errs    errorResponder
}

func NewUploadHandler(
	storage services.StorageService,
	uploadRepo repositories.UploadRepository,
	maxFileSize int64,
	development bool,
) *UploadHandler {
	return &UploadHandler{
		uploads: uploadReceiver{storage: storage, uploadRepo: uploadRepo, maxFileSize: maxFileSize},
		errs:    errorResponder{development: development},
	}
}

// HandleUpload stores a résumé without analyzing it. Files left behind are
// removed by the cleanup sweep.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	stored, id, err := h.uploads.receive(c)
	if err != nil {
		return h.uploads.respondUploadError(c, h.errs, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.APIResponse{
		Success: true,
		Message: "File uploaded successfully",
		Data:    models.UploadResponse{ID: id.String(), File: stored},
	})
}
