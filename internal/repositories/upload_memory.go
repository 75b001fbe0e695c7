package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"alfredoptarigan/resume-analyzer/internal/models"
)

type memoryUploadRepository struct {
	mu      sync.RWMutex
	uploads map[string]models.Upload
}

// NewMemoryUploadRepository keeps upload records in process memory.
func NewMemoryUploadRepository() UploadRepository {
	return &memoryUploadRepository{uploads: make(map[string]models.Upload)}
}

// Create implements UploadRepository.
func (r *memoryUploadRepository) Create(ctx context.Context, upload *models.Upload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.uploads[upload.Key]; exists {
		return fmt.Errorf("failed to create upload: duplicate key %s", upload.Key)
	}
	now := time.Now()
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = now
	}
	upload.UpdatedAt = now
	r.uploads[upload.Key] = *upload
	return nil
}

// FindByKey implements UploadRepository.
func (r *memoryUploadRepository) FindByKey(ctx context.Context, key string) (*models.Upload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	upload, ok := r.uploads[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, key)
	}
	return &upload, nil
}

// MarkDeleted implements UploadRepository.
func (r *memoryUploadRepository) MarkDeleted(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if upload, ok := r.uploads[key]; ok {
		upload.Status = models.UploadStatusDeleted
		upload.UpdatedAt = time.Now()
		r.uploads[key] = upload
	}
	return nil
}

// MarkDeletedBefore implements UploadRepository.
func (r *memoryUploadRepository) MarkDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var affected int64
	for key, upload := range r.uploads {
		if upload.Status == models.UploadStatusStored && upload.CreatedAt.Before(cutoff) {
			upload.Status = models.UploadStatusDeleted
			upload.UpdatedAt = time.Now()
			r.uploads[key] = upload
			affected++
		}
	}
	return affected, nil
}

// CountByStatus implements UploadRepository.
func (r *memoryUploadRepository) CountByStatus(ctx context.Context) (map[models.UploadStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.UploadStatus]int64)
	for _, upload := range r.uploads {
		counts[upload.Status]++
	}
	return counts, nil
}
