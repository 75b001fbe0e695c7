package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"alfredoptarigan/resume-analyzer/internal/models"
)

var ErrUploadNotFound = errors.New("upload not found")

type UploadRepository interface {
	Create(ctx context.Context, upload *models.Upload) error
	FindByKey(ctx context.Context, key string) (*models.Upload, error)
	MarkDeleted(ctx context.Context, key string) error
	MarkDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[models.UploadStatus]int64, error)
}

type uploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

// Create implements UploadRepository.
func (r *uploadRepository) Create(ctx context.Context, upload *models.Upload) error {
	if err := r.db.WithContext(ctx).Create(upload).Error; err != nil {
		return fmt.Errorf("failed to create upload: %w", err)
	}

	return nil
}

// FindByKey implements UploadRepository.
func (r *uploadRepository) FindByKey(ctx context.Context, key string) (*models.Upload, error) {
	var upload models.Upload
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&upload).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUploadNotFound, key)
		}

		return nil, fmt.Errorf("failed to find upload: %w", err)
	}

	return &upload, nil
}

// MarkDeleted implements UploadRepository. Unknown keys are ignored.
func (r *uploadRepository) MarkDeleted(ctx context.Context, key string) error {
	err := r.db.WithContext(ctx).Model(&models.Upload{}).
		Where("key = ?", key).
		Updates(map[string]interface{}{
			"status":     models.UploadStatusDeleted,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark upload deleted: %w", err)
	}

	return nil
}

// MarkDeletedBefore implements UploadRepository.
func (r *uploadRepository) MarkDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Upload{}).
		Where("status = ? AND created_at < ?", models.UploadStatusStored, cutoff).
		Updates(map[string]interface{}{
			"status":     models.UploadStatusDeleted,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark old uploads deleted: %w", result.Error)
	}

	return result.RowsAffected, nil
}

// CountByStatus implements UploadRepository.
func (r *uploadRepository) CountByStatus(ctx context.Context) (map[models.UploadStatus]int64, error) {
	var rows []struct {
		Status models.UploadStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Upload{}).
		Select("status, count(*) as total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count uploads: %w", err)
	}

	counts := make(map[models.UploadStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
