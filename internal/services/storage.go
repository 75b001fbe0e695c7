package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/resume-analyzer/internal/models"
)

var ErrFileTypeNotAllowed = fmt.Errorf("%w: only PDF, DOC, DOCX and TXT files are allowed", ErrUnsupportedFormat)

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

var extensionMimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// StorageService keeps uploaded résumés until they are released.
type StorageService interface {
	SaveUpload(ctx context.Context, file *multipart.FileHeader) (*models.StoredFile, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	SweepOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	Stats(ctx context.Context) (*models.StorageStats, error)
}

// uploadPolicy holds the naming and filtering rules shared by every backend.
type uploadPolicy struct {
	allowed map[string]bool
}

func newUploadPolicy(allowedTypes []string) uploadPolicy {
	if len(allowedTypes) == 0 {
		allowedTypes = []string{"pdf", "doc", "docx", "txt"}
	}
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed["."+strings.ToLower(strings.TrimPrefix(t, "."))] = true
	}
	return uploadPolicy{allowed: allowed}
}

// check rejects files whose extension is not allowed or whose declared MIME
// type contradicts the extension.
func (p uploadPolicy) check(file *multipart.FileHeader) (ext, mimeType string, err error) {
	ext = filepath.Ext(file.Filename)
	lower := strings.ToLower(ext)
	expected, known := extensionMimeTypes[lower]
	if !known || !p.allowed[lower] {
		return "", "", ErrFileTypeNotAllowed
	}

	mimeType = strings.TrimSpace(strings.Split(file.Header.Get("Content-Type"), ";")[0])
	switch mimeType {
	case "", "application/octet-stream":
		mimeType = expected
	default:
		if !knownMimeType(mimeType) {
			return "", "", ErrFileTypeNotAllowed
		}
	}
	return ext, mimeType, nil
}

func knownMimeType(mimeType string) bool {
	for _, m := range extensionMimeTypes {
		if m == mimeType {
			return true
		}
	}
	return false
}

// StorageKey builds a unique stored name: sanitized base, "_", a uuid and the
// original extension.
func StorageKey(originalName string) string {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(filepath.Base(originalName), ext)
	base = unsafeNameChars.ReplaceAllString(base, "_")
	if base == "" {
		base = "resume"
	}
	return fmt.Sprintf("%s_%s%s", base, uuid.New().String(), ext)
}

// FormatFileSize renders a byte count using binary units.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	sizes := []string{"Bytes", "KB", "MB", "GB", "TB"}
	value := float64(bytes)
	i := 0
	for value >= 1024 && i < len(sizes)-1 {
		value /= 1024
		i++
	}
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", value), "0"), ".")
	return s + " " + sizes[i]
}

type localStorageService struct {
	uploadPath string
	policy     uploadPolicy
}

func NewLocalStorageService(uploadPath string, allowedTypes []string) (StorageService, error) {
	if err := os.MkdirAll(uploadPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &localStorageService{
		uploadPath: uploadPath,
		policy:     newUploadPolicy(allowedTypes),
	}, nil
}

// SaveUpload implements StorageService.
func (s *localStorageService) SaveUpload(ctx context.Context, file *multipart.FileHeader) (*models.StoredFile, error) {
	ext, mimeType, err := s.policy.check(file)
	if err != nil {
		return nil, err
	}

	key := StorageKey(file.Filename)
	filePath := filepath.Join(s.uploadPath, key)

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	log.Printf("💾 File uploaded successfully: %s -> %s\n", file.Filename, key)

	return &models.StoredFile{
		Key:          key,
		OriginalName: file.Filename,
		Extension:    strings.ToLower(ext),
		MimeType:     mimeType,
		Size:         written,
		StoredAt:     time.Now(),
	}, nil
}

// Open implements StorageService.
func (s *localStorageService) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if err != nil {
		return nil, fmt.Errorf("failed to open stored file %s: %w", key, err)
	}
	return f, nil
}

// Delete implements StorageService. A file that is already gone is not an error.
func (s *localStorageService) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// SweepOlderThan implements StorageService.
func (s *localStorageService) SweepOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(s.uploadPath)
	if err != nil {
		return 0, fmt.Errorf("failed to list upload directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := s.Delete(ctx, entry.Name()); err != nil {
			log.Printf("⚠️  Failed to sweep %s: %v\n", entry.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}

// Stats implements StorageService.
func (s *localStorageService) Stats(ctx context.Context) (*models.StorageStats, error) {
	entries, err := os.ReadDir(s.uploadPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list upload directory: %w", err)
	}

	stats := &models.StorageStats{Location: s.uploadPath}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.TotalFiles++
		stats.TotalBytes += info.Size()
	}
	stats.HumanSize = FormatFileSize(stats.TotalBytes)
	return stats, nil
}

// path resolves key inside the upload directory; keys never address parent directories.
func (s *localStorageService) path(key string) string {
	return filepath.Join(s.uploadPath, filepath.Base(key))
}
