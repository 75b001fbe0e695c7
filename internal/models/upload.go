package models

import (
	"time"

	"github.com/google/uuid"
)

type UploadStatus string

const (
	UploadStatusStored  UploadStatus = "stored"
	UploadStatusDeleted UploadStatus = "deleted"
)

// Upload is the registry record of a stored résumé file. Analyses are never persisted.
type Upload struct {
	ID           uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	Key          string       `gorm:"type:text;not null;uniqueIndex" json:"key"`
	OriginalName string       `gorm:"type:text" json:"originalName"`
	MimeType     string       `gorm:"type:text" json:"mimeType"`
	Size         int64        `gorm:"not null" json:"size"`
	Status       UploadStatus `gorm:"type:text;not null" json:"status"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (Upload) TableName() string {
	return "uploads"
}

// StoredFile describes a file after it has been written to the storage backend.
type StoredFile struct {
	Key          string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Extension    string    `json:"extension"`
	MimeType     string    `json:"mimetype"`
	Size         int64     `json:"size"`
	StoredAt     time.Time `json:"uploadedAt"`
}

type StorageStats struct {
	TotalFiles int    `json:"totalFiles"`
	TotalBytes int64  `json:"totalSize"`
	HumanSize  string `json:"totalSizeFormatted"`
	Location   string `json:"uploadsDirectory"`
}
