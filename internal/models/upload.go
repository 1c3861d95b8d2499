package models

import "time"

// UploadStatus tracks the lifecycle of one ingest attempt.
type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "pending"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)

// Valid reports whether s is a known upload status.
func (s UploadStatus) Valid() bool {
	switch s {
	case UploadStatusPending, UploadStatusProcessing, UploadStatusCompleted, UploadStatusFailed:
		return true
	}
	return false
}

// UploadRecord is one entry in the append-only upload history log.
// Records are never deleted; a record transitions once from
// pending/processing to a terminal completed or failed status.
type UploadRecord struct {
	ID                uint         `gorm:"primaryKey" json:"id"`
	Filename          string       `gorm:"not null" json:"filename"`
	TotalMessages     int          `json:"total_messages"`
	ProcessedMessages int          `json:"processed_messages"`
	UploadDate        time.Time    `gorm:"not null;index" json:"upload_date"`
	Status            UploadStatus `gorm:"not null" json:"status"`
}

// TableName keeps the relational backend on the upload_history table.
func (UploadRecord) TableName() string { return "upload_history" }
