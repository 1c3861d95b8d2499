// Package pipeline drives the ingest flow: validate archive, parse it,
// replace the dataset, and record the upload outcome in the audit trail.
package pipeline

import (
	"bytes"
	"io"

	"go.uber.org/zap"

	"momolens/internal/archive"
	apperrors "momolens/internal/errors"
	"momolens/internal/logger"
	"momolens/internal/models"
	"momolens/internal/store"
)

// Result summarizes one successful ingest.
type Result struct {
	UploadID      uint `json:"upload_id"`
	TotalMessages int  `json:"total_messages"`
	Processed     int  `json:"processed"`
}

// Pipeline orchestrates archive ingestion over a Store. A failed ingest
// always transitions its upload record to failed before returning.
type Pipeline struct {
	store  store.Store
	parser *archive.Parser
	log    *zap.SugaredLogger
}

// New creates a Pipeline over the given store.
func New(s store.Store) *Pipeline {
	return &Pipeline{
		store:  s,
		parser: archive.NewParser(),
		log:    logger.Get(),
	}
}

// Ingest processes one complete archive: it records the attempt, validates
// the archive structure, parses every message, replaces the dataset with
// the extracted transactions, and marks the upload record completed with
// the final counts. Validation failure aborts before any dataset mutation.
func (p *Pipeline) Ingest(filename string, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidArchive, err)
	}

	uploadID, err := p.store.AddUploadRecord(filename, 0, 0, models.UploadStatusProcessing)
	if err != nil {
		return nil, err
	}

	ok, reason := p.parser.Validate(bytes.NewReader(data))
	if !ok {
		p.markFailed(uploadID)
		return nil, apperrors.WithMessage(apperrors.ErrInvalidArchive, reason)
	}

	drafts, total, err := p.parser.Parse(bytes.NewReader(data))
	if err != nil {
		p.markFailed(uploadID)
		return nil, err
	}

	processed, err := p.store.ReplaceDataset(drafts)
	if err != nil {
		p.markFailed(uploadID)
		return nil, err
	}

	completed := models.UploadStatusCompleted
	err = p.store.UpdateUploadRecord(uploadID, store.UploadUpdate{
		TotalMessages:     &total,
		ProcessedMessages: &processed,
		Status:            &completed,
	})
	if err != nil {
		return nil, err
	}

	p.log.Infow("archive ingested",
		"filename", filename,
		"total_messages", total,
		"processed", processed,
	)
	return &Result{UploadID: uploadID, TotalMessages: total, Processed: processed}, nil
}

// markFailed transitions the upload record to its terminal failed status.
func (p *Pipeline) markFailed(uploadID uint) {
	failed := models.UploadStatusFailed
	if err := p.store.UpdateUploadRecord(uploadID, store.UploadUpdate{Status: &failed}); err != nil {
		p.log.Errorw("failed to mark upload record as failed",
			"upload_id", uploadID, "error", err)
	}
}
