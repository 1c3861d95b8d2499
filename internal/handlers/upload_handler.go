package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "momolens/internal/errors"
	"momolens/internal/pipeline"
	"momolens/internal/store"
)

// UploadHandler handles archive uploads, local archive discovery, and the
// upload-history log.
type UploadHandler struct {
	pipeline  *pipeline.Pipeline
	store     store.Store
	dataDir   string
	uploadDir string
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(p *pipeline.Pipeline, s store.Store, dataDir, uploadDir string) *UploadHandler {
	return &UploadHandler{pipeline: p, store: s, dataDir: dataDir, uploadDir: uploadDir}
}

// Upload receives a multipart SMS-backup XML file and runs it through the
// ingest pipeline.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "No file provided"))
		return
	}

	filename := filepath.Base(fileHeader.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".xml") {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid file type. Please upload an XML file."))
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	savedPath := filepath.Join(h.uploadDir, filename)
	if err := c.SaveUploadedFile(fileHeader, savedPath); err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	defer os.Remove(savedPath)

	h.ingestPath(c, filename, savedPath)
}

// ArchiveInfo describes one XML archive found in the data directory.
type ArchiveInfo struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ListArchives reports the XML archives present in the data directory,
// newest first.
func (h *UploadHandler) ListArchives(c *gin.Context) {
	var archives []ArchiveInfo
	err := filepath.WalkDir(h.dataDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".xml") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(h.dataDir, path)
		if err != nil {
			return nil
		}
		archives = append(archives, ArchiveInfo{
			Name:     d.Name(),
			Path:     rel,
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Modified.After(archives[j].Modified)
	})
	if archives == nil {
		archives = []ArchiveInfo{}
	}

	c.JSON(http.StatusOK, gin.H{"files": archives, "count": len(archives)})
}

// IngestArchiveRequest selects a detected archive by its path relative to
// the data directory.
type IngestArchiveRequest struct {
	Path string `json:"path" binding:"required"`
}

// IngestArchive ingests an archive already present in the data directory.
// Paths escaping the data directory are rejected.
func (h *UploadHandler) IngestArchive(c *gin.Context) {
	var req IngestArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	fullPath := filepath.Join(h.dataDir, req.Path)
	dataDirAbs, err := filepath.Abs(h.dataDir)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	fullPathAbs, err := filepath.Abs(fullPath)
	if err != nil || !strings.HasPrefix(fullPathAbs, dataDirAbs+string(os.PathSeparator)) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid file path"))
		return
	}

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		respondWithError(c, apperrors.ErrArchiveNotFound)
		return
	}

	h.ingestPath(c, filepath.Base(fullPath), fullPath)
}

// ingestPath runs one on-disk archive through the pipeline and writes the
// ingest summary response.
func (h *UploadHandler) ingestPath(c *gin.Context, filename, path string) {
	f, err := os.Open(path)
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	defer f.Close()

	result, err := h.pipeline.Ingest(filename, f)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        fmt.Sprintf("Successfully processed %d transactions from %s", result.Processed, filename),
		"total_messages": result.TotalMessages,
		"processed":      result.Processed,
		"upload_id":      result.UploadID,
	})
}

// History returns the most recent upload records.
func (h *UploadHandler) History(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &limit); err != nil || limit < 1 {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid limit"))
			return
		}
	}

	history, err := h.store.GetUploadHistory(limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}
