package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/comment-profiler/internal/config"
	"github.com/comment-profiler/internal/dataset"
	"github.com/comment-profiler/internal/service"
	"github.com/comment-profiler/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DatasetHandler handles dataset upload endpoints
type DatasetHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewDatasetHandler creates a new DatasetHandler
func NewDatasetHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *DatasetHandler {
	return &DatasetHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "dataset").Logger(),
	}
}

// UploadDataset handles POST /v1/datasets
// Accepts a multipart CSV upload with a name form field
func (h *DatasetHandler) UploadDataset(c *gin.Context) {
	name := c.PostForm("name")
	if name == "" {
		name = c.Query("name")
	}
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name parameter is required (comments, articles, qa)"})
		return
	}
	if name != store.DatasetComments && name != store.DatasetArticles && name != store.DatasetQA {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must be one of: comments, articles, qa"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file upload is required"})
		return
	}
	defer file.Close()

	// Validate file size
	if header.Size > h.cfg.Server.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file too large, max size is %d MB", h.cfg.Server.MaxUploadSize/(1024*1024)),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dataset upload requires a CSV file"})
		return
	}

	// Keep a copy of the upload, then load it into the registry
	uploadDir := h.cfg.Server.UploadDir
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		h.log.Error().Err(err).Msg("Failed to create upload directory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}
	filePath := filepath.Join(uploadDir, fmt.Sprintf("%s_%s%s", name, uuid.New().String()[:8], ext))

	dst, err := os.Create(filePath)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}
	defer dst.Close()

	table, err := dataset.Read(io.TeeReader(file, dst))
	if err != nil {
		h.log.Error().Err(err).Str("file", header.Filename).Msg("Failed to parse CSV")
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("parsing CSV: %v", err)})
		return
	}

	h.services.Datasets.Put(name, table)

	h.log.Info().
		Str("dataset", name).
		Str("file", header.Filename).
		Int("rows", table.Len()).
		Int64("size_bytes", header.Size).
		Msg("Dataset loaded")

	c.JSON(http.StatusCreated, gin.H{
		"name":    name,
		"rows":    table.Len(),
		"columns": table.Columns,
	})
}

// ListDatasets handles GET /v1/datasets
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"datasets": h.services.Datasets.List()})
}
