package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"docudrive-backend/fileutil"
	"docudrive-backend/service"
	"docudrive-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileHandler handles HTTP requests for file operations
type FileHandler struct {
	vfs         *service.VFSService
	storage     storage.Storage
	maxFileSize int64
}

// NewFileHandler creates a new file handler
func NewFileHandler(vfs *service.VFSService, blobs storage.Storage) *FileHandler {
	return &FileHandler{
		vfs:         vfs,
		storage:     blobs,
		maxFileSize: storage.MaxUploadSize,
	}
}

// Upload handles POST /api/files/upload.
//
// Multipart fields: file (required), folder_id (optional, defaults to the
// root folder), as_revision (optional existing file id), conflict
// (optional strategy: "add-revision" or "rename-to:<name>"). A name
// collision without a strategy returns 409 with the existing file id so
// the client can ask the user and retry.
func (h *FileHandler) Upload(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	// 1. Parse the optional targeting fields.
	var folderID *uuid.UUID
	if raw := c.PostForm("folder_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_FOLDER_ID",
					"message": "Invalid folder_id format",
				},
			})
			return
		}
		folderID = &id
	}

	var asRevision *uuid.UUID
	if raw := c.PostForm("as_revision"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_REVISION_TARGET",
					"message": "Invalid as_revision format",
				},
			})
			return
		}
		asRevision = &id
	}

	// 2. Get the file from the form and enforce the size limit.
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}
	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	// 3. Map the declared conflict strategy onto a decision callback.
	req := service.UploadRequest{
		FolderID:   folderID,
		Name:       fileHeader.Filename,
		Size:       fileHeader.Size,
		Content:    file,
		AsRevision: asRevision,
	}
	switch strategy := c.PostForm("conflict"); {
	case strategy == "add-revision":
		req.OnConflict = func(uuid.UUID) service.ConflictDecision {
			return service.ConflictDecision{AddRevision: true}
		}
	case strings.HasPrefix(strategy, "rename-to:"):
		newName := strings.TrimPrefix(strategy, "rename-to:")
		req.OnConflict = func(uuid.UUID) service.ConflictDecision {
			return service.ConflictDecision{RenameTo: newName}
		}
	}

	uploaded, err := h.vfs.UploadFile(c.Request.Context(), owner, req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, uploaded)
}

// Download handles GET /api/files/:id
func (h *FileHandler) Download(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid file ID format",
			},
		})
		return
	}

	file, err := h.vfs.GetFile(c.Request.Context(), owner, id)
	if err != nil {
		respondError(c, err)
		return
	}

	reader, err := h.storage.Download(c.Request.Context(), file.StoragePath)
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	contentType := fileutil.ContentType(file.Name)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.DataFromReader(http.StatusOK, file.Size, contentType, reader, nil)
}

// ApplyEnrichment handles POST /api/files/:id/enrichment, the out-of-band
// callback the enrichment worker posts its result to.
func (h *FileHandler) ApplyEnrichment(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid file ID format",
			},
		})
		return
	}

	var result service.EnrichmentResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_BODY",
				"message": err.Error(),
			},
		})
		return
	}

	if err := h.vfs.ApplyEnrichment(c.Request.Context(), owner, id, &result); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"applied": true})
}
