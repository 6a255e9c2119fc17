package handlers

import (
	"net/http"

	"docudrive-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FolderHandler handles HTTP requests for folder operations
type FolderHandler struct {
	vfs *service.VFSService
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(vfs *service.VFSService) *FolderHandler {
	return &FolderHandler{vfs: vfs}
}

// Bootstrap handles POST /api/bootstrap
func (h *FolderHandler) Bootstrap(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	root, err := h.vfs.BootstrapRoot(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, root)
}

// ListContents handles GET /api/folders/:id/contents
func (h *FolderHandler) ListContents(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	folderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid folder ID format",
			},
		})
		return
	}

	contents, err := h.vfs.ListContents(c.Request.Context(), owner, folderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, contents)
}

// CreateFolder handles POST /api/folders
func (h *FolderHandler) CreateFolder(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var req struct {
		Name     string     `json:"name" binding:"required"`
		ParentID *uuid.UUID `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_BODY",
				"message": err.Error(),
			},
		})
		return
	}

	folder, err := h.vfs.CreateFolder(c.Request.Context(), owner, req.Name, req.ParentID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, folder)
}
