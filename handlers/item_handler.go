package handlers

import (
	"net/http"

	"docudrive-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ItemHandler handles HTTP requests that apply to both folders and files:
// rename, move, star, delete.
type ItemHandler struct {
	vfs *service.VFSService
}

// NewItemHandler creates a new item handler
func NewItemHandler(vfs *service.VFSService) *ItemHandler {
	return &ItemHandler{vfs: vfs}
}

func itemParams(c *gin.Context) (uuid.UUID, uuid.UUID, service.ItemType, bool) {
	owner, ok := ownerID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, "", false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid item ID format",
			},
		})
		return uuid.Nil, uuid.Nil, "", false
	}

	itemType := service.ItemType(c.Query("type"))
	if itemType != service.ItemTypeFolder && itemType != service.ItemTypeFile {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TYPE",
				"message": "type must be 'folder' or 'file'",
			},
		})
		return uuid.Nil, uuid.Nil, "", false
	}

	return owner, id, itemType, true
}

// Rename handles PATCH /api/items/:id/rename?type=
func (h *ItemHandler) Rename(c *gin.Context) {
	owner, id, itemType, ok := itemParams(c)
	if !ok {
		return
	}

	var req struct {
		NewName string `json:"new_name" binding:"required"`
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

	if err := h.vfs.RenameItem(c.Request.Context(), owner, id, req.NewName, itemType); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"renamed": true})
}

// Move handles PATCH /api/items/:id/move?type=
func (h *ItemHandler) Move(c *gin.Context) {
	owner, id, itemType, ok := itemParams(c)
	if !ok {
		return
	}

	var req struct {
		TargetFolderID uuid.UUID `json:"target_folder_id" binding:"required"`
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

	if err := h.vfs.MoveItem(c.Request.Context(), owner, id, req.TargetFolderID, itemType); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"moved": true})
}

// ToggleStar handles PATCH /api/items/:id/star?type=
func (h *ItemHandler) ToggleStar(c *gin.Context) {
	owner, id, itemType, ok := itemParams(c)
	if !ok {
		return
	}

	starred, err := h.vfs.ToggleStarred(c.Request.Context(), owner, id, itemType)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"starred": starred})
}

// Delete handles DELETE /api/items/:id?type=
func (h *ItemHandler) Delete(c *gin.Context) {
	owner, id, itemType, ok := itemParams(c)
	if !ok {
		return
	}

	if err := h.vfs.DeleteItem(c.Request.Context(), owner, id, itemType); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}
