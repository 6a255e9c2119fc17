package handlers

import (
	"errors"
	"net/http"

	"docudrive-backend/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ownerID extracts the authenticated user id supplied by the identity
// layer in the X-User-ID header.
func ownerID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetHeader("X-User-ID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_USER",
				"message": "A valid X-User-ID header is required",
			},
		})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps the domain error taxonomy onto HTTP statuses using the
// standard response envelope.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "STORE_ERROR"

	var conflict *domain.ConflictError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":             "NAME_CONFLICT",
				"message":          conflict.Error(),
				"existing_file_id": conflict.ExistingFileID,
			},
		})
		return
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidOperation):
		status, code = http.StatusBadRequest, "INVALID_OPERATION"
	case errors.Is(err, domain.ErrConflict):
		status, code = http.StatusConflict, "NAME_CONFLICT"
	case errors.Is(err, domain.ErrUpload):
		status, code = http.StatusBadGateway, "UPLOAD_FAILED"
	}

	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}
