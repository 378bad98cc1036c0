package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sticctape/barkeep-backend/internal/app/service"
	apperrors "github.com/sticctape/barkeep-backend/internal/errors"
	"github.com/sticctape/barkeep-backend/internal/middleware"
)

type ImageController struct {
	imageService service.ImageService
}

func NewImageController(imageService service.ImageService) *ImageController {
	return &ImageController{
		imageService: imageService,
	}
}

// UploadImage stores a raw binary image for a bottle.
// POST /api/admin/bottles/:id/image
func (ctrl *ImageController) UploadImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	ownerID, _ := middleware.GetOwnerID(c)
	id := c.Param("id")

	// Read one byte past the limit so oversized bodies are detected without
	// buffering them whole.
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, service.MaxImageBytes+1))
	if err != nil {
		log.Warn("Failed to read image body", map[string]interface{}{
			"bottle_id": id,
			"error":     err.Error(),
		})
		apperrors.BadRequest(c, apperrors.UploadFailed, "failed to read request body")
		return
	}

	result, err := ctrl.imageService.Upload(c.Request.Context(), ownerID, id, body, c.GetHeader("Content-Type"))
	if err != nil {
		ctrl.respondImageError(c, id, err)
		return
	}

	log.Info("Bottle image uploaded", map[string]interface{}{
		"bottle_id": id,
		"filename":  result.Filename,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"imageUrl": result.ImageURL,
		"filename": result.Filename,
	})
}

// DeleteImage removes a bottle's stored image and clears its URL.
// DELETE /api/admin/bottles/:id/image
func (ctrl *ImageController) DeleteImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	ownerID, _ := middleware.GetOwnerID(c)
	id := c.Param("id")

	if err := ctrl.imageService.Delete(c.Request.Context(), ownerID, id); err != nil {
		ctrl.respondImageError(c, id, err)
		return
	}

	log.Info("Bottle image deleted", map[string]interface{}{
		"bottle_id": id,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
	})
}

func (ctrl *ImageController) respondImageError(c *gin.Context, id string, err error) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrBottleNotFound):
		apperrors.NotFound(c, apperrors.BottleNotFound, "bottle not found")
	case errors.Is(err, service.ErrNotOwner):
		apperrors.Forbidden(c, "")
	case errors.Is(err, service.ErrInvalidImageType):
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, err.Error())
	case errors.Is(err, service.ErrImageTooLarge):
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, err.Error())
	default:
		log.Error("Image operation failed", err, map[string]interface{}{
			"bottle_id": id,
		})
		apperrors.InternalError(c, err.Error())
	}
}
