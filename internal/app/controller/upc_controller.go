package controller

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	apperrors "github.com/sticctape/barkeep-backend/internal/errors"
	"github.com/sticctape/barkeep-backend/internal/middleware"
	"github.com/sticctape/barkeep-backend/pkg/upc"
)

// upcPattern accepts UPC-E through EAN-14.
var upcPattern = regexp.MustCompile(`^[0-9]{6,14}$`)

type UPCController struct {
	client *upc.Client
}

func NewUPCController(client *upc.Client) *UPCController {
	return &UPCController{client: client}
}

// LookupUPC proxies a product lookup to the external UPC service.
// GET /api/admin/upc/:code
func (ctrl *UPCController) LookupUPC(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	code := c.Param("code")

	if !upcPattern.MatchString(code) {
		apperrors.BadRequest(c, apperrors.UPCInvalidCode, "upc must be 6-14 digits")
		return
	}

	result, rateLimit, err := ctrl.client.Lookup(c.Request.Context(), code)

	// Forward upstream rate-limit headers so the SPA can back off.
	if rateLimit != nil {
		forwardRateLimitHeaders(c, rateLimit)
	}

	if err != nil {
		if errors.Is(err, upc.ErrNoItems) {
			apperrors.NotFound(c, apperrors.UPCNotFound, "no product found for upc")
			return
		}
		log.Error("UPC lookup failed", err, map[string]interface{}{
			"upc": code,
		})
		apperrors.InternalError(c, err.Error())
		return
	}

	log.Info("UPC lookup succeeded", map[string]interface{}{
		"upc":   code,
		"total": result.Total,
	})

	c.JSON(http.StatusOK, gin.H{
		"items": result.Items,
	})
}

func forwardRateLimitHeaders(c *gin.Context, rl *upc.RateLimit) {
	if rl.Limit != "" {
		c.Header("X-RateLimit-Limit", rl.Limit)
	}
	if rl.Remaining != "" {
		c.Header("X-RateLimit-Remaining", rl.Remaining)
	}
	if rl.Reset != "" {
		c.Header("X-RateLimit-Reset", rl.Reset)
	}
}
