package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sticctape/barkeep-backend/internal/middleware"
)

type AuthController struct{}

func NewAuthController() *AuthController {
	return &AuthController{}
}

// Check reports what the request's credentials resolve to. Open endpoint;
// the SPA calls it on load to pick owner or staff mode.
// GET /api/auth/check
func (ctrl *AuthController) Check(c *gin.Context) {
	ownerID, isOwner := middleware.GetOwnerID(c)
	isStaff := middleware.IsStaff(c)

	var ownerField interface{}
	if isOwner {
		ownerField = ownerID
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": isOwner || isStaff,
		"ownerId":       ownerField,
		"isStaff":       isStaff,
		"isOwner":       isOwner,
	})
}
