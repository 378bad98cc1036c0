package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sticctape/barkeep-backend/internal/auth"
	"github.com/sticctape/barkeep-backend/internal/errors"
)

// Context keys for resolved credentials
const (
	OwnerIDKey = "owner_id"
	IsStaffKey = "is_staff"
)

type AuthMiddleware struct {
	resolver *auth.Resolver
}

func NewAuthMiddleware(resolver *auth.Resolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Resolve extracts credentials into the request context. It never rejects;
// route guards decide what each endpoint requires.
func (m *AuthMiddleware) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		ownerID, isOwner := m.resolver.ResolveOwner(c.Request)
		isStaff := m.resolver.ResolveStaff(c.Request)

		c.Set(OwnerIDKey, ownerID)
		c.Set(IsStaffKey, isStaff)

		if isOwner || isStaff {
			log.Debug("Credentials resolved", map[string]interface{}{
				"is_owner": isOwner,
				"is_staff": isStaff,
			})
		}

		c.Next()
	}
}

// RequireOwner rejects requests without an owner identity. Write
// operations are owner-only; staff tokens do not satisfy this.
func (m *AuthMiddleware) RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ownerID, ok := GetOwnerID(c); !ok || ownerID == "" {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireOwnerOrStaff admits either role. Staff is read-only and carries no
// owner identity, which is how the multi-owner list view works.
func (m *AuthMiddleware) RequireOwnerOrStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, _ := GetOwnerID(c)
		if ownerID == "" && !IsStaff(c) {
			errors.Unauthorized(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetOwnerID extracts the resolved owner identity from context.
func GetOwnerID(c *gin.Context) (string, bool) {
	ownerID, exists := c.Get(OwnerIDKey)
	if !exists {
		return "", false
	}
	id := ownerID.(string)
	return id, id != ""
}

// IsStaff reports whether the request carried a valid staff credential.
func IsStaff(c *gin.Context) bool {
	isStaff, exists := c.Get(IsStaffKey)
	return exists && isStaff.(bool)
}
