package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowMethods = "GET,POST,PUT,DELETE,OPTIONS"
	corsAllowHeaders = "Content-Type, Authorization, X-Staff-Token, X-Owner-Id"
)

// CORSMiddleware validates the declared origin against a static allow-list.
// Unknown origins are rejected with a cheap plain-text 403 before any other
// check runs. Allowed origins are echoed back exactly (never a wildcard,
// credentials are allowed) on every response, success or error.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		_, originAllowed := allowed[origin]

		if c.Request.Method == http.MethodOptions {
			if !originAllowed {
				c.String(http.StatusForbidden, "CORS origin not allowed")
				c.Abort()
				return
			}
			shapeHeaders(c, origin)
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		if origin != "" && !originAllowed {
			c.String(http.StatusForbidden, "CORS origin not allowed")
			c.Abort()
			return
		}

		if originAllowed {
			shapeHeaders(c, origin)
		}
		c.Next()
	}
}

func shapeHeaders(c *gin.Context, origin string) {
	h := c.Writer.Header()
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	h.Set("Vary", "Origin")
}
