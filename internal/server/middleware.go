package server

import (
	"strings"

	"github.com/billcraft/billcraft/internal/ownerctx"
	"github.com/gin-gonic/gin"
)

const contextOwnerKey = "owner"

// AuthRequired authenticates requests with the identity provider's
// bearer token and injects the verified owner into the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		owner, err := s.verifier.VerifyToken(parts[1])
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextOwnerKey, owner)
		c.Request = c.Request.WithContext(ownerctx.WithOwner(c.Request.Context(), owner))
		c.Next()
	}
}
