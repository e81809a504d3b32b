package rest

import (
	"strings"

	"github.com/dmitrijs2005/messagely/internal/server/auth"
	"github.com/dmitrijs2005/messagely/internal/shared"
	"github.com/gin-gonic/gin"
)

// identityKey is the gin context key holding the username resolved from the
// bearer token.
const identityKey = "identity"

// authRequired verifies the Authorization header and stores the resolved
// username in the request context. The token is the only identity source:
// nothing in the URL or body is trusted for auth decisions.
func (s *RESTServer) authRequired(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		s.abortWithError(c, shared.ErrorUnauthorized)
		return
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		s.abortWithError(c, shared.ErrorInvalidAuthHeaderFormat)
		return
	}

	username, err := auth.UsernameFromToken(parts[1], s.secretKey)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.Set(identityKey, username)
	c.Next()
}

// correctUser requires the resolved identity to match the :username path
// parameter. A mismatch is reported as unauthorized, not as not-found, so the
// response does not reveal whether the other user exists.
func (s *RESTServer) correctUser(c *gin.Context) {
	if c.GetString(identityKey) != c.Param("username") {
		s.abortWithError(c, shared.ErrorUnauthorized)
		return
	}
	c.Next()
}
