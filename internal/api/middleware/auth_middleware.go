package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kemalcalak/Resume-Builder/internal/auth"
	"github.com/kemalcalak/Resume-Builder/internal/errcode"
)

const (
	ownerIDKey  = "ownerID"
	identityKey = "identity"
)

// TokenVerifier is satisfied by *auth.Verifier.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"code":    errcode.Unauthorized,
		"message": "unauthorized",
	})
}

// AuthMiddleware verifies the bearer token and stores the caller's owner id
// and identity in the context. Requests without a valid token never reach a handler.
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		identity, err := verifier.Verify(parts[1])
		if err != nil {
			LoggerFromContext(c).Debug("token rejected", "error", err)
			abortUnauthorized(c)
			return
		}

		c.Set(ownerIDKey, identity.Subject)
		c.Set(identityKey, identity)
		c.Next()
	}
}

// OwnerID returns the authenticated owner id, or false outside AuthMiddleware.
func OwnerID(c *gin.Context) (string, bool) {
	id := c.GetString(ownerIDKey)
	return id, id != ""
}

// IdentityFromContext returns the identity stored by AuthMiddleware.
func IdentityFromContext(c *gin.Context) auth.Identity {
	if value, ok := c.Get(identityKey); ok {
		if id, ok := value.(auth.Identity); ok {
			return id
		}
	}
	return auth.Identity{}
}
