package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todopro/pkg/apperror"
	"todopro/pkg/logger"
	"todopro/pkg/token"
)

const identityKey = "identity"

// SetIdentity stores the authenticated identity on the request context.
func SetIdentity(c *gin.Context, id token.Identity) {
	c.Set(identityKey, id)
}

// Identity retrieves the authenticated identity from the context
func Identity(c *gin.Context) (token.Identity, error) {
	value, exists := c.Get(identityKey)
	if !exists {
		return token.Identity{}, apperror.ErrUnauthorized
	}

	id, ok := value.(token.Identity)
	if !ok {
		return token.Identity{}, apperror.ErrUnauthorized
	}

	return id, nil
}

// Error writes a standardized error response
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("internal error", "error", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
