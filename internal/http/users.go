package http

import (
	"github.com/gin-gonic/gin"

	"librarium/internal/entities"
)

// UserHeader carries the opaque client identity. Who issues these
// identifiers is a deployment concern; the service only scopes data by them.
const UserHeader = "X-User-ID"

const contextKeyUserID = "user_id"

// UserResolver turns the opaque header value into a user row.
type UserResolver interface {
	GetOrCreateUser(username string) (*entities.User, error)
}

// UserMiddleware resolves the caller on every request. Requests without the
// header are rejected; everything in this API is user-scoped.
func UserMiddleware(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.GetHeader(UserHeader)
		if identity == "" {
			respondBadRequest(c, UserHeader+" header is required")
			c.Abort()
			return
		}

		user, err := resolver.GetOrCreateUser(identity)
		if err != nil {
			respondInternalError(c, err, "resolving user")
			c.Abort()
			return
		}

		c.Set(contextKeyUserID, user.ID)
		c.Next()
	}
}

// GetUserID extracts the resolved user's ID from the Gin context.
func GetUserID(c *gin.Context) uint {
	if id, ok := c.Get(contextKeyUserID); ok {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}
