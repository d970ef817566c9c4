package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

const (
	ctxStaffID = "staff_id"
	ctxRole    = "role"
)

// Authenticator resolves a session token to the staff member behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Actor, error)
}

type JWTMiddleware struct {
	auth Authenticator
}

func NewJWTMiddleware(auth Authenticator) *JWTMiddleware {
	return &JWTMiddleware{auth: auth}
}

// Handle requires a valid bearer token. Event streams cannot set headers, so
// a token query parameter is accepted as well.
func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				utils.Error(c, 401, "UNAUTHORIZED", "Invalid authorization header")
				c.Abort()
				return
			}
			token = parts[1]
		}
		if token == "" {
			utils.Error(c, 401, "UNAUTHORIZED", "Missing authorization header")
			c.Abort()
			return
		}

		actor, err := m.auth.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, utils.ErrAccountInactive):
			utils.Error(c, 403, "ACCOUNT_INACTIVE", "Account is inactive")
			c.Abort()
			return
		case errors.Is(err, utils.ErrInvalidToken):
			utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		default:
			utils.ErrorFrom(c, err)
			c.Abort()
			return
		}

		c.Set(ctxStaffID, actor.StaffID)
		c.Set(ctxRole, actor.Role)
		c.Next()
	}
}
