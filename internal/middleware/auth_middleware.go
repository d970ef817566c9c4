package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/utils"
)

// RequireRole lets the request through only for the listed roles. It must run
// after JWTMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if !allowed[GetActor(c).Role] {
			utils.Error(c, 403, "FORBIDDEN", "Your role may not perform this action")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated staff member from context. It is the
// zero Actor on unauthenticated routes.
func GetActor(c *gin.Context) models.Actor {
	var actor models.Actor
	if v, ok := c.Get(ctxStaffID); ok {
		actor.StaffID, _ = v.(int)
	}
	if v, ok := c.Get(ctxRole); ok {
		actor.Role, _ = v.(models.Role)
	}
	return actor
}
