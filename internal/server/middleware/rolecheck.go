package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/studentms/internal/auth"
	"github.com/kbukum/studentms/internal/auth/authctx"
	apperrors "github.com/kbukum/studentms/internal/errors"
)

// RequireRole returns middleware that permits only requests whose
// authenticated identity carries exactly the required role. There is no
// role hierarchy: admin does not satisfy a student requirement and vice
// versa. Must run after Auth.
//
// On mismatch the request ends with a generic 403 that does not reveal
// which role was expected.
func RequireRole(required auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := authctx.Get(c.Request.Context())
		if !ok {
			abortUnauthorized(c)
			return
		}
		if id.Role != required {
			e := apperrors.Forbidden("")
			c.AbortWithStatusJSON(e.HTTPStatus, e.ToResponse())
			return
		}
		c.Next()
	}
}
