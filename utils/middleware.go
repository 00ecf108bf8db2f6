package utils

import (
	"voyages-server/models"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
	userRoleKey  = "userRole"
)

// UserFromToken resolves the verified access-token claims to a live user row
// and stores {id, email, role} in the request context. A token whose subject
// no longer exists is rejected, so deleted accounts cannot keep calling the
// API until their token expires. Must run after the jwt verifier.
func UserFromToken(db *gorm.DB) iris.Handler {
	return func(ctx iris.Context) {
		claims, ok := jwt.Get(ctx).(*AccessToken)
		if !ok || claims == nil {
			JSONError(ctx, iris.StatusUnauthorized, "Not authenticated")
			return
		}

		var user models.User
		if err := db.Select("id", "email", "role").First(&user, claims.ID).Error; err != nil {
			JSONError(ctx, iris.StatusUnauthorized, "Unknown user")
			return
		}

		ctx.Values().Set(userIDKey, user.ID)
		ctx.Values().Set(userEmailKey, user.Email)
		ctx.Values().Set(userRoleKey, user.Role)
		ctx.Next()
	}
}

// RequireRole allows the request through when the resolved identity holds the
// required role, ADMIN included. Runs after UserFromToken; a missing identity
// is a 401, not a 403.
func RequireRole(required models.Role) iris.Handler {
	return func(ctx iris.Context) {
		roleValue := ctx.Values().Get(userRoleKey)
		if roleValue == nil {
			JSONError(ctx, iris.StatusUnauthorized, "Not authenticated")
			return
		}

		role, ok := roleValue.(models.Role)
		if !ok || !role.Satisfies(required) {
			JSONError(ctx, iris.StatusForbidden, "Access denied")
			return
		}

		ctx.Next()
	}
}

// AuthenticatedUserID returns the caller's id set by UserFromToken.
func AuthenticatedUserID(ctx iris.Context) uint {
	id, _ := ctx.Values().Get(userIDKey).(uint)
	return id
}

// AuthenticatedUserRole returns the caller's role set by UserFromToken.
func AuthenticatedUserRole(ctx iris.Context) models.Role {
	role, _ := ctx.Values().Get(userRoleKey).(models.Role)
	return role
}
