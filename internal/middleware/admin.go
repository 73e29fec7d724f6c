package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"gym_manager/internal/models"
	"gym_manager/internal/services"

	"github.com/gin-gonic/gin"
)

const (
	AdminHeader  = "X-Admin-ID"
	adminIDKey   = "adminID"
	adminRoleKey = "adminRole"
)

// AdminUsers is the slice of UserService the identity check needs.
type AdminUsers interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// AdminIdentity resolves the acting admin from the X-Admin-ID header and
// stores its id on the context. Handlers pass that id to services explicitly.
func AdminIdentity(users AdminUsers) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(AdminHeader)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": AdminHeader + " header required"})
			return
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid " + AdminHeader + " header"})
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), uint(id))
		if err != nil {
			var notFound *services.NotFoundError
			if errors.As(err, &notFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown admin"})
				return
			}
			log.Printf("Failed to resolve admin %d: %v", id, err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin account is inactive"})
			return
		}

		c.Set(adminIDKey, user.ID)
		c.Set(adminRoleKey, user.Role)
		c.Next()
	}
}

// AdminID returns the id stored by AdminIdentity, or zero outside it.
func AdminID(c *gin.Context) uint {
	return c.GetUint(adminIDKey)
}

// RequireRole lets the request through only when the admin resolved by
// AdminIdentity holds one of the allowed roles.
func RequireRole(allowed ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		acting := models.User{Role: c.GetString(adminRoleKey)}
		if !acting.HasRole(allowed...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}
