package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"jmb-server/database"
	"jmb-server/models"
	"jmb-server/utils"
)

const contextAdminID = "admin_id"
const contextAdmin = "admin"

type adminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func adminView(a models.AdminUser) gin.H {
	name := a.Username
	if a.FullName != nil && *a.FullName != "" {
		name = *a.FullName
	}
	avatar := utils.AdminAvatarURL(name)
	if a.Avatar != nil && *a.Avatar != "" {
		avatar = *a.Avatar
	}
	return gin.H{
		"id":            a.ID,
		"username":      a.Username,
		"full_name":     name,
		"initials":      utils.Initials(name),
		"avatar":        avatar,
		"last_login_at": a.LastLoginAt,
	}
}

// AdminLogin checks the credentials and issues a session token
func (h *Handler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"authenticated": false, "error": "Username and password are required"})
		return
	}

	ctx := c.Request.Context()
	admin, err := h.Admins.GetAdminByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		h.respondError(c, err, "Failed to check credentials")
		return
	}
	if err != nil || !admin.IsActive ||
		bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
		h.Logger.Info("Admin login rejected", zap.String("username", req.Username))
		c.JSON(http.StatusUnauthorized, gin.H{"authenticated": false})
		return
	}

	now := h.clock()
	token, err := h.Auth.generateJWT(admin, now)
	if err != nil {
		h.respondError(c, err, "Failed to generate token")
		return
	}
	if err := h.Admins.TouchAdminLogin(ctx, admin.ID); err != nil {
		h.Logger.Warn("Failed to record admin login", zap.Error(err))
	} else {
		admin.LastLoginAt = &now
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"token":         token,
		"expires_in":    int(h.Auth.TTL.Seconds()),
		"user":          adminView(admin),
	})
}

// AdminMe returns the signed-in admin
func (h *Handler) AdminMe(c *gin.Context) {
	admin := c.MustGet(contextAdmin).(models.AdminUser)
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": adminView(admin)})
}

// AuthMiddleware validates the bearer token from the Authorization header.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return h.authenticate(false)
}

// WebsocketAuthMiddleware also accepts ?token=, since browsers cannot set
// headers on a websocket handshake. Only the order feed uses it.
func (h *Handler) WebsocketAuthMiddleware() gin.HandlerFunc {
	return h.authenticate(true)
}

func (h *Handler) authenticate(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		if allowQuery {
			tokenString = c.Query("token")
		}
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
				return
			}
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		adminID, err := h.Auth.parseJWT(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(contextAdminID, adminID)
		c.Next()
	}
}

// AdminMiddleware checks that the token's account still exists and is active
func (h *Handler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := c.Get(contextAdminID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Admin ID not found in context"})
			return
		}

		admin, err := h.Admins.GetAdmin(c.Request.Context(), adminID.(uuid.UUID))
		if errors.Is(err, database.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		}
		if err != nil {
			h.respondError(c, err, "Failed to check admin account")
			c.Abort()
			return
		}
		if !admin.IsActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is deactivated"})
			return
		}

		c.Set(contextAdmin, admin)
		c.Next()
	}
}
