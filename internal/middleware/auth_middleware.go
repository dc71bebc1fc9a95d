package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DhanaADS/crm-dashboard-sub000/config"
	"github.com/DhanaADS/crm-dashboard-sub000/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// CachedUserData is the per-user auth bundle kept in Redis so repeated
// requests do not hit the users/roles/permissions tables.
type CachedUserData struct {
	UserID      uint     `json:"user_id"`
	Login       string   `json:"login"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

const userCacheTTL = 10 * time.Minute

// AuthMiddleware validates the JWT from the auth_token cookie or the bearer
// header and loads the caller's roles and permissions into the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie("auth_token")
		if err != nil || tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				abortUnauthorized(c, "Authorization token not provided")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				abortUnauthorized(c, "Invalid Authorization header format")
				return
			}
			tokenStr = parts[1]
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return config.JwtKey, nil
		})
		if err != nil || !token.Valid {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "Invalid token claims")
			return
		}
		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			abortUnauthorized(c, "Invalid user ID format in token")
			return
		}
		userID := uint(userIDFloat)

		cacheKey := fmt.Sprintf("user:%d:data", userID)
		if config.RDB != nil {
			cached, err := config.RDB.Get(config.Ctx, cacheKey).Result()
			if err == nil {
				var userData CachedUserData
				if json.Unmarshal([]byte(cached), &userData) == nil {
					setContextAndProceed(c, &userData)
					return
				}
				slog.Warn("Failed to unmarshal cached user data", "user_id", userID)
			} else if err != redis.Nil {
				slog.Error("Redis GET failed", "error", err, "user_id", userID)
			}
		}

		var dbUser models.User
		if err := config.DB.Preload("Roles.Permissions").First(&dbUser, userID).Error; err != nil {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			abortUnauthorized(c, "User from token not found")
			return
		}

		userData := CachedUserData{
			UserID: dbUser.ID,
			Login:  dbUser.Login,
		}
		seen := make(map[string]bool)
		for _, role := range dbUser.Roles {
			userData.Roles = append(userData.Roles, role.Name)
			for _, p := range role.Permissions {
				if !seen[p.Name] {
					seen[p.Name] = true
					userData.Permissions = append(userData.Permissions, p.Name)
				}
			}
		}

		if config.RDB != nil {
			if jsonData, err := json.Marshal(userData); err == nil {
				if err := config.RDB.Set(config.Ctx, cacheKey, jsonData, userCacheTTL).Err(); err != nil {
					slog.Error("Failed to cache user data", "error", err, "user_id", userID)
				}
			}
		}

		setContextAndProceed(c, &userData)
	}
}

// PermissionMiddleware gates a route behind a single named permission.
// The admin role bypasses individual checks.
func PermissionMiddleware(requiredPermission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if roles, exists := c.Get("roles"); exists {
			if userRoles, ok := roles.([]string); ok {
				for _, name := range userRoles {
					if name == "admin" {
						c.Next()
						return
					}
				}
			}
		}

		permissions, exists := c.Get("permissions")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Permissions not found in context"})
			c.Abort()
			return
		}
		userPermissions, ok := permissions.([]string)
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Internal permission format error"})
			c.Abort()
			return
		}
		for _, name := range userPermissions {
			if name == requiredPermission {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		c.Abort()
	}
}

// InvalidateUserCache drops a user's cached auth bundle, e.g. after a role
// change. Best effort.
func InvalidateUserCache(userID uint) {
	if config.RDB == nil {
		return
	}
	if err := config.RDB.Del(config.Ctx, fmt.Sprintf("user:%d:data", userID)).Err(); err != nil {
		slog.Warn("Failed to invalidate user cache", "error", err, "user_id", userID)
	}
}

func setContextAndProceed(c *gin.Context, userData *CachedUserData) {
	c.Set("user_id", userData.UserID)
	c.Set("login", userData.Login)
	c.Set("roles", userData.Roles)
	c.Set("permissions", userData.Permissions)
	c.Next()
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	c.Abort()
}
