package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DhanaADS/crm-dashboard-sub000/config"
	"github.com/DhanaADS/crm-dashboard-sub000/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

type LoginInput struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterInput struct {
	Login    string `json:"login" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginHandler checks credentials and sets the auth_token cookie.
func LoginHandler(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("login = ?", input.Login).First(&user).Error; err != nil {
		// Same answer for unknown login and wrong password.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid login or password"})
		return
	}
	if user.Status != "active" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		return
	}

	tokenStr, err := signToken(user.ID)
	if err != nil {
		slog.Error("Failed to sign token", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.SetCookie("auth_token", tokenStr, int(tokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "token": tokenStr})
}

// RegisterHandler creates a staff account with the default role.
func RegisterHandler(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Login:        input.Login,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: string(hash),
		Status:       "active",
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		var staffRole models.Role
		if err := tx.Where("name = ?", "staff").First(&staffRole).Error; err == nil {
			return tx.Model(&user).Association("Roles").Append(&staffRole)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Login or email already in use"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "userId": user.ID})
}

// LogoutHandler clears the auth cookie.
func LogoutHandler(c *gin.Context) {
	c.SetCookie("auth_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ProfileHandler returns the caller's identity as loaded by the middleware.
func ProfileHandler(c *gin.Context) {
	userID, _ := c.Get("user_id")
	login, _ := c.Get("login")
	roles, _ := c.Get("roles")
	permissions, _ := c.Get("permissions")

	c.JSON(http.StatusOK, gin.H{
		"userId":      userID,
		"login":       login,
		"roles":       roles,
		"permissions": permissions,
	})
}

func signToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JwtKey)
}
