package handlers

import (
	"net/http"
	"strings"

	"github.com/DhanaADS/crm-dashboard-sub000/config"
	"github.com/DhanaADS/crm-dashboard-sub000/internal/middleware"
	"github.com/DhanaADS/crm-dashboard-sub000/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AssignRolesInput struct {
	Roles []string `json:"roles" binding:"required"`
}

// ListUsersHandler returns a paginated list of staff accounts with their roles.
func ListUsersHandler(c *gin.Context) {
	query := config.DB.Model(&models.User{})
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(login) LIKE ? OR LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?",
			pattern, pattern, pattern)
	}

	// Fork the filtered query so Count and Find do not share a statement.
	query = query.Session(&gorm.Session{})

	var totalRows int64
	query.Count(&totalRows)

	var users []models.User
	if err := query.Preload("Roles").Order("login asc").Scopes(Paginate(c)).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch users"})
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, users, totalRows))
}

// AssignUserRolesHandler replaces a user's role set and drops their cached
// auth bundle so the change takes effect on the next request, not after the
// cache TTL.
func AssignUserRolesHandler(c *gin.Context) {
	var input AssignRolesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch user"})
		}
		return
	}

	var roles []models.Role
	if err := config.DB.Where("name IN ?", input.Roles).Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch roles"})
		return
	}
	if len(roles) != len(input.Roles) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role in list"})
		return
	}

	if err := config.DB.Model(&user).Association("Roles").Replace(&roles); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign roles"})
		return
	}
	middleware.InvalidateUserCache(user.ID)

	c.JSON(http.StatusOK, gin.H{"success": true, "roles": input.Roles})
}
