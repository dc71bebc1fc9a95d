package routes

import (
	"github.com/DhanaADS/crm-dashboard-sub000/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers the public authentication endpoints.
func RegisterAuthRoutes(r *gin.Engine) {
	r.POST("/login", handlers.LoginHandler)
	r.POST("/register", handlers.RegisterHandler)
	r.GET("/logout", handlers.LogoutHandler)
}
