package routes

import (
	"github.com/DhanaADS/crm-dashboard-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every route of the application. Auth endpoints are
// public; everything else sits behind the JWT middleware.
func SetupRoutes(r *gin.Engine) {
	RegisterAuthRoutes(r)

	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	{
		RegisterAPIRoutes(authRequired)
	}
}
