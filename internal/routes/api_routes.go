package routes

import (
	"github.com/DhanaADS/crm-dashboard-sub000/internal/handlers"
	"github.com/DhanaADS/crm-dashboard-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes registers every authenticated API route. Mutating routes
// carry an explicit permission; admins bypass the checks in the middleware.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	apiGroup := api.Group("/api")
	{
		// Caller profile
		apiGroup.GET("/profile", handlers.ProfileHandler)

		// --- ORDERS ---
		orders := apiGroup.Group("/orders")
		orders.Use(middleware.PermissionMiddleware("orders_view"))
		{
			orders.GET("", handlers.ListOrdersHandler)
			orders.GET("/export", handlers.ExportOrdersHandler)
			orders.POST("", middleware.PermissionMiddleware("orders_create"), handlers.CreateOrderHandler)
			orders.POST("/preview", handlers.PreviewOrderHandler)
			orders.GET("/:id", handlers.GetOrderHandler)
			orders.PUT("/:id/status", middleware.PermissionMiddleware("orders_edit"), handlers.UpdateOrderStatusHandler)
			orders.DELETE("/:id", middleware.PermissionMiddleware("orders_delete"), handlers.DeleteOrderHandler)
		}

		// --- WEB INVENTORY ---
		inventory := apiGroup.Group("/inventory")
		inventory.Use(middleware.PermissionMiddleware("inventory_view"))
		{
			inventory.GET("", handlers.ListInventoryHandler)
			inventory.GET("/:id", handlers.GetInventoryHandler)
			inventory.GET("/:id/quote", handlers.QuoteInventoryHandler)
			inventory.POST("", middleware.PermissionMiddleware("inventory_edit"), handlers.CreateInventoryHandler)
			inventory.PUT("/:id", middleware.PermissionMiddleware("inventory_edit"), handlers.UpdateInventoryHandler)
			inventory.DELETE("/:id", middleware.PermissionMiddleware("inventory_delete"), handlers.DeleteInventoryHandler)
		}

		// --- USERS & ROLES ---
		users := apiGroup.Group("/users")
		users.Use(middleware.PermissionMiddleware("users_manage"))
		{
			users.GET("", handlers.ListUsersHandler)
			users.PUT("/:id/roles", handlers.AssignUserRolesHandler)
		}

		// --- PRICING RULES ---
		pricing := apiGroup.Group("/pricing-rules")
		pricing.Use(middleware.PermissionMiddleware("pricing_manage"))
		{
			pricing.GET("", handlers.ListPricingRulesHandler)
			pricing.POST("", handlers.SavePricingRuleHandler)
			pricing.DELETE("/:id", handlers.DeletePricingRuleHandler)
		}

		// --- EMPLOYEES ---
		employees := apiGroup.Group("/employees")
		employees.Use(middleware.PermissionMiddleware("employees_view"))
		{
			employees.GET("", handlers.ListEmployeesHandler)
			employees.GET("/export", handlers.ExportEmployeesHandler)
			employees.GET("/:id", handlers.GetEmployeeHandler)
			employees.POST("", middleware.PermissionMiddleware("employees_edit"), handlers.CreateEmployeeHandler)
			employees.PUT("/:id", middleware.PermissionMiddleware("employees_edit"), handlers.UpdateEmployeeHandler)
			employees.DELETE("/:id", middleware.PermissionMiddleware("employees_delete"), handlers.DeleteEmployeeHandler)
		}

		// --- INCOMING EMAILS ---
		emails := apiGroup.Group("/emails")
		emails.Use(middleware.PermissionMiddleware("emails_view"))
		{
			emails.GET("", handlers.ListEmailsHandler)
			emails.GET("/:id", handlers.GetEmailHandler)
			emails.POST("", middleware.PermissionMiddleware("emails_edit"), handlers.CreateEmailHandler)
			emails.DELETE("/:id", middleware.PermissionMiddleware("emails_delete"), handlers.DeleteEmailHandler)
			emails.POST("/:id/summarize", handlers.SummarizeEmailHandler)
			emails.POST("/import", middleware.PermissionMiddleware("emails_edit"), handlers.ImportMailboxHandler)
		}

		// --- LIVE MAILBOX PREVIEW ---
		apiGroup.GET("/mailbox", middleware.PermissionMiddleware("emails_view"), handlers.MailboxPreviewHandler)

		// --- DASHBOARD EVENT FEED ---
		apiGroup.GET("/events/ws", handlers.EventsWSHandler)
	}
}
