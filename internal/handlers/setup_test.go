package handlers

import (
	"fmt"
	"testing"

	"github.com/DhanaADS/crm-dashboard-sub000/config"
	"github.com/DhanaADS/crm-dashboard-sub000/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens a per-test in-memory SQLite database and points the
// global config.DB at it.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.Employee{},
		&models.Order{},
		&models.OrderSite{},
		&models.InventoryItem{},
		&models.IncomingEmail{},
		&models.PricingRule{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db
	config.RDB = nil
	return db
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}
