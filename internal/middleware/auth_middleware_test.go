package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DhanaADS/crm-dashboard-sub000/config"
	"github.com/DhanaADS/crm-dashboard-sub000/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.JwtKey = []byte("test-secret")
	config.RDB = nil

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Role{}, &models.Permission{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db
	return db
}

func seedUserWithPermission(t *testing.T, db *gorm.DB, permission string) models.User {
	t.Helper()
	perm := models.Permission{Name: permission, Category: "orders"}
	if err := db.Create(&perm).Error; err != nil {
		t.Fatalf("perm: %v", err)
	}
	role := models.Role{Name: "manager", Permissions: []models.Permission{perm}}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("role: %v", err)
	}
	user := models.User{Login: "manager1", Email: "m@example.com", PasswordHash: "x", Roles: []models.Role{role}}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return user
}

func tokenFor(t *testing.T, userID uint) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString(config.JwtKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func protectedRouter(permission string) *gin.Engine {
	r := gin.New()
	r.GET("/secret", AuthMiddleware(), PermissionMiddleware(permission), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	setupAuthTest(t)
	r := protectedRouter("orders_view")

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	setupAuthTest(t)
	r := protectedRouter("orders_view")

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestPermissionGrantedThroughRole(t *testing.T) {
	db := setupAuthTest(t)
	user := seedUserWithPermission(t, db, "orders_view")
	r := protectedRouter("orders_view")

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, user.ID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestPermissionDenied(t *testing.T) {
	db := setupAuthTest(t)
	user := seedUserWithPermission(t, db, "orders_view")
	r := protectedRouter("orders_delete")

	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, user.ID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestAdminBypassesPermissionChecks(t *testing.T) {
	db := setupAuthTest(t)

	role := models.Role{Name: "admin"}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("role: %v", err)
	}
	user := models.User{Login: "root", Email: "root@example.com", PasswordHash: "x", Roles: []models.Role{role}}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}

	r := protectedRouter("anything_at_all")
	req := httptest.NewRequest(http.MethodGet, "/secret", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, user.ID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for admin", w.Code)
	}
}
