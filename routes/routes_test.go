package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-backend/cart"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	r := gin.New()
	svc := cart.NewService(nil, cart.NewCatalog(db))
	SetupRoutes(r, db, nil, svc, nil)
	return r
}

func TestHealthEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRouteRegistration(t *testing.T) {
	router := setupTestRouter(t)

	expected := []struct {
		method string
		path   string
	}{
		{"POST", "/api/auth/register"},
		{"POST", "/api/auth/login"},
		{"POST", "/api/auth/refresh"},
		{"GET", "/api/auth/profile"},
		{"GET", "/api/products"},
		{"GET", "/api/products/:id"},
		{"GET", "/api/categories"},
		{"GET", "/api/categories/:id"},
		{"GET", "/api/cart/:guestId"},
		{"POST", "/api/cart/:guestId/items"},
		{"DELETE", "/api/cart/:guestId/items/:productId"},
		{"DELETE", "/api/cart/:guestId"},
		{"GET", "/api/cart/:guestId/whatsapp"},
		{"POST", "/api/admin/products"},
		{"PUT", "/api/admin/products/:id"},
		{"DELETE", "/api/admin/products/:id"},
		{"POST", "/api/admin/products/:id/images"},
		{"DELETE", "/api/admin/products/:id/images/:imageId"},
		{"POST", "/api/admin/categories"},
		{"PUT", "/api/admin/categories/:id"},
		{"DELETE", "/api/admin/categories/:id"},
	}

	registered := make(map[string]bool)
	for _, route := range router.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range expected {
		if !registered[want.method+" "+want.path] {
			t.Errorf("route not registered: %s %s", want.method, want.path)
		}
	}
}

func TestAdminRoutesRejectAnonymous(t *testing.T) {
	router := setupTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/admin/products", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
