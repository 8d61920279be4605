package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"storefront-backend/cart"
	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("JWT_SECRET", "test-secret-key-for-unit-tests")

	var err error
	testDB, err = gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	// Limit to 1 open connection to prevent SQLite concurrent access issues
	// with in-memory databases.
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)

	// Create tables using raw SQLite-compatible SQL instead of AutoMigrate,
	// because the GORM model tags use PostgreSQL-specific defaults like gen_random_uuid().
	if err := createSQLiteTables(testDB); err != nil {
		panic("failed to migrate test database: " + err.Error())
	}

	code := m.Run()
	os.Exit(code)
}

// freshDB returns a clean database for each test by deleting all rows.
func freshDB() *gorm.DB {
	testDB.Exec("DELETE FROM product_images")
	testDB.Exec("DELETE FROM products")
	testDB.Exec("DELETE FROM categories")
	testDB.Exec("DELETE FROM refresh_tokens")
	testDB.Exec("DELETE FROM users")
	return testDB
}

func createSQLiteTables(db *gorm.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS "users" (
			"id" TEXT PRIMARY KEY,
			"email" TEXT NOT NULL UNIQUE,
			"password" TEXT NOT NULL,
			"name" TEXT,
			"role" TEXT DEFAULT 'customer',
			"is_blocked" INTEGER DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_deleted_at ON "users"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "refresh_tokens" (
			"id" TEXT PRIMARY KEY,
			"user_id" TEXT NOT NULL,
			"token" TEXT NOT NULL UNIQUE,
			"expires_at" DATETIME NOT NULL,
			"created_at" DATETIME
		)`,

		`CREATE TABLE IF NOT EXISTS "categories" (
			"id" TEXT PRIMARY KEY,
			"name" TEXT NOT NULL,
			"icon" TEXT,
			"description" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_deleted_at ON "categories"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "products" (
			"id" TEXT PRIMARY KEY,
			"title" TEXT NOT NULL,
			"description" TEXT,
			"price" REAL NOT NULL,
			"brand" TEXT,
			"category_id" TEXT NOT NULL,
			"stock" INTEGER DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_deleted_at ON "products"("deleted_at")`,

		`CREATE TABLE IF NOT EXISTS "product_images" (
			"id" TEXT PRIMARY KEY,
			"product_id" TEXT NOT NULL,
			"image_url" TEXT NOT NULL,
			"object_path" TEXT,
			"is_primary" INTEGER DEFAULT 0,
			"created_at" DATETIME,
			"updated_at" DATETIME,
			"deleted_at" DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_product_images_product_id ON "product_images"("product_id")`,
	}

	for _, ddl := range tables {
		if err := db.Exec(ddl).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedTestUser(db *gorm.DB, email, role string) (models.User, string) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hashed),
		Name:     "Test User",
		Role:     role,
	}
	db.Create(&user)

	token, _ := utils.GenerateToken(user.ID, user.Email, user.Role)
	return user, token
}

func seedCategory(db *gorm.DB, name string) models.Category {
	cat := models.Category{ID: uuid.New(), Name: name}
	db.Create(&cat)
	return cat
}

func seedProduct(db *gorm.DB, title string, categoryID uuid.UUID, price float64) models.Product {
	prod := models.Product{
		ID:         uuid.New(),
		Title:      title,
		Price:      price,
		CategoryID: categoryID,
		Stock:      100,
	}
	db.Create(&prod)
	return prod
}

func jsonRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authRequest(method, url string, body interface{}, token string) *http.Request {
	req := jsonRequest(method, url, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

func parseResponseArray(w *httptest.ResponseRecorder) []interface{} {
	var resp []interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// memoryCartStore is an in-memory cart.Store for handler tests.
type memoryCartStore struct {
	docs   []*models.CartItem
	nextID int
}

func (m *memoryCartStore) ActiveItems(ctx context.Context, guestID string) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, d := range m.docs {
		if d.GuestID == guestID && d.Active {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memoryCartStore) ActiveItem(ctx context.Context, guestID, productID string) (*models.CartItem, error) {
	for _, d := range m.docs {
		if d.GuestID == guestID && d.ProductID == productID && d.Active {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryCartStore) Create(ctx context.Context, item *models.CartItem) error {
	m.nextID++
	item.ID = fmt.Sprintf("doc-%d", m.nextID)
	cp := *item
	m.docs = append(m.docs, &cp)
	return nil
}

func (m *memoryCartStore) Deactivate(ctx context.Context, itemID string, at time.Time) error {
	for _, d := range m.docs {
		if d.ID == itemID {
			d.Active = false
			d.UpdatedAt = at
			return nil
		}
	}
	return fmt.Errorf("no document %s", itemID)
}

func (m *memoryCartStore) DeactivateAll(ctx context.Context, itemIDs []string, at time.Time) error {
	for _, id := range itemIDs {
		if err := m.Deactivate(ctx, id, at); err != nil {
			return err
		}
	}
	return nil
}

// newCartService builds a cart service over the in-memory store and the real
// GORM catalog, so product lookups hit the same test database the handlers use.
func newCartService(db *gorm.DB) (*cart.Service, *memoryCartStore) {
	store := &memoryCartStore{}
	return cart.NewService(store, cart.NewCatalog(db)), store
}

// protect wires the real auth middleware in front of a handler.
func protect(handler gin.HandlerFunc) []gin.HandlerFunc {
	return []gin.HandlerFunc{middleware.AuthMiddleware(), handler}
}
