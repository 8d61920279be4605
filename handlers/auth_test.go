package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupAuthRouter(db *gorm.DB) *gin.Engine {
	h := &AuthHandler{DB: db}

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/refresh", h.Refresh)
	api.GET("/auth/profile", protect(h.GetProfile)...)
	return r
}

func TestRegisterSuccess(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]interface{}{
		"email":    "newuser@test.com",
		"password": "password123",
		"name":     "New User",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["token"] == nil || resp["token"] == "" {
		t.Error("expected access token in response")
	}
	if resp["refresh_token"] == nil || resp["refresh_token"] == "" {
		t.Error("expected refresh token in response")
	}
	user := resp["user"].(map[string]interface{})
	if user["role"] != "customer" {
		t.Errorf("expected role customer, got %v", user["role"])
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "dup@test.com", "customer")

	body := map[string]interface{}{
		"email":    "dup@test.com",
		"password": "password123",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestRegisterWeakPassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	body := map[string]interface{}{
		"email":    "weak@test.com",
		"password": "short",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/register", body))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "login@test.com", "customer")

	body := map[string]interface{}{
		"email":    "login@test.com",
		"password": "password123",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["token"] == nil {
		t.Error("expected access token in response")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "wrongpw@test.com", "customer")

	body := map[string]interface{}{
		"email":    "wrongpw@test.com",
		"password": "not-the-password",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLoginBlockedUser(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	user, _ := seedTestUser(db, "blocked@test.com", "customer")
	db.Model(&user).Update("is_blocked", true)

	body := map[string]interface{}{
		"email":    "blocked@test.com",
		"password": "password123",
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", body))

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestRefreshToken(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	seedTestUser(db, "refresh@test.com", "customer")

	// Login to obtain a stored refresh token.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/login", map[string]interface{}{
		"email":    "refresh@test.com",
		"password": "password123",
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d", w.Code)
	}
	refreshToken := parseResponse(w)["refresh_token"].(string)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/refresh", map[string]interface{}{
		"refresh_token": refreshToken,
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if parseResponse(w)["token"] == nil {
		t.Error("expected fresh access token")
	}
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	// An access token has the wrong issuer and is not stored; it must not
	// pass as a refresh token.
	_, accessToken := seedTestUser(db, "noswap@test.com", "customer")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("POST", "/api/auth/refresh", map[string]interface{}{
		"refresh_token": accessToken,
	}))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestGetProfile(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	_, token := seedTestUser(db, "profile@test.com", "customer")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, authRequest("GET", "/api/auth/profile", nil, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	if resp["email"] != "profile@test.com" {
		t.Errorf("expected profile email, got %v", resp["email"])
	}
}

func TestGetProfileUnauthorized(t *testing.T) {
	db := freshDB()
	router := setupAuthRouter(db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest("GET", "/api/auth/profile", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
