package auth

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	authsvc "plotsure-backend/internal/application/auth"
	"plotsure-backend/internal/domain"
	"plotsure-backend/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthTest(t *testing.T) (*Handlers, *authsvc.Service) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	mr := miniredis.RunT(t)
	svc := &authsvc.Service{
		DB:         db,
		Rdb:        redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		Secret:     "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	return &Handlers{Service: svc}, svc
}

func postJSON(t *testing.T, app *fiber.App, path string, body map[string]interface{}, headers map[string]string) (*fiber.App, map[string]interface{}, int) {
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return app, result, resp.StatusCode
}

func TestRegisterAndLogin(t *testing.T) {
	h, _ := setupAuthTest(t)
	app := fiber.New()
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)

	_, result, status := postJSON(t, app, "/register", map[string]interface{}{
		"name":     "Jean Bosco",
		"email":    "jean@example.com",
		"password": "secret123",
		"phone":    "+250788123456",
	}, nil)
	require.Equal(t, 201, status)
	assert.Equal(t, true, result["success"])

	_, result, status = postJSON(t, app, "/login", map[string]interface{}{
		"email":    "jean@example.com",
		"password": "secret123",
	}, nil)
	require.Equal(t, 200, status)
	data := result["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	user := data["user"].(map[string]interface{})
	_, hasHash := user["password_hash"]
	assert.False(t, hasHash, "password hash must never serialize")
}

func TestRegister_ValidationErrors(t *testing.T) {
	h, _ := setupAuthTest(t)
	app := fiber.New()
	app.Post("/register", h.Register)

	_, result, status := postJSON(t, app, "/register", map[string]interface{}{
		"name":     "J",
		"email":    "bad",
		"password": "123",
		"phone":    "x",
	}, nil)
	assert.Equal(t, 400, status)
	assert.Equal(t, false, result["success"])
	assert.NotNil(t, result["errors"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h, _ := setupAuthTest(t)
	app := fiber.New()
	app.Post("/login", h.Login)

	_, result, status := postJSON(t, app, "/login", map[string]interface{}{
		"email":    "nobody@example.com",
		"password": "whatever",
	}, nil)
	assert.Equal(t, 401, status)
	assert.Equal(t, false, result["success"])
}

func TestLogout_RevokesToken(t *testing.T) {
	h, svc := setupAuthTest(t)
	app := fiber.New()
	app.Post("/register", h.Register)
	app.Post("/login", h.Login)
	app.Post("/logout", middleware.RequireAuth(svc), h.Logout)
	app.Get("/me", middleware.RequireAuth(svc), h.Me)

	_, _, status := postJSON(t, app, "/register", map[string]interface{}{
		"name": "Jean Bosco", "email": "jean@example.com", "password": "secret123", "phone": "+250788123456",
	}, nil)
	require.Equal(t, 201, status)

	_, result, status := postJSON(t, app, "/login", map[string]interface{}{
		"email": "jean@example.com", "password": "secret123",
	}, nil)
	require.Equal(t, 200, status)
	token := result["data"].(map[string]interface{})["token"].(string)
	bearer := map[string]string{"Authorization": "Bearer " + token}

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	_, _, status = postJSON(t, app, "/logout", nil, bearer)
	require.Equal(t, 200, status)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}
