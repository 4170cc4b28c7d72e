package middlewares_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mandi-backend/middlewares"
	"mandi-backend/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=1"`
}

func newApp() *fiber.App {
	log := logrus.New()
	log.SetOutput(io.Discard)
	middlewares.ErrorLogger = log
	middlewares.ConfigureAuth("test-secret")

	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	app.Post("/validate", func(c *fiber.Ctx) error {
		var p payload
		if err := middlewares.BindAndValidate(c, &p); err != nil {
			return err
		}
		return c.JSON(p)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("db password leaked in message")
	})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	secured := app.Group("/secured", middlewares.IsAuthenticatedHeader())
	secured.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(middlewares.Actor(c))
	})
	secured.Get("/admin", middlewares.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestErrorHandler(t *testing.T) {
	app := newApp()

	status, body := call(t, app, http.MethodPost, "/validate", "", `{"count":0}`)
	assert.Equal(t, http.StatusBadRequest, status)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, "ValidationError", out["error"])
	assert.Equal(t, map[string]any{"name": "required", "count": "gte"}, out["errors"])

	status, body = call(t, app, http.MethodPost, "/validate", "", `{not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = call(t, app, http.MethodGet, "/boom", "", "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, body, "password")

	status, body = call(t, app, http.MethodGet, "/teapot", "", "")
	assert.Equal(t, http.StatusTeapot, status)
	assert.Contains(t, body, "short and stout")
}

func TestAuth(t *testing.T) {
	app := newApp()

	operator, err := middlewares.GenerateJWT("clerk", models.RoleOperator)
	require.NoError(t, err)
	admin, err := middlewares.GenerateJWT("owner", models.RoleAdmin)
	require.NoError(t, err)

	status, body := call(t, app, http.MethodGet, "/secured/me", operator, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "clerk", body)

	status, _ = call(t, app, http.MethodGet, "/secured/admin", operator, "")
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = call(t, app, http.MethodGet, "/secured/admin", admin, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, app, http.MethodGet, "/secured/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuth_RejectsForeignTokens(t *testing.T) {
	app := newApp()
	now := time.Now()

	// Wrong secret
	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &middlewares.Claims{
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "mallory", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	})
	signed, err := foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	status, _ := call(t, app, http.MethodGet, "/secured/me", signed, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	// Expired
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &middlewares.Claims{
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "owner", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))},
	})
	signed, err = expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	status, _ = call(t, app, http.MethodGet, "/secured/me", signed, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	// Missing role
	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, &middlewares.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "owner", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	})
	signed, err = noRole.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	status, _ = call(t, app, http.MethodGet, "/secured/me", signed, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}
