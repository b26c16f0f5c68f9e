package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gearguard/models"
	"gearguard/services"
	"gearguard/testutil"
	"gearguard/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtectedApp(t *testing.T) (*fiber.App, *utils.TokenIssuer, *models.User, *models.User) {
	t.Helper()
	db := testutil.NewDB(t)
	issuer := utils.NewTokenIssuer("middleware-secret-middleware-secret", true)
	auth := services.NewAuthService(db, testutil.NewFakeMailer())

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	app.Use(RequestID())
	app.Get("/me", Protected(auth, issuer), func(c *fiber.Ctx) error {
		return c.JSON(CurrentUser(c).Profile())
	})
	app.Get("/admin", Protected(auth, issuer), ManagerOnly(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	manager := testutil.CreateUser(t, db, "Maya", "maya@example.com", models.RoleManager)
	employee := testutil.CreateUser(t, db, "Eve", "eve@example.com", models.RoleEmployee)
	return app, issuer, manager, employee
}

func readMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestProtectedAcceptsCookieAndBearer(t *testing.T) {
	app, issuer, _, employee := newProtectedApp(t)
	token, err := issuer.Generate(employee.ID)
	require.NoError(t, err)

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: utils.SessionCookieName, Value: token})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	req = httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProtectedRejectsMissingOrInvalidTokens(t *testing.T) {
	app, issuer, _, _ := newProtectedApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Token abc")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	ghost, err := issuer.Generate(9999)
	require.NoError(t, err)
	req = httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+ghost)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "User not found", readMessage(t, resp))
}

func TestManagerOnly(t *testing.T) {
	app, issuer, manager, employee := newProtectedApp(t)

	employeeToken, err := issuer.Generate(employee.ID)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+employeeToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Access denied: Managers only", readMessage(t, resp))

	managerToken, err := issuer.Generate(manager.ID)
	require.NoError(t, err)
	req = httptest.NewRequest(fiber.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+managerToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequestIDKeepsClientValue(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(c.Locals("requestid").(string)) })

	const id = "0b4f6d2e-8f1c-4d51-9a43-3c5f0f6b2a11"
	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))

	req = httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(RequestIDHeader))
}
