package api

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, app *fiber.App, method, path string) (int, response.Response) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body response.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorHandlerWrapsFailures(t *testing.T) {
	app := NewApp(utils.NewNopLogger())
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db password leaked here") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	status, body := decode(t, app, "GET", "/missing")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.False(t, body.Success)
	assert.Equal(t, "Route not found", body.Error)

	status, body = decode(t, app, "GET", "/boom")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.NotContains(t, body.Error, "password")

	status, body = decode(t, app, "GET", "/teapot")
	assert.Equal(t, fiber.StatusTeapot, status)
	assert.Equal(t, "short and stout", body.Error)
}
