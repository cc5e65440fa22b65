package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/techexpert/helpdesk/internal/observability"
	apperrors "github.com/techexpert/helpdesk/pkg/util"
)

type errorEnvelope struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), time.Second)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string) (int, errorEnvelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var envelope errorEnvelope
	if len(body) > 0 {
		_ = json.Unmarshal(body, &envelope)
	}
	return resp.StatusCode, envelope
}

func TestErrorMiddlewareRendersDomainErrors(t *testing.T) {
	app := newTestApp(t)
	app.Get("/boom", func(c *fiber.Ctx) error {
		return apperrors.NewInvalidTransition("CLOSED", "IN_PROGRESS")
	})

	status, envelope := doRequest(t, app, "GET", "/boom")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", envelope.Error.Code)
	assert.Equal(t, "CLOSED", envelope.Error.Details["from"])
}

func TestErrorMiddlewareRecoversPanics(t *testing.T) {
	app := newTestApp(t)
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("wiring bug")
	})

	status, envelope := doRequest(t, app, "GET", "/panic")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", envelope.Error.Code)
}

func TestErrorMiddlewareWrapsUnknownErrors(t *testing.T) {
	app := newTestApp(t)
	app.Get("/opaque", func(c *fiber.Ctx) error {
		return assert.AnError
	})

	status, envelope := doRequest(t, app, "GET", "/opaque")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, "INTERNAL_ERROR", envelope.Error.Code)
	assert.NotContains(t, envelope.Error.Message, assert.AnError.Error())
}

func TestSuccessfulRequestsPassThrough(t *testing.T) {
	app := newTestApp(t)
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": "ok"})
	})

	status, envelope := doRequest(t, app, "GET", "/ok")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Empty(t, envelope.Error.Code)
}
