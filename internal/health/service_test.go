package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h *HealthHandler) (int, OverallHealth) {
	t.Helper()
	app := fiber.New()
	app.Get("/v1/health", h.HandleHealth)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/v1/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body OverallHealth
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	h := NewHealthHandler(map[string]CheckFunc{"store": ok, "redis": nil})

	status, body := get(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "starting", body.OverallStatus)

	h.SetReady()
	status, body = get(t, h)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body.OverallStatus)
	assert.Equal(t, map[string]ComponentStatus{"store": {Status: "ok"}}, body.Components)
}

func TestHandleHealth_FailingComponent(t *testing.T) {
	h := NewHealthHandler(map[string]CheckFunc{
		"store": func(context.Context) error { return errors.New("connection refused") },
		"redis": func(context.Context) error { return nil },
	})
	h.SetReady()

	status, body := get(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "error", body.OverallStatus)
	assert.Equal(t, "connection refused", body.Components["store"].Error)
	assert.Equal(t, "ok", body.Components["redis"].Status)
}
