package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"promptcrawler/internal/logger"
)

// CheckFunc probes one dependency.
type CheckFunc func(context.Context) error

// HealthHandler handles health check requests
type HealthHandler struct {
	log       *logger.Logger
	checks    map[string]CheckFunc
	startTime time.Time
	isReady   atomic.Bool
}

// NewHealthHandler creates a handler probing every named check. Nil checks
// are ignored.
func NewHealthHandler(checks map[string]CheckFunc) *HealthHandler {
	active := make(map[string]CheckFunc, len(checks))
	for name, fn := range checks {
		if fn != nil {
			active[name] = fn
		}
	}
	return &HealthHandler{
		log:       logger.New("HealthCheck"),
		checks:    active,
		startTime: time.Now(),
	}
}

// SetReady marks the application as ready to receive traffic
func (h *HealthHandler) SetReady() {
	h.isReady.Store(true)
	h.log.LogSuccessf("Application marked as ready for traffic after %v", time.Since(h.startTime))
}

// ComponentStatus holds the status of a dependent component
type ComponentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// OverallHealth represents the overall health status including components
type OverallHealth struct {
	OverallStatus string                     `json:"overall_status"`
	Timestamp     string                     `json:"timestamp"`
	Ready         bool                       `json:"ready"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Components    map[string]ComponentStatus `json:"components"`
}

// HandleHealth responds with the system's health status, including dependencies
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 8*time.Second)
	defer cancel()

	statuses := make(map[string]ComponentStatus, len(h.checks))
	var wg sync.WaitGroup
	var mu sync.Mutex
	allOk := true

	for name, check := range h.checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()
			started := time.Now()
			st := ComponentStatus{Status: "ok"}
			if err := check(ctx); err != nil {
				st = ComponentStatus{Status: "error", Error: err.Error()}
				h.log.LogErrorf("Health check failed for %s after %v: %v", name, time.Since(started), err)
			}
			mu.Lock()
			statuses[name] = st
			if st.Status != "ok" {
				allOk = false
			}
			mu.Unlock()
		}(name, check)
	}
	wg.Wait()

	ready := h.isReady.Load()
	response := OverallHealth{
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Ready:         ready,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Components:    statuses,
	}

	switch {
	case allOk && ready:
		response.OverallStatus = "ok"
		return c.Status(http.StatusOK).JSON(response)
	case !ready:
		response.OverallStatus = "starting"
	default:
		response.OverallStatus = "error"
		h.log.LogWarnf("Health check failed. Statuses: %+v", statuses)
	}
	return c.Status(http.StatusServiceUnavailable).JSON(response)
}

func HealthLimiter() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Rate limit exceeded"})
		},
	})
}
