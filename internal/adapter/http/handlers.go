package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Check probes one dependency; a nil error means it is up.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type Handler struct{ checks []Check }

func NewHandler(checks ...Check) *Handler { return &Handler{checks: checks} }

// Health answers 200 when every dependency is up and 503 otherwise.
func (h *Handler) Health(c echo.Context) error {
	code, status := http.StatusOK, "ok"
	deps := make(map[string]string, len(h.checks))
	for _, chk := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		err := chk.Probe(ctx)
		cancel()
		if err != nil {
			code, status = http.StatusServiceUnavailable, "degraded"
			deps[chk.Name] = "down: " + err.Error()
			continue
		}
		deps[chk.Name] = "up"
	}
	body := map[string]any{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if len(deps) > 0 {
		body["deps"] = deps
	}
	return c.JSON(code, body)
}
