package middleware

import (
	"strconv"
	"time"

	"github.com/arzan03/FilesManager/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

// Metrics records request counts and latency per route pattern, so ids in
// paths do not blow up label cardinality. It must run inside RequestLogger,
// which settles the final status.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else if code, ok := StatusOf(err); ok {
				status = code
			}
		}

		route := c.Route().Path
		metrics.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
