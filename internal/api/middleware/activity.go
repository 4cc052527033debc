package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/accessdesk/project-access/internal/core/domain"
)

// ActivityQueue accepts entries without blocking.
type ActivityQueue interface {
	Enqueue(e domain.ActivityEntry) bool
}

// Activity logs every call as "METHOD path - actor" and queues an entry for
// the persistent activity log. Register it before LoadSession so calls that
// fail while resolving the session are recorded too; the session is read once
// the rest of the chain has returned.
func Activity(queue ActivityQueue, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				// Render now so the recorded status is the one the client sees.
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			entry := domain.ActivityEntry{
				Method:    req.Method,
				Path:      req.URL.Path,
				Status:    res.Status,
				RequestID: res.Header().Get(echo.HeaderXRequestID),
				At:        start.UTC(),
				Latency:   time.Since(start),
			}
			if sess := SessionFrom(c); sess != nil {
				entry.Username = sess.Username
				entry.Role = sess.Role
			}

			log.Info().
				Int("status", entry.Status).
				Dur("latency", entry.Latency).
				Str("request_id", entry.RequestID).
				Msgf("%s %s - %s", entry.Method, entry.Path, entry.Actor())

			if queue != nil {
				queue.Enqueue(entry)
			}
			return nil
		}
	}
}
