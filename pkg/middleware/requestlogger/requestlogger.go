package requestlogger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/moonShotMAGAX1/presale-ledger/pkg/logger"
)

type Config struct {
	// Disable suppresses the INFO-level request log line.
	Disable bool `mapstructure:"disable" env:"DISABLE" envDefault:"false"`
}

// New logs one line per request with latency, status and route information.
func New(config Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Continue stack
		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()

		attrs := []slog.Attr{
			slog.String("event", "api_request"),
			slog.Int64("latency", latency.Milliseconds()),
			slog.String("latencyHuman", latency.String()),
			slog.Group("request",
				slog.String("method", c.Method()),
				slog.String("path", c.Path()),
				slog.String("route", c.Route().Path),
				slog.String("ip", c.IP()),
				slog.String("user-agent", string(c.Context().UserAgent())),
				slog.Int("length", len(c.Body())),
			),
			slog.Group("response",
				slog.Int("status", status),
				slog.Int("length", len(c.Response().Body())),
			),
		}

		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		case config.Disable:
			return err
		}

		logger.FromContext(c.UserContext()).LogAttrs(c.UserContext(), level, "Request", attrs...)
		return err
	}
}
