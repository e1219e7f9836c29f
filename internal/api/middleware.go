package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"insights/internal/logger"
)

// Use installs the middleware both servers share. CORS allows every origin.
// The rate limit is per client IP; rps 0 disables it.
func Use(e *echo.Echo, log logrus.FieldLogger, rps float64) {
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(RequestLogger(log))
	if rps > 0 {
		store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(rps),
			Burst: max(1, int(rps)),
		})
		e.Use(middleware.RateLimiter(store))
	}
}

func RequestLogger(log logrus.FieldLogger) echo.MiddlewareFunc {
	l := logger.For(log, logger.ComponentHTTP)
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := l.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency,
				"ip":      v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("Request failed")
				return nil
			}
			entry.Info("Request")
			return nil
		},
	})
}
