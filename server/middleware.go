package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/existflow/focusboard/internal/logger"
	"github.com/labstack/echo/v4"
)

// requestLogger logs every request with its status and duration.
func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()

		err := next(c)

		res := c.Response()
		logger.Info("HTTP Request",
			logger.F("method", req.Method),
			logger.F("uri", req.RequestURI),
			logger.F("remote", req.RemoteAddr),
			logger.F("status", res.Status),
			logger.F("size", res.Size),
			logger.F("duration", time.Since(start).String()),
			logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)))

		return err
	}
}

// authMiddleware checks for the configured bearer token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Get token from Authorization header
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return errorJSON(c, http.StatusUnauthorized, "authorization required")
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			return errorJSON(c, http.StatusUnauthorized, "invalid authorization format")
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			return errorJSON(c, http.StatusUnauthorized, "invalid token")
		}
		return next(c)
	}
}
