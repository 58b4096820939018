package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated user ID stored by the JWT
// middleware from the echo context. JSON numbers arrive as float64,
// so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole extracts the caller's role claim from the echo context.
func getRole(c echo.Context) (string, error) {
	if r, ok := c.Get("role").(string); ok && r != "" {
		return r, nil
	}
	return "", errors.New("invalid role in context")
}
