package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// All endpoints answer with the same envelope: a success flag plus either a
// message (and optional data) or an error string.

func respondOK(c echo.Context, status int, message string, data interface{}) error {
	body := echo.Map{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

func respondErr(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{
		"success": false,
		"error":   msg,
	})
}

func respondInternal(c echo.Context) error {
	return respondErr(c, http.StatusInternalServerError, "internal server error")
}
