package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"polyglot/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeServiceError(c echo.Context, err error) error {
	var svcErr *service.ServiceError
	switch {
	case errors.As(err, &svcErr):
		return c.JSON(http.StatusBadGateway, errorResponse{Error: svcErr.Message(), Kind: svcErr.Kind.String()})
	case errors.Is(err, service.ErrEmptyInput):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "text is required"})
	case errors.Is(err, service.ErrInvalid):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "resource not found"})
	case errors.Is(err, service.ErrClosed):
		return c.JSON(http.StatusGone, errorResponse{Error: "session closed"})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
