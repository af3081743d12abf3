package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"polyglot/internal/model"
)

type LanguageHandler struct{}

type languageResponse struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

func NewLanguageHandler() *LanguageHandler {
	return &LanguageHandler{}
}

func (h *LanguageHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/languages", h.List)
}

// List returns the language catalog.
// @Summary List languages
// @Description List the supported languages in display order
// @Tags languages
// @Produce json
// @Success 200 {array} languageResponse
// @Router /languages [get]
func (h *LanguageHandler) List(c echo.Context) error {
	langs := model.Languages()
	resp := make([]languageResponse, 0, len(langs))
	for _, l := range langs {
		resp = append(resp, languageResponse{Name: l.String(), Key: l.FieldKey()})
	}
	return c.JSON(http.StatusOK, resp)
}
