package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"polyglot/internal/service"
)

type TranslateHandler struct {
	service service.TranslationService
}

type translateRequest struct {
	Text string `json:"text"`
}

func NewTranslateHandler(service service.TranslationService) *TranslateHandler {
	return &TranslateHandler{service: service}
}

func (h *TranslateHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/translate", h.Translate)
}

// Translate detects the language of a text and translates it once, without debouncing.
// @Summary Translate text
// @Description Detect the source language and translate into the other catalog languages
// @Tags translate
// @Accept json
// @Produce json
// @Param request body translateRequest true "Text to translate"
// @Success 200 {object} translationResponse
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /translate [post]
func (h *TranslateHandler) Translate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	result, err := h.service.Translate(c.Request().Context(), req.Text)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, newTranslationResponse(result))
}
