package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"polyglot/internal/service"
)

type SettingsHandler struct {
	service service.SettingsService
}

// Request/Response types

type aiSettingsResponse struct {
	Provider        string `json:"provider"`
	APIKey          string `json:"apiKey"`
	BaseURL         string `json:"baseUrl"`
	Model           string `json:"model"`
	Thinking        bool   `json:"thinking"`
	ThinkingBudget  int    `json:"thinkingBudget"`
	ReasoningEffort string `json:"reasoningEffort"`
	RateLimit       int    `json:"rateLimit"`
}

type aiSettingsRequest struct {
	Provider        string `json:"provider"`
	APIKey          string `json:"apiKey"`
	BaseURL         string `json:"baseUrl"`
	Model           string `json:"model"`
	Thinking        bool   `json:"thinking"`
	ThinkingBudget  int    `json:"thinkingBudget"`
	ReasoningEffort string `json:"reasoningEffort"`
	RateLimit       int    `json:"rateLimit"`
}

type aiTestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func NewSettingsHandler(service service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

func (h *SettingsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/settings/ai", h.GetAISettings)
	g.PUT("/settings/ai", h.UpdateAISettings)
	g.POST("/settings/ai/test", h.TestAI)
}

func (r aiSettingsRequest) toSettings() *service.AISettings {
	return &service.AISettings{
		Provider:        r.Provider,
		APIKey:          r.APIKey,
		BaseURL:         r.BaseURL,
		Model:           r.Model,
		Thinking:        r.Thinking,
		ThinkingBudget:  r.ThinkingBudget,
		ReasoningEffort: r.ReasoningEffort,
		RateLimit:       r.RateLimit,
	}
}

// GetAISettings returns the AI configuration.
// @Summary Get AI settings
// @Description Get the AI provider configuration with a masked API key
// @Tags settings
// @Produce json
// @Success 200 {object} aiSettingsResponse
// @Failure 500 {object} errorResponse
// @Router /settings/ai [get]
func (h *SettingsHandler) GetAISettings(c echo.Context) error {
	settings, err := h.service.GetAISettings(c.Request().Context())
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to get settings"})
	}

	return c.JSON(http.StatusOK, aiSettingsResponse{
		Provider:        settings.Provider,
		APIKey:          settings.APIKey,
		BaseURL:         settings.BaseURL,
		Model:           settings.Model,
		Thinking:        settings.Thinking,
		ThinkingBudget:  settings.ThinkingBudget,
		ReasoningEffort: settings.ReasoningEffort,
		RateLimit:       settings.RateLimit,
	})
}

// UpdateAISettings updates the AI configuration and switches translations to it.
// @Summary Update AI settings
// @Description Update the AI provider configuration. Empty or masked apiKey keeps the existing key.
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body aiSettingsRequest true "AI settings"
// @Success 200 {object} aiSettingsResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /settings/ai [put]
func (h *SettingsHandler) UpdateAISettings(c echo.Context) error {
	var req aiSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	if err := h.service.SetAISettings(c.Request().Context(), req.toSettings()); err != nil {
		if errors.Is(err, service.ErrInvalid) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to save settings"})
	}

	return h.GetAISettings(c)
}

// TestAI tests the AI connection without saving.
// @Summary Test AI connection
// @Description Send a test request with the given configuration. A masked apiKey uses the stored key.
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body aiSettingsRequest true "AI settings to test"
// @Success 200 {object} aiTestResponse
// @Failure 400 {object} errorResponse
// @Router /settings/ai/test [post]
func (h *SettingsHandler) TestAI(c echo.Context) error {
	var req aiSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	if req.Provider == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "provider is required"})
	}

	response, err := h.service.TestAI(c.Request().Context(), req.toSettings())
	if err != nil {
		return c.JSON(http.StatusOK, aiTestResponse{
			Success: false,
			Error:   err.Error(),
		})
	}

	return c.JSON(http.StatusOK, aiTestResponse{
		Success: true,
		Message: response,
	})
}
