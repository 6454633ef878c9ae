package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/example/vehicore/state"
)

type languageRequest struct {
	Language string `json:"language"`
}

func supportedLanguages() []string {
	out := make([]string, 0, len(state.SupportedLanguages))
	for _, tag := range state.SupportedLanguages {
		out = append(out, tag.String())
	}
	return out
}

func (h *Handler) GetLanguage(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"language":  h.App.Preferences.Language(),
		"supported": supportedLanguages(),
	})
}

// SetLanguage stores the requested language, falling back to Accept-Language
// when the body names none.
func (h *Handler) SetLanguage(c echo.Context) error {
	var req languageRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Language == "" {
		req.Language = c.Request().Header.Get("Accept-Language")
	}

	lang, err := h.App.Preferences.SetLanguage(req.Language)
	if err != nil {
		return respondError(c, err, "Failed to save language")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"language":  lang,
		"supported": supportedLanguages(),
	})
}
