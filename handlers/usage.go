package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/example/vehicore/usage"
	"github.com/example/vehicore/validation"
)

// GetUsage returns the derived usage view for ?from=&to=&key=&tz=. Missing
// bounds default to the configured range ending today. The overview is
// fetched on every call.
func (h *Handler) GetUsage(c echo.Context) error {
	loc := time.Local
	if tz := c.QueryParam("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return respondError(c, validation.Errors{"tz": "unknown time zone"}, "")
		}
		loc = l
	}

	f := h.App.DefaultFilter(time.Now(), loc)
	if from := c.QueryParam("from"); from != "" {
		f.From = from
	}
	if to := c.QueryParam("to"); to != "" {
		f.To = to
	}
	if key := c.QueryParam("key"); key != "" {
		f.KeyID = key
	}

	if days, ok := usage.RangeDays(f); ok && days > h.App.Config.MaxRangeDays {
		return respondError(c, validation.Errors{
			"to": fmt.Sprintf("range must not exceed %d days", h.App.Config.MaxRangeDays),
		}, "")
	}

	if _, err := h.App.Usage.Refresh(c.Request().Context()); err != nil {
		return respondError(c, err, "Failed to load usage")
	}

	return c.JSON(http.StatusOK, h.App.Usage.View(f, h.App.Policy))
}
