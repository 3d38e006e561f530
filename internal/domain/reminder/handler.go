package reminder

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/meditrack/meditrack/internal/domain/auditlog"
	"github.com/meditrack/meditrack/internal/platform/auth"
	"github.com/meditrack/meditrack/internal/platform/clock"
)

type Handler struct {
	dispatcher *Dispatcher
	audit      *auditlog.Recorder
	clock      clock.Clock
}

func NewHandler(dispatcher *Dispatcher, audit *auditlog.Recorder, clk clock.Clock) *Handler {
	return &Handler{dispatcher: dispatcher, audit: audit, clock: clk}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/reminders/run", h.Run)
}

// Run triggers a synchronous sweep and returns its summary.
func (h *Handler) Run(c echo.Context) error {
	ctx := c.Request().Context()
	summary, err := h.dispatcher.Dispatch(ctx, h.clock.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.audit.Record(ctx, auditlog.Event{
		RequestMeta: auditlog.MetaFromRequest(c),
		OwnerUserID: auth.UserIDFromContext(ctx),
		Action:      auditlog.ActionReminderRun,
		EntityType:  "reminder",
		Summary:     "Triggered reminder sweep",
		Metadata: map[string]interface{}{
			"processed": summary.Processed,
			"sent":      summary.Sent,
			"skipped":   summary.Skipped,
		},
	})
	return c.JSON(http.StatusOK, summary)
}
