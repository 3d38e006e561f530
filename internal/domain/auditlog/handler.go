package auditlog

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/meditrack/meditrack/internal/platform/auth"
	"github.com/meditrack/meditrack/pkg/pagination"
)

type Handler struct {
	recorder *Recorder
}

func NewHandler(recorder *Recorder) *Handler {
	return &Handler{recorder: recorder}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/audit-logs", h.List)
}

func (h *Handler) List(c echo.Context) error {
	ownerID := auth.UserIDFromContext(c.Request().Context())
	pg := pagination.FromContext(c)

	filter := ListFilter{
		EntityType: c.QueryParam("entity_type"),
		Action:     c.QueryParam("action"),
	}
	if raw := c.QueryParam("entity_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid entity_id")
		}
		filter.EntityID = &id
	}
	if raw := c.QueryParam("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid since timestamp")
		}
		filter.Since = &since
	}

	items, total, err := h.recorder.List(c.Request().Context(), ownerID, filter, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// MetaFromRequest extracts the client IP (honoring X-Forwarded-For), user
// agent, and the correlation ID set by the request ID middleware.
func MetaFromRequest(c echo.Context) RequestMeta {
	meta := RequestMeta{UserAgent: c.Request().UserAgent()}
	if fwd := c.Request().Header.Get("X-Forwarded-For"); fwd != "" {
		meta.IPAddress = strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	} else {
		meta.IPAddress = c.RealIP()
	}
	if rid, ok := c.Get("request_id").(string); ok {
		meta.RequestID = rid
	}
	return meta
}
