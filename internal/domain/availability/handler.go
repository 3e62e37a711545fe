package availability

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
	"github.com/clinicdesk/clinicdesk/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Patients may read availability to pick a time; only providers and
	// elevated roles may manage slots.
	api.GET("/providers/:providerID/availability", h.DayView,
		auth.RequireRole("admin", "doctor", "staff", "patient"))

	manage := api.Group("", auth.RequireRole("admin", "doctor", "staff"))
	manage.POST("/providers/:providerID/slots", h.CreateSlot)
	manage.POST("/providers/:providerID/slots/batch", h.ImportSlots)
	manage.GET("/providers/:providerID/slots", h.ListSlots)
	manage.GET("/slots/:id", h.GetSlot)
	manage.PUT("/slots/:id", h.UpdateSlot)
	manage.DELETE("/slots/:id", h.DeleteSlot)
}

func (h *Handler) CreateSlot(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("providerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var cand SlotCandidate
	if err := c.Bind(&cand); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cand.ProviderID = providerID
	if cand.ProviderKind == "" {
		cand.ProviderKind = ProviderDoctor
	}

	slot, err := h.svc.CreateSlot(c.Request().Context(), actor, cand)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, slot)
}

func (h *Handler) ImportSlots(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("providerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req struct {
		Slots []SlotCandidate `json:"slots"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Slots) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "slots is required")
	}
	for i := range req.Slots {
		req.Slots[i].ProviderID = providerID
		if req.Slots[i].ProviderKind == "" {
			req.Slots[i].ProviderKind = ProviderDoctor
		}
	}

	report, err := h.svc.ImportSlots(c.Request().Context(), actor, req.Slots)
	if err != nil {
		return domainError(err)
	}
	// The batch as a whole succeeds even when individual items were
	// rejected; callers inspect the per-item report.
	return c.JSON(http.StatusMultiStatus, report)
}

func (h *Handler) ListSlots(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("providerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListProviderSlots(c.Request().Context(), providerID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) DayView(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("providerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider id")
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required (YYYY-MM-DD)")
	}
	items, err := h.svc.DayView(c.Request().Context(), providerID, date)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"date":  date.Format("2006-01-02"),
		"slots": items,
	})
}

func (h *Handler) GetSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	slot, err := h.svc.GetSlot(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "schedule slot not found")
	}
	return c.JSON(http.StatusOK, slot)
}

func (h *Handler) UpdateSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var ch SlotChanges
	if err := c.Bind(&ch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	slot, err := h.svc.UpdateSlot(c.Request().Context(), actor, id, ch)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, slot)
}

func (h *Handler) DeleteSlot(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteSlot(c.Request().Context(), actor, id); err != nil {
		return domainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// actorFromContext builds the ownership identity from the JWT claims set by
// the auth middleware. The subject is the provider's own id; staff and admin
// roles may manage schedules on behalf of any provider.
func actorFromContext(c echo.Context) (Actor, error) {
	ctx := c.Request().Context()
	uid, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid subject")
	}
	actor := Actor{ProviderID: uid}
	for _, role := range auth.RolesFromContext(ctx) {
		if role == "admin" || role == "staff" {
			actor.Elevated = true
		}
	}
	return actor, nil
}

// domainError translates availability errors into HTTP errors: conflicts and
// malformed times are unprocessable, ownership failures are forbidden, and
// missing slots are not found. Anything else is treated as a bad request.
func domainError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrScheduleConflict):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidTimeFormat):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrNotAuthorized):
		return echo.NewHTTPError(http.StatusForbidden, "not authorized")
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "schedule slot not found")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
