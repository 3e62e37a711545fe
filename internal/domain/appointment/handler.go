package appointment

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinicdesk/internal/domain/availability"
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
	g := api.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleStaff, auth.RolePatient))
	g.POST("/appointments", h.Book)
	g.GET("/appointments/:id", h.Get)
	g.POST("/appointments/:id/cancel", h.Cancel)
	g.GET("/patients/:patientID/appointments", h.PatientHistory)

	api.GET("/providers/:providerID/appointments", h.ProviderDay,
		auth.RequireRole(auth.RoleAdmin, auth.RoleDoctor, auth.RoleStaff))
}

func (h *Handler) Book(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	var req BookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == uuid.Nil {
		req.PatientID = actor.UserID
	}

	appt, err := h.svc.Book(c.Request().Context(), actor, req)
	if err != nil {
		return bookingError(err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	appt, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	appt, err := h.svc.Cancel(c.Request().Context(), actor, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) ProviderDay(c echo.Context) error {
	providerID, err := uuid.Parse(c.Param("providerID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid provider id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date query parameter is required (YYYY-MM-DD)")
	}
	items, err := h.svc.ProviderDay(c.Request().Context(), actor, providerID, date)
	if err != nil {
		return bookingError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"date":         date.Format("2006-01-02"),
		"appointments": items,
	})
}

func (h *Handler) PatientHistory(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.PatientHistory(c.Request().Context(), actor, patientID, pg.Limit, pg.Offset)
	if err != nil {
		return bookingError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// actorFromContext builds the ownership identity from the JWT claims set by
// the auth middleware. The subject is the caller's own id (patient or
// provider); staff and admin roles act on any patient's behalf.
func actorFromContext(c echo.Context) (Actor, error) {
	ctx := c.Request().Context()
	uid, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid subject")
	}
	actor := Actor{UserID: uid}
	for _, role := range auth.RolesFromContext(ctx) {
		if role == auth.RoleAdmin || role == auth.RoleStaff {
			actor.Elevated = true
		}
	}
	return actor, nil
}

func bookingError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrSlotUnavailable):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrSlotFull):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, availability.ErrInvalidTimeFormat):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrNotAuthorized):
		return echo.NewHTTPError(http.StatusForbidden, "not authorized")
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
