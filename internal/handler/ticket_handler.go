package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nthoangDev/event-management/internal/dto"
	"github.com/nthoangDev/event-management/internal/models"
	"github.com/nthoangDev/event-management/internal/service"
)

type TicketHandler struct {
	svc service.TicketService
}

func NewTicketHandler(svc service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

func (h *TicketHandler) RegisterRoutes(e *echo.Echo) {
	tickets := e.Group("/api/v1/tickets")
	tickets.POST("", h.ReserveTicket)
	tickets.GET("", h.ListTickets)
	tickets.GET("/:id", h.GetTicket)
	tickets.DELETE("/:id", h.CancelTicket)
	tickets.POST("/:id/validate", h.ValidateTicket)
}

func (h *TicketHandler) ReserveTicket(c echo.Context) error {
	var req dto.ReserveTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	ticket, err := h.svc.Reserve(c.Request().Context(), req.EventID, req.UserID, models.TicketCategory(req.Category), req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrEventNotOpen),
			errors.Is(err, service.ErrInvalidQuantity),
			errors.Is(err, service.ErrInvalidCategory),
			errors.Is(err, service.ErrNoVIPPrice):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) GetTicket(c echo.Context) error {
	ticket, err := h.svc.GetTicket(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "ticket not found")
	}
	return c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) ListTickets(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	tickets, err := h.svc.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.TicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = dto.ToTicketResponse(&t)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *TicketHandler) CancelTicket(c echo.Context) error {
	var req dto.CancelTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	ticket, err := h.svc.Cancel(c.Request().Context(), c.Param("id"), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrInvalidState):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) ValidateTicket(c echo.Context) error {
	var req dto.ValidateTicketRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" || req.ValidatorID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code and validator_id are required")
	}

	result, err := h.svc.Validate(c.Request().Context(), c.Param("id"), req.Code, req.ValidatorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrCodeMismatch),
			errors.Is(err, service.ErrInvalidState),
			errors.Is(err, service.ErrTicketExpired):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, result)
}
