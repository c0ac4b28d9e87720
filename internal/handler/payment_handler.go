package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nthoangDev/event-management/internal/dto"
	"github.com/nthoangDev/event-management/internal/models"
	"github.com/nthoangDev/event-management/internal/service"
	"github.com/nthoangDev/event-management/internal/vnpay"
)

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/tickets/:id/payments", h.CreateIntent)
	e.GET("/api/v1/payments/:id", h.GetPayment)
	e.GET("/api/v1/payments/vnpay/return", h.GatewayReturn)
	e.GET("/api/v1/payments/vnpay/ipn", h.GatewayIPN)
}

func (h *PaymentHandler) CreateIntent(c echo.Context) error {
	var req dto.CreateIntentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	payment, err := h.svc.CreateIntent(c.Request().Context(), c.Param("id"), req.UserID, models.PaymentMethod(req.Method), c.RealIP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPendingPaymentExists):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrUnsupportedMethod),
			errors.Is(err, service.ErrTicketExpired):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToPaymentResponse(payment))
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	payment, err := h.svc.GetPayment(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// GatewayReturn handles the browser redirect back from the gateway. It is
// informational for the user; the IPN remains the source of truth.
func (h *PaymentHandler) GatewayReturn(c echo.Context) error {
	res := h.svc.HandleReturn(c.Request().Context(), queryFields(c))

	resp := dto.ReturnResponse{
		Success: res.RspCode == vnpay.RspOK,
		Message: res.Message,
	}
	if res.Payment != nil {
		resp.PaymentStatus = string(res.Payment.Status)
		if res.Payment.Ticket != nil {
			resp.TicketStatus = string(res.Payment.Ticket.Status)
		}
		resp.Success = res.Payment.Status == models.PaymentCompleted
	}

	return c.JSON(http.StatusOK, resp)
}

// GatewayIPN handles the server-to-server notification. The gateway expects
// the acknowledgement body verbatim and an HTTP 200 regardless of outcome;
// anything else makes it retry indefinitely.
func (h *PaymentHandler) GatewayIPN(c echo.Context) error {
	res := h.svc.HandleNotify(c.Request().Context(), queryFields(c))
	return c.JSON(http.StatusOK, map[string]string{
		"RspCode": res.RspCode,
		"Message": res.Message,
	})
}

// queryFields flattens the callback query parameters; the gateway never
// sends repeated keys.
func queryFields(c echo.Context) map[string]string {
	fields := make(map[string]string)
	for k, vs := range c.QueryParams() {
		if len(vs) > 0 {
			fields[k] = vs[0]
		}
	}
	return fields
}
