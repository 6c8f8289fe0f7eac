package payment

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/chupakobra6/vagvin/model"
	paymentsvc "github.com/chupakobra6/vagvin/service/payment"
)

type Controller struct {
	Svc *paymentsvc.Processor
	V   *validator.Validate
	Log *slog.Logger

	// Empty list disables the check for gateways without published ranges.
	RobokassaIPs []string
	HeleketIPs   []string
}

// POST /v1/payments/robokassa/initiate
// @Summary Create a Robokassa top-up and return the redirect URL
// @Success 200 {object} map[string]any
// @Failure 400,401,500
func (h *Controller) InitiateRobokassa(c echo.Context) error {
	return h.initiate(c, model.ProviderRobokassa)
}

// POST /v1/payments/yookassa/initiate
func (h *Controller) InitiateYookassa(c echo.Context) error {
	return h.initiate(c, model.ProviderYookassa)
}

// POST /v1/payments/heleket/initiate
func (h *Controller) InitiateHeleket(c echo.Context) error {
	return h.initiate(c, model.ProviderHeleket)
}

func (h *Controller) initiate(c echo.Context, provider string) error {
	var req model.InitiatePaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"error":   "Сумма должна быть положительной",
		})
	}
	userID := c.Get("user_id").(int64)

	res, err := h.Svc.Initiate(c.Request().Context(), provider, userID,
		decimal.NewFromFloat(req.Amount))
	if errors.Is(err, paymentsvc.ErrInvalidAmount) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "Сумма должна быть положительной"})
	}
	if errors.Is(err, paymentsvc.ErrUnknownProvider) {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "Неизвестная платежная система"})
	}
	if err != nil {
		h.Log.Error("initiate failed", "provider", provider, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "Не удалось создать платеж"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"payment_url": res.PaymentURL,
		"invoice_id":  res.Payment.InvoiceID,
	})
}

// GET|POST /v1/payments/robokassa/callback
func (h *Controller) RobokassaCallback(c echo.Context) error {
	if !ipAllowed(c.RealIP(), h.RobokassaIPs) {
		return c.String(http.StatusForbidden, "Invalid IP")
	}

	params := paymentsvc.CallbackParams{Query: c.QueryParams()}
	p, outcome, err := h.Svc.HandleCallback(c.Request().Context(), model.ProviderRobokassa, params)
	if err != nil {
		h.Log.Error("robokassa callback error", "err", err)
		return c.String(http.StatusInternalServerError, "Error")
	}
	if outcome == paymentsvc.CallbackRejected {
		return c.String(http.StatusBadRequest, "Invalid signature")
	}
	// Robokassa stops retrying only on this exact ack. Replays of a settled
	// invoice get the same ack, they are a harmless no-op.
	return c.String(http.StatusOK, "OK"+strconv.FormatInt(p.ID, 10))
}

// POST /v1/payments/yookassa/callback
func (h *Controller) YookassaCallback(c echo.Context) error {
	raw, _ := io.ReadAll(c.Request().Body)

	params := paymentsvc.CallbackParams{Body: raw}
	_, outcome, err := h.Svc.HandleCallback(c.Request().Context(), model.ProviderYookassa, params)
	if err != nil {
		h.Log.Error("yookassa callback error", "err", err)
		return c.String(http.StatusInternalServerError, "Error")
	}
	if outcome == paymentsvc.CallbackRejected {
		return c.String(http.StatusBadRequest, "Invalid payment")
	}
	return c.String(http.StatusOK, "OK")
}

// GET /v1/payments/heleket/callback
func (h *Controller) HeleketCallback(c echo.Context) error {
	if !ipAllowed(c.RealIP(), h.HeleketIPs) {
		return c.String(http.StatusForbidden, "Invalid IP")
	}
	raw, _ := io.ReadAll(c.Request().Body)

	params := paymentsvc.CallbackParams{Query: c.QueryParams(), Body: raw}
	_, outcome, err := h.Svc.HandleCallback(c.Request().Context(), model.ProviderHeleket, params)
	if err != nil {
		h.Log.Error("heleket callback error", "err", err)
		return c.String(http.StatusInternalServerError, "Error")
	}
	if outcome == paymentsvc.CallbackRejected {
		return c.String(http.StatusBadRequest, "Invalid payment")
	}
	return c.String(http.StatusOK, "OK")
}

// GET /v1/payments/status/:invoice_id
func (h *Controller) Status(c echo.Context) error {
	userID := c.Get("user_id").(int64)
	invoiceID := c.Param("invoice_id")

	p, err := h.Svc.Status(c.Request().Context(), userID, invoiceID)
	if errors.Is(err, paymentsvc.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "Платеж не найден"})
	}
	if err != nil {
		h.Log.Error("payment status failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "internal error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"status":       p.Status,
		"amount":       p.Amount,
		"total_amount": p.TotalAmount,
		"created_at":   p.CreatedAt,
	})
}

// GET /v1/payments/stats
func (h *Controller) Stats(c echo.Context) error {
	userID := c.Get("user_id").(int64)

	stats, err := h.Svc.Stats(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("payment stats failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": stats})
}

// GET /v1/wallet/ledger
func (h *Controller) Ledger(c echo.Context) error {
	userID := c.Get("user_id").(int64)

	rows, err := h.Svc.Ledger(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("ledger failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": rows})
}

func ipAllowed(ip string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, ip)
}
