package account

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	accountsvc "github.com/chupakobra6/vagvin/service/account"
)

type Controller struct {
	Svc accountsvc.Service
	Log *slog.Logger
}

// GET /v1/wallet/balance
func (h *Controller) Balance(c echo.Context) error {
	userID := c.Get("user_id").(int64)

	u, err := h.Svc.Balance(c.Request().Context(), userID)
	if err != nil {
		h.Log.Error("balance failed", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"balance":   u.Balance,
		"overdraft": u.Overdraft,
		"available": u.Available(),
	})
}
