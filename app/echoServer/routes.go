package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/chupakobra6/vagvin/app/echoServer/controller/account"
	"github.com/chupakobra6/vagvin/app/echoServer/controller/payment"
	"github.com/chupakobra6/vagvin/app/echoServer/jwtx"
)

type C struct {
	Payment *payment.Controller
	Account *account.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public: gateway callbacks only. They authenticate via signatures and
	// IP allowlists, not sessions.
	pub := e.Group("/v1")
	pub.GET("/payments/robokassa/callback", c.Payment.RobokassaCallback)
	pub.POST("/payments/robokassa/callback", c.Payment.RobokassaCallback)
	pub.POST("/payments/yookassa/callback", c.Payment.YookassaCallback)
	pub.GET("/payments/heleket/callback", c.Payment.HeleketCallback)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization:Bearer ",
	}))
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			uid, err := jwtx.UserIDFromContext(ctx)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			ctx.Set("user_id", uid)
			return next(ctx)
		}
	})

	// Payments
	auth.POST("/payments/robokassa/initiate", c.Payment.InitiateRobokassa)
	auth.POST("/payments/yookassa/initiate", c.Payment.InitiateYookassa)
	auth.POST("/payments/heleket/initiate", c.Payment.InitiateHeleket)
	auth.GET("/payments/status/:invoice_id", c.Payment.Status)
	auth.GET("/payments/stats", c.Payment.Stats)

	// Wallet
	auth.GET("/wallet/balance", c.Account.Balance)
	auth.GET("/wallet/ledger", c.Payment.Ledger)
}
