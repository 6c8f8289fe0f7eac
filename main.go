// Package main vagvin payments API.
//
// @title           Vagvin Payments API
// @version         1.0
// @description     Balance top-ups through Robokassa, YooKassa and Heleket.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/chupakobra6/vagvin/app/echoServer"
	accountctrl "github.com/chupakobra6/vagvin/app/echoServer/controller/account"
	paymentctrl "github.com/chupakobra6/vagvin/app/echoServer/controller/payment"
	"github.com/chupakobra6/vagvin/app/echoServer/validation"
	"github.com/chupakobra6/vagvin/config"
	paymentrepo "github.com/chupakobra6/vagvin/repository/payment"
	userrepo "github.com/chupakobra6/vagvin/repository/user"
	accountsvc "github.com/chupakobra6/vagvin/service/account"
	paymentsvc "github.com/chupakobra6/vagvin/service/payment"
	"github.com/chupakobra6/vagvin/util/database"
	"github.com/chupakobra6/vagvin/util/httpx"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	pr := paymentrepo.New(db)
	ur := userrepo.New(db)

	// gateway adapters
	providers := []paymentsvc.Provider{
		paymentsvc.NewRobokassa(cfg.Robokassa),
		paymentsvc.NewYookassa(cfg.Yookassa, httpx.Client()),
		paymentsvc.NewHeleket(cfg.Heleket, httpx.Client()),
	}
	if cfg.PaymentTestMode {
		log.Warn("PAYMENT_TEST_MODE enabled, gateways will not be contacted")
		for i, p := range providers {
			providers[i] = paymentsvc.NewTestMode(p, pr)
		}
	}

	var notifier paymentsvc.Notifier = paymentsvc.LogNotifier{Log: log}
	if cfg.NotifyWebhookURL != "" {
		notifier = paymentsvc.MultiNotifier{
			paymentsvc.LogNotifier{Log: log},
			paymentsvc.WebhookNotifier{URL: cfg.NotifyWebhookURL, Client: httpx.Client(), Log: log},
		}
	}

	// services
	processor := paymentsvc.NewProcessor(pr, ur, notifier, log, providers...)
	as := accountsvc.New(ur)

	// stale pending payments
	sweeper := paymentsvc.NewSweeper(pr, cfg.SweepAfter, cfg.SweepInterval, log)
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go sweeper.Run(sweepCtx)

	// controllers
	v := validator.New()
	paymentC := &paymentctrl.Controller{
		Svc:          processor,
		V:            v,
		Log:          log,
		RobokassaIPs: cfg.Robokassa.AllowedIPs,
		HeleketIPs:   cfg.Heleket.AllowedIPs,
	}
	accountC := &accountctrl.Controller{Svc: as, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Payment: paymentC,
		Account: accountC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env, "test_mode", cfg.PaymentTestMode)

	e.Logger.Fatal(e.Start(":" + port))
}
