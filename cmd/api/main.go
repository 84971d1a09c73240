package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"courtops/internal/config"
	"courtops/internal/database"
	"courtops/internal/logging"
	"courtops/internal/metrics"
	"courtops/internal/middleware"
	"courtops/internal/modules/audit"
	"courtops/internal/modules/auth"
	"courtops/internal/modules/booking"
	"courtops/internal/modules/client"
	"courtops/internal/modules/kiosk"
	"courtops/internal/modules/payment"
	"courtops/internal/modules/register"
	"courtops/internal/modules/report"
	"courtops/internal/modules/waitinglist"
	jwtsvc "courtops/internal/pkg/jwt"
	"courtops/internal/realtime"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging, cfg.App)
	metrics.Register()

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}

	tokens := jwtsvc.New(cfg.JWT.Secret, cfg.JWT.TokenTTL)
	hub := realtime.NewHub()
	defer hub.Close()

	loggerf := func(format string, args ...interface{}) {
		logger.Info().Msgf(format, args...)
	}

	registerSvc := register.NewService(db)
	auditSvc := audit.NewService(db)
	clientSvc := client.NewService(db)
	waitlistSvc := waitinglist.NewService(db, hub, loggerf)
	paymentSvc := payment.NewService(payment.NewGormStore(db), registerSvc, auditSvc, hub, waitlistSvc, loggerf)
	bookingSvc := booking.NewService(db, clientSvc, registerSvc, auditSvc, hub, loggerf)
	kioskSvc := kiosk.NewService(db, registerSvc)
	reportSvc := report.NewService(db)
	authSvc := auth.NewService(db, tokens)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	auth.NewHandler(authSvc).RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.Auth(tokens))
	payment.NewHandler(paymentSvc).RegisterRoutes(protected)
	booking.NewHandler(bookingSvc).RegisterRoutes(protected)
	register.NewHandler(registerSvc).RegisterRoutes(protected)
	kiosk.NewHandler(kioskSvc).RegisterRoutes(protected)
	client.NewHandler(clientSvc).RegisterRoutes(protected)
	report.NewHandler(reportSvc).RegisterRoutes(protected)
	audit.NewHandler(auditSvc).RegisterRoutes(protected)
	waitinglist.NewHandler(waitlistSvc).RegisterRoutes(protected)
	protected.GET("/ws", realtime.NewHandler(hub, logger).Serve)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.HTTP.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown incomplete")
	}
}
