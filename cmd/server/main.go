package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"

	"github.com/linemk/belekbox-shop/internal/app"
	"github.com/linemk/belekbox-shop/internal/auth"
	"github.com/linemk/belekbox-shop/internal/config"
	"github.com/linemk/belekbox-shop/internal/lib/logger"
	"github.com/linemk/belekbox-shop/internal/service"
	"github.com/linemk/belekbox-shop/internal/storage"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting app", slog.String("env", cfg.Env), slog.String("assets", cfg.Assets.Driver))

	// объект приложения: конфиг, подключение к БД, хранилище изображений
	application, err := app.NewApp(context.Background(), log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	verifier, err := auth.NewVerifier(cfg.Admin)
	if err != nil {
		log.Error("failed to initialize admin auth", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize admin auth"))
	}

	loc, err := time.LoadLocation(cfg.Order.Timezone)
	if err != nil {
		panic(errors.Wrapf(err, "unknown order timezone %q", cfg.Order.Timezone))
	}

	// слои по работе с БД
	productRepo := storage.NewProductRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)

	catalogService := service.NewCatalogService(application.Logger, application.DB, productRepo, application.Images)
	orderService := service.NewOrderService(application.Logger, orderRepo, cfg.Order.WhatsAppNumber, service.WithLocation(loc))

	router := app.NewRouter(application.Logger, app.Services{
		Catalog:  catalogService,
		Orders:   orderService,
		Verifier: verifier,
		Images:   application.Images,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.Any("error", err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	stopSign := <-stop
	log.Info("received shutdown signal", slog.String("signal", stopSign.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", slog.Any("error", err))
	}
	log.Info("server gracefully stopped")
}
