package app

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/linemk/belekbox-shop/internal/app/handlers"
	"github.com/linemk/belekbox-shop/internal/assets"
	"github.com/linemk/belekbox-shop/internal/auth"
	"github.com/linemk/belekbox-shop/internal/auth/authmiddleware"
	"github.com/linemk/belekbox-shop/internal/lib/logger/handlers/urllog"
	"github.com/linemk/belekbox-shop/internal/service"
)

// Services - зависимости HTTP-слоя
type Services struct {
	Catalog  service.CatalogService
	Orders   service.OrderService
	Verifier auth.Verifier
	Images   assets.Store
}

// NewRouter собирает маршруты API
func NewRouter(log *slog.Logger, svc Services) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(urllog.CustomLoggerMiddleware(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Get("/api/health", handlers.HealthHandler(log, time.Now))
	router.Get("/api/products", handlers.ListProductsHandler(log, svc.Catalog))
	router.Post("/api/orders", handlers.CreateOrderHandler(log, svc.Orders))
	router.Post("/api/admin/login", handlers.AdminLoginHandler(log, svc.Verifier))

	router.Group(func(r chi.Router) {
		r.Use(authmiddleware.New(log, svc.Verifier))

		r.Get("/api/admin/products", handlers.AdminListProductsHandler(log, svc.Catalog))
		r.Post("/api/admin/products", handlers.CreateProductHandler(log, svc.Catalog))
		r.Put("/api/admin/products/{id}", handlers.UpdateProductHandler(log, svc.Catalog))
		r.Delete("/api/admin/products/{id}", handlers.DeleteProductHandler(log, svc.Catalog))
		r.Get("/api/admin/orders", handlers.AdminListOrdersHandler(log, svc.Orders))
		r.Post("/api/admin/hide-all", handlers.HideAllHandler(log, svc.Catalog))
		r.Post("/api/admin/show-all", handlers.ShowAllHandler(log, svc.Catalog))
	})

	// загруженные изображения раздаются только для локального хранилища, s3 отдаёт их сам
	if local, ok := svc.Images.(*assets.LocalStore); ok {
		prefix := local.URLPrefix()
		router.Handle(prefix+"/*", http.StripPrefix(prefix, noListing(http.FileServer(http.Dir(local.Dir())))))
	}

	return router
}

// noListing запрещает просмотр содержимого каталога
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
