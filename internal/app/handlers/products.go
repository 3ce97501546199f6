package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linemk/belekbox-shop/internal/domain/models"
	"github.com/linemk/belekbox-shop/internal/service"
)

// PublicProduct - товар в витрине, без служебных полей
type PublicProduct struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int     `json:"price"`
	ImageURL    *string `json:"image_url"`
	IsAvailable bool    `json:"is_available"`
}

// AdminProduct - товар в админ-панели
type AdminProduct struct {
	PublicProduct
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateProductResponse struct {
	Success   bool  `json:"success"`
	ProductID int64 `json:"product_id"`
}

func toPublic(p *models.Product) PublicProduct {
	return PublicProduct{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		IsAvailable: p.IsAvailable,
	}
}

// ListProductsHandler обрабатывает GET /api/products
func ListProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := catalog.ListAvailable(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}

		resp := make([]PublicProduct, 0, len(products))
		for _, p := range products {
			resp = append(resp, toPublic(p))
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}

// AdminListProductsHandler обрабатывает GET /api/admin/products, включая скрытые товары
func AdminListProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdminListProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := catalog.ListAll(r.Context())
		if err != nil {
			writeError(w, logger, err)
			return
		}

		resp := make([]AdminProduct, 0, len(products))
		for _, p := range products {
			resp = append(resp, AdminProduct{
				PublicProduct: toPublic(p),
				SortOrder:     p.SortOrder,
				CreatedAt:     p.CreatedAt,
			})
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}

// CreateProductHandler обрабатывает POST /api/admin/products (multipart)
func CreateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		if err := parseForm(r); err != nil {
			logger.Warn("invalid request: form parsing error", slog.Any("error", err))
			writeBadRequest(w, logger, "invalid request")
			return
		}

		input, err := newProductFromForm(r)
		if err != nil {
			logger.Warn("invalid request: bad field", slog.Any("error", err))
			writeBadRequest(w, logger, "Неверные данные товара")
			return
		}

		image, closeImage, err := formImage(r, "image")
		if err != nil {
			logger.Warn("invalid request: image error", slog.Any("error", err))
			writeBadRequest(w, logger, "invalid request")
			return
		}
		defer closeImage()

		id, err := catalog.Create(r.Context(), input, image)
		if err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, CreateProductResponse{Success: true, ProductID: id})
	}
}

// UpdateProductHandler обрабатывает PUT /api/admin/products/{id}. Меняются только переданные поля.
func UpdateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id, ok := productID(r)
		if !ok {
			logger.Warn("invalid product id", slog.String("id", chi.URLParam(r, "id")))
			writeBadRequest(w, logger, "invalid product id")
			return
		}
		logger = logger.With(slog.Int64("productID", id))

		if err := parseForm(r); err != nil {
			logger.Warn("invalid request: form parsing error", slog.Any("error", err))
			writeBadRequest(w, logger, "invalid request")
			return
		}

		patch, err := productPatchFromForm(r)
		if err != nil {
			logger.Warn("invalid request: bad field", slog.Any("error", err))
			writeBadRequest(w, logger, "Неверные данные товара")
			return
		}

		image, closeImage, err := formImage(r, "image")
		if err != nil {
			logger.Warn("invalid request: image error", slog.Any("error", err))
			writeBadRequest(w, logger, "invalid request")
			return
		}
		defer closeImage()

		if err := catalog.Update(r.Context(), id, patch, image); err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, SuccessResponse{Success: true})
	}
}

// DeleteProductHandler обрабатывает DELETE /api/admin/products/{id}
func DeleteProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id, ok := productID(r)
		if !ok {
			logger.Warn("invalid product id", slog.String("id", chi.URLParam(r, "id")))
			writeBadRequest(w, logger, "invalid product id")
			return
		}

		if err := catalog.Delete(r.Context(), id); err != nil {
			writeError(w, logger.With(slog.Int64("productID", id)), err)
			return
		}

		writeJSON(w, logger, http.StatusOK, SuccessResponse{Success: true})
	}
}

// HideAllHandler обрабатывает POST /api/admin/hide-all
func HideAllHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.HideAllHandler"
		logger := log.With(slog.String("op", op))

		if _, err := catalog.SetAllVisibility(r.Context(), false); err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, map[string]bool{"success": true, "hidden": true})
	}
}

// ShowAllHandler обрабатывает POST /api/admin/show-all
func ShowAllHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ShowAllHandler"
		logger := log.With(slog.String("op", op))

		if _, err := catalog.SetAllVisibility(r.Context(), true); err != nil {
			writeError(w, logger, err)
			return
		}

		writeJSON(w, logger, http.StatusOK, map[string]bool{"success": true, "shown": true})
	}
}

func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// newProductFromForm: is_available по умолчанию true, sort_order по умолчанию 0
func newProductFromForm(r *http.Request) (models.NewProduct, error) {
	input := models.NewProduct{IsAvailable: true}

	if name := formString(r, "name"); name != nil {
		input.Name = strings.TrimSpace(*name)
	}
	if description := formString(r, "description"); description != nil {
		input.Description = strings.TrimSpace(*description)
	}

	price, err := formInt(r, "price")
	if err != nil {
		return input, err
	}
	if price == nil {
		// отличаем "цена не передана" от нулевой цены
		input.Price = -1
	} else {
		input.Price = *price
	}

	available, err := formBool(r, "is_available")
	if err != nil {
		return input, err
	}
	if available != nil {
		input.IsAvailable = *available
	}

	sortOrder, err := formInt(r, "sort_order")
	if err != nil {
		return input, err
	}
	if sortOrder != nil {
		input.SortOrder = *sortOrder
	}

	return input, nil
}

func trimmedFormString(r *http.Request, key string) *string {
	v := formString(r, key)
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}

func productPatchFromForm(r *http.Request) (models.ProductPatch, error) {
	var (
		patch models.ProductPatch
		err   error
	)

	patch.Name = trimmedFormString(r, "name")
	patch.Description = trimmedFormString(r, "description")
	if patch.Price, err = formInt(r, "price"); err != nil {
		return patch, err
	}
	if patch.IsAvailable, err = formBool(r, "is_available"); err != nil {
		return patch, err
	}
	if patch.SortOrder, err = formInt(r, "sort_order"); err != nil {
		return patch, err
	}
	return patch, nil
}
