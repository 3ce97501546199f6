package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/linemk/belekbox-shop/internal/assets"
	"github.com/linemk/belekbox-shop/internal/domain/models"
	"github.com/linemk/belekbox-shop/internal/storage"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CatalogService управляет каталогом подарочных боксов.
type CatalogService interface {
	ListAvailable(ctx context.Context) ([]*models.Product, error)
	ListAll(ctx context.Context) ([]*models.Product, error)
	Create(ctx context.Context, input models.NewProduct, image *assets.Upload) (int64, error)
	Update(ctx context.Context, id int64, patch models.ProductPatch, image *assets.Upload) error
	Delete(ctx context.Context, id int64) error
	SetAllVisibility(ctx context.Context, visible bool) (int64, error)
}

type catalogService struct {
	log         *slog.Logger
	db          *sql.DB
	productRepo storage.ProductStorage
	images      assets.Store
}

func NewCatalogService(log *slog.Logger, db *sql.DB, productRepo storage.ProductStorage, images assets.Store) CatalogService {
	return &catalogService{
		log:         log,
		db:          db,
		productRepo: productRepo,
		images:      images,
	}
}

func (s *catalogService) ListAvailable(ctx context.Context) ([]*models.Product, error) {
	const op = "service.CatalogService.ListAvailable"

	products, err := s.productRepo.ListProducts(ctx, true)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *catalogService) ListAll(ctx context.Context) ([]*models.Product, error) {
	const op = "service.CatalogService.ListAll"

	products, err := s.productRepo.ListProducts(ctx, false)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

// Create сохраняет изображение (если есть) и создаёт товар.
// Файл и запись в БД не транзакционны: при сбое вставки файл остаётся на диске.
func (s *catalogService) Create(ctx context.Context, input models.NewProduct, image *assets.Upload) (int64, error) {
	const op = "service.CatalogService.Create"
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	logger := s.log.With(slog.String("op", op), slog.String("name", input.Name))

	if err := validate.Struct(input); err != nil {
		logger.Warn("invalid product", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, invalidPayload("name, description and price are required", err))
	}

	product := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		IsAvailable: input.IsAvailable,
		SortOrder:   input.SortOrder,
	}

	if image != nil {
		ref, err := s.images.Save(ctx, *image)
		if err != nil {
			logger.Error("failed to store image", slog.Any("error", err))
			return 0, fmt.Errorf("%s: failed to store image: %w", op, err)
		}
		product.ImageURL = &ref
	}

	id, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product created", slog.Int64("productID", id))
	return id, nil
}

// Update меняет только переданные поля. Новое изображение заменяет старое,
// старый файл удаляется после фиксации транзакции.
func (s *catalogService) Update(ctx context.Context, id int64, patch models.ProductPatch, image *assets.Upload) error {
	const op = "service.CatalogService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	// строка из одних пробелов считается пустой
	patch.Name = trimmed(patch.Name)
	patch.Description = trimmed(patch.Description)
	if err := validate.Struct(patch); err != nil {
		logger.Warn("invalid product patch", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, invalidPayload("invalid product fields", err))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	existing, err := s.productRepo.LockProductByIDTx(ctx, tx, id)
	if err != nil {
		rollback(logger, tx)
		logger.Warn("failed to get product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if image != nil {
		ref, err := s.images.Save(ctx, *image)
		if err != nil {
			rollback(logger, tx)
			logger.Error("failed to store image", slog.Any("error", err))
			return fmt.Errorf("%s: failed to store image: %w", op, err)
		}
		patch.ImageURL = &ref
	}

	if err := s.productRepo.UpdateProductTx(ctx, tx, id, patch); err != nil {
		rollback(logger, tx)
		logger.Error("failed to update product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	if patch.ImageURL != nil && existing.ImageURL != nil && *existing.ImageURL != *patch.ImageURL {
		s.releaseImage(ctx, logger, *existing.ImageURL)
	}

	logger.Info("product updated")
	return nil
}

// Delete удаляет товар и освобождает его изображение.
func (s *catalogService) Delete(ctx context.Context, id int64) error {
	const op = "service.CatalogService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	existing, err := s.productRepo.LockProductByIDTx(ctx, tx, id)
	if err != nil {
		rollback(logger, tx)
		logger.Warn("failed to get product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.productRepo.DeleteProductTx(ctx, tx, id); err != nil {
		rollback(logger, tx)
		logger.Error("failed to delete product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	if existing.ImageURL != nil {
		s.releaseImage(ctx, logger, *existing.ImageURL)
	}

	logger.Info("product deleted")
	return nil
}

// SetAllVisibility скрывает или показывает весь каталог одним запросом (смена сезона).
func (s *catalogService) SetAllVisibility(ctx context.Context, visible bool) (int64, error) {
	const op = "service.CatalogService.SetAllVisibility"
	logger := s.log.With(slog.String("op", op), slog.Bool("visible", visible))

	affected, err := s.productRepo.SetAllAvailability(ctx, visible)
	if err != nil {
		logger.Error("failed to toggle visibility", slog.Any("error", err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("catalog visibility changed", slog.Int64("products", affected))
	return affected, nil
}

// releaseImage удаляет файл, ошибка только логируется: запись в БД уже изменена
func (s *catalogService) releaseImage(ctx context.Context, logger *slog.Logger, ref string) {
	if err := s.images.Delete(ctx, ref); err != nil {
		logger.Error("failed to delete image", slog.String("image", ref), slog.Any("error", err))
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func rollback(logger *slog.Logger, tx *sql.Tx) {
	if rbErr := tx.Rollback(); rbErr != nil {
		logger.Error("transaction rollback failed", slog.Any("error", rbErr))
	}
}
