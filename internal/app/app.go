package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	_ "github.com/lib/pq"

	"github.com/linemk/belekbox-shop/internal/assets"
	"github.com/linemk/belekbox-shop/internal/config"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB
	Images assets.Store
}

// NewApp открывает подключение к БД и хранилище изображений
func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	db, err := sql.Open("postgres", DSN(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	images, err := NewImageStore(ctx, log, cfg.Assets)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		Config: cfg,
		Logger: log,
		DB:     db,
		Images: images,
	}, nil
}

// DSN собирает строку подключения к postgres
func DSN(db config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:     db.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// NewImageStore выбирает хранилище изображений по assets.driver
func NewImageStore(ctx context.Context, log *slog.Logger, cfg config.AssetsConfig) (assets.Store, error) {
	policy := assets.Policy{MaxBytes: cfg.MaxUploadBytes}

	switch cfg.Driver {
	case "", "local":
		store, err := assets.NewLocalStore(log, cfg.Local.Dir, cfg.Local.URLPrefix, policy)
		if err != nil {
			return nil, fmt.Errorf("failed to init local image store: %w", err)
		}
		return store, nil
	case "s3":
		store, err := assets.NewS3Store(ctx, assets.S3Options{
			Bucket:        cfg.S3.Bucket,
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			KeyPrefix:     cfg.S3.KeyPrefix,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		}, policy)
		if err != nil {
			return nil, fmt.Errorf("failed to init s3 image store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown assets driver %q", cfg.Driver)
	}
}
