package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string           `yaml:"env" env-default:"development"` // environment
	HTTPServer HTTPServerConfig `yaml:"http_server"`
	Database   DatabaseConfig   `yaml:"database"`
	Migrations MigrationsConfig `yaml:"migrations"`
	Admin      AdminConfig      `yaml:"admin"`
	Order      OrderConfig      `yaml:"order"`
	Assets     AssetsConfig     `yaml:"assets"`
}

// HTTPServerConfig структура http сервера
type HTTPServerConfig struct {
	Address     string        `yaml:"address" env-default:"localhost:8080"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// DatabaseConfig структура по работе с БД
type DatabaseConfig struct {
	Host     string `yaml:"host" env-default:"localhost"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"-" env:"DB_PASSWORD" env-required:"true"`
	Name     string `yaml:"name" env-required:"true"`
}

type MigrationsConfig struct {
	Path string `yaml:"path" env-default:"./migrations"`
}

// AdminConfig настройка доступа администратора.
// AuthMode: "secret" - токеном служит сам пароль, "jwt" - выдаётся подписанный токен.
type AdminConfig struct {
	AuthMode     string `yaml:"auth_mode" env:"ADMIN_AUTH_MODE" env-default:"secret"`
	Password     string `yaml:"-" env:"ADMIN_PASSWORD"`
	PasswordHash string `yaml:"-" env:"ADMIN_PASSWORD_HASH"`
	JWTSecret    string `yaml:"-" env:"JWT_SECRET"`
	TokenTTL     int    `yaml:"token_ttl" env-default:"720"` // минуты
}

// OrderConfig параметры оформления заказа
type OrderConfig struct {
	WhatsAppNumber string `yaml:"whatsapp_number" env:"WHATSAPP_ORDER_NUMBER" env-required:"true"`
	Timezone       string `yaml:"timezone" env:"ORDER_TIMEZONE" env-default:"Asia/Bishkek"`
}

// AssetsConfig хранилище изображений товаров: "local" или "s3"
type AssetsConfig struct {
	Driver         string   `yaml:"driver" env:"ASSETS_DRIVER" env-default:"local"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" env-default:"10485760"`
	Local          LocalFS  `yaml:"local"`
	S3             S3Bucket `yaml:"s3"`
}

type LocalFS struct {
	Dir       string `yaml:"dir" env-default:"./uploads/products"`
	URLPrefix string `yaml:"url_prefix" env-default:"/uploads/products"`
}

type S3Bucket struct {
	Bucket        string `yaml:"bucket" env:"ASSETS_S3_BUCKET"`
	Region        string `yaml:"region" env:"AWS_REGION" env-default:"eu-central-1"`
	Endpoint      string `yaml:"endpoint" env:"ASSETS_S3_ENDPOINT"`
	KeyPrefix     string `yaml:"key_prefix" env-default:"products/"`
	PublicBaseURL string `yaml:"public_base_url" env:"ASSETS_S3_PUBLIC_URL"`
}

// MustLoad - если не загружаем - паникуем
func MustLoad() *Config {
	var path string
	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	return MustLoadByPath(ResolvePath(path))
}

// ResolvePath путь из флага, иначе из CONFIG_PATH
func ResolvePath(flagValue string) string {
	// .env необязателен, переменные окружения процесса имеют приоритет
	_ = godotenv.Load()

	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("CONFIG_PATH")
}

func MustLoadByPath(configPath string) *Config {
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file not found: " + configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can't read config file %s: %v", configPath, err)
	}

	return &cfg
}
