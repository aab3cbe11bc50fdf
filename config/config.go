package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Quotas   Quotas
	Log      LogConfig
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
}

type AuthConfig struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type StorageConfig struct {
	Driver         string
	Dir            string
	PublicURL      string
	MaxUploadBytes int64
	S3             S3Config
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Quotas are creation-time limits. Existing rows are never trimmed when a
// limit is lowered.
type Quotas struct {
	RestaurantsPerUser   int
	MenusPerRestaurant   int
	CategoriesPerMenu    int
	ItemsPerCategory     int
	BannersPerRestaurant int
}

type LogConfig struct {
	Level  string
	Format string
}

func DefaultQuotas() Quotas {
	return Quotas{
		RestaurantsPerUser:   5,
		MenusPerRestaurant:   5,
		CategoriesPerMenu:    10,
		ItemsPerCategory:     20,
		BannersPerRestaurant: 5,
	}
}

func setDefaults(v *viper.Viper) {
	q := DefaultQuotas()
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=menufic port=5432 sslmode=disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DATABASE_LOG_LEVEL", "warn")
	v.SetDefault("PORT", "8083")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "12h")
	v.SetDefault("STORAGE_DRIVER", "disk")
	v.SetDefault("STORAGE_DIR", "./uploads")
	v.SetDefault("STORAGE_PUBLIC_URL", "/uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("MAX_RESTAURANTS_PER_USER", q.RestaurantsPerUser)
	v.SetDefault("MAX_MENUS_PER_RESTAURANT", q.MenusPerRestaurant)
	v.SetDefault("MAX_CATEGORIES_PER_MENU", q.CategoriesPerMenu)
	v.SetDefault("MAX_ITEMS_PER_CATEGORY", q.ItemsPerCategory)
	v.SetDefault("MAX_BANNERS_PER_RESTAURANT", q.BannersPerRestaurant)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. An empty path looks for
// menufic.yaml in the working directory and tolerates its absence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("menufic")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:             v.GetString("DATABASE_DSN"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
			LogLevel:        v.GetString("DATABASE_LOG_LEVEL"),
		},
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
		Auth: AuthConfig{
			JWTSecret:  v.GetString("JWT_SECRET"),
			AccessTTL:  v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTTL: v.GetDuration("JWT_REFRESH_TTL"),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(v.GetString("STORAGE_DRIVER")),
			Dir:            v.GetString("STORAGE_DIR"),
			PublicURL:      strings.TrimRight(v.GetString("STORAGE_PUBLIC_URL"), "/"),
			MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
			S3: S3Config{
				Bucket:    v.GetString("S3_BUCKET"),
				Region:    v.GetString("S3_REGION"),
				Endpoint:  v.GetString("S3_ENDPOINT"),
				AccessKey: v.GetString("S3_ACCESS_KEY"),
				SecretKey: v.GetString("S3_SECRET_KEY"),
			},
		},
		Quotas: Quotas{
			RestaurantsPerUser:   v.GetInt("MAX_RESTAURANTS_PER_USER"),
			MenusPerRestaurant:   v.GetInt("MAX_MENUS_PER_RESTAURANT"),
			CategoriesPerMenu:    v.GetInt("MAX_CATEGORIES_PER_MENU"),
			ItemsPerCategory:     v.GetInt("MAX_ITEMS_PER_CATEGORY"),
			BannersPerRestaurant: v.GetInt("MAX_BANNERS_PER_RESTAURANT"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "disk":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	q := c.Quotas
	if q.RestaurantsPerUser < 1 || q.MenusPerRestaurant < 1 || q.CategoriesPerMenu < 1 ||
		q.ItemsPerCategory < 1 || q.BannersPerRestaurant < 0 {
		return errors.New("quota limits must be positive")
	}
	return nil
}

// NewLogger builds the process logger from the log settings.
func (c LogConfig) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
