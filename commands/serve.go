package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"menufic/auth"
	"menufic/config"
	"menufic/controller"
	"menufic/database"
	"menufic/route"
	"menufic/service"
	"menufic/storage"
	"menufic/utils"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not migrate the schema on startup")
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := cfg.Log.NewLogger()
	slog.SetDefault(logger)
	if cfg.Server.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if !skipMigrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	store, uploadDir, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	logger.Info("storage configured", "driver", cfg.Storage.Driver)

	svc := service.New(db, store, logger, service.Options{
		Quotas:         cfg.Quotas,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})
	tokens := utils.NewTokens(cfg.Auth)
	router := route.NewRouter(route.Handlers{
		Controller: controller.New(svc, cfg.Storage.MaxUploadBytes, logger),
		Auth:       auth.NewHandler(svc, tokens),
		Tokens:     tokens,
		UploadDir:  uploadDir,
	}, cfg.Server.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore returns the configured object store and, for the disk store,
// the directory to serve under /uploads.
func openStore(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStore, string, error) {
	switch cfg.Driver {
	case "s3":
		baseURL := ""
		if strings.HasPrefix(cfg.PublicURL, "http") {
			baseURL = cfg.PublicURL
		}
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			BaseURL:   baseURL,
		})
		return store, "", err
	default:
		store, err := storage.NewDiskStore(cfg.Dir, cfg.PublicURL)
		return store, cfg.Dir, err
	}
}
