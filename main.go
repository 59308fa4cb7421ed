package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jmb-server/config"
	"jmb-server/database"
	"jmb-server/handlers"
	"jmb-server/services"
	"jmb-server/utils"
)

const (
	shutdownTimeout  = 10 * time.Second
	cartSweepEvery   = time.Hour
	cartSnapshotTTL  = 30 * 24 * time.Hour
	startupDBTimeout = 15 * time.Second
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "jmb-server",
	Short:         "JMB Contractors storefront and admin API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = config.AppConfig

		var err error
		logger, err = utils.NewLogger(cfg.Environment, cfg.LogLevel)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and apply schema changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()
		logger.Info("Database schema is up to date")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo catalog and project gallery into empty tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SeedDemoData(cmd.Context()); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		logger.Info("Demo data seeded")
		return nil
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")
		fullName, _ := cmd.Flags().GetString("name")

		db, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		admin, err := services.CreateAdmin(cmd.Context(), db, username, password, fullName)
		if err != nil {
			return err
		}
		logger.Info("Admin created", zap.String("admin_id", admin.ID.String()), zap.String("username", admin.Username))
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().String("username", "", "login name")
	adminCreateCmd.Flags().String("password", "", "password, at least 8 characters")
	adminCreateCmd.Flags().String("name", "", "display name")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("password")

	adminCmd.AddCommand(adminCreateCmd)
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, adminCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if logger != nil {
			logger.Error("Command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// openDatabase connects and brings the schema up to date.
func openDatabase(ctx context.Context) (*database.DB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, startupDBTimeout)
	defer cancel()

	db, err := database.Connect(connectCtx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := db.InitializeTables(connectCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return db, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	db, err := openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := services.EnsureAdmin(ctx, db, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		return err
	}

	h := &handlers.Handler{
		Products: db,
		Jobs:     db,
		Orders:   db,
		Feedback: db,
		Contact:  db,
		Settings: db,
		Admins:   db,
		Stats:    db,
		Carts:    db,

		Auth:          handlers.NewAuth(cfg.JWTSecret, cfg.TokenTTL),
		Logger:        logger,
		SecureCookies: cfg.IsProduction(),
	}

	// Interface fields stay nil when a backend is not configured.
	images, err := services.NewCloudinaryStore(cfg.CloudinaryURL, logger)
	switch {
	case err == nil:
		h.Images = images
	case errors.Is(err, services.ErrImageStoreUnavailable):
		logger.Warn("CLOUDINARY_URL not set, image uploads are disabled")
	default:
		return err
	}

	var broadcaster services.Broadcaster
	if cfg.PushEnabled() {
		sender := services.NewWebPushSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)
		push := services.NewPushService(db, sender, cfg.VAPIDPublicKey, logger)
		broadcaster = push
		h.Push = push
	} else {
		logger.Warn("VAPID keys not set, push notifications are disabled")
	}

	mailer := services.NewEmailService(db, cfg.EmailRelayURL, logger)
	feed := services.NewOrderFeed(logger)
	defer feed.Close()

	orders := services.NewOrderService(db, broadcaster, feed, mailer, logger)
	if cfg.PublicSiteURL != "" {
		orders.AdminURL = strings.TrimSuffix(cfg.PublicSiteURL, "/") + "/admin"
	}

	h.Placer = orders
	h.Mailer = mailer
	h.Feed = feed

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), handlers.RequestLogger(logger))
	h.SetupRoutes(router)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Cart-Session"},
		ExposedHeaders:   []string{"X-Cart-Session", "Content-Disposition"},
		AllowCredentials: !cfg.AllowsAnyOrigin(),
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.ServerPort,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweeper := services.NewCartSweeper(db, cartSweepEvery, cartSnapshotTTL, logger)
	go sweeper.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting JMB server", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	feed.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
