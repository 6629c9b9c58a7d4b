package app

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"meca_backend/database"
	"meca_backend/internal/auth"
	"meca_backend/internal/config"
	"meca_backend/internal/handlers"
	"meca_backend/internal/logger"
	"meca_backend/internal/middleware"
	"meca_backend/internal/models"
	"meca_backend/internal/repositories"
	"meca_backend/internal/routes"
	"meca_backend/internal/services"
	"meca_backend/internal/validator"
	"meca_backend/internal/workers"

	emailpkg "meca_backend/internal/email"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	// TranslateError maps driver unique-violation errors onto
	// gorm.ErrDuplicatedKey, which the repositories rely on.
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("Migration failed", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	notifier := buildNotifier(cfg)
	defer notifier.Close()

	ginRouter := SetupRouter(notifier, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(notifier workers.Notifier, gormDB *gorm.DB) *gin.Engine {
	serviceContainer := services.NewServiceContainer(notifier)
	appHandlers := handlers.NewAppHandlers(serviceContainer, validator.New())

	ginRouter := initializeGinRouter(gormDB)
	routes.SetupRoutes(ginRouter, appHandlers)
	return ginRouter
}

// buildNotifier returns the SMTP-backed dispatcher, or the no-op notifier
// when mail is not configured. The workflow never depends on mail landing.
func buildNotifier(cfg *config.Config) workers.Notifier {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("SMTP is not configured, notifications are disabled")
		return &workers.NopNotifier{}
	}

	provider, err := emailpkg.NewSMTPProvider(cfg)
	if err != nil {
		logger.Error("Failed to initialize SMTP provider, notifications are disabled", "error", err)
		return &workers.NopNotifier{}
	}
	return workers.NewDispatcher(provider, 0)
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	if err := auth.ValidatePassword(adminPassword); err != nil {
		return fmt.Errorf("first admin password rejected: %w", err)
	}

	userRepo := repositories.NewUserRepository()
	return db.Transaction(func(tx *gorm.DB) error {
		_, err := userRepo.FindByEmail(tx, adminEmail)
		if err == nil {
			logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
			return nil
		}
		if !errors.Is(err, repositories.ErrUserNotFound) {
			return fmt.Errorf("failed to check for admin user: %w", err)
		}

		hashedPassword, err := auth.HashPassword(adminPassword)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}

		newAdmin := &models.User{
			Email:        adminEmail,
			PasswordHash: hashedPassword,
			Role:         models.UserRoleAdmin,
			Status:       models.UserStatusActive,
		}
		if err := userRepo.Create(tx, newAdmin); err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		// The admin needs a profile so reviews and level changes have a
		// real actor behind them.
		adminProfile := &models.Profile{
			UserID:    newAdmin.ID,
			FirstName: "MECA",
			LastName:  "Administration",
			Email:     adminEmail,
		}
		if err := tx.Create(adminProfile).Error; err != nil {
			return fmt.Errorf("failed to create admin profile: %w", err)
		}

		logger.Info("Created first admin user", "email", adminEmail)
		return nil
	})
}
