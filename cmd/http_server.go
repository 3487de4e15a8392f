package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rahmatagung/user-management/internal"
	auditPostgres "github.com/rahmatagung/user-management/internal/audit/postgres"
	"github.com/rahmatagung/user-management/internal/auth"
	authPostgres "github.com/rahmatagung/user-management/internal/auth/postgres"
	"github.com/rahmatagung/user-management/internal/core/events"
	"github.com/rahmatagung/user-management/internal/department"
	departmentPostgres "github.com/rahmatagung/user-management/internal/department/postgres"
	"github.com/rahmatagung/user-management/internal/notification"
	"github.com/rahmatagung/user-management/internal/role"
	rolePostgres "github.com/rahmatagung/user-management/internal/role/postgres"
	"github.com/rahmatagung/user-management/internal/transport"
	"github.com/rahmatagung/user-management/internal/transport/rest"
	"github.com/rahmatagung/user-management/internal/user"
	userPostgres "github.com/rahmatagung/user-management/internal/user/postgres"
	"github.com/rahmatagung/user-management/internal/userdepartment"
	userdepartmentPostgres "github.com/rahmatagung/user-management/internal/userdepartment/postgres"
	"github.com/rahmatagung/user-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Config.Server.AllowedOrigins, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm rides on the already-pooled pgx connection
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	handlers, err := buildHandlers(config, gormDB, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to build handlers: %w", err)
	}

	return &Dependencies{
		Config:   config,
		Logger:   appLogger,
		DB:       db,
		GormDB:   gormDB,
		Router:   chi.NewRouter(),
		Handlers: handlers,
	}, nil
}

func buildHandlers(config *internal.Config, gormDB *gorm.DB, appLogger *slog.Logger) (rest.Handlers, error) {
	baseHandler := transport.NewBaseHandler(appLogger)

	eventBus := events.NewEventBus(appLogger)
	notificationService, err := notification.NewService(&notification.LogSender{Logger: appLogger}, appLogger)
	if err != nil {
		return rest.Handlers{}, fmt.Errorf("notification service: %w", err)
	}
	notificationService.Register(eventBus)

	authRepo := authPostgres.NewAuthRepository(gormDB)
	userRepo := userPostgres.NewUserRepository(gormDB, appLogger)
	roleRepo := rolePostgres.NewRoleRepository(gormDB)
	auditRepo := auditPostgres.NewAuditRepository(gormDB)
	departmentRepo := departmentPostgres.NewDepartmentRepository(gormDB)
	membershipRepo := userdepartmentPostgres.NewUserDepartmentRepository(gormDB, appLogger)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)

	authService := auth.NewService(authRepo, tokenGen, config.Security.BCryptCost, appLogger)
	userService := user.NewService(userRepo, roleRepo, auditRepo, eventBus, config.Security.BCryptCost, appLogger)
	roleService := role.NewService(roleRepo)
	departmentService := department.NewService(departmentRepo, appLogger)
	membershipService := userdepartment.NewService(membershipRepo, departmentRepo, appLogger)

	return rest.Handlers{
		Auth:           auth.NewHandler(baseHandler, authService),
		User:           user.NewHandler(baseHandler, userService),
		Role:           role.NewHandler(baseHandler, roleService),
		Department:     department.NewHandler(baseHandler, departmentService),
		UserDepartment: userdepartment.NewHandler(baseHandler, membershipService),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
