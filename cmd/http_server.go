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
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/auth"
	authpg "github.com/frahmantamala/org-directory/internal/auth/postgres"
	"github.com/frahmantamala/org-directory/internal/authz"
	"github.com/frahmantamala/org-directory/internal/company"
	companypg "github.com/frahmantamala/org-directory/internal/company/postgres"
	"github.com/frahmantamala/org-directory/internal/core/events"
	"github.com/frahmantamala/org-directory/internal/department"
	departmentpg "github.com/frahmantamala/org-directory/internal/department/postgres"
	"github.com/frahmantamala/org-directory/internal/email"
	"github.com/frahmantamala/org-directory/internal/geo"
	geopg "github.com/frahmantamala/org-directory/internal/geo/postgres"
	"github.com/frahmantamala/org-directory/internal/hierarchy"
	hierarchypg "github.com/frahmantamala/org-directory/internal/hierarchy/postgres"
	"github.com/frahmantamala/org-directory/internal/transport/rest"
	"github.com/frahmantamala/org-directory/internal/user"
	userpg "github.com/frahmantamala/org-directory/internal/user/postgres"
	"github.com/frahmantamala/org-directory/pkg/logger"
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
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

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

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm shares the sqlx pool instead of opening a second one
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)

	var sender email.Sender
	if config.Email.SMTPHost != "" {
		sender = email.NewSMTPSender(config.Email, lg)
	} else {
		sender = &email.NoopSender{Logger: lg}
	}
	email.NewListener(sender, config.Server.BaseURL, lg).Register(bus)

	hierarchyRepo := hierarchypg.NewHierarchyRepository(gormDB)
	hierarchySvc := hierarchy.NewService(hierarchyRepo, lg)

	resolver := authz.NewResolver(hierarchySvc, lg)

	departmentRepo := departmentpg.NewDepartmentRepository(gormDB)
	departmentSvc := department.NewService(departmentRepo, resolver, hierarchySvc, lg)

	userRepo := userpg.NewUserRepository(gormDB)
	userSvc := user.NewService(userRepo, resolver, hierarchySvc, departmentSvc, lg)

	tokenGen := auth.NewJWTTokenGenerator(config.Security)
	authRepo := authpg.NewAuthRepository(gormDB)
	authSvc := auth.NewService(authRepo, tokenGen, resolver, bus, config.Security, lg)

	companyRepo := companypg.NewCompanyRepository(gormDB)
	companySvc := company.NewService(companyRepo, lg)

	geoRepo := geopg.NewGeoRepository(gormDB)
	geoSvc := geo.NewService(geoRepo, lg)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:       auth.NewHandler(authSvc),
		User:       user.NewHandler(userSvc),
		Department: department.NewHandler(departmentSvc),
		Hierarchy:  hierarchy.NewHandler(hierarchySvc),
		Company:    company.NewHandler(companySvc),
		Geo:        geo.NewHandler(geoSvc),
	}, config.Server.AllowedOrigins, lg)

	return &Dependencies{
		Config: config,
		DB:     db,
		Router: router,
		Logger: lg,
	}, nil
}

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

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
