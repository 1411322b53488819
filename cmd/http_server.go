package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/couture-bookkeeping/internal"
	"github.com/frahmantamala/couture-bookkeeping/internal/auth"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/events"
	"github.com/frahmantamala/couture-bookkeeping/internal/expense"
	expensePostgres "github.com/frahmantamala/couture-bookkeeping/internal/expense/postgres"
	"github.com/frahmantamala/couture-bookkeeping/internal/fxrate"
	"github.com/frahmantamala/couture-bookkeeping/internal/procurement"
	procurementPostgres "github.com/frahmantamala/couture-bookkeeping/internal/procurement/postgres"
	"github.com/frahmantamala/couture-bookkeeping/internal/saree"
	sareePostgres "github.com/frahmantamala/couture-bookkeeping/internal/saree/postgres"
	"github.com/frahmantamala/couture-bookkeeping/internal/transport"
	"github.com/frahmantamala/couture-bookkeeping/internal/transport/middleware"
	"github.com/frahmantamala/couture-bookkeeping/internal/transport/rest"
	"github.com/frahmantamala/couture-bookkeeping/internal/user"
	userPostgres "github.com/frahmantamala/couture-bookkeeping/internal/user/postgres"
	"github.com/frahmantamala/couture-bookkeeping/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// Dependencies is the wired application shared by every command.
type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Logger *slog.Logger
	Bus    *events.EventBus

	Users        *user.Service
	Auth         *auth.Service
	Sarees       *saree.Service
	Procurements *procurement.Service
	Expenses     *expense.Service
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	defer deps.Close()

	stopCleanup := make(chan struct{})
	defer close(stopCleanup)

	router := setupRoutes(deps, stopCleanup)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "driver", deps.Config.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
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
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies, stop <-chan struct{}) *chi.Mux {
	cfg := deps.Config
	base := transport.NewBaseHandler(deps.Logger)

	loginLimiter := middleware.NewRateLimiter(float64(cfg.Security.LoginRatePerSecond), cfg.Security.LoginBurst, deps.Logger)
	loginLimiter.StartCleanup(time.Minute, stop)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Auth:        auth.NewHandler(deps.Auth),
		RBAC:        auth.NewRBACAuthorization(auth.NewRoleChecker(), deps.Logger),
		User:        user.NewHandler(deps.Users),
		Saree:       saree.NewHandler(base, deps.Sarees),
		Procurement: procurement.NewHandler(base, deps.Procurements),
		Expense:     expense.NewHandler(deps.Expenses),
	}, rest.Options{
		DB:             deps.DB,
		Logger:         deps.Logger,
		AllowedOrigins: cfg.Server.Origins(),
		LoginLimiter:   loginLimiter,
		MetricsEnabled: cfg.Observability.Metrics.Enabled,
		MetricsPath:    cfg.Observability.Metrics.Path,
	})
	return router
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(config.Database, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(log)

	userService := user.NewService(userPostgres.NewUserRepository(gormDB), config.Security.BCryptCost, log)
	tokens := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.AccessTokenDuration)

	expenseService := expense.NewService(expensePostgres.NewExpenseRepository(gormDB), log)
	expense.NewEventHandler(expenseService, log).RegisterEventHandlers(bus)

	sareeRepo := sareePostgres.NewSareeRepository(gormDB)
	procurementService := procurement.NewService(
		procurementPostgres.NewProcurementRepository(gormDB),
		sareeRepo,
		fxrate.NewProvider(config.FX, config.Pricing.DefaultExchangeRate, log),
		expenseService,
		bus,
		config.Pricing,
		log,
	)

	return &Dependencies{
		Config:       config,
		DB:           db,
		Gorm:         gormDB,
		Logger:       log,
		Bus:          bus,
		Users:        userService,
		Auth:         auth.NewService(userService, tokens, log),
		Sarees:       saree.NewService(sareeRepo, log),
		Procurements: procurementService,
		Expenses:     expenseService,
	}, nil
}

// Close waits for in-flight event handlers before releasing the pool.
func (d *Dependencies) Close() {
	d.Bus.Wait()
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	dbConn, err := sqlx.Connect(cfg.SQLDriverName(), cfg.GetDSN())
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

// initGorm layers the repositories' ORM over the already opened pool.
func initGorm(cfg internal.DatabaseConfig, db *sqlx.DB) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = &sqlite.Dialector{DriverName: cfg.SQLDriverName(), Conn: db.DB}
	default:
		dialector = postgres.New(postgres.Config{Conn: db.DB})
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
}
