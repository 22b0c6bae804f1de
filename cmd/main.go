package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"opterra/internal/handlers"
	"opterra/internal/logger"
	"opterra/internal/opterra"
	"opterra/internal/repository"
	"opterra/internal/server"
	"opterra/internal/service"

	"github.com/spf13/viper"

	_ "opterra/docs" // swagger docs
)

const defaultMonitorTick = 1 * time.Hour

// @title           Opterra Assessment API
// @version         1.0
// @description     Water-heater inspection scoring, repair planning, and audit API.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(repos, scoringConfig(), authConfig())
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the aging monitor (via composed service)
	go services.AgingMonitor.Run(ctx, monitorTick())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// scoringConfig starts from the engine defaults and applies any policy
// overrides present in the config file.
func scoringConfig() opterra.Config {
	cfg := opterra.DefaultConfig()
	if viper.IsSet("scoring.tier_normal_min") {
		cfg.TierNormalMin = viper.GetInt("scoring.tier_normal_min")
	}
	if viper.IsSet("scoring.tier_elevated_min") {
		cfg.TierElevatedMin = viper.GetInt("scoring.tier_elevated_min")
	}
	if viper.IsSet("scoring.replace_failure_pct") {
		cfg.ReplaceFailurePct = viper.GetFloat64("scoring.replace_failure_pct")
	}
	if viper.IsSet("scoring.repair_failure_pct") {
		cfg.RepairFailurePct = viper.GetFloat64("scoring.repair_failure_pct")
	}
	return cfg
}

func authConfig() service.AuthConfig {
	return service.AuthConfig{
		SigningKey: viper.GetString("auth.signing_key"),
		TokenTTL:   time.Duration(viper.GetInt("auth.token_ttl_min")) * time.Minute,
	}
}

func monitorTick() time.Duration {
	if s := viper.GetInt("monitor.tick_sec"); s > 0 {
		return time.Duration(s) * time.Second
	}
	return defaultMonitorTick
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "opterra.db")
		dbPath = "opterra.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
