package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"chatportal/internal/app"
	"chatportal/pkg/config"
	"chatportal/pkg/logger"
)

// version is set via ldflags during release builds.
var version = "dev"

func main() {
	_ = godotenv.Load(".env")
	addrVal, dbVal, cfgVal, setFlags := config.ParseCommandFlags()

	eff, err := config.LoadEffective(cfgVal)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	// flags win over env/config when explicitly set
	if setFlags["addr"] {
		eff.Addr = addrVal
		eff.Source = "flags"
	}
	dbPath := eff.Config.Server.DBPath
	if dbPath == "" || setFlags["db"] {
		dbPath = dbVal
	}

	logger.Init(eff.Config.Logging.Level)
	logger.Log.Info("starting_chatportal",
		zap.String("version", version),
		zap.String("addr", eff.Addr),
		zap.String("db", dbPath),
		zap.String("config_source", eff.Source),
	)

	a, err := app.New(eff, dbPath, version)
	if err != nil {
		logger.Log.Fatal("startup_failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx); err != nil {
		logger.Log.Error("server_error", zap.Error(err))
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Shutdown(shutCtx); err != nil {
		logger.Log.Error("shutdown_error", zap.Error(err))
	}
	logger.Log.Info("chatportal_stopped")
}
