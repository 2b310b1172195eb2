package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/pharmacy/internal/adapter/console"
	"github.com/rl1809/pharmacy/internal/adapter/storage"
	"github.com/rl1809/pharmacy/internal/config"
	"github.com/rl1809/pharmacy/internal/core/service"
)

func main() {
	// .env is optional; system environment wins when both are set.
	_ = godotenv.Load()
	cfg := config.Load()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.WithError(err).Fatal("failed to open mysql")
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.WithError(err).Fatal("failed to ping mysql")
	}
	log.Info("connected to mysql")

	store := storage.NewMySQLStore(db)
	orderService := service.NewOrderService(store, log)
	menu := console.NewMenu(os.Stdin, os.Stdout, store, store, store, store, orderService, log)

	if err := menu.Run(ctx); err != nil && ctx.Err() == nil {
		log.WithError(err).Fatal("menu terminated")
	}
	log.Info("shutting down")
}
