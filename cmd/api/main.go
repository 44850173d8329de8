package main

import (
	"fmt"
	"os"

	"learnhub/internal/client"
	"learnhub/internal/config"
	"learnhub/internal/logger"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "learnhub",
		Short:         "LearnHub - paid courses and course update notifications",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(workerCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func newApp() (*app, error) {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDBClient(cfg.Database)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	if cfg.Environment.IsProduction() && cfg.Database.Driver == "sqlite" {
		log.Warn("running production on sqlite, set DB_DRIVER=mysql")
	}

	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
