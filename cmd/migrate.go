package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"asana-swit-backend/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the userdata table",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := store.Migrate(context.Background()); err != nil {
		return err
	}
	log.Println("Миграция базы данных выполнена")
	return nil
}
