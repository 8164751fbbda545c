// Command migrate applies the schema. Production servers never auto-migrate,
// so deployments run this first.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"journals/internal/config"
	"journals/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <auto|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close() }()

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "auto":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Println("automigrations applied")
	case "status":
		for _, model := range database.PersistentModels() {
			log.Printf("%T: table present=%t", model, db.Migrator().HasTable(model))
		}
	default:
		return usage()
	}
	return nil
}
