package main

import (
	"fmt"
	"os"

	"github.com/bookshelf-api/bookshelf/pkg/config"
	"github.com/bookshelf-api/bookshelf/pkg/database"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	// connect is deferred to each command so that --help works without a
	// reachable database.
	var db *bun.DB
	connect := func() error {
		if db != nil {
			return nil
		}
		db, err = database.New(cfg)
		return err
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	app := &cli.App{
		Name:        "dbcheck",
		Usage:       "CLI to check the books database",
		Description: "Verifies that the configured database is reachable and that the books table is usable",
		Commands: []*cli.Command{
			{
				Name:  "ping",
				Usage: "connect to the database",
				Action: func(_ *cli.Context) error {
					if err := connect(); err != nil {
						return err
					}
					fmt.Printf("Connected to %s database %q\n", cfg.DatabaseDriver, cfg.DatabaseName)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "check the books table and print its row count",
				Action: func(c *cli.Context) error {
					if err := connect(); err != nil {
						return err
					}
					count, err := database.CheckBooksTable(c.Context, db)
					if err != nil {
						return err
					}
					fmt.Printf("books table OK: %d rows\n", count)
					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}
