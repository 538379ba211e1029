package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/safar/storefront/internal/auth"
	"github.com/safar/storefront/internal/config"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/kvstore"
	"github.com/safar/storefront/internal/logging"
	"github.com/safar/storefront/internal/session"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "ice, water and gas storefront with its admin console",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP server",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply or roll back database migrations",
				Subcommands: []*cli.Command{
					{Name: "up", Usage: "apply all pending migrations", Action: migrate("up")},
					{Name: "down", Usage: "roll back every migration", Action: migrate("down")},
				},
			},
			{
				Name:   "seed",
				Usage:  "replace the catalog with the seed products",
				Action: seed,
			},
			{
				Name:      "hash-password",
				Usage:     "print a bcrypt hash for ADMIN_PASSWORD_HASH",
				ArgsUsage: "<password>",
				Action:    hashPassword,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// openStore connects to Postgres when a database URL is configured and
// falls back to process memory otherwise. The returned db may be nil.
func openStore(cfg *config.Config, log logrus.FieldLogger) (kvstore.Store, *sqlx.DB, error) {
	if cfg.Database.URL == "" {
		log.Warn("DATABASE_URL not set, keeping state in memory")
		return kvstore.NewMemory(), nil, nil
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	log.Info("connected to database")
	return kvstore.NewPostgres(db), db, nil
}

func migrate(direction string) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		if cfg.Database.URL == "" {
			return errors.New("DATABASE_URL is required to migrate")
		}

		version, err := database.Migrate(cfg.Database.URL, direction)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"direction": direction, "version": version}).Info("migrations applied")
		return nil
	}
}

func seed(c *cli.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	kv, db, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	ctx := context.Background()
	ctl, err := session.New(ctx, session.Options{KV: kv, Location: cfg.Store.Location(), Log: log})
	if err != nil {
		return err
	}
	if err := ctl.ResetCatalog(ctx); err != nil {
		return fmt.Errorf("reset catalog: %w", err)
	}

	log.WithField("products", len(ctl.Products())).Info("catalog seeded")
	return nil
}

func hashPassword(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: storefront hash-password <password>", 2)
	}

	hash, err := auth.HashPassword(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
