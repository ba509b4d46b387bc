package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/automatenwerk/stockpilot/internal/config"
	"github.com/automatenwerk/stockpilot/internal/pipeline"
	"github.com/automatenwerk/stockpilot/internal/repository/postgres"
	"github.com/automatenwerk/stockpilot/pkg/logger"
)

type ctxKey string

const dbKey ctxKey = "db"

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string (defaults to the DB_* settings)",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing suppliers.csv and articles.csv",
		Value:   "./data/seeds/master_data",
		EnvVars: []string{"SEED_DATA_DIR"},
	}
}

func newSalesDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "sales-dir",
		Usage:   "Directory containing daily sales CSV/XLSX files",
		Value:   "./data/seeds/sales",
		EnvVars: []string{"SALES_DIR"},
	}
}

func initDB(c *cli.Context) error {
	dbURL := c.String("db-url")
	if dbURL == "" {
		dbURL = config.Load().Database.URL()
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*sql.DB, error) {
	db, ok := c.Context.Value(dbKey).(*sql.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database connection not initialized")
	}
	return db, nil
}

func main() {
	logger.Setup(os.Getenv("GIN_MODE"), os.Stderr)

	app := &cli.App{
		Name:  "seed",
		Usage: "Prepare the stockpilot database",
		Flags: []cli.Flag{
			newDBURLFlag(),
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
			{
				Name:  "master",
				Usage: "Seed suppliers and articles",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newDataDirFlag(),
					&cli.BoolFlag{
						Name:  "sample",
						Usage: "Seed the built-in sample catalog and sales instead of CSV files",
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runMaster,
			},
			{
				Name:  "sales",
				Usage: "Import daily sales files from a directory",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newSalesDirFlag(),
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of files imported concurrently",
						Value: pipeline.DefaultImportConfig().WorkerCount,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: runSales,
			},
			{
				Name:  "all",
				Usage: "Migrate, seed master data and import sales",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newDataDirFlag(),
					newSalesDirFlag(),
					&cli.BoolFlag{
						Name:  "sample",
						Usage: "Seed the built-in sample catalog and sales instead of CSV files",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of files imported concurrently",
						Value: pipeline.DefaultImportConfig().WorkerCount,
					},
				},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					if err := runMigrate(c); err != nil {
						return fmt.Errorf("error running migration: %w", err)
					}
					if err := runMaster(c); err != nil {
						return fmt.Errorf("error running master seed: %w", err)
					}
					if c.Bool("sample") {
						return nil
					}
					if err := runSales(c); err != nil {
						return fmt.Errorf("error running sales import: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func runMigrate(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	if err := postgres.FromSQL(db, "pgx").Migrate(c.Context); err != nil {
		return err
	}
	log.Info().Msg("Schema applied")
	return nil
}

func runSales(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	repos := postgres.FromSQL(db, "pgx").Repositories()
	cfg := pipeline.DefaultImportConfig()
	if workers := c.Int("workers"); workers > 0 {
		cfg.WorkerCount = workers
	}
	if dir := config.Load().App.DataDir; dir != "" {
		cfg.TempDir = filepath.Join(dir, "intermediate", "sales")
	}

	start := time.Now()
	run, err := pipeline.NewImporter(repos.Articles, repos.Sales, cfg).ImportDir(c.Context, c.String("sales-dir"))
	if err != nil {
		return err
	}

	for _, f := range run.Failed() {
		log.Warn().Str("file", f.FilePath).Str("error", f.ErrorMessage).Msg("File not imported")
	}
	log.Info().
		Str("status", string(run.Status)).
		Int("files", len(run.Files)).
		Int("rows", run.TotalRows).
		Int("skipped", run.Skipped).
		Dur("took", time.Since(start)).
		Msg("Sales import finished")

	if run.Status == pipeline.StatusFailed {
		return fmt.Errorf("sales import failed")
	}
	return nil
}
