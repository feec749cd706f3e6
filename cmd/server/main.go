// Refacing estimator: prices cabinet refacing quotes over HTTP or from the
// command line.
//
// Usage:
//
//	estimator serve
//	estimator quote --file request.json --format text
//	estimator catalog import --file pricing.yaml
//	estimator catalog show
//	estimator migrate
//	estimator seed
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Simplici0/refacing-estimator/internal/catalog"
	"github.com/Simplici0/refacing-estimator/internal/config"
	"github.com/Simplici0/refacing-estimator/internal/db"
	"github.com/Simplici0/refacing-estimator/internal/invoice"
	"github.com/Simplici0/refacing-estimator/internal/logger"
	"github.com/Simplici0/refacing-estimator/internal/migrations"
	"github.com/Simplici0/refacing-estimator/internal/pricing"
	"github.com/Simplici0/refacing-estimator/internal/seed"
)

var version = "dev"

// app carries what every command needs once flags are resolved.
type app struct {
	cfg    config.Config
	log    *logger.Logger
	stdin  io.Reader
	stdout io.Writer
}

func main() {
	if err := newCLI(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCLI(stdin io.Reader, stdout io.Writer) *cli.App {
	a := &app{stdin: stdin, stdout: stdout}

	return &cli.App{
		Name:    "estimator",
		Usage:   "Cabinet refacing price estimator",
		Version: version,
		Writer:  stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env", Usage: "Environment (development, production); overrides APP_ENV"},
			&cli.StringFlag{Name: "db", Usage: "SQLite database path; overrides DB_PATH"},
			&cli.StringFlag{Name: "migrations", Usage: "Migrations directory; overrides MIGRATIONS_DIR"},
			&cli.StringFlag{Name: "catalog", Usage: "JSON or YAML pricing file; overrides CATALOG_PATH"},
			&cli.StringFlag{Name: "log-level", Usage: "Log level (debug, info, warn, error); overrides LOG_LEVEL"},
			&cli.StringFlag{Name: "log-format", Usage: "Log format (json, text); overrides LOG_FORMAT"},
		},
		Before: a.setup,
		After: func(c *cli.Context) error {
			if a.log != nil {
				return a.log.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			a.serveCommand(),
			a.quoteCommand(),
			a.catalogCommand(),
			a.migrateCommand(),
			a.seedCommand(),
		},
	}
}

func (a *app) setup(c *cli.Context) error {
	a.cfg = config.Load()
	override(c, "env", &a.cfg.Env)
	override(c, "db", &a.cfg.DBPath)
	override(c, "migrations", &a.cfg.MigrationsDir)
	override(c, "catalog", &a.cfg.CatalogPath)
	override(c, "log-level", &a.cfg.LogLevel)
	override(c, "log-format", &a.cfg.LogFormat)

	logCfg := logger.DefaultConfig()
	setIfPresent(&logCfg.Level, a.cfg.LogLevel)
	setIfPresent(&logCfg.Format, a.cfg.LogFormat)
	// stdout carries command output.
	logCfg.Output = "stderr"
	logCfg.Component = "estimator"
	logCfg.Environment = a.cfg.Env

	a.log = logger.New(logCfg)
	return nil
}

func override(c *cli.Context, flag string, field *string) {
	if c.IsSet(flag) {
		*field = c.String(flag)
	}
}

func setIfPresent(field *string, value string) {
	if value != "" {
		*field = value
	}
}

// =============================================================================
// SERVE
// =============================================================================

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API and the estimate form",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "Listen port; overrides PORT"},
			&cli.StringFlag{Name: "static", Usage: "Static files directory; overrides STATIC_DIR"},
		},
		Action: a.runServe,
	}
}

func (a *app) runServe(c *cli.Context) error {
	override(c, "port", &a.cfg.Port)
	override(c, "static", &a.cfg.StaticDir)

	cat, err := a.serveCatalog()
	if err != nil {
		return err
	}
	if cat.IsEmpty() {
		a.log.Warn("pricing catalog is empty; calculations will fail until one is imported")
	}

	srv := newServer(pricing.NewCalculator(cat, a.log.WithComponent("pricing").Logger), a.log.WithComponent("http"), a.cfg.StaticDir)
	httpServer := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.log.Info("listening", "addr", httpServer.Addr, "static_dir", a.cfg.StaticDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// serveCatalog loads the catalog for the server. In development without a
// pricing file the database is migrated and seeded first, all on one
// handle so an in-memory database keeps its rows until they are loaded.
func (a *app) serveCatalog() (*pricing.Catalog, error) {
	if !a.cfg.IsDev() || a.cfg.CatalogPath != "" {
		return a.loadCatalog()
	}

	database, err := a.openMigrated()
	if err != nil {
		return nil, err
	}
	defer database.Close()

	stats, err := seed.Run(database)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	a.log.Info("seeded catalog", "inserts", stats.Inserts)

	return catalog.NewStore(database).Load()
}

// =============================================================================
// QUOTE
// =============================================================================

func (a *app) quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Price a quote request read from a file or stdin",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Value:   "-",
				Usage:   "Path to the JSON request, or - for stdin",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "json",
				Usage: "Output format (json, text)",
			},
			&cli.BoolFlag{
				Name:  "internal",
				Usage: "Include installer cost and profit in text output",
			},
		},
		Action: a.runQuote,
	}
}

func (a *app) runQuote(c *cli.Context) error {
	format := c.String("format")
	if format != "json" && format != "text" {
		return fmt.Errorf("unknown format %q (want json or text)", format)
	}

	body, err := a.readInput(c.String("file"))
	if err != nil {
		return err
	}
	req, err := pricing.DecodeRequest(body)
	if err != nil {
		return err
	}

	cat, err := a.loadCatalog()
	if err != nil {
		return err
	}
	b, err := pricing.NewCalculator(cat, a.log.WithComponent("pricing").Logger).Calculate(req)
	if err != nil {
		return err
	}

	if format == "text" {
		return invoice.Render(a.stdout, b, invoice.Options{InternalDetails: c.Bool("internal")})
	}
	return a.printJSON(b)
}

func (a *app) readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request %s: %w", path, err)
	}
	return data, nil
}

// =============================================================================
// CATALOG
// =============================================================================

func (a *app) catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Manage the pricing catalog",
		Subcommands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Replace the stored catalog with a JSON or YAML file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the pricing file",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					cat, err := catalog.LoadFile(c.String("file"))
					if err != nil {
						return err
					}
					database, err := a.openMigrated()
					if err != nil {
						return err
					}
					defer database.Close()

					if err := catalog.NewStore(database).Import(cat); err != nil {
						return err
					}
					a.log.Info("imported catalog", "file", c.String("file"), "styles", len(cat.DoorPricing))
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Print the active catalog as JSON",
				Action: func(c *cli.Context) error {
					cat, err := a.loadCatalog()
					if err != nil {
						return err
					}
					return a.printJSON(cat)
				},
			},
		},
	}
}

// =============================================================================
// MIGRATE / SEED
// =============================================================================

func (a *app) migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations",
		Action: func(c *cli.Context) error {
			database, err := a.openMigrated()
			if err != nil {
				return err
			}
			defer database.Close()

			v, err := migrations.Version(database)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "schema version %d\n", v)
			return nil
		},
	}
}

func (a *app) seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Insert the default catalog rows that are missing",
		Action: func(c *cli.Context) error {
			database, err := a.openMigrated()
			if err != nil {
				return err
			}
			defer database.Close()

			stats, err := seed.Run(database)
			if err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}
			fmt.Fprintf(a.stdout, "inserted %d rows\n", stats.Inserts)
			return nil
		},
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func (a *app) openMigrated() (*sql.DB, error) {
	database, err := db.Open(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrations.Up(database, a.cfg.MigrationsDir); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	return database, nil
}

// loadCatalog reads the pricing file when one is configured and the database
// otherwise.
func (a *app) loadCatalog() (*pricing.Catalog, error) {
	if a.cfg.CatalogPath != "" {
		return catalog.LoadFile(a.cfg.CatalogPath)
	}

	database, err := db.Open(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	return catalog.NewStore(database).Load()
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
