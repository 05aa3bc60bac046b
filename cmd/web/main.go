package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/AdamBeresnev/prompt-tournament/internal/config"
	"github.com/AdamBeresnev/prompt-tournament/internal/db"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cliApp := &cli.App{
		Name:  "prompt-tournament",
		Usage: "single elimination tournaments for prompts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"CONFIG_FILE"},
			},
		},
		Commands: []*cli.Command{
			newServeCommand(),
			newMigrateCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.Logging.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, logger, err := loadConfig(c)
			if err != nil {
				return err
			}

			app, err := newApplication(cfg, logger)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Serve(c.Context)
		},
	}
}

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(c *cli.Context) error {
					cfg, _, err := loadConfig(c)
					if err != nil {
						return err
					}
					database, err := db.InitDB(cfg.Database)
					if err != nil {
						return err
					}
					defer database.Close()

					if err := db.RunMigrations(database); err != nil {
						return err
					}
					fmt.Println("Migrations applied")
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(c *cli.Context) error {
					cfg, _, err := loadConfig(c)
					if err != nil {
						return err
					}
					database, err := db.InitDB(cfg.Database)
					if err != nil {
						return err
					}
					defer database.Close()

					if err := db.RollbackMigrations(database, c.Int("steps")); err != nil {
						return err
					}
					fmt.Printf("Rolled back %d migration(s)\n", c.Int("steps"))
					return nil
				},
			},
		},
	}
}
