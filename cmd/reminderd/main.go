package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/remindkit/reminderd/internal/config"
	"github.com/remindkit/reminderd/internal/database"
	"github.com/remindkit/reminderd/internal/engine"
	"github.com/remindkit/reminderd/internal/notify"
	"github.com/remindkit/reminderd/internal/repository"
	"github.com/remindkit/reminderd/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "reminderd",
		Usage: "Reminder scheduling and recurrence-recovery engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Sources: cli.EnvVars("LOG_LEVEL"),
				Value:   "info",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			lvl, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("parse log level: %w", err)
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
				With().
				Timestamp().
				Logger().
				Level(lvl)
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			diagnoseCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("reminderd failed")
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the scheduling engine and its operational HTTP endpoints",
		Action: func(ctx context.Context, _ *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.DatabaseURI == "" {
				return fmt.Errorf("DATABASE_URI is required")
			}

			db, err := database.New(ctx, cfg.DatabaseURI)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer db.Close()
			log.Info().Msg("connected to database")

			if err := db.Migrate(ctx); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			notifier, err := buildNotifier(cfg)
			if err != nil {
				return err
			}

			reminderRepo := repository.NewReminderRepository(db)
			userRepo := repository.NewUserRepository(db)

			eng := engine.New(reminderRepo, userRepo, notifier, engine.Config{
				PollInterval:    cfg.PollInterval,
				LookBack:        cfg.LookBack,
				AuditEvery:      cfg.AuditInterval,
				AuditLookBack:   cfg.AuditLookBack,
				DispatchTimeout: cfg.DispatchTimeout,
			}, log.With().Str("component", "engine").Logger())

			go eng.Start(ctx)

			srv := server.New(cfg.HTTPAddr, eng, reminderRepo, userRepo, db, log.With().Str("component", "http").Logger())
			return srv.Run(ctx)
		},
	}
}

func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	switch cfg.Notifier {
	case "telegram":
		if cfg.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is required for the telegram notifier")
		}
		return notify.NewTelegramNotifier(cfg.TelegramToken)
	case "console":
		return notify.NewConsoleNotifier(log.With().Str("component", "notify").Logger()), nil
	}
	return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
}

func diagnoseCommand() *cli.Command {
	return &cli.Command{
		Name:  "diagnose",
		Usage: "Check environment and database connectivity",
		Action: func(ctx context.Context, _ *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			fmt.Println("Environment check:")
			fmt.Printf("  DATABASE_URI:   %s\n", present(cfg.DatabaseURI != ""))
			fmt.Printf("  TELEGRAM_TOKEN: %s\n", present(cfg.TelegramToken != ""))
			fmt.Printf("  notifier:       %s\n", cfg.Notifier)
			fmt.Println()
			fmt.Println("Scheduler settings:")
			fmt.Printf("  poll interval:   %s\n", cfg.PollInterval)
			fmt.Printf("  look back:       %s\n", cfg.LookBack)
			fmt.Printf("  audit interval:  %s\n", cfg.AuditInterval)
			fmt.Printf("  audit look back: %s\n", cfg.AuditLookBack)
			fmt.Println()

			if cfg.DatabaseURI == "" {
				fmt.Println("Database: skipped (no DATABASE_URI)")
				return nil
			}

			db, err := database.New(ctx, cfg.DatabaseURI)
			if err != nil {
				fmt.Printf("Database: unreachable (%v)\n", err)
				return nil
			}
			defer db.Close()
			fmt.Println("Database: reachable")
			return nil
		},
	}
}

func present(ok bool) string {
	if ok {
		return "present"
	}
	return "MISSING"
}
