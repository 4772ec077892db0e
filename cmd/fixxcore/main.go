// @title			FixxCore API
// @version		1.0
// @description	Task marketplace core: task lifecycle, offers, bookings and the completion handshake.
// @BasePath		/api/v1

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"github.com/fixxhq/fixxcore/internal/config"
	"github.com/fixxhq/fixxcore/internal/database"
	"github.com/fixxhq/fixxcore/internal/handler"
	"github.com/fixxhq/fixxcore/internal/logger"
	"github.com/fixxhq/fixxcore/internal/notify"
	"github.com/fixxhq/fixxcore/internal/repository"
	"github.com/fixxhq/fixxcore/internal/service"
)

func main() {
	app := &cli.App{
		Name:  "fixxcore",
		Usage: "Task marketplace backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
				},
				Action: runServe,
			},
			{
				Name:  "replenish-fixbits",
				Usage: "Run the FixBits replenishment worker",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "schedule",
						Aliases: []string{"s"},
						Value:   config.DefaultReplenishSchedule,
						Usage:   "Cron schedule for replenishment passes",
						EnvVars: []string{"REPLENISH_SCHEDULE"},
					},
				},
				Action: runReplenishFixBits,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}
	databaseURL := c.String("database-url")

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	h := handler.New(db.Pool(), notify.NewLogNotifier())

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func runReplenishFixBits(c *cli.Context) error {
	ctx := c.Context
	databaseURL := c.String("database-url")
	schedule := c.String("schedule")

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	profileRepo := repository.NewProfileRepository(db.Pool())
	replenishRepo := repository.NewReplenishmentRepository(db.Pool())
	fixBits := service.NewFixBitsService(db.Pool(), profileRepo, replenishRepo)

	// One pass right away, then on the cron schedule.
	if _, err := fixBits.ProcessDueReplenishments(ctx); err != nil {
		slog.Error("replenishment pass failed", "error", err)
	}

	runner := cron.New()
	_, err = runner.AddFunc(schedule, func() {
		if _, err := fixBits.ProcessDueReplenishments(context.Background()); err != nil {
			slog.Error("replenishment pass failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	runner.Start()
	slog.Info("fixbits replenishment worker started", "schedule", schedule)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	slog.Info("stopping fixbits replenishment worker")
	<-runner.Stop().Done()
	return nil
}
