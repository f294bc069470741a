package main

import (
	"cloud.google.com/go/profiler"
	"context"
	"fmt"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tracktivity-app/tracktivity-backend/internal/app"
	"github.com/tracktivity-app/tracktivity-backend/pkg/analytics"
	"github.com/tracktivity-app/tracktivity-backend/pkg/environment"
	"github.com/tracktivity-app/tracktivity-backend/pkg/logger"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Version is overwritten at build time with -ldflags "-X main.Version=..."
var Version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	err := rootCmd().ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "tracktivity",
		Short:         "Productivity analytics backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the process environment")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), envFile)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the database indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), envFile)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", app.ServiceName, Version)
		},
	})

	return cmd
}

type closableLogger interface {
	logger.Interface
	Close() error
}

func setup(ctx context.Context, envFile string) (*environment.Environment, closableLogger, error) {
	env, err := environment.Load(envFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not load environment")
	}

	if env.IsProduction() && env.GCPProjectID != "" {
		cloudLogger, err := logger.NewGoogleCloudLogger(ctx, env.GCPProjectID, app.ServiceName)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not create cloud logger")
		}

		return env, cloudLogger, nil
	}

	zapLogger, err := logger.New(env.IsProduction(), env.LogLevel)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not create logger")
	}

	return env, zapLogger, nil
}

func serve(ctx context.Context, envFile string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, log, err := setup(ctx, envFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Close()
	}()

	log.Info("Server is starting up...")

	if env.IsProduction() && env.GCPProjectID != "" {
		err = profiler.Start(profiler.Config{
			Service:        app.ServiceName,
			ServiceVersion: Version,
			ProjectID:      env.GCPProjectID,
		})
		if err != nil {
			log.Warning("Could not start profiler", err)
		}
	}

	analyticsConfig, err := analytics.LoadConfig(env.AnalyticsConfig)
	if err != nil {
		return err
	}

	deps, err := app.Connect(ctx, env, log)
	if err != nil {
		return err
	}
	defer func() {
		err := deps.Close(context.Background())
		if err != nil {
			log.Error("Could not close connections", err)
		}
	}()

	server := &http.Server{
		Addr:              ":" + env.Port,
		Handler:           app.NewHandler(env, deps, analyticsConfig, log),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	log.Info(fmt.Sprintf("Listening on port %s", env.Port))

	select {
	case err = <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func migrate(ctx context.Context, envFile string) error {
	env, log, err := setup(ctx, envFile)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Close()
	}()

	if env.DatabaseURL == app.MemoryDatabaseURL {
		return errors.New("migrate needs a database, DATABASE_URL is set to memory")
	}

	deps, err := app.Connect(ctx, env, log)
	if err != nil {
		return err
	}
	defer func() {
		_ = deps.Close(context.Background())
	}()

	err = deps.EnsureIndexes(ctx)
	if err != nil {
		return err
	}

	log.Info("Indexes created")
	return nil
}
