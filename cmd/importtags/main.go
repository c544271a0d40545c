package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tagging/internal/importer"
	"tagging/internal/shared/config"
	"tagging/internal/shared/database"
	"tagging/internal/tagevents"
	"tagging/pkg/cache"
	"tagging/pkg/logger"
)

const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return exitCode(cmd.ExecuteContext(ctx), stderr)
}

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "Interrupted.")
		return exitInterrupted
	default:
		return exitError
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("IMPORTTAGS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "importtags tagfile [tagfile ...]",
		Short: "Import tags and synonyms from text files",
		Long: `Installs the named tag files in the database.

Each non-empty line holds whitespace separated words. The first word names a
tag and every word on the line, the first included, becomes a synonym for it.
A synonym that already belongs to another tag is left untouched.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintf(stderr, "Error: %s.\n", capitalize(importer.ErrNoFiles.Error()))
				return importer.ErrNoFiles
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := importer.Options{
				Database:     v.GetString("database"),
				Transactions: !v.GetBool("no-transactions"),
				Commit:       true,
				Verbosity:    v.GetInt("verbosity"),
				Traceback:    v.GetBool("traceback"),
				Stdout:       stdout,
				Stderr:       stderr,
			}
			return run(cmd.Context(), opts, args, stderr)
		},
	}

	flags := cmd.Flags()
	flags.String("database", config.DefaultDatabaseAlias, "Nominates a specific database to load tags into")
	flags.Bool("no-transactions", false, "Import every line on its own instead of in one transaction")
	flags.IntP("verbosity", "v", 1, "Verbosity level; 0=minimal output, 1=normal output, 2=verbose output, 3=very verbose output")
	flags.Bool("traceback", false, "Print the error chain when the import fails")
	_ = v.BindPFlags(flags)

	return cmd
}

func run(ctx context.Context, opts importer.Options, files []string, stderr io.Writer) error {
	cfg := config.Load()

	level := slog.LevelWarn.String()
	if opts.Verbosity >= 2 {
		level = slog.LevelDebug.String()
	}
	log := logger.NewWithWriter(stderr, level)
	logger.SetDefault(log)

	db, err := database.Open(ctx, cfg, opts.Database)
	if err != nil {
		return setupFailed(stderr, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := database.Migrate(db.WithContext(ctx)); err != nil {
		return setupFailed(stderr, fmt.Errorf("failed to run migrations: %w", err))
	}

	var cacheService cache.Service
	if cfg.Redis.Enabled {
		rdb, err := database.ConnectRedis(ctx, cfg)
		if err != nil {
			log.Warn("Tag cache unavailable; cached lookups may be stale until they expire", "error", err.Error())
		} else {
			defer rdb.Close()
			cacheService = cache.NewService(rdb)
		}
	}

	publisher, err := tagevents.NewPublisher(cfg.Kafka, log)
	if err != nil {
		log.Warn("Tag event publisher unavailable", "error", err.Error())
		publisher = tagevents.NopPublisher{}
	}
	defer publisher.Close()

	_, err = importer.New(db, opts, cacheService, publisher, log).Run(ctx, files)
	return err
}

func setupFailed(stderr io.Writer, err error) error {
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
