package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/trailteams-backend/pkg/config"
	"github.com/angelmondragon/trailteams-backend/pkg/db"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
	"github.com/angelmondragon/trailteams-backend/pkg/migrate"
)

type options struct {
	dir     string
	name    string
	version string
}

type offlineCommand func(opts options) (string, error)

type dbCommand func(ctx context.Context, client *db.Client, runner *migrate.Runner, opts options) error

// offlineCommands run without a database connection.
var offlineCommands = map[string]offlineCommand{
	"create": func(opts options) (string, error) {
		if opts.name == "" {
			return "", fmt.Errorf("missing -name for create")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return "", err
		}
		return "created migration: " + path, nil
	},
	"validate": func(opts options) (string, error) {
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return "", err
		}
		return "migration validation passed", nil
	},
}

var dbCommands = map[string]dbCommand{
	"up":     gooseCommand("up"),
	"down":   gooseCommand("down"),
	"status": gooseCommand("status"),
	"version": func(ctx context.Context, _ *db.Client, runner *migrate.Runner, opts options) error {
		if opts.version == "" {
			return fmt.Errorf("missing -version for version command")
		}
		return runner.To(ctx, opts.version)
	},
	// sync builds the schema from the gorm models; used for local sqlite files.
	"sync": func(_ context.Context, client *db.Client, _ *migrate.Runner, _ options) error {
		return migrate.SyncModels(client.DB())
	},
}

func gooseCommand(name string) dbCommand {
	return func(ctx context.Context, _ *db.Client, runner *migrate.Runner, _ options) error {
		return runner.Run(ctx, name)
	}
}

func commandNames() string {
	names := make([]string, 0, len(offlineCommands)+len(dbCommands))
	for name := range offlineCommands {
		names = append(names, name)
	}
	for name := range dbCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "|")
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: "+commandNames())
	var opts options
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	cfg, err := config.Load()
	exitOn(context.Background(), logg, "load config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": opts.dir,
	})

	if run, ok := offlineCommands[*cmd]; ok {
		msg, err := run(opts)
		exitOn(ctx, logg, *cmd, err)
		fmt.Println(msg)
		return
	}

	run, ok := dbCommands[*cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown -cmd %q, expected one of %s\n", *cmd, commandNames())
		os.Exit(2)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	exitOn(ctx, logg, "connect database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	exitOn(ctx, logg, "open sql handle", err)

	runner, err := migrate.NewRunner(sqlDB, opts.dir, dbClient.Dialect(), logg)
	exitOn(ctx, logg, "build runner", err)

	ctx = logg.WithField(ctx, "dialect", dbClient.Dialect())
	logg.Info(ctx, "migrate ready")
	exitOn(ctx, logg, *cmd, run(ctx, dbClient, runner, opts))
	logg.Info(ctx, "migrate finished")
}

func exitOn(ctx context.Context, logg *logger.Logger, step string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("migrate %s failed", step), err)
	os.Exit(1)
}
