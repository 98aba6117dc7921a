package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/angelmondragon/trailteams-backend/pkg/logger"
)

const (
	DefaultDir = "pkg/migrate/migrations"
	// EmbeddedDir selects the migrations compiled into the binary.
	EmbeddedDir = "migrations"

	runTimeout = 5 * time.Minute
)

//go:embed migrations/*.sql
var embedded embed.FS

// Runner applies goose migrations from one directory to one database.
type Runner struct {
	db      *sql.DB
	dir     string
	dialect string
	logg    *logger.Logger
}

// NewRunner accepts gorm dialector names ("postgres", "sqlite") as well as
// goose dialect names.
func NewRunner(db *sql.DB, dir, dialect string, logg *logger.Logger) (*Runner, error) {
	if db == nil {
		return nil, errors.New("migrate: db is required")
	}
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("migrate: dir is required")
	}
	return &Runner{db: db, dir: dir, dialect: gooseDialect(dialect), logg: logg}, nil
}

func gooseDialect(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return "postgres"
	}
}

// goose keeps its dialect and filesystem in package state, so every call
// re-applies both before running.
func (r *Runner) prepare() error {
	if r.dir == EmbeddedDir {
		goose.SetBaseFS(embedded)
	} else {
		goose.SetBaseFS(nil)
	}
	if err := goose.SetDialect(r.dialect); err != nil {
		return fmt.Errorf("set goose dialect %s: %w", r.dialect, err)
	}
	return nil
}

// Run executes a named goose command (up, down, status, redo, ...).
func (r *Runner) Run(ctx context.Context, command string, args ...string) error {
	if err := r.prepare(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	r.info(ctx, "goose "+command)
	if err := goose.RunContext(ctx, command, r.db, r.dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// To moves the schema up or down to version (YYYYMMDDHHMMSS, or 0 for empty).
func (r *Runner) To(ctx context.Context, version string) error {
	target, err := strconv.ParseInt(strings.TrimSpace(version), 10, 64)
	if err != nil || target < 0 {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS)", version)
	}
	if err := r.prepare(); err != nil {
		return err
	}

	current, err := goose.GetDBVersion(r.db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}
	if current == target {
		r.info(ctx, fmt.Sprintf("schema already at version %d", target))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if current < target {
		r.info(ctx, fmt.Sprintf("migrating up from %d to %d", current, target))
		err = goose.UpToContext(ctx, r.db, r.dir, target)
	} else {
		r.info(ctx, fmt.Sprintf("migrating down from %d to %d", current, target))
		err = goose.DownToContext(ctx, r.db, r.dir, target)
	}
	if err != nil {
		return fmt.Errorf("goose to %d: %w", target, err)
	}
	return nil
}

// Version reports the version recorded in the goose table.
func (r *Runner) Version() (int64, error) {
	if err := r.prepare(); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(r.db)
}

func (r *Runner) info(ctx context.Context, msg string) {
	if r.logg != nil {
		r.logg.Info(r.logg.WithField(ctx, "migrations_dir", r.dir), msg)
	}
}
