package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pressly/goose/v3"
)

var migrationNameRe = regexp.MustCompile(`^\d{14}_[a-z0-9_]+\.sql$`)

var requiredAnnotations = []string{"-- +goose Up", "-- +goose Down"}

// ValidateDir checks that every SQL file in dir is a timestamped goose
// migration with both directions. goose itself rejects duplicate versions.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	names, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return fmt.Errorf("list %q: %w", dir, err)
	}
	for _, path := range names {
		if name := filepath.Base(path); !migrationNameRe.MatchString(name) {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
	}
	if len(names) == 0 {
		return nil
	}

	goose.SetBaseFS(nil)
	migrations, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
	if err != nil {
		return fmt.Errorf("collect migrations: %w", err)
	}
	for _, m := range migrations {
		body, err := os.ReadFile(m.Source)
		if err != nil {
			return fmt.Errorf("read %q: %w", m.Source, err)
		}
		for _, annotation := range requiredAnnotations {
			if !strings.Contains(string(body), annotation) {
				return fmt.Errorf("migration %q missing %q", filepath.Base(m.Source), annotation)
			}
		}
	}
	return nil
}
