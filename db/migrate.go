package db

import (
	"database/sql"
	"embed"
	"path"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/logifact/errors"
)

//go:embed sqlite/migrations/*.sql
var migrations embed.FS

const migrationsDir = "sqlite/migrations"

// Migrate runs all pending migrations in file-name order.
// If logger is provided, logs migration progress; otherwise operates silently.
func Migrate(db *sql.DB, log *zap.SugaredLogger) error {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return errors.Wrap(err, "read migrations")
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	applied := 0
	for _, filename := range files {
		version := strings.Split(filename, "_")[0]

		// schema_migrations only exists once 000 has run
		var exists bool
		err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = ?)", version).Scan(&exists)
		if err != nil {
			if version != "000" {
				return errors.Wrapf(err, "schema_migrations unreadable before %s", filename)
			}
		} else if exists {
			if log != nil {
				log.Debugw("Skipping migration (already applied)", "migration", filename)
			}
			continue
		}

		sqlBytes, err := migrations.ReadFile(path.Join(migrationsDir, filename))
		if err != nil {
			return errors.Wrapf(err, "read %s", filename)
		}

		if log != nil {
			log.Infow("Applying migration", "migration", filename, "version", version)
		}

		tx, err := db.Begin()
		if err != nil {
			return errors.Wrapf(err, "begin tx for %s", filename)
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "execute %s", filename)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "record %s", filename)
		}
		if err := tx.Commit(); err != nil {
			return errors.Wrapf(err, "commit %s", filename)
		}
		applied++
	}

	if log != nil {
		log.Infow("Migrations complete", "total_migrations", len(files), "applied", applied)
	}
	return nil
}
