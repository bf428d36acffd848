package db

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/logger"
)

// SQLiteBusyTimeoutMS is how long a writer waits on a locked database.
const SQLiteBusyTimeoutMS = 5000

// Open opens a SQLite database at the specified path with WAL, foreign keys
// and a busy timeout. If logger is provided, logs database operations;
// otherwise operates silently.
func Open(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	if log != nil {
		log.Debugw("Opening fact store", logger.FieldPath, path)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %s", path)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to apply %q", p)
		}
	}

	if log != nil {
		log.Infow("Fact store opened",
			logger.FieldPath, path,
			"wal_mode", true,
			"foreign_keys", true,
		)
	}
	return db, nil
}

// OpenWithMigrations opens the database and applies pending migrations.
func OpenWithMigrations(path string, log *zap.SugaredLogger) (*sql.DB, error) {
	db, err := Open(path, log)
	if err != nil {
		return nil, errors.Wrap(err, "open fact store")
	}
	if err := Migrate(db, log); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate fact store")
	}
	return db, nil
}
