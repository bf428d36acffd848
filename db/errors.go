package db

import (
	"strings"

	"github.com/teranos/logifact/errors"
)

// ErrDatabaseClosed is returned when a write reaches a store whose
// connection was already closed, typically a watch run racing shutdown.
var ErrDatabaseClosed = errors.New("database is closed")

// ErrNoActiveRun is returned when facts are written outside BeginRun/FinishRun.
var ErrNoActiveRun = errors.New("no active run")

// IsDatabaseClosed checks if an error indicates the database connection is
// closed, either our sentinel or the raw driver message.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	// the sql package returns its own unexported error for this
	return strings.Contains(err.Error(), "database is closed")
}
