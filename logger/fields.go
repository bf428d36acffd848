package logger

import (
	"go.uber.org/zap"
)

// Standard field names for structured logging across logifact.
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"

	// Program model
	FieldModule    = "module"
	FieldPackage   = "package"
	FieldType      = "type"
	FieldSymbol    = "symbol"
	FieldKind      = "kind"
	FieldNamespace = "namespace"

	// Output
	FieldPath  = "path"
	FieldMode  = "mode"
	FieldFacts = "facts"

	FieldDurationMS = "duration_ms"
	FieldCount      = "count"
	FieldError      = "error"
	FieldFile       = "file"
	FieldHost       = "host"
)

// ComponentLogger returns a named child of the global logger.
// This is the preferred way to get a logger for dependency injection.
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
