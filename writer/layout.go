// Package writer persists facts as text files laid out by namespace.
//
// A dotted name maps to nested directories; each fact file holds exactly
// one fact, compact or pretty-printed, followed by a newline:
//
//	com/acme/package.pl      package_declaration('com.acme', [...]).
//	com/acme/Widget.pl       class('Widget', 'com.acme', ...).
//	com/acme/api/module.pl   module('com.acme.api', ...).
//	package_index.pl         package_index([...]).
package writer

import (
	"path"
	"strings"

	"github.com/teranos/logifact/term"
)

// Extension is appended to every fact file.
const Extension = ".pl"

// File base names for scope summaries.
const (
	PackageFile = "package"
	ModuleFile  = "module"
)

// NamespaceDir maps a dotted name onto a slash-separated relative
// directory. The empty name maps to the root ("").
func NamespaceDir(name string) string {
	if name == "" {
		return ""
	}
	return strings.ReplaceAll(name, ".", "/")
}

// ModulePath is the relative path of a module's fact file.
func ModulePath(module string) string {
	return path.Join(NamespaceDir(module), ModuleFile+Extension)
}

// PackagePath is the relative path of a package's fact file.
func PackagePath(pkg string) string {
	return path.Join(NamespaceDir(pkg), PackageFile+Extension)
}

// TypePath is the relative path of a type's fact file.
func TypePath(pkg, name string) string {
	return path.Join(NamespaceDir(pkg), name+Extension)
}

// IndexPath is the relative path of an index fact file.
func IndexPath(name string) string {
	return name + Extension
}

// Renderer turns a fact into file content.
type Renderer func(*term.Compound) string

// Compact renders a fact on one line.
func Compact(c *term.Compound) string {
	return c.Fact() + "\n"
}

// Pretty renders a fact indented with the given unit.
func Pretty(indent string) Renderer {
	p := term.NewPrinter(indent)
	return func(c *term.Compound) string {
		return p.Print(c) + "\n"
	}
}
