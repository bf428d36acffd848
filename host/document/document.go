// Package document loads a program model described in a JSON, YAML or TOML
// file.
//
// The document mirrors the model tree: modules hold packages, packages hold
// members, and every member carries a kind tag that decides what it becomes
// (class, interface, enum, record, annotation_type, method, constructor,
// field, enum_constant, ...). Types are written as strings in source
// notation:
//
//	int   void   String[]   java.util.Map<K, java.util.List<V>>   ? extends Number
//
// A simple name that matches a type parameter in scope becomes a type
// variable. Unknown fields are rejected in every format.
package document

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teranos/logifact/errors"
)

// Document is the root of a model file.
type Document struct {
	Modules  []ModuleDoc  `json:"modules,omitempty" yaml:"modules,omitempty" toml:"modules,omitempty"`
	Packages []PackageDoc `json:"packages,omitempty" yaml:"packages,omitempty" toml:"packages,omitempty"`
	// Types are top-level types given outside any package entry; each names
	// its own package.
	Types []MemberDoc `json:"types,omitempty" yaml:"types,omitempty" toml:"types,omitempty"`
}

type ModuleDoc struct {
	Name        string          `json:"name" yaml:"name" toml:"name"`
	Modifiers   []string        `json:"modifiers,omitempty" yaml:"modifiers,omitempty" toml:"modifiers,omitempty"`
	Requires    []RequiresDoc   `json:"requires,omitempty" yaml:"requires,omitempty" toml:"requires,omitempty"`
	Exports     []ExportsDoc    `json:"exports,omitempty" yaml:"exports,omitempty" toml:"exports,omitempty"`
	Uses        []string        `json:"uses,omitempty" yaml:"uses,omitempty" toml:"uses,omitempty"`
	Provides    []ProvidesDoc   `json:"provides,omitempty" yaml:"provides,omitempty" toml:"provides,omitempty"`
	Packages    []PackageDoc    `json:"packages,omitempty" yaml:"packages,omitempty" toml:"packages,omitempty"`
	Annotations []AnnotationDoc `json:"annotations,omitempty" yaml:"annotations,omitempty" toml:"annotations,omitempty"`
	Doc         string          `json:"doc,omitempty" yaml:"doc,omitempty" toml:"doc,omitempty"`
}

type RequiresDoc struct {
	Module      string          `json:"module" yaml:"module" toml:"module"`
	Modifiers   []string        `json:"modifiers,omitempty" yaml:"modifiers,omitempty" toml:"modifiers,omitempty"`
	Annotations []AnnotationDoc `json:"annotations,omitempty" yaml:"annotations,omitempty" toml:"annotations,omitempty"`
}

type ExportsDoc struct {
	Package     string          `json:"package" yaml:"package" toml:"package"`
	To          []string        `json:"to,omitempty" yaml:"to,omitempty" toml:"to,omitempty"`
	Annotations []AnnotationDoc `json:"annotations,omitempty" yaml:"annotations,omitempty" toml:"annotations,omitempty"`
}

type ProvidesDoc struct {
	Service         string          `json:"service" yaml:"service" toml:"service"`
	Implementations []string        `json:"implementations" yaml:"implementations" toml:"implementations"`
	Annotations     []AnnotationDoc `json:"annotations,omitempty" yaml:"annotations,omitempty" toml:"annotations,omitempty"`
}

type PackageDoc struct {
	Name    string      `json:"name" yaml:"name" toml:"name"`
	Doc     string      `json:"doc,omitempty" yaml:"doc,omitempty" toml:"doc,omitempty"`
	Members []MemberDoc `json:"members,omitempty" yaml:"members,omitempty" toml:"members,omitempty"`
}

// MemberDoc is any declaration inside a package or type. Which fields apply
// depends on Kind.
type MemberDoc struct {
	Kind        string          `json:"kind" yaml:"kind" toml:"kind"`
	Name        string          `json:"name" yaml:"name" toml:"name"`
	Package     string          `json:"package,omitempty" yaml:"package,omitempty" toml:"package,omitempty"`
	Modifiers   []string        `json:"modifiers,omitempty" yaml:"modifiers,omitempty" toml:"modifiers,omitempty"`
	TypeParams  []TypeParamDoc  `json:"type_params,omitempty" yaml:"type_params,omitempty" toml:"type_params,omitempty"`
	Extends     string          `json:"extends,omitempty" yaml:"extends,omitempty" toml:"extends,omitempty"`
	Implements  []string        `json:"implements,omitempty" yaml:"implements,omitempty" toml:"implements,omitempty"`
	Permits     []string        `json:"permits,omitempty" yaml:"permits,omitempty" toml:"permits,omitempty"`
	Components  []ComponentDoc  `json:"components,omitempty" yaml:"components,omitempty" toml:"components,omitempty"`
	Members     []MemberDoc     `json:"members,omitempty" yaml:"members,omitempty" toml:"members,omitempty"`
	Returns     string          `json:"returns,omitempty" yaml:"returns,omitempty" toml:"returns,omitempty"`
	Params      []ParamDoc      `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
	Throws      []string        `json:"throws,omitempty" yaml:"throws,omitempty" toml:"throws,omitempty"`
	Type        string          `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Annotations []AnnotationDoc `json:"annotations,omitempty" yaml:"annotations,omitempty" toml:"annotations,omitempty"`
	Doc         string          `json:"doc,omitempty" yaml:"doc,omitempty" toml:"doc,omitempty"`
}

type TypeParamDoc struct {
	Name        string          `json:"name" yaml:"name" toml:"name"`
	Bounds      []string        `json:"bounds,omitempty" yaml:"bounds,omitempty" toml:"bounds,omitempty"`
	Annotations []AnnotationDoc `json:"annotations,omitempty" yaml:"annotations,omitempty" toml:"annotations,omitempty"`
}

type ComponentDoc struct {
	Name        string          `json:"name" yaml:"name" toml:"name"`
	Type        string          `json:"type" yaml:"type" toml:"type"`
	Annotations []AnnotationDoc `json:"annotations,omitempty" yaml:"annotations,omitempty" toml:"annotations,omitempty"`
}

type ParamDoc struct {
	Name        string          `json:"name" yaml:"name" toml:"name"`
	Type        string          `json:"type" yaml:"type" toml:"type"`
	Modifiers   []string        `json:"modifiers,omitempty" yaml:"modifiers,omitempty" toml:"modifiers,omitempty"`
	Annotations []AnnotationDoc `json:"annotations,omitempty" yaml:"annotations,omitempty" toml:"annotations,omitempty"`
}

type AnnotationDoc struct {
	Name string   `json:"name" yaml:"name" toml:"name"`
	Args []ArgDoc `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty"`
}

// ArgDoc is an annotation element value. Kind is one of bool, int, float,
// char, string, type, enum, annotation or array; when empty it is inferred
// from the decoded Value.
type ArgDoc struct {
	Name       string         `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Kind       string         `json:"kind,omitempty" yaml:"kind,omitempty" toml:"kind,omitempty"`
	Value      interface{}    `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Annotation *AnnotationDoc `json:"annotation,omitempty" yaml:"annotation,omitempty" toml:"annotation,omitempty"`
	Values     []ArgDoc       `json:"values,omitempty" yaml:"values,omitempty" toml:"values,omitempty"`
}

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", errors.WithHint(
		errors.Mark(errors.Newf("unrecognized model file %s", path), errors.ErrInvalidModel),
		"model files end in .json, .yaml, .yml or .toml")
}

// Load reads and decodes a model file.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open model %s", path)
	}
	defer f.Close()

	doc, err := Decode(f, format)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return doc, nil
}

// Decode reads a document in the given format, rejecting unknown fields.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, invalid(err, format)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, invalid(err, format)
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, invalid(err, format)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, invalid(errors.Newf("unknown keys: %s", strings.Join(keys, ", ")), format)
		}
	default:
		return nil, errors.Mark(errors.Newf("unsupported model format %q", format), errors.ErrInvalidModel)
	}
	return &doc, nil
}

func invalid(err error, format Format) error {
	return errors.Mark(errors.Wrapf(err, "decode %s model", format), errors.ErrInvalidModel)
}
