// Package mcpserver exposes a generated fact tree over the Model Context
// Protocol, so an assistant can browse packages and read type facts.
package mcpserver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/teranos/logifact/errors"
	"github.com/teranos/logifact/logger"
	"github.com/teranos/logifact/term"
	"github.com/teranos/logifact/traverse"
	"github.com/teranos/logifact/version"
	"github.com/teranos/logifact/writer"
)

// Server serves one output root.
type Server struct {
	root   string
	server *server.MCPServer
	logger *zap.SugaredLogger
}

// New creates an MCP server over the fact tree at root.
func New(root string, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = logger.ComponentLogger("mcp")
	}
	s := &Server{root: root, logger: log}
	s.server = server.NewMCPServer(
		"logifact",
		version.Version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer { return s.server }

// Serve starts the MCP server using stdio transport
func (s *Server) Serve() error {
	s.logger.Infow("Serving facts over MCP stdio", logger.FieldPath, s.root)
	return server.ServeStdio(s.server)
}

func (s *Server) registerTools() {
	listPackages := mcp.NewTool("list_packages",
		mcp.WithDescription("List the packages (or modules) in the fact index"),
		mcp.WithBoolean("modules",
			mcp.Description("List modules from module_index instead of packages (default: false)"),
		),
	)
	s.server.AddTool(listPackages, s.handleListPackages)

	readFact := mcp.NewTool("read_fact",
		mcp.WithDescription("Read one fact file: a type, or the package/module fact of a namespace"),
		mcp.WithString("namespace",
			mcp.Required(),
			mcp.Description("Dotted package or module name; empty for the root"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Type name, or 'package', 'module', 'package_index', 'module_index'"),
		),
		mcp.WithBoolean("pretty",
			mcp.Description("Pretty print the fact (default: false)"),
		),
	)
	s.server.AddTool(readFact, s.handleReadFact)

	findType := mcp.NewTool("find_type",
		mcp.WithDescription("Find type facts by simple name across all packages"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Simple type name, e.g. Box"),
		),
	)
	s.server.AddTool(findType, s.handleFindType)
}

func (s *Server) handleListPackages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index := traverse.PackageIndex
	if request.GetBool("modules", false) {
		index = traverse.ModuleIndex
	}

	fact, err := s.readFact(writer.IndexPath(index))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read %s: %v", index, err)), nil
	}
	if fact.Arity() != 1 {
		return mcp.NewToolResultError(fmt.Sprintf("%s has %d arguments, want 1", index, fact.Arity())), nil
	}
	list, ok := fact.Arg(0).(*term.List)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%s does not hold a list", index)), nil
	}

	names := make([]string, 0, list.Len())
	for _, el := range list.Elems() {
		if a, ok := el.(term.Atom); ok {
			names = append(names, string(a))
		}
	}
	if len(names) == 0 {
		return mcp.NewToolResultText("No entries in " + index), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d entries:\n%s\n", len(names), strings.Join(names, "\n"))), nil
}

func (s *Server) handleReadFact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	namespace := request.GetString("namespace", "")
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(namespace, "..") ||
		strings.ContainsAny(namespace, `/\`) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid fact reference %q in %q", name, namespace)), nil
	}

	rel := filepath.ToSlash(filepath.Join(writer.NamespaceDir(namespace), name+writer.Extension))
	fact, err := s.readFact(rel)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read %s: %v", rel, err)), nil
	}
	if request.GetBool("pretty", false) {
		return mcp.NewToolResultText(term.NewPrinter(term.DefaultIndent).Print(fact)), nil
	}
	return mcp.NewToolResultText(fact.Fact()), nil
}

func (s *Server) handleFindType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	matches, err := s.findType(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search facts: %v", err)), nil
	}
	if len(matches) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No type named %s", name)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Found %d type(s):\n%s\n", len(matches), strings.Join(matches, "\n"))), nil
}

// findType returns "namespace.Name (kind) path" lines for every type fact
// file named name.
func (s *Server) findType(name string) ([]string, error) {
	target := name + writer.Extension
	var matches []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != target {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		fact, err := s.readFact(rel)
		if err != nil {
			s.logger.Warnw("Skipping unreadable fact", logger.FieldPath, rel, logger.FieldError, err)
			return nil
		}
		namespace := strings.ReplaceAll(filepath.ToSlash(filepath.Dir(rel)), "/", ".")
		qualified := name
		if namespace != "." {
			qualified = namespace + "." + name
		}
		matches = append(matches, fmt.Sprintf("%s (%s) %s", qualified, fact.Name(), rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to walk %s", s.root)
	}
	sort.Strings(matches)
	return matches, nil
}

func (s *Server) readFact(rel string) (*term.Compound, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Mark(errors.Newf("no fact file %s", rel), errors.ErrNotFound)
		}
		return nil, errors.Wrapf(err, "failed to read %s", rel)
	}
	return term.ParseFact(string(data))
}
