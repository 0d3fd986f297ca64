// Package mcpserver exposes the scaffolding and introspection operations
// as MCP tools over stdio, so coding agents can drive a loam-rs project
// through the same code paths as the CLI.
package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/loamworks/loam/internal/diag"
	"github.com/loamworks/loam/internal/introspect"
	"github.com/loamworks/loam/internal/scaffold"
	"github.com/loamworks/loam/internal/tsclient"
	"github.com/loamworks/loam/internal/workspace"
	"github.com/loamworks/loam/internal/writer"
)

// Server wraps an MCP stdio server rooted at a working directory. Tool
// calls resolve the project from that directory unless they pass
// project_dir.
type Server struct {
	mcp *server.MCPServer
	cwd string
}

// New builds the server and registers every tool.
func New(cwd, version string) *Server {
	s := &Server{
		mcp: server.NewMCPServer("loam", version, server.WithToolCapabilities(false)),
		cwd: cwd,
	}

	s.mcp.AddTool(mcp.NewTool("init_project",
		mcp.WithDescription("Create a new loam-rs workspace: the loam.yaml marker plus the api backend skeleton with all generation anchors in place."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Project name, e.g. my_api")),
		mcp.WithString("path", mcp.Description("Parent directory to create the workspace in; defaults to the server working directory")),
		mcp.WithNumber("port", mcp.Description("Port the generated server binds to (default 3000)")),
	), s.initProject)

	s.mcp.AddTool(mcp.NewTool("add_entity",
		mcp.WithDescription("Create a new entity in the loam-rs project and register it in the generated module and stores files."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Entity name, e.g. product")),
		mcp.WithString("fields", mcp.Description("Comma-separated field spec, e.g. sku:String,price:f64,note:Option<String>; empty for an entity with only the injected fields")),
		mcp.WithString("indexed", mcp.Description("Comma-separated field names to index")),
		mcp.WithBoolean("validated", mcp.Description("Generate the validated entity variant")),
		mcp.WithString("project_dir", mcp.Description("Directory inside the project; defaults to the server working directory")),
	), s.addEntity)

	s.mcp.AddTool(mcp.NewTool("add_link",
		mcp.WithDescription("Record a typed relation between two entities in config/links.yaml."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source entity name")),
		mcp.WithString("target", mcp.Required(), mcp.Description("Target entity name")),
		mcp.WithString("link_type", mcp.Description("Relation type; defaults to has_<target>")),
		mcp.WithString("forward_route", mcp.Description("Forward traversal route name; defaults to the pluralized target")),
		mcp.WithString("reverse_route", mcp.Description("Reverse traversal route name; defaults to the source name")),
		mcp.WithString("description", mcp.Description("Human-readable note stored with the link")),
		mcp.WithString("project_dir", mcp.Description("Directory inside the project; defaults to the server working directory")),
	), s.addLink)

	s.mcp.AddTool(mcp.NewTool("add_target",
		mcp.WithDescription("Scaffold a deployment target in the workspace: webapp (vite SPA) or desktop (a Tauri shell wrapping the webapp). Updates loam.yaml."),
		mcp.WithString("target_type", mcp.Required(), mcp.Description("webapp or desktop")),
		mcp.WithString("framework", mcp.Description("Frontend framework for the webapp target (default react)")),
		mcp.WithString("name", mcp.Description("Directory for the target; defaults per type")),
		mcp.WithString("project_dir", mcp.Description("Directory inside the workspace; defaults to the server working directory")),
	), s.addTarget)

	s.mcp.AddTool(mcp.NewTool("get_project_info",
		mcp.WithDescription("Introspect the project and return its entities, fields, routes, and relations as JSON."),
		mcp.WithString("project_dir", mcp.Description("Directory inside the project; defaults to the server working directory")),
	), s.projectInfo)

	s.mcp.AddTool(mcp.NewTool("check_project_health",
		mcp.WithDescription("Run the doctor checks: file layout, anchor integrity, entity extraction, registration completeness, link resolution."),
		mcp.WithString("project_dir", mcp.Description("Directory inside the project; defaults to the server working directory")),
	), s.checkHealth)

	s.mcp.AddTool(mcp.NewTool("generate_client",
		mcp.WithDescription("Generate the TypeScript API client from the current project model and return it."),
		mcp.WithString("project_dir", mcp.Description("Directory inside the project; defaults to the server working directory")),
	), s.generateClient)

	return s
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) apiRoot(req mcp.CallToolRequest) (string, error) {
	dir := req.GetString("project_dir", s.cwd)
	return workspace.ResolveAPIRoot(dir)
}

func (s *Server) addEntity(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := scaffold.ParseFields(req.GetString("fields", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var indexed []string
	if raw := req.GetString("indexed", ""); raw != "" {
		for _, f := range strings.Split(raw, ",") {
			indexed = append(indexed, strings.TrimSpace(f))
		}
	}

	apiRoot, err := s.apiRoot(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	e := scaffold.NewEntity(name, fields, indexed, req.GetBool("validated", false))
	w := writer.NewReal()
	if err := scaffold.CreateEntity(w, apiRoot, e); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reg, err := scaffold.RegisterEntity(w, apiRoot, e)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "created entity %q in %s\n", e.Name, apiRoot)
	for _, a := range reg.Applied {
		fmt.Fprintf(&b, "registered %s\n", a)
	}
	writeLegacy(&b, reg.Legacy)
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) initProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p := scaffold.NewProject(name, req.GetInt("port", 3000))
	dir := filepath.Join(req.GetString("path", s.cwd), p.Name)
	if err := scaffold.CreateProject(writer.NewReal(), dir, p); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created workspace %s (api on port %d)", dir, p.Port)), nil
}

func (s *Server) addTarget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetType, err := req.RequireString("target_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	root, ok := workspace.FindRoot(req.GetString("project_dir", s.cwd))
	if !ok {
		return mcp.NewToolResultError("not inside a loam workspace: no " + workspace.ConfigFile + " found"), nil
	}
	spec := scaffold.NewTargetSpec(targetType, req.GetString("framework", ""), req.GetString("name", ""))
	if err := scaffold.AddTarget(writer.NewReal(), root, spec); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added %s target at %s", spec.Type, spec.Dir)), nil
}

func (s *Server) addLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := req.RequireString("target")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	apiRoot, err := s.apiRoot(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	l := scaffold.NewLink(source, target,
		req.GetString("link_type", ""),
		req.GetString("forward_route", ""),
		req.GetString("reverse_route", ""),
		req.GetString("description", ""))
	if err := scaffold.AddLink(writer.NewReal(), apiRoot, l); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("recorded link %s from %s to %s", l.LinkType, l.Source, l.Target)), nil
}

func (s *Server) projectInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	apiRoot, err := s.apiRoot(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	model, issues := introspect.Scan(apiRoot)
	var b strings.Builder
	b.WriteString(model.JSON())
	if len(issues) > 0 {
		b.WriteString("\n\nextraction issues:\n")
		for _, iss := range issues {
			fmt.Fprintf(&b, "  %s\n", iss)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) checkHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	apiRoot, err := s.apiRoot(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report := diag.Examine(apiRoot)
	var b strings.Builder
	report.Write(&b)
	if report.Healthy() {
		return mcp.NewToolResultText(b.String()), nil
	}
	return mcp.NewToolResultError(b.String()), nil
}

func (s *Server) generateClient(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	apiRoot, err := s.apiRoot(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	model, issues := introspect.Scan(apiRoot)
	code, err := tsclient.Emit(model)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(issues) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "// %d entities were skipped with extraction issues\n", len(issues))
		b.WriteString(code)
		return mcp.NewToolResultText(b.String()), nil
	}
	return mcp.NewToolResultText(code), nil
}

func writeLegacy(b *strings.Builder, legacy []scaffold.LegacyFile) {
	for _, lf := range legacy {
		fmt.Fprintf(b, "%s could not be updated automatically; add these lines by hand:\n", lf.Path)
		for _, line := range lf.Lines {
			fmt.Fprintf(b, "    %s\n", line)
		}
	}
}
