package mcp

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dokupress/formpdf/internal/config"
	"github.com/dokupress/formpdf/internal/descriptions"
	"github.com/dokupress/formpdf/internal/forms"
	"github.com/dokupress/formpdf/internal/render"
)

// Server represents the MCP server instance
type Server struct {
	config        *config.Config
	renderService *render.Service
	mcpServer     *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, renderService *render.Service) (*Server, error) {
	if renderService == nil {
		return nil, fmt.Errorf("renderService cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:        cfg,
		renderService: renderService,
		mcpServer:     mcpServer,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	formListTool := mcp.NewTool(
		"form_list",
		mcp.WithDescription(descriptions.FormListDescription),
	)
	s.mcpServer.AddTool(formListTool, s.handleFormList)

	formSchemaTool := mcp.NewTool(
		"form_schema",
		mcp.WithDescription(descriptions.FormSchemaDescription),
		mcp.WithString("form_key",
			mcp.Required(),
			mcp.Description("Key of the form (its directory name)"),
		),
	)
	s.mcpServer.AddTool(formSchemaTool, s.handleFormSchema)

	formRenderTool := mcp.NewTool(
		"form_render",
		mcp.WithDescription(descriptions.FormRenderDescription),
		mcp.WithString("form_key",
			mcp.Required(),
			mcp.Description("Key of the form to render"),
		),
		mcp.WithObject("values",
			mcp.Description("Value map keyed by composite field names (section_field)"),
		),
		mcp.WithBoolean("flatten",
			mcp.Description("Render static visual output instead of fillable fields"),
		),
		mcp.WithBoolean("enforce_required",
			mcp.Description("Reject the render when required fields are missing or blank"),
		),
		mcp.WithString("output",
			mcp.Description("Output file name (relative names land in the configured output directory)"),
		),
	)
	s.mcpServer.AddTool(formRenderTool, s.handleFormRender)

	formInspectTool := mcp.NewTool(
		"form_inspect",
		mcp.WithDescription(descriptions.FormInspectDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(formInspectTool, s.handleFormInspect)

	formServerInfoTool := mcp.NewTool(
		"form_server_info",
		mcp.WithDescription(descriptions.FormServerInfoDescription),
	)
	s.mcpServer.AddTool(formServerInfoTool, s.handleFormServerInfo)
}

// Handler functions
func (s *Server) handleFormList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defs, err := s.renderService.Loader().Discover()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	keys, err := s.renderService.Loader().Keys()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(keys) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No forms found in directory: %s", s.renderService.Loader().FormsDir())), nil
	}

	responseText := fmt.Sprintf("Found %d form(s) in directory: %s\n\n",
		len(keys), s.renderService.Loader().FormsDir())
	for i, key := range keys {
		def := defs[key]
		responseText += fmt.Sprintf("%d. %s\n", i+1, key)
		responseText += fmt.Sprintf("   Name: %s\n", def.Name)
		responseText += fmt.Sprintf("   Layout: %s\n", layoutKind(def))
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formKey, err := request.RequireString("form_key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	def, err := s.renderService.Loader().Load(formKey)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatFormSchema(def)), nil
}

func (s *Server) handleFormRender(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formKey, err := request.RequireString("form_key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()

	values := render.ValueMap{}
	if raw, ok := args["values"].(map[string]any); ok {
		for k, v := range raw {
			values[k] = v
		}
	}

	flatten := false
	if f, ok := args["flatten"].(bool); ok {
		flatten = f
	}

	enforceRequired := false
	if e, ok := args["enforce_required"].(bool); ok {
		enforceRequired = e
	}

	output := ""
	if o, ok := args["output"].(string); ok {
		output = o
	}
	outputPath := s.resolveOutputPath(formKey, output, flatten)

	result, err := s.renderService.Render(render.RenderRequest{
		FormKey:         formKey,
		Values:          values,
		Flatten:         flatten,
		EnforceRequired: enforceRequired,
		OutputPath:      outputPath,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatRenderResult(result)), nil
}

func (s *Server) handleFormInspect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	infos, err := render.InspectFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatInspectResult(path, infos)), nil
}

func (s *Server) handleFormServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys, err := s.renderService.Loader().Keys()
	if err != nil {
		keys = nil
	}

	text := fmt.Sprintf("📋 %s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("📁 Forms Directory: %s\n", s.config.FormsDirectory)
	text += fmt.Sprintf("📁 Output Directory: %s\n", s.config.OutputDirectory)
	text += fmt.Sprintf("🌐 Language: %s\n\n", s.config.Language)

	if len(keys) > 0 {
		text += fmt.Sprintf("📂 Available Forms (%d):\n", len(keys))
		for i, key := range keys {
			text += fmt.Sprintf("   %d. %s\n", i+1, key)
		}
		text += "\n"
	} else {
		text += "📂 Available Forms: none found in forms directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	tools := []struct{ name, usage string }{
		{"form_list", "List discoverable forms"},
		{"form_schema", "Show sections, fields, and value keys of a form"},
		{"form_render", "Render a form to PDF, fillable or flattened"},
		{"form_inspect", "Read a PDF back and report its interactive fields"},
		{"form_server_info", "This overview"},
	}
	for _, tool := range tools {
		text += fmt.Sprintf("• %s - %s\n", tool.name, tool.usage)
	}

	text += "\n" + descriptions.UsageGuidance
	return mcp.NewToolResultText(text), nil
}

// resolveOutputPath places relative output names below the configured
// output directory and derives a name from the form key when none is
// given.
func (s *Server) resolveOutputPath(formKey, output string, flatten bool) string {
	if output == "" {
		suffix := ""
		if flatten {
			suffix = "_flat"
		}
		output = formKey + suffix + ".pdf"
	}
	if filepath.IsAbs(output) {
		return output
	}
	return filepath.Join(s.config.OutputDirectory, output)
}

func layoutKind(def *forms.Definition) string {
	if def.HasLayout() {
		return fmt.Sprintf("explicit (%d fields, %d pages)", len(def.Layout.Fields), def.Layout.MaxPage())
	}
	return "auto (derived from schema)"
}

// Formatting methods
func (s *Server) formatFormSchema(def *forms.Definition) string {
	text := fmt.Sprintf("Form: %s\n", def.Key)
	text += fmt.Sprintf("Name: %s\n", def.Name)
	text += fmt.Sprintf("Layout: %s\n", layoutKind(def))
	text += fmt.Sprintf("Sections: %d\n\nFields:\n", len(def.Schema.Sections))

	for _, sec := range def.Schema.Sections {
		title := def.I18n.Lookup(sec.TitleI18n, sec.Key)
		text += fmt.Sprintf("\n[%s] %s\n", sec.Key, title)
		for _, fld := range sec.Fields {
			name := forms.FieldName(sec.Key, fld.Key)
			label := def.I18n.Lookup(fld.LabelI18n, fld.Key)
			line := fmt.Sprintf("  %s (%s): %s", name, fieldType(fld.Type), label)
			if fld.Required {
				line += " [required]"
			}
			text += line + "\n"
		}
	}

	if def.Schema.Misc.StadtDefault != "" || def.Schema.Misc.DatePlaceholder != "" {
		text += "\nTrailing rows: place/date fields (stadt, datum)\n"
	}
	return text
}

func fieldType(t string) string {
	kind, _ := forms.ParseKind(t)
	return kind.String()
}

func (s *Server) formatRenderResult(result *render.RenderResult) string {
	text := fmt.Sprintf("Successfully rendered form: %s\n", result.FormKey)
	text += fmt.Sprintf("Mode: %s\n", result.Mode)
	text += fmt.Sprintf("Flattened: %t\n", result.Flattened)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Fields: %d\n", result.Fields)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	if result.OutputPath != "" {
		text += fmt.Sprintf("Output: %s\n", result.OutputPath)
	}
	return text
}

func (s *Server) formatInspectResult(path string, infos []render.FieldInfo) string {
	text := fmt.Sprintf("PDF Fields for: %s\n", path)
	text += fmt.Sprintf("Total fields: %d\n", len(infos))

	if len(infos) == 0 {
		text += "\nNo interactive fields found (document is flattened or carries no form).\n"
		if extracted, err := render.ExtractText(path); err == nil {
			preview := strings.TrimSpace(extracted)
			if len(preview) > 500 {
				preview = preview[:500] + "…"
			}
			if preview != "" {
				text += "\nText preview:\n" + preview + "\n"
			}
		}
		return text
	}

	text += "\nFields:\n"
	for i, fi := range infos {
		text += fmt.Sprintf("%d. %s (%s)", i+1, fi.Name, fi.Type)
		if fi.Multiline {
			text += " [multiline]"
		}
		if fi.Value != "" {
			text += fmt.Sprintf(" = %q", fi.Value)
		}
		if len(fi.Rect) == 4 {
			text += fmt.Sprintf(" @ [%.0f %.0f %.0f %.0f]", fi.Rect[0], fi.Rect[1], fi.Rect[2], fi.Rect[3])
		}
		text += "\n"
	}
	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting formpdf MCP server in stdio mode")
		log.Printf("Forms directory: %s", s.config.FormsDirectory)
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// For now, we'll just use stdio mode since the mark3labs library
	// handles the transport differently
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
