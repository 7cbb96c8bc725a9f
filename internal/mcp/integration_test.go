package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

// TestServerWorkflow walks the documented session: list the forms, read
// the schema, render with values, and inspect the produced file.
func TestServerWorkflow(t *testing.T) {
	server, cfg := newTestServer(t)
	ctx := context.Background()

	// 1. Discover forms.
	listResult, err := server.handleFormList(ctx, callRequest(nil))
	if err != nil {
		t.Fatalf("form_list failed: %v", err)
	}
	if !strings.Contains(extractTextFromResult(listResult), "wohnung") {
		t.Fatal("form_list should discover the test form")
	}

	// 2. Learn the composite field names.
	schemaResult, err := server.handleFormSchema(ctx, callRequest(map[string]interface{}{
		"form_key": "wohnung",
	}))
	if err != nil {
		t.Fatalf("form_schema failed: %v", err)
	}
	schemaText := extractTextFromResult(schemaResult)
	if !strings.Contains(schemaText, "person_name") {
		t.Fatalf("form_schema should list composite names, got: %s", schemaText)
	}

	// 3. Render with a value map keyed by those names.
	renderResult, err := server.handleFormRender(ctx, callRequest(map[string]interface{}{
		"form_key": "wohnung",
		"values": map[string]interface{}{
			"person_name":    "Erika Mustermann",
			"person_consent": "ja",
		},
		"output": "workflow.pdf",
	}))
	if err != nil {
		t.Fatalf("form_render failed: %v", err)
	}
	renderText := extractTextFromResult(renderResult)
	if !strings.Contains(renderText, "Successfully rendered") {
		t.Fatalf("form_render should succeed, got: %s", renderText)
	}

	// 4. Inspect the produced file and verify the values survived.
	inspectResult, err := server.handleFormInspect(ctx, callRequest(map[string]interface{}{
		"path": filepath.Join(cfg.OutputDirectory, "workflow.pdf"),
	}))
	if err != nil {
		t.Fatalf("form_inspect failed: %v", err)
	}
	inspectText := extractTextFromResult(inspectResult)
	if !strings.Contains(inspectText, "Total fields: 2") {
		t.Errorf("expected 2 fields after round trip, got: %s", inspectText)
	}
	if !strings.Contains(inspectText, `"Erika Mustermann"`) {
		t.Errorf("expected text value to survive round trip, got: %s", inspectText)
	}
	if !strings.Contains(inspectText, "person_consent (checkbox)") {
		t.Errorf("expected checkbox field in round trip, got: %s", inspectText)
	}
}

// TestServerWorkflowFlattened renders the flattened variant and verifies
// inspection reports a field-free document.
func TestServerWorkflowFlattened(t *testing.T) {
	server, cfg := newTestServer(t)
	ctx := context.Background()

	_, err := server.handleFormRender(ctx, callRequest(map[string]interface{}{
		"form_key": "wohnung",
		"flatten":  true,
		"values": map[string]interface{}{
			"person_name": "Erika Mustermann",
		},
		"output": "workflow_flat.pdf",
	}))
	if err != nil {
		t.Fatalf("form_render failed: %v", err)
	}

	inspectResult, err := server.handleFormInspect(ctx, callRequest(map[string]interface{}{
		"path": filepath.Join(cfg.OutputDirectory, "workflow_flat.pdf"),
	}))
	if err != nil {
		t.Fatalf("form_inspect failed: %v", err)
	}
	inspectText := extractTextFromResult(inspectResult)
	if !strings.Contains(inspectText, "Total fields: 0") {
		t.Errorf("flattened document should report no fields, got: %s", inspectText)
	}
	if !strings.Contains(inspectText, "No interactive fields found") {
		t.Errorf("expected flattened-document note, got: %s", inspectText)
	}
}
