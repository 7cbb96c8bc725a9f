package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	FormListDescription = `List the form definitions available for rendering.

**When to use:** First call in any workflow; discover which form keys exist before rendering or inspecting schemas.

**Why it's useful:** Forms are discovered from the configured forms directory at call time, so new form folders show up without a restart.

**Examples:**
• Discover forms: "Which forms can this server render?"
• Pick a variant: "List forms so I can choose the right application form"

**Common workflows:**
1. Discovery: form_list → form_schema → form_render
2. Health check: form_list → verify an expected form key is present

**Best practices:** Use the returned keys verbatim as the form_key argument of the other tools.`

	FormSchemaDescription = `Show the structure of one form: sections, fields, types, and composite field names.

**When to use:** Before calling form_render, to learn which value keys the form accepts and which fields are required.

**Why it's useful:** The composite names returned here (section_field) are exactly the keys the value map must use; guessing them is the most common rendering mistake.

**Examples:**
• Prepare values: "Show the schema of 'wohnung' so I can build the value map"
• Check requirements: "Which fields of the application form are required?"

**Common workflows:**
1. Render preparation: form_schema → collect values → form_render
2. Validation: form_schema → compare supplied values against required fields

**Best practices:** Checkbox values accept the usual truthy spellings (1, true, ja, yes, x, on); anything else counts as unchecked.`

	FormRenderDescription = `Render a form into a PDF document, either fillable or flattened.

**When to use:** Produce the actual document: an interactive AcroForm with live fields, or a flattened static version with the values drawn in.

**Why it's useful:** Uses the form's explicit layout with exact coordinates and page backgrounds when one exists, and falls back to a clean auto layout derived from the schema otherwise.

**Examples:**
• Fillable form: "Render 'wohnung' with the applicant's data pre-filled"
• Archive copy: "Render 'wohnung' flattened for the case file"

**Common workflows:**
1. Standard: form_schema → form_render → form_inspect to verify
2. Both variants: form_render (interactive) → form_render with flatten=true

**Best practices:** Pass values keyed by composite field names; missing values render as empty fields. Set enforce_required=true to reject renders with missing required fields instead.`

	FormInspectDescription = `Read a rendered PDF back and report its interactive fields.

**When to use:** After form_render, to verify the produced document carries the expected fields, names, and values.

**Why it's useful:** The inspection goes through an independent PDF parser, so it catches structural problems the renderer itself cannot see.

**Examples:**
• Verify output: "Inspect output/wohnung.pdf and confirm person_name is set"
• Debug a form: "Which fields does this third-party PDF contain?"

**Common workflows:**
1. Round trip: form_render → form_inspect → compare field list
2. Flattened check: form_inspect reports zero fields for flattened documents

**Best practices:** A flattened document legitimately has no fields; use the extracted text preview to check its content instead.`

	FormServerInfoDescription = `Get server information, available forms, tools, and usage guidance.

**When to use:** Starting point when connecting to an unknown formpdf server, or when a tool call behaved unexpectedly.

**Why it's useful:** Shows the configured forms and output directories, the discovered forms, and how the tools chain together.

**Examples:**
• Orientation: "What can this server do and which forms does it know?"
• Troubleshooting: "Check which directory the server discovers forms from"

**Common workflows:**
1. Onboarding: form_server_info → form_list → form_schema → form_render
2. Debugging: form_server_info → verify directories → retry failing call

**Best practices:** Call once at session start; the directory listing reflects the server's view, not the client's.`

	// UsageGuidance sums up how the tools chain together.
	UsageGuidance = `💡 Usage Guidance:

Typical session:
1. form_list to discover form keys
2. form_schema to learn the composite field names a form accepts
3. form_render with a value map keyed by those names
4. form_inspect on the produced file to verify fields and values

Rendering notes:
• flatten=false (default) produces a fillable AcroForm document
• flatten=true draws the values as static text instead
• Forms with a layout.json render at exact coordinates with page backgrounds
• Forms without one get a generated single-column layout from their schema
• Missing values, translations, and images degrade silently; malformed layouts fail loudly`
)
