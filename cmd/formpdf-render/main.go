package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dokupress/formpdf/internal/forms"
	"github.com/dokupress/formpdf/internal/render"
)

var (
	formsDir     = flag.String("forms", "forms", "Directory containing form definitions")
	language     = flag.String("lang", "de", "Preferred i18n language for form names and labels")
	valuesPath   = flag.String("values", "", "JSON file with the value map ('-' reads stdin)")
	outputPath   = flag.String("output", "", "Output PDF path (default: <form_key>.pdf)")
	flatten      = flag.Bool("flatten", false, "Render static visual output instead of fillable fields")
	verify       = flag.Bool("verify", true, "Read the rendered document back for verification")
	outputFormat = flag.String("format", "text", "Result format: text, json")
	listForms    = flag.Bool("list", false, "List available forms and exit")
	inspectPath  = flag.String("inspect", "", "Inspect the fields of an existing PDF and exit")
	help         = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if *inspectPath != "" {
		if err := runInspect(*inspectPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	loader, err := forms.NewLoader(*formsDir, *language)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *listForms {
		if err := runList(loader); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: form key required\n\n")
		printUsage()
		os.Exit(1)
	}
	formKey := flag.Arg(0)

	values, err := loadValues(*valuesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading values: %v\n", err)
		os.Exit(1)
	}

	out := *outputPath
	if out == "" {
		out = formKey + ".pdf"
	}

	svc := render.NewService(loader, render.DefaultOptions(), *verify)
	result, err := svc.Render(render.RenderRequest{
		FormKey:    formKey,
		Values:     values,
		Flatten:    *flatten,
		OutputPath: out,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering form: %v\n", err)
		os.Exit(1)
	}

	if err := outputResult(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error outputting result: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("formpdf-render - Render form definitions into PDF documents")
	fmt.Println()
	fmt.Println("Renders a form from the forms directory into a fillable AcroForm")
	fmt.Println("document, or a flattened static version with the values drawn in.")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -forms      Forms directory (default: forms)")
	fmt.Println("  -lang       Preferred i18n language (default: de)")
	fmt.Println("  -values     JSON file with the value map, '-' for stdin")
	fmt.Println("  -output     Output PDF path (default: <form_key>.pdf)")
	fmt.Println("  -flatten    Render static output instead of fillable fields")
	fmt.Println("  -verify     Read the result back for verification (default: true)")
	fmt.Println("  -format     Result format: text (default), json")
	fmt.Println("  -list       List available forms and exit")
	fmt.Println("  -inspect    Inspect the fields of an existing PDF and exit")
	fmt.Println("  -help       Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  formpdf-render wohnung")
	fmt.Println("  formpdf-render -values data.json -output antrag.pdf wohnung")
	fmt.Println("  formpdf-render -flatten -values data.json wohnung")
	fmt.Println("  formpdf-render -list")
	fmt.Println("  formpdf-render -inspect antrag.pdf")
	fmt.Println()
	fmt.Println("VALUE MAP:")
	fmt.Println("  A flat JSON object keyed by composite field names (section_field):")
	fmt.Println(`  {"person_name": "Erika Mustermann", "person_consent": "ja"}`)
	fmt.Println("  Checkbox values accept the usual truthy spellings (1, true, ja, yes, x, on).")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  formpdf-render [OPTIONS] <form_key>")
}

func runList(loader *forms.Loader) error {
	defs, err := loader.Discover()
	if err != nil {
		return err
	}
	keys, err := loader.Keys()
	if err != nil {
		return err
	}

	if len(keys) == 0 {
		fmt.Printf("No forms found in %s\n", loader.FormsDir())
		return nil
	}

	fmt.Printf("Found %d form(s) in %s:\n", len(keys), loader.FormsDir())
	for _, key := range keys {
		def := defs[key]
		layout := "auto layout"
		if def.HasLayout() {
			layout = fmt.Sprintf("explicit layout, %d fields", len(def.Layout.Fields))
		}
		fmt.Printf("  %-20s %s (%s)\n", key, def.Name, layout)
	}
	return nil
}

func runInspect(path string) error {
	infos, err := render.InspectFile(path)
	if err != nil {
		return err
	}

	if *outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(infos)
	}

	fmt.Printf("%s: %d field(s)\n", path, len(infos))
	for i, fi := range infos {
		fmt.Printf("[%d] %s\n", i+1, fi.Name)
		fmt.Printf("    Type: %s\n", fi.Type)
		if fi.Value != "" {
			fmt.Printf("    Value: %s\n", fi.Value)
		}
		if fi.Multiline {
			fmt.Printf("    Multiline: true\n")
		}
		if len(fi.Rect) == 4 {
			fmt.Printf("    Position: (%.1f, %.1f) to (%.1f, %.1f)\n",
				fi.Rect[0], fi.Rect[1], fi.Rect[2], fi.Rect[3])
		}
	}
	return nil
}

// loadValues reads the value map from a JSON file, stdin, or returns an
// empty map when no source is given.
func loadValues(path string) (render.ValueMap, error) {
	if path == "" {
		return render.ValueMap{}, nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	values := render.ValueMap{}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("invalid value map: %w", err)
	}
	return values, nil
}

func outputResult(result *render.RenderResult) error {
	if *outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	fmt.Printf("Rendered %s\n", result.FormKey)
	fmt.Printf("  Mode:      %s\n", result.Mode)
	fmt.Printf("  Flattened: %t\n", result.Flattened)
	fmt.Printf("  Pages:     %d\n", result.Pages)
	fmt.Printf("  Fields:    %d\n", result.Fields)
	fmt.Printf("  Size:      %d bytes\n", result.Size)
	fmt.Printf("  Output:    %s\n", result.OutputPath)
	return nil
}

func init() {
	// Custom flag usage
	flag.Usage = func() {
		printHelp()
	}
}
