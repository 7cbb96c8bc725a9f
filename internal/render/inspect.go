package render

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FieldInfo describes one interactive field found in a rendered
// document. It is what form_inspect reports and what the round-trip
// verification checks against.
type FieldInfo struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Value     string    `json:"value,omitempty"`
	Multiline bool      `json:"multiline,omitempty"`
	Rect      []float64 `json:"rect,omitempty"`
}

// InspectFile reads back the interactive fields of a PDF file.
func InspectFile(path string) ([]FieldInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer f.Close()
	return InspectFields(f)
}

// InspectFields reads back the interactive fields of a PDF document.
// A document without an AcroForm yields an empty list, not an error.
func InspectFields(rs io.ReadSeeker) ([]FieldInfo, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return nil, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	infos := make([]FieldInfo, 0, len(fieldsArray))
	for i, fieldRef := range fieldsArray {
		info, err := inspectField(ctx, fieldRef, i)
		if err != nil {
			continue
		}
		if info != nil {
			infos = append(infos, *info)
		}
	}
	return infos, nil
}

func inspectField(ctx *model.Context, fieldObj types.Object, index int) (*FieldInfo, error) {
	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference field: %w", err)
	}
	if fieldDict == nil {
		return nil, nil
	}

	info := &FieldInfo{}

	if nameObj, found := fieldDict.Find("T"); found {
		if name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil {
			info.Name = name
		}
	}
	if info.Name == "" {
		info.Name = fmt.Sprintf("field_%d", index)
	}

	fieldType := ""
	if ftObj, found := fieldDict.Find("FT"); found {
		if ftName, err := ctx.DereferenceName(ftObj, model.V10, nil); err == nil {
			fieldType = string(ftName)
		}
	}
	switch fieldType {
	case "Tx":
		info.Type = "text"
		if valueObj, found := fieldDict.Find("V"); found {
			if v, err := ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
				info.Value = v
			}
		}
	case "Btn":
		info.Type = "checkbox"
		if valueObj, found := fieldDict.Find("V"); found {
			if v, err := ctx.DereferenceName(valueObj, model.V10, nil); err == nil {
				info.Value = string(v)
			}
		}
	default:
		info.Type = "unknown"
	}

	if flagsObj, found := fieldDict.Find("Ff"); found {
		if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
			info.Multiline = (*flags & 4096) != 0
		}
	}

	if rectObj, found := fieldDict.Find("Rect"); found {
		if arr, err := ctx.DereferenceArray(rectObj); err == nil && len(arr) == 4 {
			rect := make([]float64, 0, 4)
			for _, o := range arr {
				switch n := o.(type) {
				case types.Integer:
					rect = append(rect, float64(n))
				case types.Float:
					rect = append(rect, float64(n))
				}
			}
			if len(rect) == 4 {
				info.Rect = rect
			}
		}
	}

	return info, nil
}

// PageCount returns the number of pages of a rendered document.
func PageCount(rs io.ReadSeeker) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadContext(rs, conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx.PageCount, nil
}

// ExtractText returns the plain text of a PDF file. Useful for
// spot-checking flattened output, where values are drawn instead of
// bound into fields.
func ExtractText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return buf.String(), nil
}
