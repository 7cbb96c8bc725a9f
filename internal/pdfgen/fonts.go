package pdfgen

import (
	"strings"
)

// Resource names of the standard fonts every page carries. The writer only
// uses non-embedded standard-14 fonts, which keeps documents small and is
// all the form layouts need.
const (
	FontRegular = "F1" // Helvetica
	FontBold    = "F2" // Helvetica-Bold

	// FontCheck is ZapfDingbats; its "4" glyph is the check mark used
	// for flattened checkbox states.
	FontCheck = "ZaDb"
)

// helveticaWidths holds the AFM advance widths (per mille of the font
// size) for Helvetica, characters 32..126.
var helveticaWidths = [95]int{
	278, 278, 355, 556, 556, 889, 667, 191, 333, 333, 389, 584, 278, 333,
	278, 278, 556, 556, 556, 556, 556, 556, 556, 556, 556, 556, 278, 278,
	584, 584, 584, 556, 1015, 667, 667, 722, 722, 667, 611, 778, 722, 278,
	500, 667, 556, 833, 722, 778, 667, 778, 722, 667, 611, 722, 667, 944,
	667, 667, 611, 278, 278, 278, 469, 556, 333, 556, 556, 500, 556, 556,
	278, 556, 556, 222, 222, 500, 222, 833, 556, 556, 556, 556, 333, 500,
	278, 556, 500, 722, 500, 500, 500, 334, 260, 334, 584,
}

// TextWidth returns the width in points of s set in Helvetica at the given
// size. Characters outside the tabulated range use a typical lowercase
// advance, which is close enough for wrapping and centering decisions.
func TextWidth(s string, size float64) float64 {
	total := 0
	for _, r := range s {
		if r >= 32 && r <= 126 {
			total += helveticaWidths[r-32]
		} else {
			total += 556
		}
	}
	return float64(total) * size / 1000
}

// WrapText splits s into lines that fit within maxWidth at the given font
// size. Embedded newlines force line breaks; overlong words are broken
// hard rather than overflowing the box.
func WrapText(s string, size, maxWidth float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		lines = append(lines, wrapParagraph(para, size, maxWidth)...)
	}
	return lines
}

func wrapParagraph(para string, size, maxWidth float64) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if TextWidth(candidate, size) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		// Hard-break words wider than the whole line.
		for TextWidth(word, size) > maxWidth && len(word) > 1 {
			cut := len(word)
			for cut > 1 && TextWidth(word[:cut], size) > maxWidth {
				cut--
			}
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// cp1252 code points for the 0x80..0x9F range, where Windows-1252 departs
// from Latin-1.
var winAnsiSpecials = map[rune]byte{
	'€': 0x80, // euro
	'‚': 0x82,
	'ƒ': 0x83,
	'„': 0x84,
	'…': 0x85,
	'†': 0x86,
	'‡': 0x87,
	'ˆ': 0x88,
	'‰': 0x89,
	'Š': 0x8a,
	'‹': 0x8b,
	'Œ': 0x8c,
	'Ž': 0x8e,
	'‘': 0x91,
	'’': 0x92,
	'“': 0x93,
	'”': 0x94,
	'•': 0x95,
	'–': 0x96,
	'—': 0x97,
	'˜': 0x98,
	'™': 0x99,
	'š': 0x9a,
	'›': 0x9b,
	'œ': 0x9c,
	'ž': 0x9e,
	'Ÿ': 0x9f,
}

// encodeWinAnsi converts a Go string to WinAnsi (cp1252) bytes.
// Unmappable runes become question marks; form text is Western European
// in practice and the standard fonts carry no other glyphs anyway.
func encodeWinAnsi(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r < 0x80:
			out = append(out, byte(r))
		case r >= 0xa0 && r <= 0xff:
			out = append(out, byte(r))
		default:
			if b, ok := winAnsiSpecials[r]; ok {
				out = append(out, b)
			} else {
				out = append(out, '?')
			}
		}
	}
	return out
}

// escapeTextBytes escapes the PDF string delimiters in literal strings.
func escapeTextBytes(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		switch c {
		case '(', ')', '\\':
			out = append(out, '\\', c)
		case '\r':
			out = append(out, '\\', 'r')
		case '\n':
			out = append(out, '\\', 'n')
		default:
			out = append(out, c)
		}
	}
	return out
}

// pdfString renders s as a parenthesized PDF literal string in WinAnsi
// encoding.
func pdfString(s string) string {
	return "(" + string(escapeTextBytes(encodeWinAnsi(s))) + ")"
}
