package sqlplus

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxDiagnosticLines bounds the message extracted from an error document.
const MaxDiagnosticLines = 4

// markerPattern flags lines sqlplus prints when a statement failed without
// making the process exit: "SP2-0734: unknown command ...", compilation
// warnings, "ERROR at line 1:".
var markerPattern = regexp.MustCompile(`(?i)unknown|warning|error`)

// ScanMarkers returns, in source order, the trimmed output lines that contain
// a failure marker.
func ScanMarkers(output string) []string {
	var matches []string
	for _, line := range strings.Split(output, "\n") {
		if markerPattern.MatchString(line) {
			matches = append(matches, strings.TrimSpace(line))
		}
	}
	return matches
}

// ExtractErrorBody returns the non-blank text lines of the document's <body>
// element, keeping only the last maxLines of them (all when maxLines <= 0).
// A document without a body element is read as a whole.
func ExtractErrorBody(doc string, maxLines int) string {
	text, found := bodyText(doc)
	if !found {
		text = documentText(doc)
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}

func bodyText(doc string) (string, bool) {
	z := html.NewTokenizer(strings.NewReader(doc))
	var (
		sb     strings.Builder
		inBody bool
		found  bool
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String(), found
		case html.StartTagToken:
			if name, _ := z.TagName(); atom.Lookup(name) == atom.Body {
				inBody, found = true, true
			} else if inBody {
				sb.WriteString(lineBreakFor(name))
			}
		case html.SelfClosingTagToken:
			if inBody {
				name, _ := z.TagName()
				sb.WriteString(lineBreakFor(name))
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); atom.Lookup(name) == atom.Body {
				return sb.String(), found
			}
		case html.TextToken:
			if inBody {
				sb.Write(z.Text())
			}
		}
	}
}

func documentText(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var sb strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			sb.WriteString(lineBreakFor(name))
		case html.TextToken:
			sb.Write(z.Text())
		}
	}
}

// lineBreakFor keeps <br> and <p> separated lines apart once tags are dropped.
func lineBreakFor(tag []byte) string {
	switch atom.Lookup(tag) {
	case atom.Br, atom.P:
		return "\n"
	}
	return ""
}
