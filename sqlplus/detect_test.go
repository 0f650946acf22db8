package sqlplus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanMarkers(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{
			name:   "clean output",
			output: "<table><tr><th>A</th></tr></table>",
		},
		{
			name:   "unknown command",
			output: "SP2-0734: unknown command beginning \"BAD SQL QU...\" - rest of line ignored.\n",
			want:   []string{`SP2-0734: unknown command beginning "BAD SQL QU..." - rest of line ignored.`},
		},
		{
			name:   "case insensitive and ordered",
			output: "Warning: Package Body created with compilation errors.\nok\n  ERROR at line 1:\nUnknown thing",
			want: []string{
				"Warning: Package Body created with compilation errors.",
				"ERROR at line 1:",
				"Unknown thing",
			},
		},
		{
			name:   "marker inside a data cell",
			output: "<td>\nthis is an error\n</td>",
			want:   []string{"this is an error"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ScanMarkers(tc.output))
		})
	}
}

func TestExtractErrorBody(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		maxLines int
		want     string
	}{
		{
			name:     "single line",
			doc:      "<body>ORA-00942: table or view does not exist\n</body>",
			maxLines: MaxDiagnosticLines,
			want:     "ORA-00942: table or view does not exist",
		},
		{
			name: "keeps last lines of sqlplus error page",
			doc: `<html><head><title>SQL*Plus Error</title></head><body>
<p>
SELECT 42 FROM DUO
<br>
               *
<br>
ERROR at line 1:
<br>
ORA-00942: table or view does not exist
<br>


</body></html>`,
			maxLines: MaxDiagnosticLines,
			want:     "SELECT 42 FROM DUO\n*\nERROR at line 1:\nORA-00942: table or view does not exist",
		},
		{
			name:     "truncated to last four",
			doc:      "<body>one\ntwo\nthree\nfour\nfive\nsix</body>",
			maxLines: MaxDiagnosticLines,
			want:     "three\nfour\nfive\nsix",
		},
		{
			name:     "unbounded",
			doc:      "<body>one\n\n  two  \nthree</body>",
			maxLines: 0,
			want:     "one\ntwo\nthree",
		},
		{
			name:     "head text is excluded",
			doc:      "<html><head><title>Oops</title></head><body>ORA-01017: invalid username/password</body></html>",
			maxLines: MaxDiagnosticLines,
			want:     "ORA-01017: invalid username/password",
		},
		{
			name:     "no body falls back to whole text",
			doc:      "ERROR:\nORA-12154: TNS:could not resolve the connect identifier specified\n\n",
			maxLines: MaxDiagnosticLines,
			want:     "ERROR:\nORA-12154: TNS:could not resolve the connect identifier specified",
		},
		{
			name:     "empty document",
			doc:      "",
			maxLines: MaxDiagnosticLines,
			want:     "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractErrorBody(tc.doc, tc.maxLines))
		})
	}
}
