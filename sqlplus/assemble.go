package sqlplus

import (
	"strings"
)

// Output is what one sqlplus invocation produced.
type Output struct {
	Stdout     string
	Stderr     string
	ExitStatus int
	// Command is the text written to sqlplus, echoed in diagnostics.
	Command string
}

// Options are the per-call switches of Assemble.
type Options struct {
	// Cast converts cell text with the default cast rules.
	Cast bool
	// CheckErrors fails the call when the output contains an error, warning
	// or unknown-command marker even though sqlplus exited with status 0.
	CheckErrors bool
}

// Assemble turns the output of one invocation into a Result, or an *Error
// when the invocation failed.
func Assemble(out Output, opts Options) (Result, error) {
	if out.ExitStatus != 0 {
		doc := out.Stderr
		if strings.TrimSpace(doc) == "" {
			doc = out.Stdout
		}
		return Result{}, &Error{
			Message:    ExtractErrorBody(doc, MaxDiagnosticLines),
			Command:    out.Command,
			Raised:     true,
			ExitStatus: out.ExitStatus,
		}
	}

	if strings.TrimSpace(out.Stdout) == "" {
		return Result{}, nil
	}

	if opts.CheckErrors {
		if lines := ScanMarkers(out.Stdout); len(lines) > 0 {
			return Result{}, &Error{
				Message: strings.Join(lines, "\n"),
				Command: out.Command,
			}
		}
	}

	return ParseTable(out.Stdout, opts.Cast), nil
}
