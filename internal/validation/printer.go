package validation

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/text"
)

// Print writes errors, then warnings, then a single status line, and returns
// whether the report is free of errors. Warnings never change the result.
func Print(w io.Writer, r *Report, color bool) bool {
	paint := func(c text.Color, s string) string {
		if !color {
			return s
		}
		return c.Sprint(s)
	}

	errs := r.Errors()
	warnings := r.Warnings()

	if len(errs) > 0 {
		fmt.Fprintln(w, paint(text.FgRed, fmt.Sprintf("Errors (%d):", len(errs))))
		for _, e := range errs {
			fmt.Fprintf(w, "  %s %s\n", paint(text.FgRed, "✗"), e)
		}
	}

	if len(warnings) > 0 {
		fmt.Fprintln(w, paint(text.FgYellow, fmt.Sprintf("Warnings (%d):", len(warnings))))
		for _, warning := range warnings {
			fmt.Fprintf(w, "  %s %s\n", paint(text.FgYellow, "!"), warning)
		}
	}

	name := r.Workflow
	if name == "" {
		name = "workflow"
	}

	if r.OK() {
		fmt.Fprintf(w, "%s %s is valid\n", paint(text.FgGreen, "✓"), name)
		return true
	}
	fmt.Fprintf(w, "%s %s failed validation with %d error(s)\n", paint(text.FgRed, "✗"), name, len(errs))
	return false
}
