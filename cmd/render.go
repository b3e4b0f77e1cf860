package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/deploymenttheory/go-pipeline-composer/internal/common/cryptoutil"
	"github.com/deploymenttheory/go-pipeline-composer/internal/composition"
	"github.com/deploymenttheory/go-pipeline-composer/internal/execution"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const digestWidth = 12

func paint(color bool, c text.Color, s string) string {
	if !color {
		return s
	}
	return c.Sprint(s)
}

// createTable creates a new table with standard styling
func createTable(color bool) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if color {
		t.Style().Color.Header = text.Colors{text.FgHiCyan}
	}
	return t
}

func writeHeader(w io.Writer, title, detail string, color bool) {
	line := paint(color, text.FgHiBlue, "==> ") + paint(color, text.Bold, title)
	if detail != "" {
		line += paint(color, text.FgHiBlack, " ("+detail+")")
	}
	fmt.Fprintln(w, line)
}

func writeFailure(w io.Writer, err error, color bool) {
	fmt.Fprintf(w, "  %s %v\n", paint(color, text.FgRed, "✗"), err)
}

func renderCatalog(w io.Writer, entries []composition.CatalogEntry, color bool) {
	if len(entries) == 0 {
		fmt.Fprintln(w, paint(color, text.FgYellow, "No workflows found"))
		return
	}

	t := createTable(color)
	t.AppendHeader(table.Row{"Name", "Origin", "Digest", "Path", "Note"})
	for _, e := range entries {
		note := ""
		if e.Shadows {
			note = "hidden by built-in"
		}
		digest := cryptoutil.ShortDigest(e.Digest, digestWidth)
		if digest == "" {
			digest = paint(color, text.FgRed, "unreadable")
		}
		t.AppendRow(table.Row{e.Name, string(e.Origin), digest, e.Path, note})
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "%s %d workflow(s)\n", paint(color, text.FgHiBlue, "Total:"), len(entries))
}

func renderWorkflow(w io.Writer, wf *composition.Workflow, color bool) {
	writeHeader(w, wf.Name, wf.Source, color)
	fmt.Fprintf(w, "Description: %s\n", wf.Description)
	if wf.Version != "" {
		fmt.Fprintf(w, "Version:     %s\n", wf.Version)
	}
	fmt.Fprintf(w, "Digest:      %s\n", cryptoutil.ShortDigest(wf.Digest, digestWidth))

	if len(wf.Settings) > 0 {
		keys := make([]string, 0, len(wf.Settings))
		for k := range wf.Settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		t := createTable(color)
		t.AppendHeader(table.Row{"Setting", "Value"})
		for _, k := range keys {
			t.AppendRow(table.Row{k, wf.Settings[k]})
		}
		fmt.Fprintln(w, t.Render())
	}

	t := createTable(color)
	t.AppendHeader(table.Row{"#", "Step", "Type", "Condition", "Params"})
	for _, s := range wf.Steps {
		params := make([]string, 0, len(s.Params))
		for _, k := range s.Params.Keys() {
			params = append(params, k+"="+s.Params.Value(k))
		}
		t.AppendRow(table.Row{s.Index + 1, s.Name, string(s.Type), s.Condition, strings.Join(params, "\n")})
	}
	fmt.Fprintln(w, t.Render())

	var unknown []string
	for point := range wf.Hooks {
		if !point.Valid() {
			unknown = append(unknown, string(point))
		}
	}
	sort.Strings(unknown)

	points := composition.HookPoints()
	for _, point := range unknown {
		points = append(points, composition.HookPoint(point))
	}
	for _, point := range points {
		commands := wf.HookCommands(point)
		if len(commands) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s\n", paint(color, text.FgHiCyan, string(point)+":"))
		for _, c := range commands {
			fmt.Fprintf(w, "  %s\n", c)
		}
	}
}

func renderPlan(w io.Writer, plan *execution.Plan, results []*execution.RunResult, color bool) {
	for _, res := range results {
		if res == nil {
			continue
		}
		writeHeader(w, res.Input, res.Workflow, color)

		for _, e := range plan.Entries(res.Input) {
			fmt.Fprintf(w, "  %s %s\n", paint(color, text.FgGreen, "→"), e)
		}
		for _, s := range res.Steps {
			if s.Status == execution.StepSkipped {
				fmt.Fprintf(w, "  %s %s skipped: %s\n", paint(color, text.FgYellow, "-"), s.Step.Label(), s.Reason)
			}
		}
		if res.Err != nil {
			writeFailure(w, res.Err, color)
		}
	}
}
