// Package report renders a cleaning pass for terminals and scripts.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattjoyce/s3-maven-cleaner/internal/cleaner"
)

// Options controls Render.
type Options struct {
	// Keys lists every deleted key under its artifact.
	Keys bool
}

// Render returns a styled, terminal-friendly summary of r.
func Render(r *cleaner.Report, opts Options) string {
	theme := NewDefaultTheme()

	mode := "delete"
	if r.DryRun {
		mode = "dry run"
	}
	verb := "deleted"
	if r.DryRun {
		verb = "would delete"
	}

	header := lipgloss.JoinVertical(lipgloss.Left,
		theme.Title.Render("Snapshot Cleanup Report"),
		fmt.Sprintf("Run ID    : %s", r.RunID),
		fmt.Sprintf("Mode      : %s", mode),
		fmt.Sprintf("Scanned   : %d objects", r.Scanned),
		fmt.Sprintf("Artifacts : %d", len(r.Artifacts)),
		fmt.Sprintf("Total     : %s %d objects", verb, r.DeletedCount()),
		theme.Dim.Render(fmt.Sprintf("Duration  : %s", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))),
	)

	var out strings.Builder
	out.WriteString(theme.Border.Render(header))
	out.WriteString("\n\n")

	if len(r.Artifacts) == 0 {
		out.WriteString(theme.Dim.Render("No artifacts found."))
		out.WriteString("\n")
		return out.String()
	}

	out.WriteString(theme.Header.Render(fmt.Sprintf("%-40s %-11s %-20s %6s %8s", "ARTIFACT", "OUTCOME", "LATEST", "KEPT", "DELETED")))
	out.WriteString("\n")
	for _, a := range r.Artifacts {
		latest := a.LatestVersion
		if latest == "" {
			latest = "-"
		}
		outcome := theme.outcome(a.Outcome).Render(fmt.Sprintf("%-11s", a.Outcome))
		fmt.Fprintf(&out, "%-40s %s %-20s %6d %8d\n", a.Coordinate, outcome, latest, a.Kept, len(a.Deleted))

		if a.Error != "" {
			fmt.Fprintf(&out, "    %s\n", theme.Failed.Render(a.Error))
		}
		if len(a.Evicted) > 0 {
			fmt.Fprintf(&out, "    %s\n", theme.Dim.Render("evicted: "+strings.Join(a.Evicted, ", ")))
		}
		if opts.Keys {
			for _, k := range a.Deleted {
				fmt.Fprintf(&out, "    %s %s\n", theme.Delete.Render("-"), k)
			}
		}
	}
	return out.String()
}

// RenderJSON returns the machine-readable report.
func RenderJSON(r *cleaner.Report) (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json report: %w", err)
	}
	return string(data), nil
}
