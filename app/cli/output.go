package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	topClassColor = color.New(color.FgGreen, color.Bold)
	headerColor   = color.New(color.FgCyan, color.Bold)
	errorColor    = color.New(color.FgRed)
)

// displayName turns a class key such as Benign_tumors into "Benign Tumors".
func displayName(class string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(class, "_", " "))
}

// applyColorMode maps --color onto fatih/color's global switch.
func applyColorMode(cmd *cobra.Command) error {
	mode, _ := cmd.Flags().GetString("color")
	switch strings.ToLower(mode) {
	case "auto", "":
		// fatih/color already disables itself off a terminal
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color %q (want auto|on|off)", mode)
	}
	return nil
}

func writeResults(w io.Writer, results []fileResult) {
	for i, r := range results {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = headerColor.Fprintln(w, r.Path)
		if r.Err != "" {
			_, _ = errorColor.Fprintf(w, "  error: %s\n", r.Err)
			continue
		}
		for rank, p := range r.Predictions {
			line := fmt.Sprintf("  %d. %-18s %6.2f%%", rank+1, displayName(p.Name), p.Prob*100)
			if rank == 0 {
				_, _ = topClassColor.Fprintln(w, line)
				continue
			}
			_, _ = fmt.Fprintln(w, line)
		}
		if r.ModelVersion != "" {
			_, _ = fmt.Fprintf(w, "  model: %s\n", r.ModelVersion)
		}
	}
}
