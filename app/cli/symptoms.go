package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dermascan/domain"
)

var symptomsCmd = &cobra.Command{
	Use:   "symptoms",
	Short: "Print the symptom weight table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := applyColorMode(cmd); err != nil {
			return err
		}
		svc, clf, err := loadService()
		if err != nil {
			return err
		}
		defer clf.Close()

		writeCatalog(cmd.OutOrStdout(), svc.Catalog())
		return nil
	},
}

func writeCatalog(w io.Writer, catalog domain.Catalog) {
	_, _ = headerColor.Fprintf(w, "scale %.2f, top %d\n", catalog.Scale, catalog.TopK)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "symptom\t%s\n", strings.Join(catalog.Classes, "\t"))
	for _, s := range catalog.Symptoms {
		cells := make([]string, len(s.Weights))
		for i, v := range s.Weights {
			cells[i] = fmt.Sprintf("%.1f", v)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", s.Name, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}
