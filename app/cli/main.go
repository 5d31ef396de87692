package main

import (
	"fmt"
	"os"

	"github.com/inconshreveable/log15"
	"github.com/spf13/cobra"

	"dermascan/app/bootstrap"
	"dermascan/business/diagnosis"
	"dermascan/internal/classifier"
	"dermascan/pkg/config"
	"dermascan/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "dermascan",
	Short:         "Skin lesion classifier with symptom blending",
	Long:          "Run the DermaScan classifier and symptom blender against local image files.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level := log15.LvlWarn
		if verbose {
			level = log15.LvlDebug
		}
		logger.SetOutput(os.Stderr, level, log15.TerminalFormat())
	},
}

func main() {
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(symptomsCmd)

	rootCmd.PersistentFlags().Bool("verbose", false, "show debug logs")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadService builds the same service the HTTP server runs.
func loadService() (*diagnosis.DiagnosisService, classifier.Classifier, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return bootstrap.BuildDiagnosisService(cfg)
}
