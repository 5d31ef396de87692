package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"dermascan/domain"
	"dermascan/internal/imaging"
)

var predictCmd = &cobra.Command{
	Use:   "predict IMAGE...",
	Short: "Classify one or more images",
	Long: "Classify local JPEG or PNG files and blend in reported symptoms.\n" +
		"Symptoms are passed as --symptom name=count, e.g. --symptom itching=1.",
	Args: cobra.MinimumNArgs(1),
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringToIntP("symptom", "s", nil, "symptom counts, name=count (repeatable)")
	predictCmd.Flags().IntP("jobs", "j", 0, "images classified concurrently (0 = GOMAXPROCS)")
	predictCmd.Flags().Bool("json", false, "print results as JSON")
}

type diagnoser interface {
	Diagnose(ctx context.Context, img image.Image, flags domain.SymptomFlags) (domain.Diagnosis, error)
	Catalog() domain.Catalog
}

type fileResult struct {
	Path         string              `json:"path"`
	Predictions  []domain.Prediction `json:"predictions,omitempty"`
	ModelVersion string              `json:"model_version,omitempty"`
	Err          string              `json:"error,omitempty"`
}

func runPredict(cmd *cobra.Command, args []string) error {
	if err := applyColorMode(cmd); err != nil {
		return err
	}
	raw, _ := cmd.Flags().GetStringToInt("symptom")
	jobs, _ := cmd.Flags().GetInt("jobs")
	asJSON, _ := cmd.Flags().GetBool("json")

	svc, clf, err := loadService()
	if err != nil {
		return err
	}
	defer clf.Close()

	flags, err := symptomFlags(svc.Catalog(), raw)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, err := diagnoseFiles(ctx, svc, args, flags, jobs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		writeResults(out, results)
	}

	return batchError(results)
}

// batchError fails the command when any image failed, whatever the output
// format.
func batchError(results []fileResult) error {
	if n := countFailed(results); n > 0 {
		return fmt.Errorf("%d of %d images failed", n, len(results))
	}
	return nil
}

// symptomFlags rejects names the table does not know and negative counts.
func symptomFlags(catalog domain.Catalog, raw map[string]int) (domain.SymptomFlags, error) {
	known := make(map[string]bool, len(catalog.Symptoms))
	names := make([]string, 0, len(catalog.Symptoms))
	for _, s := range catalog.Symptoms {
		known[s.Name] = true
		names = append(names, s.Name)
	}

	flags := make(domain.SymptomFlags, len(raw))
	for name, v := range raw {
		if !known[name] {
			sort.Strings(names)
			return nil, fmt.Errorf("unknown symptom %q (known: %s)", name, strings.Join(names, ", "))
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: %s=%d", domain.ErrNegativeSymptom, name, v)
		}
		flags[name] = v
	}
	return flags, nil
}

// diagnoseFiles classifies every path with at most jobs in flight. A bad
// file is reported in its result; only cancellation aborts the batch.
func diagnoseFiles(ctx context.Context, svc diagnoser, paths []string, flags domain.SymptomFlags, jobs int) ([]fileResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = diagnoseFile(gctx, svc, path, flags)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func diagnoseFile(ctx context.Context, svc diagnoser, path string, flags domain.SymptomFlags) fileResult {
	res := fileResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	img, _, err := imaging.Decode(data)
	if err != nil {
		res.Err = err.Error()
		return res
	}

	dx, err := svc.Diagnose(ctx, img, flags)
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Predictions = dx.Predictions
	res.ModelVersion = dx.ModelVersion
	return res
}

func countFailed(results []fileResult) int {
	n := 0
	for _, r := range results {
		if r.Err != "" {
			n++
		}
	}
	return n
}
