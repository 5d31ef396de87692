package diagnosis

import (
	"fmt"
	"math"
	"sort"

	"dermascan/domain"
)

// Blender folds symptom priors into a classifier probability vector.
// It holds only immutable state and is safe for concurrent use.
type Blender struct {
	table SymptomTable
	cfg   Config
}

func NewBlender(table SymptomTable, cfg Config) (*Blender, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Blender{table: table.clone(), cfg: cfg}, nil
}

func (b *Blender) Classes() []string {
	return append([]string(nil), b.table.Classes...)
}

func (b *Blender) Config() Config {
	return b.cfg
}

// Contribution returns Σ flag·weight over the recognised symptoms, before
// scaling. Unknown keys are ignored; counts above one scale linearly.
func (b *Blender) Contribution(flags domain.SymptomFlags) ([]float64, error) {
	out := make([]float64, len(b.table.Classes))
	for _, s := range b.table.Symptoms {
		n := flags[s.Name]
		if n == 0 {
			continue
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: %s=%d", domain.ErrNegativeSymptom, s.Name, n)
		}
		addScaled(out, s.Weights, float64(n))
	}
	return out, nil
}

// Adjust returns raw + scale·contribution, renormalized to sum to one.
func (b *Blender) Adjust(raw []float64, flags domain.SymptomFlags) ([]float64, error) {
	adjusted, _, err := b.adjust(raw, flags)
	return adjusted, err
}

func (b *Blender) adjust(raw []float64, flags domain.SymptomFlags) (adjusted, contribution []float64, err error) {
	if len(raw) != len(b.table.Classes) {
		return nil, nil, fmt.Errorf("%w: got %d values, want %d",
			domain.ErrClassCountMismatch, len(raw), len(b.table.Classes))
	}

	contribution, err = b.Contribution(flags)
	if err != nil {
		return nil, nil, err
	}

	adjusted = append([]float64(nil), raw...)
	addScaled(adjusted, contribution, b.cfg.Scale)

	total := sum(adjusted)
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, nil, fmt.Errorf("%w: sum=%v", domain.ErrDegenerateDistribution, total)
	}
	for i := range adjusted {
		adjusted[i] /= total
	}

	return adjusted, contribution, nil
}

// Blend returns the top-K predictions by descending probability. Classes
// with equal probability keep their table order.
func (b *Blender) Blend(raw []float64, flags domain.SymptomFlags) ([]domain.Prediction, error) {
	adjusted, err := b.Adjust(raw, flags)
	if err != nil {
		return nil, err
	}

	order := rank(adjusted)
	limit := b.cfg.TopK
	if limit > len(order) {
		limit = len(order)
	}

	out := make([]domain.Prediction, 0, limit)
	for _, i := range order[:limit] {
		out = append(out, domain.Prediction{
			Name: b.table.Classes[i],
			Prob: roundTo(adjusted[i], b.cfg.Precision),
		})
	}
	return out, nil
}

// rank sorts on the unrounded values so rounding can never reorder classes.
func rank(probs []float64) []int {
	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return probs[order[i]] > probs[order[j]]
	})
	return order
}
