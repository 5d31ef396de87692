package diagnosis

import "dermascan/domain"

// Explain returns every class's blending components, ranked like Blend but
// without truncation.
func (b *Blender) Explain(raw []float64, flags domain.SymptomFlags) ([]domain.PredictionBreakdown, error) {
	adjusted, contribution, err := b.adjust(raw, flags)
	if err != nil {
		return nil, err
	}

	out := make([]domain.PredictionBreakdown, 0, len(adjusted))
	for _, i := range rank(adjusted) {
		out = append(out, domain.PredictionBreakdown{
			Name:          b.table.Classes[i],
			Raw:           raw[i],
			Contribution:  contribution[i],
			PreNormalized: raw[i] + b.cfg.Scale*contribution[i],
			Adjusted:      adjusted[i],
			Prob:          roundTo(adjusted[i], b.cfg.Precision),
		})
	}
	return out, nil
}
