package diagnosis

import (
	"fmt"

	"dermascan/domain"

	"github.com/go-playground/validator/v10"
)

// Symptom is one row of the weight table: how much a reported symptom
// favours each class, indexed like SymptomTable.Classes.
type Symptom struct {
	Name    string    `yaml:"name" toml:"name" validate:"required"`
	Weights []float64 `yaml:"weights" toml:"weights" validate:"required,dive,gte=0"`
}

// SymptomTable is the immutable class list plus the hand-authored symptom
// weights. Built once at startup and shared read-only between requests.
type SymptomTable struct {
	Classes  []string  `yaml:"classes" toml:"classes" validate:"required,min=1,dive,required"`
	Symptoms []Symptom `yaml:"symptoms" toml:"symptoms" validate:"dive"`
}

var defaultClasses = []string{
	"Acne",
	"Benign_tumors",
	"Eczema",
	"Infestations_Bites",
	"Lichen",
	"Psoriasis",
	"Seborrh_Keratoses",
	"Vitiligo",
	"Warts",
}

func DefaultTable() SymptomTable {
	classes := make([]string, len(defaultClasses))
	copy(classes, defaultClasses)

	return SymptomTable{
		Classes: classes,
		Symptoms: []Symptom{
			{Name: "itching", Weights: []float64{0.1, 0.0, 0.3, 0.2, 0.3, 0.1, 0.0, 0.0, 0.0}},
			{Name: "bleeding", Weights: []float64{0.0, 0.2, 0.0, 0.2, 0.1, 0.3, 0.2, 0.0, 0.0}},
			{Name: "scaly_skin", Weights: []float64{0.0, 0.0, 0.2, 0.0, 0.2, 0.4, 0.1, 0.0, 0.0}},
			{Name: "white_patches", Weights: []float64{0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 1.0, 0.0}},
			{Name: "sudden_onset", Weights: []float64{0.1, 0.2, 0.0, 0.3, 0.1, 0.1, 0.0, 0.0, 0.2}},
		},
	}
}

// Validate checks shape and sign constraints the blender relies on.
func (t SymptomTable) Validate() error {
	if err := validator.New().Struct(t); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidSymptomTable, err)
	}

	seenClass := make(map[string]struct{}, len(t.Classes))
	for _, c := range t.Classes {
		if _, dup := seenClass[c]; dup {
			return fmt.Errorf("%w: duplicate class %q", domain.ErrInvalidSymptomTable, c)
		}
		seenClass[c] = struct{}{}
	}

	seenSymptom := make(map[string]struct{}, len(t.Symptoms))
	for _, s := range t.Symptoms {
		if _, dup := seenSymptom[s.Name]; dup {
			return fmt.Errorf("%w: duplicate symptom %q", domain.ErrInvalidSymptomTable, s.Name)
		}
		seenSymptom[s.Name] = struct{}{}

		if len(s.Weights) != len(t.Classes) {
			return fmt.Errorf("%w: symptom %q has %d weights, want %d",
				domain.ErrInvalidSymptomTable, s.Name, len(s.Weights), len(t.Classes))
		}
	}

	return nil
}

// SymptomNames lists the recognised symptom keys in table order.
func (t SymptomTable) SymptomNames() []string {
	names := make([]string, 0, len(t.Symptoms))
	for _, s := range t.Symptoms {
		names = append(names, s.Name)
	}
	return names
}

func (t SymptomTable) clone() SymptomTable {
	out := SymptomTable{
		Classes:  append([]string(nil), t.Classes...),
		Symptoms: make([]Symptom, len(t.Symptoms)),
	}
	for i, s := range t.Symptoms {
		out.Symptoms[i] = Symptom{Name: s.Name, Weights: append([]float64(nil), s.Weights...)}
	}
	return out
}
