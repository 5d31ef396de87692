package diagnosis

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dermascan/domain"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// tableFile is the on-disk layout of SYMPTOM_TABLE_PATH, in YAML or TOML.
// Scale and top_k are optional and fall back to the base config.
type tableFile struct {
	Scale    *float64  `yaml:"scale" toml:"scale"`
	TopK     *int      `yaml:"top_k" toml:"top_k"`
	Classes  []string  `yaml:"classes" toml:"classes"`
	Symptoms []Symptom `yaml:"symptoms" toml:"symptoms"`
}

// LoadTable returns the built-in table when path is empty, otherwise the
// table described by the file (TOML when the extension is .toml, YAML
// otherwise), with base overridden by any scale/top_k it declares.
func LoadTable(path string, base Config) (SymptomTable, Config, error) {
	if path == "" {
		return DefaultTable(), base, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return SymptomTable{}, base, fmt.Errorf("read symptom table: %w", err)
	}

	var f tableFile
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, err = toml.Decode(string(data), &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return SymptomTable{}, base, fmt.Errorf("%w: decode %s: %v", domain.ErrInvalidSymptomTable, path, err)
	}

	cfg := base
	if f.Scale != nil {
		cfg.Scale = *f.Scale
	}
	if f.TopK != nil {
		cfg.TopK = *f.TopK
	}
	if err := cfg.Validate(); err != nil {
		return SymptomTable{}, base, fmt.Errorf("%w: %v", domain.ErrInvalidSymptomTable, err)
	}

	table := SymptomTable{Classes: f.Classes, Symptoms: f.Symptoms}
	if err := table.Validate(); err != nil {
		return SymptomTable{}, base, err
	}

	return table, cfg, nil
}
