// Package config loads the YAML experiment files pkg/driver.Synthesize
// runs are configured from. An Experiment selects among a small built-in
// registry of named goal theories (pkg/theories) rather than parsing
// arbitrary first-order text.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gitrdm/modalsynth/pkg/theories"
)

// Experiment is the top-level shape of an experiment YAML file: which goal
// theory to search against, what atoms and depth bounds to search with, and
// how large a carrier the search may try.
type Experiment struct {
	// Name labels this experiment in reports; purely descriptive.
	Name string `yaml:"name"`

	// GoalTheory names a theory from pkg/theories's registry (e.g.
	// "reflexive", "transitive", "symmetric", "euclidean", "rst").
	GoalTheory theories.Name `yaml:"goal_theory"`

	// Atoms lists the propositional letters the modal formula template may
	// use. Exactly one atom is supported (the driver valuates every atom
	// against a single proposition relation); defaults to ["p"] if empty.
	Atoms []string `yaml:"atoms"`

	// ModalDepth bounds the modal/boolean nesting depth of candidate
	// formulas. Defaults to 3 if zero.
	ModalDepth int `yaml:"modal_depth"`

	// ModelSizeBound bounds the cardinality of the world carrier both the
	// trivial and goal structure templates search over. Defaults to 4 if
	// zero.
	ModelSizeBound int `yaml:"model_size_bound"`
}

const (
	defaultModalDepth     = 3
	defaultModelSizeBound = 4
)

// setDefaults fills in omitted fields.
func (e *Experiment) setDefaults() {
	if len(e.Atoms) == 0 {
		e.Atoms = []string{"p"}
	}
	if e.ModalDepth == 0 {
		e.ModalDepth = defaultModalDepth
	}
	if e.ModelSizeBound == 0 {
		e.ModelSizeBound = defaultModelSizeBound
	}
}

// validate checks the experiment for semantic errors beyond what YAML
// unmarshaling already catches.
func (e *Experiment) validate(path string) error {
	if e.GoalTheory == "" {
		return fmt.Errorf("%s: goal_theory is required", path)
	}
	found := false
	for _, n := range theories.Names() {
		if n == e.GoalTheory {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%s: unknown goal_theory %q (known: %v)", path, e.GoalTheory, theories.Names())
	}
	if len(e.Atoms) != 1 {
		return fmt.Errorf("%s: exactly one atom is supported, got %d", path, len(e.Atoms))
	}
	if e.ModalDepth < 0 {
		return fmt.Errorf("%s: modal_depth must be non-negative, got %d", path, e.ModalDepth)
	}
	if e.ModelSizeBound < 1 {
		return fmt.Errorf("%s: model_size_bound must be at least 1, got %d", path, e.ModelSizeBound)
	}
	return nil
}

// Load reads and parses an experiment YAML file at path.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses experiment YAML content from bytes. path is used only for
// error messages.
func Parse(data []byte, path string) (*Experiment, error) {
	var exp Experiment
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	exp.setDefaults()
	if err := exp.validate(path); err != nil {
		return nil, err
	}
	return &exp, nil
}

// Batch is a list of experiments run together by the CLI's batch
// subcommand, one YAML document containing an "experiments" list.
type Batch struct {
	Experiments []Experiment `yaml:"experiments"`
}

// LoadBatch reads and parses a batch YAML file at path, validating every
// contained experiment.
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if len(batch.Experiments) == 0 {
		return nil, fmt.Errorf("%s: no experiments defined", path)
	}
	for i := range batch.Experiments {
		batch.Experiments[i].setDefaults()
		if err := batch.Experiments[i].validate(fmt.Sprintf("%s: experiments[%d]", path, i)); err != nil {
			return nil, err
		}
	}
	return &batch, nil
}
