package questiongen

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/SAP-F-2025/proficiency-service/internal/models"
)

// DefaultKey names the fallback entry used for tasks without their own lists.
const DefaultKey = "default"

// OptionsPerQuestion is the fixed number of choices on every question.
const OptionsPerQuestion = 4

//go:embed bank.yaml
var defaultBank []byte

// OptionSet is a fixed list of options plus the id of the correct one.
type OptionSet struct {
	Options       []models.Option `yaml:"options"`
	CorrectAnswer string          `yaml:"correct_answer"`
}

// Bank holds question texts and option sets keyed by task id.
type Bank struct {
	Templates  map[string][]string    `yaml:"templates"`
	OptionSets map[string][]OptionSet `yaml:"option_sets"`
}

// DefaultBank returns the embedded bank.
func DefaultBank() (*Bank, error) {
	return ParseBank(defaultBank)
}

// LoadBank returns the bank at path, or the embedded one when path is empty.
func LoadBank(path string) (*Bank, error) {
	if path == "" {
		return DefaultBank()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank: %w", err)
	}
	return ParseBank(data)
}

// ParseBank decodes bank YAML and checks that the defaults exist and every
// option set has OptionsPerQuestion options, exactly one matching its answer key.
func ParseBank(data []byte) (*Bank, error) {
	var b Bank
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse question bank YAML: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (b *Bank) Validate() error {
	if len(b.Templates[DefaultKey]) == 0 {
		return fmt.Errorf("question bank: %q templates are required", DefaultKey)
	}
	if len(b.OptionSets[DefaultKey]) == 0 {
		return fmt.Errorf("question bank: %q option sets are required", DefaultKey)
	}
	for key, texts := range b.Templates {
		if len(texts) == 0 {
			return fmt.Errorf("question bank: templates for %q are empty", key)
		}
	}
	for key, sets := range b.OptionSets {
		if len(sets) == 0 {
			return fmt.Errorf("question bank: option sets for %q are empty", key)
		}
		for i, set := range sets {
			if len(set.Options) != OptionsPerQuestion {
				return fmt.Errorf("question bank: %s[%d] has %d options, want %d", key, i, len(set.Options), OptionsPerQuestion)
			}
			seen := make(map[string]bool, len(set.Options))
			matches := 0
			for _, opt := range set.Options {
				if seen[opt.ID] {
					return fmt.Errorf("question bank: %s[%d] repeats option %q", key, i, opt.ID)
				}
				seen[opt.ID] = true
				if opt.ID == set.CorrectAnswer {
					matches++
				}
			}
			if matches != 1 {
				return fmt.Errorf("question bank: %s[%d] answer key %q matches no option", key, i, set.CorrectAnswer)
			}
		}
	}
	return nil
}

func (b *Bank) templatesFor(taskID string) []string {
	if texts, ok := b.Templates[taskID]; ok {
		return texts
	}
	return b.Templates[DefaultKey]
}

func (b *Bank) optionSetsFor(taskID string) []OptionSet {
	if sets, ok := b.OptionSets[taskID]; ok {
		return sets
	}
	return b.OptionSets[DefaultKey]
}
