package automatic

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Summary is the document written at the end of a run.
type Summary struct {
	Run        string         `yaml:"run"`
	Settings   map[string]any `yaml:"settings,omitempty"`
	Training   []BlockSummary `yaml:"training,omitempty"`
	Evaluation *BlockSummary  `yaml:"evaluation,omitempty"`
}

func WriteSummary(path string, s Summary) error {
	out, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

func ReadSummary(path string) (Summary, error) {
	var s Summary
	in, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	err = yaml.Unmarshal(in, &s)
	return s, err
}
