package commands

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talevault/talevault/pkg/vars"
)

// saveFile is the YAML exchange format for bulk variable state. The
// groups mirror the store snapshot.
type saveFile struct {
	Numbers  map[string]float64 `yaml:"numbers,omitempty"`
	Strings  map[string]string  `yaml:"strings,omitempty"`
	Booleans map[string]bool    `yaml:"booleans,omitempty"`
}

// readSaveFile loads and parses a YAML save file.
func readSaveFile(path string) (*saveFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read save file: %w", err)
	}

	var sf saveFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse save file: %w", err)
	}
	return &sf, nil
}

// writeSaveFile marshals a snapshot to YAML at path, or to stdout when
// path is "-".
func writeSaveFile(path string, snap vars.Snapshot) error {
	sf := saveFile{
		Numbers:  snap.Numbers,
		Strings:  snap.Strings,
		Booleans: snap.Booleans,
	}

	data, err := yaml.Marshal(&sf)
	if err != nil {
		return fmt.Errorf("failed to marshal save file: %w", err)
	}

	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write save file: %w", err)
	}
	return nil
}
