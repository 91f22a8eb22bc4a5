package selection

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fileFormat is the on-disk shape of persisted choices. Only flags are
// stored; descriptors are recomputed by the next scan.
type fileFormat struct {
	Namespaces map[string]bool `json:"namespaces"`
	Candidates map[string]bool `json:"candidates"`
}

// Save writes the model's flags to path as indented JSON, creating parent
// directories as needed. The file is meant to be committed alongside the
// project, so the encoding stays stable and diffable.
func (m *Model) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create selection dir: %w", err)
	}
	data, err := json.MarshalIndent(fileFormat{
		Namespaces: m.nsFlags,
		Candidates: m.candFlags,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode selection: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write selection: %w", err)
	}
	return nil
}

// Load reads previously saved flags into the model. A missing file is not
// an error: the model keeps its defaults.
func (m *Model) Load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read selection: %w", err)
	}
	var ff fileFormat
	if err := json.Unmarshal(data, &ff); err != nil {
		return fmt.Errorf("decode selection %s: %w", path, err)
	}
	for ns, v := range ff.Namespaces {
		m.nsFlags[ns] = v
	}
	for name, v := range ff.Candidates {
		m.candFlags[name] = v
	}
	return nil
}
