package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Write splits idx across the four `.bmb/index/*.json` artifact files
// under dir (conventionally a project's `.bmb/index`), creating dir if
// needed. Every file is written pretty-printed with a trailing
// newline, matching the rest of the project's JSON output.
func Write(dir string, idx ProjectIndex) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create index directory %s: %w", dir, err)
	}
	files := map[string]any{
		"manifest.json":  idx.Manifest,
		"symbols.json":   idx.Symbols,
		"functions.json": idx.Functions,
		"types.json":     idx.Types,
	}
	for name, v := range files {
		if err := writeJSON(filepath.Join(dir, name), v); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Read reassembles a ProjectIndex from dir's four artifact files.
// Clients must tolerate added keys (§6); json.Unmarshal already does,
// so no extra handling is needed here.
func Read(dir string) (ProjectIndex, error) {
	var idx ProjectIndex
	if err := readJSON(filepath.Join(dir, "manifest.json"), &idx.Manifest); err != nil {
		return idx, err
	}
	if err := readJSON(filepath.Join(dir, "symbols.json"), &idx.Symbols); err != nil {
		return idx, err
	}
	if err := readJSON(filepath.Join(dir, "functions.json"), &idx.Functions); err != nil {
		return idx, err
	}
	if err := readJSON(filepath.Join(dir, "types.json"), &idx.Types); err != nil {
		return idx, err
	}
	return idx, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
