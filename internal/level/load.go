package level

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrLevelNotFound is returned when a named level cannot be located in the
// configured level directory.
var ErrLevelNotFound = errors.New("level not found")

// Load reads and validates a single level JSON file.
func Load(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, path)
		}
		return nil, fmt.Errorf("failed to read level file %q: %w", path, err)
	}

	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("failed to parse level file %q: %w", path, err)
	}

	if err := Validate(&lvl); err != nil {
		return nil, fmt.Errorf("invalid level %q: %w", path, err)
	}

	return &lvl, nil
}

// LoadByName loads a level by name from dir, honoring a CONFIG_DIR
// environment variable override.
func LoadByName(dir, name string) (*Level, error) {
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		dir = configDir
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename += ".json"
	}

	path := filepath.Join(dir, filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, name)
	}

	return Load(path)
}

// ListDir returns the base names (without .json) of every level file found
// in dir.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list level directory %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	return names, nil
}
