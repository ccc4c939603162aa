package prompt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileStore reads prompt definitions from <dir>/<identifier>/<version>.yaml.
type FileStore struct {
	Dir string
}

func (s FileStore) GetPromptTemplate(_ context.Context, identifier, version string) (*Definition, error) {
	if identifier == "" || version == "" || filepath.Base(identifier) != identifier || filepath.Base(version) != version {
		return nil, fmt.Errorf("invalid prompt reference %q version %q", identifier, version)
	}
	path := filepath.Join(s.Dir, identifier, version+".yaml")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if def.ID == "" {
		def.ID = identifier
	}
	if def.Version == "" {
		def.Version = version
	}
	return &def, nil
}
