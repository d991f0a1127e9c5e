package actor

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed data/personas.yaml
var defaultPersonas []byte

// LoadRegistry builds the registry from a YAML persona file, or from the
// embedded prefecture defaults when path is empty.
func LoadRegistry(path string) (*Registry, error) {
	data := defaultPersonas
	if path != "" {
		var err error
		data, err = os.ReadFile(path) //nolint:gosec // G304: operator-supplied path
		if err != nil {
			return nil, fmt.Errorf("read personas %s: %w", path, err)
		}
	}
	return ParseRegistry(data)
}
