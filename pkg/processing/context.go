package processing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/boyd4y/forgemcp-proteus/pkg/api"
)

// LoadInputFile reads run input from a YAML or JSON file. The result is not
// validated; flags may still override it.
func LoadInputFile(filename string) (api.Input, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return api.Input{}, fmt.Errorf("reading input file: %w", err)
	}

	var in api.Input
	if err := yaml.Unmarshal(data, &in); err != nil {
		return api.Input{}, fmt.Errorf("parsing input file: %w", err)
	}
	return in, nil
}
