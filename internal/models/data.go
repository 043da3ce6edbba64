package models

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/muhammadmuzzammil1998/jsonc"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed data/chemicals.yaml
var defaultLabData []byte

// Format is the encoding of a lab data file.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatTOML  Format = "toml"
)

// FormatFromPath guesses the encoding from the file extension, defaulting to YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonc":
		return FormatJSONC
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// DefaultLabData returns the chemical set bundled with the binary.
func DefaultLabData() (*LabData, error) {
	return ParseLabData(defaultLabData, FormatYAML)
}

// LoadLabData reads a lab data file. An empty path loads the bundled defaults.
func LoadLabData(path string) (*LabData, error) {
	if path == "" {
		return DefaultLabData()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lab data %s: %w", path, err)
	}

	labData, err := ParseLabData(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("parsing lab data %s: %w", path, err)
	}
	return labData, nil
}

// ParseLabData decodes lab data and fills in chemical ids from the registry keys.
func ParseLabData(data []byte, format Format) (*LabData, error) {
	var labData LabData

	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &labData)
	case FormatJSONC:
		// JSONC allows comments and trailing commas in hand-edited data files
		err = jsonc.Unmarshal(data, &labData)
	case FormatTOML:
		err = toml.Unmarshal(data, &labData)
	case FormatYAML:
		err = yaml.Unmarshal(data, &labData)
	default:
		return nil, fmt.Errorf("unsupported lab data format %q", format)
	}
	if err != nil {
		return nil, err
	}

	for id, chem := range labData.Chemicals {
		chem.ID = id
		labData.Chemicals[id] = chem
	}
	return &labData, nil
}
