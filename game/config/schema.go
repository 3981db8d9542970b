package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/sokoban/game/engine"
)

const levelSchemaURL = "sokoban://schemas/level.schema.json"

// LevelSchema is the JSON Schema every level document must satisfy before the
// layout itself is checked
const LevelSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Sokoban level",
  "type": "object",
  "required": ["name", "layout"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string", "minLength": 1, "maxLength": 128},
    "description": {"type": "string"},
    "author": {"type": "string"},
    "layout": {
      "type": "array",
      "minItems": 1,
      "maxItems": 64,
      "items": {"type": "string", "maxLength": 64, "pattern": "^[ #.@$*+]*$"}
    }
  }
}`

var levelSchema = jsonschema.MustCompileString(levelSchemaURL, LevelSchema)

// Format is the encoding of a level document on disk
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// extensions lists the accepted level file extensions in lookup order
var extensions = []string{".json", ".yaml", ".yml"}

// FormatForPath picks the document format from a file extension
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// DecodeLevel checks a raw level document against LevelSchema and decodes it
func DecodeLevel(data []byte, format Format) (*engine.LevelConfig, error) {
	doc, err := normalize(data, format)
	if err != nil {
		return nil, err
	}
	if err := levelSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var level engine.LevelConfig
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &level)
	default:
		err = json.Unmarshal(data, &level)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &level, nil
}

// EncodeLevel renders a level document in the given format
func EncodeLevel(level *engine.LevelConfig, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(level)
	}
	return json.MarshalIndent(level, "", "  ")
}

// normalize turns either encoding into the generic JSON value tree the
// schema validator walks
func normalize(data []byte, format Format) (interface{}, error) {
	raw := data
	if format == FormatYAML {
		var doc interface{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		raw = b
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return doc, nil
}
