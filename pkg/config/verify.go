package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema []byte

// schemaNode is the subset of JSON schema keywords checked by verification
type schemaNode struct {
	Ref        string                 `json:"$ref"`
	Defs       map[string]*schemaNode `json:"$defs"`
	Properties map[string]*schemaNode `json:"properties"`
	Required   []string               `json:"required"`
	Minimum    *float64               `json:"minimum"`
	Maximum    *float64               `json:"maximum"`
}

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema.
// Checks required fields and numeric ranges, nested definitions are resolved via $ref.
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	return verify(embeddedSchema, cfg)
}

func verify(schemaData []byte, cfg *Config) error {
	var schema schemaNode
	if err := json.Unmarshal(schemaData, &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	root, err := schema.resolve(schema.Defs)
	if err != nil {
		return err
	}
	return root.check("", configMap, schema.Defs)
}

func (n *schemaNode) resolve(defs map[string]*schemaNode) (*schemaNode, error) {
	if n.Ref == "" {
		return n, nil
	}
	name := strings.TrimPrefix(n.Ref, "#/$defs/")
	def, ok := defs[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema reference %q", n.Ref)
	}
	return def, nil
}

func (n *schemaNode) check(path string, value any, defs map[string]*schemaNode) error {
	if num, ok := value.(float64); ok {
		if n.Minimum != nil && num < *n.Minimum {
			return fmt.Errorf("%s must be at least %v", path, *n.Minimum)
		}
		if n.Maximum != nil && num > *n.Maximum {
			return fmt.Errorf("%s must be at most %v", path, *n.Maximum)
		}
		return nil
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil
	}

	for _, name := range n.Required {
		if isEmpty(obj[name]) {
			return fmt.Errorf("%s is required", join(path, name))
		}
	}

	for name, prop := range n.Properties {
		v, exists := obj[name]
		if !exists {
			continue
		}
		resolved, err := prop.resolve(defs)
		if err != nil {
			return err
		}
		if err := resolved.check(join(path, name), v, defs); err != nil {
			return err
		}
	}
	return nil
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	r := &jsonschema.Reflector{RequiredFromJSONSchemaTags: true}
	return r.Reflect(&Config{}), nil
}
