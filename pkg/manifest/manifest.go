// Package manifest loads file specs from a YAML manifest:
//
//	env:
//	  THEME_DIR: /opt/themes
//	files:
//	  - target: ${XDG_CONFIG_HOME}/ghostty/config
//	    format: ghostty
//	    schema:
//	      theme:     { type: string, default: Dark }
//	      font-size: { type: integer, default: 12 }
//	      keybind:   { type: list, items: string }
//	    values:
//	      theme: Mocha
//
// Schema field order follows the order of the mapping in the document.
// Every problem is a CONFIG error carrying the manifest line.
package manifest

import (
	"fmt"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Manifest is a parsed manifest.
type Manifest struct {
	// Env holds extra variables for target path expansion.
	Env   map[string]string
	Files []types.FileSpec
}

// Load reads and parses the manifest at path.
func Load(fsys afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "cannot read manifest %s", path).
			WithDetail(errors.DetailPath, path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Annotate(err, errors.ErrConfig, errors.DetailPath, path)
	}
	return m, nil
}

// Parse decodes a manifest document.
func Parse(data []byte) (*Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfig, "manifest is not valid YAML")
	}

	m := &Manifest{Env: map[string]string{}}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return m, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, configErr(root, "manifest must be a mapping with env and files")
	}

	err := eachPair(root, func(key, value *yaml.Node) error {
		switch key.Value {
		case "env":
			return parseEnv(value, m.Env)
		case "files":
			files, err := parseFiles(value)
			m.Files = files
			return err
		default:
			return configErr(key, "unknown manifest key %q", key.Value)
		}
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func parseEnv(node *yaml.Node, env map[string]string) error {
	if node.Kind != yaml.MappingNode {
		return configErr(node, "env must be a mapping of names to strings")
	}
	return eachPair(node, func(key, value *yaml.Node) error {
		if value.Kind != yaml.ScalarNode {
			return configErr(value, "env value for %q must be a scalar", key.Value)
		}
		env[key.Value] = value.Value
		return nil
	})
}

func parseFiles(node *yaml.Node) ([]types.FileSpec, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, configErr(node, "files must be a list")
	}
	specs := make([]types.FileSpec, 0, len(node.Content))
	for _, item := range node.Content {
		spec, err := parseFile(item)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func parseFile(node *yaml.Node) (types.FileSpec, error) {
	var spec types.FileSpec
	if node.Kind != yaml.MappingNode {
		return spec, configErr(node, "file entry must be a mapping")
	}

	var valuesNode *yaml.Node
	err := eachPair(node, func(key, value *yaml.Node) error {
		switch key.Value {
		case "target":
			return scalarInto(value, "target", &spec.Target)
		case "format":
			return scalarInto(value, "format", &spec.Format)
		case "schema":
			s, err := parseSchema(value)
			spec.Schema = s
			return err
		case "values":
			valuesNode = value
			return nil
		default:
			return configErr(key, "unknown file key %q", key.Value)
		}
	})
	if err != nil {
		return spec, err
	}
	if spec.Target == "" {
		return spec, configErr(node, "file entry has no target")
	}

	if valuesNode != nil {
		values, err := parseValues(valuesNode)
		if err != nil {
			return spec, err
		}
		spec.Values = values
	}
	return spec, nil
}

func parseSchema(node *yaml.Node) (types.Schema, error) {
	if node.Kind != yaml.MappingNode {
		return types.Schema{}, configErr(node, "schema must be a mapping of field names")
	}
	var fields []types.FieldSchema
	err := eachPair(node, func(key, value *yaml.Node) error {
		field, err := parseField(key.Value, value)
		if err != nil {
			return err
		}
		fields = append(fields, field)
		return nil
	})
	return types.NewSchema(fields...), err
}

func parseField(name string, node *yaml.Node) (types.FieldSchema, error) {
	field := types.FieldSchema{Name: name}
	if node.Kind == yaml.ScalarNode {
		field.Type = types.FieldType(node.Value)
		return field, checkType(node, field.Type)
	}
	if node.Kind != yaml.MappingNode {
		return field, configErr(node, "field %q must be a type name or a mapping", name)
	}

	err := eachPair(node, func(key, value *yaml.Node) error {
		switch key.Value {
		case "type":
			var s string
			if err := scalarInto(value, "type", &s); err != nil {
				return err
			}
			field.Type = types.FieldType(s)
			return checkType(value, field.Type)
		case "items":
			var s string
			if err := scalarInto(value, "items", &s); err != nil {
				return err
			}
			field.ItemType = types.FieldType(s)
			return checkType(value, field.ItemType)
		case "default":
			v, err := nodeValue(value)
			if err != nil {
				return err
			}
			field.Default = types.Default(v)
			return nil
		default:
			return configErr(key, "unknown field key %q", key.Value)
		}
	})
	if err != nil {
		return field, err
	}
	if field.Type == "" {
		return field, configErr(node, "field %q has no type", name)
	}
	return field, nil
}

func parseValues(node *yaml.Node) (map[string]types.Value, error) {
	if node.Kind != yaml.MappingNode {
		return nil, configErr(node, "values must be a mapping")
	}
	values := make(map[string]types.Value)
	err := eachPair(node, func(key, value *yaml.Node) error {
		v, err := nodeValue(value)
		if err != nil {
			return errors.Annotate(err, errors.ErrConfig, errors.DetailField, key.Value)
		}
		values[key.Value] = v
		return nil
	})
	return values, err
}

func nodeValue(node *yaml.Node) (types.Value, error) {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return types.Value{}, configErr(node, "cannot decode value: %v", err)
	}
	v, err := types.ValueFromNative(raw)
	if err != nil {
		return types.Value{}, configErr(node, "unsupported value: %v", err)
	}
	return v, nil
}

func checkType(node *yaml.Node, t types.FieldType) error {
	if !t.Valid() {
		return configErr(node, "unknown type %q (want string, integer, boolean or list)", string(t))
	}
	return nil
}

func scalarInto(node *yaml.Node, what string, dst *string) error {
	if node.Kind != yaml.ScalarNode {
		return configErr(node, "%s must be a string", what)
	}
	*dst = node.Value
	return nil
}

func eachPair(node *yaml.Node, fn func(key, value *yaml.Node) error) error {
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if seen[key.Value] {
			return configErr(key, "duplicate key %q", key.Value)
		}
		seen[key.Value] = true
		if err := fn(key, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func configErr(node *yaml.Node, format string, args ...interface{}) error {
	return errors.New(errors.ErrConfig, fmt.Sprintf(format, args...)).
		WithDetail(errors.DetailLine, node.Line)
}
