package schema

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/messgen/errors"
)

// DescriptorExt is the file extension of YAML descriptors.
const DescriptorExt = ".yaml"

// LoadYAMLDir reads every *.yaml file below each directory as a type
// descriptor. The type name is the file path relative to its directory,
// without extension, joined with "/".
func LoadYAMLDir(dirs ...string) ([]RawType, error) {
	var out []RawType
	err := walkDescriptors(dirs, func(name string, data []byte) error {
		var raw RawType
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw.Type = name
		out = append(out, raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadProtocolsYAMLDir reads every *.yaml file below each directory as a
// protocol descriptor, named like LoadYAMLDir names types.
func LoadProtocolsYAMLDir(dirs ...string) ([]RawProtocol, error) {
	var out []RawProtocol
	err := walkDescriptors(dirs, func(name string, data []byte) error {
		var raw RawProtocol
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw.Name = name
		out = append(out, raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func walkDescriptors(dirs []string, visit func(name string, data []byte) error) error {
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != DescriptorExt {
				return nil
			}

			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			name := filepath.ToSlash(strings.TrimSuffix(rel, DescriptorExt))

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			if err := visit(name, data); err != nil {
				return errors.Load("parse "+path, err)
			}
			Logger().Debug("loaded descriptor", zap.String("path", path), zap.String("name", name))
			return nil
		})
		if err != nil {
			if _, ok := err.(*errors.Error); ok {
				return err
			}
			return errors.Load("read descriptors from "+dir, err)
		}
	}
	return nil
}

// ParseJSON parses a JSON array of type descriptors. Comments and trailing
// commas are allowed.
func ParseJSON(data []byte) ([]RawType, error) {
	var out []RawType
	if err := json.Unmarshal(jsonc.ToJSON(data), &out); err != nil {
		return nil, errors.Load("parse type descriptors", err)
	}
	return out, nil
}

// ParseProtocolsJSON parses a JSON array of protocol descriptors. Comments
// and trailing commas are allowed.
func ParseProtocolsJSON(data []byte) ([]RawProtocol, error) {
	var out []RawProtocol
	if err := json.Unmarshal(jsonc.ToJSON(data), &out); err != nil {
		return nil, errors.Load("parse protocol descriptors", err)
	}
	return out, nil
}
