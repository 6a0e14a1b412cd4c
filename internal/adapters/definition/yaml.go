package definition

import (
	"context"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// YAMLLoader decodes YAML definitions, preserving mapping key order.
type YAMLLoader struct {
	fs ports.FileSystem
}

// NewYAMLLoader creates a new YAMLLoader.
func NewYAMLLoader(fsys ports.FileSystem) *YAMLLoader {
	return &YAMLLoader{fs: fsys}
}

// Name identifies the loader in diagnostics.
func (l *YAMLLoader) Name() string { return "yaml" }

// Supports reports whether path is a YAML file.
func (l *YAMLLoader) Supports(path string) bool {
	return hasExt(path, ".yaml", ".yml")
}

// Load decodes the first document of the file.
func (l *YAMLLoader) Load(_ context.Context, path string) (any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDefinitionLoadFailed.Error()), "path", path)
	}

	v, err := DecodeYAMLNode(&doc)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDefinitionLoadFailed.Error()), "path", path)
	}
	return v, nil
}

// DecodeYAMLNode converts a YAML node tree into domain values.
func DecodeYAMLNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return DecodeYAMLNode(n.Content[0])
	case yaml.MappingNode:
		obj := domain.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := DecodeYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, v)
		}
		return obj, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := DecodeYAMLNode(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.AliasNode:
		return DecodeYAMLNode(n.Alias)
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, err
		}
		if i, ok := v.(int); ok {
			return int64(i), nil
		}
		return v, nil
	default:
		return nil, zerr.With(zerr.New("unsupported YAML node"), "line", n.Line)
	}
}
