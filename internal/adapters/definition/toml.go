package definition

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/zerr"
)

// TOMLLoader decodes TOML definitions. Key order follows the order keys appear in the file.
type TOMLLoader struct {
	fs ports.FileSystem
}

// NewTOMLLoader creates a new TOMLLoader.
func NewTOMLLoader(fsys ports.FileSystem) *TOMLLoader {
	return &TOMLLoader{fs: fsys}
}

// Name identifies the loader in diagnostics.
func (l *TOMLLoader) Name() string { return "toml" }

// Supports reports whether path is a TOML file.
func (l *TOMLLoader) Supports(path string) bool {
	return hasExt(path, ".toml")
}

// Load decodes the file.
func (l *TOMLLoader) Load(_ context.Context, path string) (any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	v, err := DecodeTOML(data)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDefinitionLoadFailed.Error()), "path", path)
	}
	return v, nil
}

// DecodeTOML decodes a TOML document into an ordered object.
func DecodeTOML(data []byte) (*domain.Object, error) {
	raw := make(map[string]any)
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}

	// First appearance of each dotted key path; array-of-table elements share their parent's path.
	order := make(map[string]int)
	for i, key := range md.Keys() {
		p := strings.Join(key, ".")
		if _, seen := order[p]; !seen {
			order[p] = i
		}
	}

	return tomlTable(raw, "", order), nil
}

func tomlTable(table map[string]any, prefix string, order map[string]int) *domain.Object {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		ia, oka := order[prefix+a]
		ib, okb := order[prefix+b]
		switch {
		case oka && okb:
			return ia - ib
		case oka:
			return -1
		case okb:
			return 1
		default:
			return strings.Compare(a, b)
		}
	})

	obj := domain.NewObject()
	for _, k := range keys {
		obj.Set(k, tomlValue(table[k], prefix+k+".", order))
	}
	return obj
}

func tomlValue(v any, prefix string, order map[string]int) any {
	switch x := v.(type) {
	case map[string]any:
		return tomlTable(x, prefix, order)
	case []map[string]any:
		items := make([]any, len(x))
		for i, t := range x {
			items[i] = tomlTable(t, prefix, order)
		}
		return items
	case []any:
		items := make([]any, len(x))
		for i, item := range x {
			items[i] = tomlValue(item, prefix, order)
		}
		return items
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return x
	}
}
