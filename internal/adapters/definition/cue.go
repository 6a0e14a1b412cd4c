package definition

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/zerr"
)

// CUELoader decodes CUE definitions. Concrete values are exported as data;
// constraints that are not concrete, such as `id: string`, are exported as their
// CUE expression, so schema-like definitions read as type declarations.
type CUELoader struct {
	fs ports.FileSystem
}

// NewCUELoader creates a new CUELoader.
func NewCUELoader(fsys ports.FileSystem) *CUELoader {
	return &CUELoader{fs: fsys}
}

// Name identifies the loader in diagnostics.
func (l *CUELoader) Name() string { return "cue" }

// Supports reports whether path is a CUE file.
func (l *CUELoader) Supports(path string) bool {
	return hasExt(path, ".cue")
}

// Load compiles the file and exports its top-level value.
func (l *CUELoader) Load(_ context.Context, path string) (any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	v, err := DecodeCUE(path, data)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDefinitionLoadFailed.Error()), "path", path)
	}
	return v, nil
}

// DecodeCUE compiles a CUE document and converts it into domain values.
func DecodeCUE(filename string, data []byte) (any, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, err
	}
	return cueValue(v)
}

func cueValue(v cue.Value) (any, error) {
	switch v.IncompleteKind() {
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, err
		}
		obj := domain.NewObject()
		for iter.Next() {
			item, err := cueValue(iter.Value())
			if err != nil {
				return nil, err
			}
			obj.Set(cueLabel(iter.Selector()), item)
		}
		return obj, nil
	case cue.ListKind:
		if !v.IsConcrete() {
			return fmt.Sprint(v), nil
		}
		iter, err := v.List()
		if err != nil {
			return nil, err
		}
		items := []any{}
		for iter.Next() {
			item, err := cueValue(iter.Value())
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	}

	if !v.IsConcrete() {
		return fmt.Sprint(v), nil
	}

	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind:
		return v.Int64()
	case cue.FloatKind, cue.NumberKind:
		return v.Float64()
	case cue.StringKind:
		return v.String()
	default:
		return fmt.Sprint(v), nil
	}
}

// cueLabel returns the field name without CUE quoting.
func cueLabel(sel cue.Selector) string {
	label := sel.String()
	if strings.HasPrefix(label, `"`) {
		if unquoted, err := strconv.Unquote(label); err == nil {
			return unquoted
		}
	}
	return label
}
