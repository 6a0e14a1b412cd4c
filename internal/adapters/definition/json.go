package definition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/zerr"
)

// JSONLoader decodes JSON definitions, preserving object key order.
type JSONLoader struct {
	fs ports.FileSystem
}

// NewJSONLoader creates a new JSONLoader.
func NewJSONLoader(fsys ports.FileSystem) *JSONLoader {
	return &JSONLoader{fs: fsys}
}

// Name identifies the loader in diagnostics.
func (l *JSONLoader) Name() string { return "json" }

// Supports reports whether path is a JSON file.
func (l *JSONLoader) Supports(path string) bool {
	return hasExt(path, ".json")
}

// Load decodes the file.
func (l *JSONLoader) Load(_ context.Context, path string) (any, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	v, err := DecodeJSON(data)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrDefinitionLoadFailed.Error()), "path", path)
	}
	return v, nil
}

// DecodeJSON decodes a single JSON document into domain values.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, zerr.New("unexpected data after top-level value")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := domain.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, _ := keyTok.(string)
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			items := []any{}
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return items, nil
		default:
			return nil, zerr.With(zerr.New("unexpected delimiter"), "delim", t.String())
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		// string, bool or nil
		return t, nil
	}
}
