package domain

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// Well-known definition keys.
const (
	KeyFileURI         = "fileUri"
	KeyFilePath        = "filePath"
	KeyFileURL         = "fileUrl"
	KeyBasePath        = "basePath"
	KeyName            = "name"
	KeyDescription     = "description"
	KeyProperties      = "properties"
	KeyEdges           = "edges"
	KeyRelatedKVs      = "relatedKVs"
	KeyMarkdown        = "md"
	KeyHoverTip        = "hoverTip"
	KeyContentFunction = "contentFunction"
	KeyType            = "type"
)

// Entity is a decoded definition file augmented with its identity.
type Entity struct {
	// Data holds the decoded definition followed by the identity keys.
	Data *Object
	// FilePath is the absolute path of the definition file.
	FilePath string
	// FileURL is the file:// URL of the definition file.
	FileURL string
	// BasePath is the configured base path location that produced the entity.
	BasePath string
}

// NewEntity wraps decoded data with the identity of the file it was read from.
// The data is copied; identity keys are appended after the authored keys.
func NewEntity(data *Object, filePath, basePath string) *Entity {
	fileURL := FileURL(filePath)
	merged := data.Clone()
	merged.Set(KeyFileURI, fileURL)
	merged.Set(KeyFilePath, filePath)
	merged.Set(KeyFileURL, fileURL)
	merged.Set(KeyBasePath, basePath)

	return &Entity{
		Data:     merged,
		FilePath: filePath,
		FileURL:  fileURL,
		BasePath: basePath,
	}
}

// IsIdentityKey reports whether key is one of the identity keys added by NewEntity.
func IsIdentityKey(key string) bool {
	switch key {
	case KeyFileURI, KeyFilePath, KeyFileURL, KeyBasePath:
		return true
	default:
		return false
	}
}

// Name returns the authored name, if any.
func (e *Entity) Name() string {
	s, _ := e.Data.String(KeyName)
	return s
}

// Description returns the description, if any.
func (e *Entity) Description() string {
	v, ok := e.Data.Get(KeyDescription)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Properties returns the property map, if any.
func (e *Entity) Properties() (*Object, bool) {
	v, ok := e.Data.Get(KeyProperties)
	if !ok {
		return nil, false
	}
	props, ok := v.(*Object)
	return props, ok
}

// RelatedKVs returns the related key patterns, if any.
func (e *Entity) RelatedKVs() (*Object, bool) {
	v, ok := e.Data.Get(KeyRelatedKVs)
	if !ok {
		return nil, false
	}
	kvs, ok := v.(*Object)
	return kvs, ok
}

// Markdown returns the raw markdown body, if any.
func (e *Entity) Markdown() (string, bool) {
	return e.Data.String(KeyMarkdown)
}

// HoverTip returns the hoverTip value, if any.
func (e *Entity) HoverTip() (any, bool) {
	v, ok := e.Data.Get(KeyHoverTip)
	return v, ok && v != nil
}

// ContentFunction returns the declared renderer location or inline function, if any.
func (e *Entity) ContentFunction() (any, bool) {
	v, ok := e.Data.Get(KeyContentFunction)
	return v, ok && v != nil
}

// Edge is one relation of a definition.
type Edge struct {
	From     string
	Relation string
	To       string
}

// Edges returns the edge triples. Entries that are not sequences of at least
// three elements are skipped, as is an edges value that is not a sequence.
func (e *Entity) Edges() []Edge {
	v, ok := e.Data.Get(KeyEdges)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	edges := make([]Edge, 0, len(items))
	for _, item := range items {
		triple, ok := item.([]any)
		if !ok || len(triple) < 3 {
			continue
		}
		edges = append(edges, Edge{
			From:     fmt.Sprint(triple[0]),
			Relation: fmt.Sprint(triple[1]),
			To:       fmt.Sprint(triple[2]),
		})
	}
	return edges
}

// FileURL converts an absolute filesystem path into a file:// URL.
func FileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	if u.Path != "" && u.Path[0] != '/' {
		u.Path = "/" + u.Path
	}
	return u.String()
}
