package domain

import "strings"

// Section identifies the configuration domain a trigger key belongs to.
type Section string

const (
	// SectionSchemas holds schema-like definitions resolved as <dotted.path>.js.
	SectionSchemas Section = "schemas"
	// SectionComponents holds component-like definitions resolved as markdown or _info files.
	SectionComponents Section = "components"
	// SectionUIComponents is an alias domain of SectionComponents.
	SectionUIComponents Section = "uiComponents"
	// SectionCustomTypes holds user-defined trigger domains.
	SectionCustomTypes Section = "customTypes"
)

// PostfixCommand narrows which section of a definition is rendered.
type PostfixCommand string

const (
	// PostfixNone renders the whole definition.
	PostfixNone PostfixCommand = ""
	// PostfixKV renders the related key patterns only.
	PostfixKV PostfixCommand = "kv"
	// PostfixEdges renders the edge triples only.
	PostfixEdges PostfixCommand = "edges"
)

// NormalizePostfix maps a raw postfix token (with or without dashes) to its canonical command.
func NormalizePostfix(raw string) PostfixCommand {
	token := strings.ToLower(strings.TrimLeft(raw, "-"))
	switch {
	case strings.HasPrefix(token, "kv"):
		return PostfixKV
	case strings.HasPrefix(token, "edge"):
		return PostfixEdges
	default:
		return PostfixNone
	}
}

// Trigger describes the identifier found under the cursor.
// It is produced per hover request and never persisted.
type Trigger struct {
	// Section is the trigger type.
	Section Section
	// CustomType names the custom type when Section is SectionCustomTypes.
	CustomType string
	// Key is the literal trigger key configured by the user.
	Key string
	// Target holds the target identifier as ordered path segments.
	// A plain token is a single segment; the dotted form yields one segment per part.
	Target []string
	// Postfix is the postfix command under the cursor, if any.
	Postfix PostfixCommand
}

// TargetName joins the target segments with dots.
func (t Trigger) TargetName() string {
	return strings.Join(t.Target, ".")
}

// SectionKey returns the domain key, "customTypes:<name>" for custom types.
func (t Trigger) SectionKey() string {
	if t.Section == SectionCustomTypes && t.CustomType != "" {
		return string(SectionCustomTypes) + ":" + t.CustomType
	}
	return string(t.Section)
}

// IsComponentLike reports whether the trigger resolves with the component file conventions.
func (t Trigger) IsComponentLike() bool {
	return t.Section == SectionComponents || t.Section == SectionUIComponents || t.Section == SectionCustomTypes
}
