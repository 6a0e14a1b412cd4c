package domain

// Shape is a renderable variant of an Entity.
type Shape int

const (
	// ShapeCustomFunction is rendered by a user-supplied function.
	ShapeCustomFunction Shape = iota
	// ShapeHoverTip is rendered from the entity's hoverTip value.
	ShapeHoverTip
	// ShapeMarkdownBody is rendered from a raw markdown body.
	ShapeMarkdownBody
	// ShapeSchema is rendered with the structural schema layout.
	ShapeSchema
	// ShapeGeneric dumps every key.
	ShapeGeneric
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeCustomFunction:
		return "custom-function"
	case ShapeHoverTip:
		return "hover-tip"
	case ShapeMarkdownBody:
		return "markdown"
	case ShapeSchema:
		return "schema"
	case ShapeGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Shapes returns the variants that apply to e in dispatch order.
// The list always ends with ShapeSchema or ShapeGeneric, so a renderer that falls
// through every delegated variant still has a structural one to use.
// hasRenderer reports whether the trigger's custom type declares a content function.
func (e *Entity) Shapes(section Section, hasRenderer bool) []Shape {
	shapes := make([]Shape, 0, 4)
	if _, ok := e.ContentFunction(); ok || hasRenderer {
		shapes = append(shapes, ShapeCustomFunction)
	}
	if _, ok := e.HoverTip(); ok {
		shapes = append(shapes, ShapeHoverTip)
	}
	if _, ok := e.Markdown(); ok {
		shapes = append(shapes, ShapeMarkdownBody)
	}
	if section == SectionSchemas {
		return append(shapes, ShapeSchema)
	}
	return append(shapes, ShapeGeneric)
}
