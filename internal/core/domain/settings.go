package domain

// TriggerBinding maps one trigger key to the base path its targets are searched under.
type TriggerBinding struct {
	Key      string
	BasePath BasePath
}

// CustomType is a user-defined trigger domain.
type CustomType struct {
	Name     string
	Triggers []TriggerBinding
	// ContentFunction is the workspace-relative location of a renderer module, if any.
	ContentFunction string
	// UseInfoFile restricts resolution to the _info file convention.
	UseInfoFile bool
}

// Settings is the resolved configuration for one workspace.
// Binding order is significant: triggers are evaluated in the order they were configured.
type Settings struct {
	Debug        bool
	ConfigFile   string
	Schemas      []TriggerBinding
	Components   []TriggerBinding
	UIComponents []TriggerBinding
	CustomTypes  []CustomType
}

// TriggerDomain is one ordered group of trigger bindings evaluated by the matcher.
type TriggerDomain struct {
	Section    Section
	CustomType string
	Bindings   []TriggerBinding
}

// Domains returns the trigger domains in evaluation order.
func (s *Settings) Domains() []TriggerDomain {
	if s == nil {
		return nil
	}
	domains := []TriggerDomain{
		{Section: SectionSchemas, Bindings: s.Schemas},
		{Section: SectionComponents, Bindings: s.Components},
		{Section: SectionUIComponents, Bindings: s.UIComponents},
	}
	for _, ct := range s.CustomTypes {
		domains = append(domains, TriggerDomain{
			Section:    SectionCustomTypes,
			CustomType: ct.Name,
			Bindings:   ct.Triggers,
		})
	}
	return domains
}

// Binding finds the binding a trigger was matched from.
func (s *Settings) Binding(t Trigger) (TriggerBinding, bool) {
	for _, d := range s.Domains() {
		if d.Section != t.Section || d.CustomType != t.CustomType {
			continue
		}
		for _, b := range d.Bindings {
			if b.Key == t.Key {
				return b, true
			}
		}
	}
	return TriggerBinding{}, false
}

// CustomType returns the custom type with the given name.
func (s *Settings) CustomType(name string) (CustomType, bool) {
	if s == nil {
		return CustomType{}, false
	}
	for _, ct := range s.CustomTypes {
		if ct.Name == name {
			return ct, true
		}
	}
	return CustomType{}, false
}

// SchemaBasePaths returns every schema base path in configuration order.
func (s *Settings) SchemaBasePaths() []BasePath {
	if s == nil {
		return nil
	}
	paths := make([]BasePath, 0, len(s.Schemas))
	for _, b := range s.Schemas {
		paths = append(paths, b.BasePath)
	}
	return paths
}
