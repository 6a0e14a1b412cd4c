package config

import (
	"context"
	"fmt"

	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/zerr"
)

// Recognized settings keys.
const (
	keyDebug           = "debug"
	keyConfigFile      = "configFile"
	keySchemas         = "schemas"
	keyComponents      = "components"
	keyUIComponents    = "uiComponents"
	keyCustomTypes     = "customTypes"
	keyTriggers        = "triggers"
	keyContentFunction = "contentFunction"
	keyUseInfoFile     = "useInfoFile"
)

// mergedKeys are merged key-by-key when a project config overrides them.
// Every other key is replaced wholesale.
var mergedKeys = map[string]bool{
	keySchemas:    true,
	keyComponents: true,
}

// Merge overlays a project config over the host settings.
func Merge(host, project *domain.Object) *domain.Object {
	merged := host.Clone()
	for k, v := range project.All() {
		base, baseOK := merged.Get(k)
		baseObj, isBaseObj := base.(*domain.Object)
		overObj, isOverObj := v.(*domain.Object)

		if mergedKeys[k] && baseOK && isBaseObj && isOverObj {
			combined := baseObj.Clone()
			for ok, ov := range overObj.All() {
				combined.Set(ok, ov)
			}
			merged.Set(k, combined)
			continue
		}
		merged.Set(k, v)
	}
	return merged
}

// ToSettings converts raw merged settings into domain.Settings.
// Invalid entries are skipped and reported in problems; the remaining entries stay usable.
func ToSettings(raw *domain.Object) (settings *domain.Settings, problems []error) {
	s := &domain.Settings{ConfigFile: domain.DefaultProjectConfigPath()}

	if v, ok := raw.Get(keyDebug); ok {
		s.Debug = truthy(v)
	}
	if v, ok := raw.String(keyConfigFile); ok && v != "" {
		s.ConfigFile = v
	}

	s.Schemas = triggerBindings(raw, keySchemas, &problems)
	s.Components = triggerBindings(raw, keyComponents, &problems)
	s.UIComponents = triggerBindings(raw, keyUIComponents, &problems)
	s.CustomTypes = customTypes(raw, &problems)
	return s, problems
}

func triggerBindings(raw *domain.Object, section string, problems *[]error) []domain.TriggerBinding {
	v, ok := raw.Get(section)
	if !ok || v == nil {
		return nil
	}
	m, ok := v.(*domain.Object)
	if !ok {
		*problems = append(*problems, zerr.With(domain.ErrInvalidTriggerMap, "section", section))
		return nil
	}

	bindings := make([]domain.TriggerBinding, 0, m.Len())
	for key, value := range m.All() {
		bp, err := BasePathFrom(value)
		if err != nil {
			*problems = append(*problems, zerr.With(zerr.With(err, "section", section), "trigger", key))
			continue
		}
		bindings = append(bindings, domain.TriggerBinding{Key: key, BasePath: bp})
	}
	return bindings
}

func customTypes(raw *domain.Object, problems *[]error) []domain.CustomType {
	v, ok := raw.Get(keyCustomTypes)
	if !ok || v == nil {
		return nil
	}
	m, ok := v.(*domain.Object)
	if !ok {
		*problems = append(*problems, zerr.With(domain.ErrInvalidTriggerMap, "section", keyCustomTypes))
		return nil
	}

	types := make([]domain.CustomType, 0, m.Len())
	for name, value := range m.All() {
		def, ok := value.(*domain.Object)
		if !ok {
			*problems = append(*problems, zerr.With(domain.ErrInvalidTriggerMap, "custom_type", name))
			continue
		}

		var typeProblems []error
		triggers := triggerBindings(def, keyTriggers, &typeProblems)
		for _, p := range typeProblems {
			*problems = append(*problems, zerr.With(p, "custom_type", name))
		}

		ct := domain.CustomType{Name: name, Triggers: triggers}
		if cf, ok := def.String(keyContentFunction); ok {
			ct.ContentFunction = cf
		}
		if u, ok := def.Get(keyUseInfoFile); ok {
			ct.UseInfoFile = truthy(u)
		}
		types = append(types, ct)
	}
	return types
}

// BasePathFrom converts a configured base path value: a string, a list of strings,
// or a function of the request context.
func BasePathFrom(v any) (domain.BasePath, error) {
	switch x := v.(type) {
	case string:
		if x == "" {
			return domain.BasePath{}, domain.ErrInvalidBasePath
		}
		return domain.FixedBasePath(x), nil
	case []any:
		paths := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return domain.BasePath{}, zerr.With(domain.ErrInvalidBasePath, "entry", fmt.Sprint(item))
			}
			paths = append(paths, s)
		}
		bp := domain.FixedBasePath(paths...)
		if bp.IsZero() {
			return domain.BasePath{}, domain.ErrInvalidBasePath
		}
		return bp, nil
	case domain.Function:
		return domain.ComputedBasePath(computedLocations(x)), nil
	default:
		return domain.BasePath{}, zerr.With(domain.ErrInvalidBasePath, "type", fmt.Sprintf("%T", v))
	}
}

// computedLocations adapts a configured function to a base path evaluator.
// The function receives {site, workspaceRoot} and returns one location or a list of them.
func computedLocations(fn domain.Function) domain.BaseFunc {
	return func(ctx context.Context, bc domain.BaseContext) ([]string, error) {
		result, err := fn.Call(ctx, domain.ObjectFromPairs(
			"site", bc.Site,
			"workspaceRoot", bc.WorkspaceRoot,
		))
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrBasePathUnresolvable.Error())
		}

		switch x := result.(type) {
		case string:
			return []string{x}, nil
		case []any:
			locations := make([]string, 0, len(x))
			for _, item := range x {
				if s, ok := item.(string); ok && s != "" {
					locations = append(locations, s)
				}
			}
			return locations, nil
		case nil:
			return nil, nil
		default:
			return nil, zerr.With(domain.ErrBasePathUnresolvable, "type", fmt.Sprintf("%T", result))
		}
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return x != "" && x != "false" && x != "0"
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return v != nil
	}
}
