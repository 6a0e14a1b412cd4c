package definition

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/intellitip/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxExportDepth bounds the conversion of nested script values, which may be cyclic.
const maxExportDepth = 64

// scriptRuntime is one isolated JavaScript runtime with a CommonJS module system.
// A runtime is created per load so that every load observes the current file content.
// The mutex serializes calls into functions exported by the runtime.
type scriptRuntime struct {
	mu      sync.Mutex
	rt      *goja.Runtime
	fs      ports.FileSystem
	modules map[string]goja.Value
}

func newScriptRuntime(fsys ports.FileSystem) *scriptRuntime {
	return &scriptRuntime{
		rt:      goja.New(),
		fs:      fsys,
		modules: make(map[string]goja.Value),
	}
}

// evaluate runs src as the entry module of the runtime. A cancelled ctx interrupts
// the module body and every module it requires.
func (s *scriptRuntime) evaluate(ctx context.Context, path, src string) (goja.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrScriptEvaluationFailed.Error()), "path", path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { s.rt.Interrupt(context.Cause(ctx)) })
	defer func() {
		stop()
		s.rt.ClearInterrupt()
	}()

	return s.runCommonJS(path, src)
}

// runCommonJS evaluates src as a CommonJS module and returns its module.exports.
func (s *scriptRuntime) runCommonJS(path, src string) (goja.Value, error) {
	if v, ok := s.modules[path]; ok {
		return v, nil
	}

	wrapped := "(function (exports, require, module, __filename, __dirname) {" + src + "\n})"
	v, err := s.rt.RunScript(path, wrapped)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrScriptEvaluationFailed.Error()), "path", path)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, zerr.With(domain.ErrScriptEvaluationFailed, "path", path)
	}

	module := s.rt.NewObject()
	exports := s.rt.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, zerr.Wrap(err, domain.ErrScriptEvaluationFailed.Error())
	}

	_, err = fn(goja.Undefined(),
		exports,
		s.rt.ToValue(s.requireFrom(filepath.Dir(path))),
		module,
		s.rt.ToValue(path),
		s.rt.ToValue(filepath.Dir(path)),
	)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrScriptEvaluationFailed.Error()), "path", path)
	}

	result := module.Get("exports")
	s.modules[path] = result
	return result, nil
}

// requireFrom returns the require function for modules located in dir.
// Relative specifiers load sibling .js and .json files; bare specifiers resolve
// to an empty object so definitions importing editor or runtime packages still evaluate.
func (s *scriptRuntime) requireFrom(dir string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		spec := call.Argument(0).String()
		if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") && !filepath.IsAbs(spec) {
			return s.rt.NewObject()
		}

		path := spec
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, filepath.FromSlash(spec))
		}
		if filepath.Ext(path) == "" {
			path += domain.ExtScript
		}

		data, err := s.fs.ReadFile(path)
		if err != nil {
			panic(s.rt.NewGoError(err))
		}

		if hasExt(path, ".json") {
			v, err := s.rt.RunString("(" + string(data) + ")")
			if err != nil {
				panic(s.rt.NewGoError(err))
			}
			return v
		}

		v, err := s.runCommonJS(path, string(data))
		if err != nil {
			panic(s.rt.NewGoError(err))
		}
		return v
	}
}

// export converts a script value into a domain value.
// Objects become *domain.Object with their own enumerable keys in order,
// arrays become []any, and functions become domain.Function.
func (s *scriptRuntime) export(v goja.Value, depth int) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	if depth > maxExportDepth {
		return v.String()
	}

	if fn, ok := goja.AssertFunction(v); ok {
		return &jsFunction{runtime: s, fn: fn, value: v}
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return exportPrimitive(v)
	}

	switch obj.ClassName() {
	case "Array":
		length := int(obj.Get("length").ToInteger())
		items := make([]any, 0, length)
		for i := range length {
			items = append(items, s.export(obj.Get(strconv.Itoa(i)), depth+1))
		}
		return items
	case "Date", "RegExp", "String", "Number", "Boolean":
		return v.String()
	case "Promise":
		if p, ok := obj.Export().(*goja.Promise); ok && p.State() == goja.PromiseStateFulfilled {
			return s.export(p.Result(), depth+1)
		}
		return nil
	}

	out := domain.NewObject()
	for _, key := range obj.Keys() {
		out.Set(key, s.export(obj.Get(key), depth+1))
	}
	return out
}

func exportPrimitive(v goja.Value) any {
	switch x := v.Export().(type) {
	case int64, float64, string, bool:
		return x
	default:
		return v.String()
	}
}

// toValue converts a domain value into a script value of this runtime.
func (s *scriptRuntime) toValue(ctx context.Context, v any) goja.Value {
	switch x := v.(type) {
	case nil:
		return goja.Null()
	case *domain.Object:
		obj := s.rt.NewObject()
		for k, item := range x.All() {
			_ = obj.Set(k, s.toValue(ctx, item))
		}
		return obj
	case []any:
		items := make([]any, len(x))
		for i, item := range x {
			items[i] = s.toValue(ctx, item)
		}
		return s.rt.NewArray(items...)
	case *jsFunction:
		if x.runtime == s {
			return x.value
		}
		return s.rt.ToValue(s.bridge(ctx, x))
	case domain.Function:
		return s.rt.ToValue(s.bridge(ctx, x))
	default:
		return s.rt.ToValue(x)
	}
}

// bridge exposes a function owned by another runtime to this one.
func (s *scriptRuntime) bridge(ctx context.Context, fn domain.Function) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		arg := domain.NewObject()
		if a, ok := s.export(call.Argument(0), 0).(*domain.Object); ok {
			arg = a
		}
		result, err := fn.Call(ctx, arg)
		if err != nil {
			panic(s.rt.NewGoError(err))
		}
		return s.toValue(ctx, result)
	}
}
