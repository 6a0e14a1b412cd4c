package definition

import (
	"context"

	"github.com/dop251/goja"
	"go.trai.ch/intellitip/internal/core/domain"
	"go.trai.ch/zerr"
)

var _ domain.Function = (*jsFunction)(nil)

// jsFunction is a script function exported by a definition.
type jsFunction struct {
	runtime *scriptRuntime
	fn      goja.Callable
	value   goja.Value
}

// Call invokes the function with arg. A cancelled ctx interrupts the running script.
func (f *jsFunction) Call(ctx context.Context, arg *domain.Object) (any, error) {
	f.runtime.mu.Lock()
	defer f.runtime.mu.Unlock()

	rt := f.runtime.rt
	stop := context.AfterFunc(ctx, func() { rt.Interrupt(context.Cause(ctx)) })
	defer func() {
		stop()
		rt.ClearInterrupt()
	}()

	v, err := f.fn(goja.Undefined(), f.runtime.toValue(ctx, arg))
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrScriptEvaluationFailed.Error())
	}

	if obj, ok := v.(*goja.Object); ok && obj.ClassName() == "Promise" {
		if p, ok := obj.Export().(*goja.Promise); ok {
			switch p.State() {
			case goja.PromiseStateFulfilled:
				return f.runtime.export(p.Result(), 0), nil
			case goja.PromiseStateRejected:
				return nil, zerr.With(domain.ErrScriptEvaluationFailed, "rejection", p.Result().String())
			default:
				return nil, zerr.With(domain.ErrScriptEvaluationFailed, "reason", "promise did not settle")
			}
		}
	}

	return f.runtime.export(v, 0), nil
}

// Source returns the function's source text.
func (f *jsFunction) Source() string {
	return f.value.String()
}
