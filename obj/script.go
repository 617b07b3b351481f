package obj

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/prefabs"
	"github.com/rs/zerolog"
)

// Every action script defines `act := func(engine, module) {...}`; this
// line is appended to invoke it.
const actionDispatchScript = `
if is_callable(act) { act(__engine, __module) }
`

// scriptCache compiles each action script once. Failures are remembered and
// reported once.
type scriptCache struct {
	log      zerolog.Logger
	compiled map[string]*tengo.Compiled
	failed   map[string]error
}

func newScriptCache(log zerolog.Logger) *scriptCache {
	return &scriptCache{
		log:      log,
		compiled: make(map[string]*tengo.Compiled),
		failed:   make(map[string]error),
	}
}

func (sc *scriptCache) get(action string) (*tengo.Compiled, error) {
	if c, ok := sc.compiled[action]; ok {
		return c, nil
	}
	if err, ok := sc.failed[action]; ok {
		return nil, err
	}
	c, err := compileAction(action)
	if err != nil {
		sc.failed[action] = err
		sc.log.Error().Err(err).Str("action", action).Msg("script unavailable")
		return nil, err
	}
	sc.compiled[action] = c
	return c, nil
}

// Invalidate forgets a compiled or failed script so the next use reloads it.
func (sc *scriptCache) Invalidate(action string) {
	delete(sc.compiled, action)
	delete(sc.failed, action)
}

func (sc *scriptCache) Reset() {
	clear(sc.compiled)
	clear(sc.failed)
}

func compileAction(action string) (*tengo.Compiled, error) {
	if strings.ContainsAny(action, `/\.`) || action == "" {
		return nil, fmt.Errorf("%w: invalid action name %q", ErrScriptUnavailable, action)
	}
	src, err := prefabs.LoadScript(action)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrScriptUnavailable, action, err)
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + actionDispatchScript))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__module", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("obj: compile script %s: %w", action, err)
	}
	return compiled, nil
}

// runScript executes a scripted action for m. Script errors are logged and
// the action is skipped for this tick.
func (w *World) runScript(m *Module, action string) {
	compiled, err := w.scripts.get(action)
	if err != nil {
		return
	}
	if err := compiled.Set("__engine", w.scriptEngine(m, action)); err != nil {
		w.log.Error().Err(err).Str("action", action).Msg("script engine binding failed")
		return
	}
	if err := compiled.Set("__module", scriptModule(w, m)); err != nil {
		w.log.Error().Err(err).Str("action", action).Msg("script module binding failed")
		return
	}
	if err := compiled.Run(); err != nil {
		w.log.Error().Err(err).Str("action", action).Stringer("module", m.id).Msg("script failed")
	}
}

func scriptModule(w *World, m *Module) *tengo.ImmutableMap {
	p := m.WorldPosition(w)
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"id":      &tengo.String{Value: m.id.String()},
		"kind":    &tengo.String{Value: string(m.Kind())},
		"x":       &tengo.Float{Value: p.X},
		"y":       &tengo.Float{Value: p.Y},
		"angle":   &tengo.Float{Value: m.WorldAngle(w)},
		"battery": &tengo.Int{Value: int64(m.battery.Percentage())},
		"level":   &tengo.Float{Value: m.battery.Level()},
	}}
}

func (w *World) scriptEngine(m *Module, action string) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}

	// impulse(fx, fy) pushes in the module's own frame.
	values["impulse"] = &tengo.UserFunction{Name: "impulse", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		fx, okX := tengo.ToFloat64(args[0])
		fy, okY := tengo.ToFloat64(args[1])
		if !okX || !okY {
			return tengo.FalseValue, nil
		}
		local := cp.Vector{X: fx, Y: fy}.Rotate(cp.ForAngle(m.WorldAngle(w)))
		m.ApplyImpulse(w, local, m.WorldPosition(w))
		return tengo.TrueValue, nil
	}}

	values["draw_power"] = &tengo.UserFunction{Name: "draw_power", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		n, ok := tengo.ToFloat64(args[0])
		if !ok || n < 0 {
			return tengo.FalseValue, nil
		}
		if _, ok := m.battery.DrawPower(n, 0); !ok {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		w.log.Info().Str("action", action).Stringer("module", m.id).Msg(strings.Join(parts, " "))
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}
