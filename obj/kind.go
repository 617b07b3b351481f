package obj

import (
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/common"
	"github.com/milk9111/modular/prefabs"
)

// Kind names a module variant.
type Kind string

const (
	KindCockpit  Kind = "Cockpit"
	KindTube     Kind = "Tube"
	KindThruster Kind = "Thruster"
	KindCannon   Kind = "Cannon"
	KindBeam     Kind = "Beam"
	KindRocket   Kind = "Rocket"
)

var kindAliases = map[string]Kind{
	"Laser": KindBeam,
}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCockpit, KindTube, KindThruster, KindCannon, KindBeam, KindRocket:
		return k, nil
	}
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// kindDef is the resolved, physics-ready form of a prefabs.ModuleSpec.
type kindDef struct {
	kind       Kind
	mass       float64
	moment     float64
	battery    float64
	editable   bool
	projectile bool
	geometry   []cp.Vector
	mounts     []mountDef
	muzzle     cp.Vector
	actions    map[string]bool
	triggers   map[TriggerCode]string
}

type mountDef struct {
	local cp.Vector
	angle float64
}

func newKindDefs(specs map[string]prefabs.ModuleSpec) (map[Kind]*kindDef, error) {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make(map[Kind]*kindDef, len(specs))
	for _, name := range names {
		spec := specs[name]
		kind, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		def := &kindDef{
			kind:       kind,
			mass:       spec.Mass,
			moment:     spec.Moment,
			battery:    spec.Battery,
			editable:   spec.Editable,
			projectile: spec.Projectile,
			muzzle:     cp.Vector{X: spec.Muzzle.X, Y: spec.Muzzle.Y},
			actions:    make(map[string]bool, len(spec.Actions)),
			triggers:   make(map[TriggerCode]string, len(spec.Triggers)),
		}
		for _, p := range spec.Geometry {
			def.geometry = append(def.geometry, cp.Vector{X: p.X, Y: p.Y})
		}
		for _, m := range spec.Mounts {
			def.mounts = append(def.mounts, mountDef{
				local: cp.Vector{X: m.X, Y: m.Y},
				angle: common.DegToRad(m.Angle),
			})
		}
		for _, a := range spec.Actions {
			def.actions[a] = true
		}
		for code, action := range spec.Triggers {
			def.triggers[TriggerCode(code)] = action
		}
		defs[kind] = def
	}

	for _, required := range []Kind{KindCockpit, KindTube, KindThruster, KindCannon, KindRocket} {
		if _, ok := defs[required]; !ok {
			return nil, fmt.Errorf("obj: module catalogue is missing %s", required)
		}
	}
	return defs, nil
}
