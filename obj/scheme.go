package obj

import (
	"fmt"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/common"
	"github.com/milk9111/modular/ecs"
	"github.com/milk9111/modular/prefabs"
)

// BuildFromScheme creates the scheme's modules top-down, wires parent
// mounts to child mount_on indices and attaches everything to one new ship
// posed at the root module. On error nothing built so far is left behind.
func (w *World) BuildFromScheme(s *prefabs.Scheme) (*Ship, error) {
	if s == nil {
		return nil, fmt.Errorf("obj: build scheme: nil scheme")
	}
	var built []*Module
	root, err := w.buildModule(s, nil, -1, &built)
	if err != nil {
		for _, m := range built {
			w.RemoveModule(m.id)
		}
		return nil, fmt.Errorf("obj: build scheme: %w", err)
	}

	pos := root.WorldPosition(w)
	ship := w.NewShip(pos.X, pos.Y, root.WorldAngle(w))
	ship.AddModules(w, built...)
	if _, ok := ship.SetCockpit(w); !ok {
		w.log.Warn().Stringer("ship", ship.id).Msg("scheme has no cockpit")
	}
	w.log.Info().Stringer("ship", ship.id).Int("modules", len(built)).Msg("ship built")
	return ship, nil
}

func (w *World) buildModule(s *prefabs.Scheme, parent *Module, parentMount int, built *[]*Module) (*Module, error) {
	kind, err := ParseKind(s.Type)
	if err != nil {
		return nil, err
	}
	def, ok := w.defs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Type)
	}

	pos := cp.Vector{X: common.BaseWidth / 2, Y: common.BaseHeight / 2}
	switch {
	case parent != nil:
		pos = parent.WorldPosition(w)
	case s.X != nil && s.Y != nil:
		pos = cp.Vector{X: *s.X, Y: *s.Y}
	}
	angle := common.DegToRad(s.Angle)

	triggers := make(map[TriggerCode]string, len(s.Triggers))
	for code, action := range s.Triggers {
		if err := w.checkAction(def, action); err != nil {
			return nil, fmt.Errorf("%s trigger %s: %w", kind, code, err)
		}
		triggers[TriggerCode(code)] = action
	}

	if parent != nil {
		if s.MountOn == nil {
			return nil, fmt.Errorf("%w: %s under %s mount %d", ErrMissingMountOn, kind, parent.Kind(), parentMount)
		}
		if parentMount < 0 || parentMount >= len(parent.mounts) {
			return nil, fmt.Errorf("%w: %s has no mount %d", ErrMountIndex, parent.Kind(), parentMount)
		}
		if *s.MountOn < 0 || *s.MountOn >= len(def.mounts) {
			return nil, fmt.Errorf("%w: %s has no mount %d", ErrMountIndex, kind, *s.MountOn)
		}
		own := def.mounts[*s.MountOn]
		pos = parent.mounts[parentMount].WorldPosition(w).Sub(own.local.Rotate(cp.ForAngle(angle)))
	}

	m := w.newModule(def, pos, angle, triggers)
	*built = append(*built, m)
	if parent != nil {
		m.Meta.ParentMount = parentMount
		m.Meta.MountOn = *s.MountOn
	}

	indices := make([]int, 0, len(s.Mounts))
	for idx := range s.Mounts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		childScheme := s.Mounts[idx]
		if childScheme == nil {
			continue
		}
		child, err := w.buildModule(childScheme, m, idx, built)
		if err != nil {
			return nil, err
		}
		if _, err := w.graph.Connect(m.id, child.id, idx, *childScheme.MountOn); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ToScheme serializes the tree below root from live poses.
func (w *World) ToScheme(root ecs.Entity) (*prefabs.Scheme, error) {
	return w.toScheme(root, map[ecs.Entity]bool{})
}

func (w *World) toScheme(e ecs.Entity, seen map[ecs.Entity]bool) (*prefabs.Scheme, error) {
	if seen[e] {
		return nil, fmt.Errorf("%w at %s", ErrSchemeLoop, e)
	}
	seen[e] = true
	m, ok := w.Module(e)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, e)
	}

	pos := m.WorldPosition(w)
	s := &prefabs.Scheme{
		Type:     string(m.Kind()),
		X:        &pos.X,
		Y:        &pos.Y,
		Angle:    common.RadToDeg(common.NormalizeAngle(m.WorldAngle(w))),
		Triggers: m.TriggerMap(),
	}
	for _, c := range w.graph.ConnectionsFrom(e) {
		child, err := w.toScheme(c.To, seen)
		if err != nil {
			return nil, err
		}
		mountOn := c.ToMount
		child.MountOn = &mountOn
		if s.Mounts == nil {
			s.Mounts = make(map[int]*prefabs.Scheme)
		}
		s.Mounts[c.FromMount] = child
	}
	return s, nil
}

// ShipScheme serializes a ship from its cockpit.
func (w *World) ShipScheme(s *Ship) (*prefabs.Scheme, error) {
	if s == nil || !s.cockpit.Valid() {
		return nil, fmt.Errorf("%w: ship has no cockpit", ErrUnknownShip)
	}
	return w.ToScheme(s.cockpit)
}
