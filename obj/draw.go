package obj

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/ecs"
)

type MountDraw struct {
	Position  cp.Vector
	Angle     float64
	Index     int
	Highlight float64
}

// DrawData is a renderer-neutral snapshot of a module.
type DrawData struct {
	ID         ecs.Entity
	Kind       Kind
	Polygon    []cp.Vector
	Position   cp.Vector
	Angle      float64
	Attached   bool
	Mounts     []MountDraw
	HasBattery bool
	Charge     int
	Thrust     float64
	Beam       []cp.Vector
}

func (m *Module) DrawData(w *World) DrawData {
	_, attached := m.Attachment()
	d := DrawData{
		ID:         m.id,
		Kind:       m.Kind(),
		Polygon:    m.WorldPolygon(w),
		Position:   m.WorldPosition(w),
		Angle:      m.WorldAngle(w),
		Attached:   attached,
		HasBattery: m.hasBattery(),
		Charge:     m.battery.Percentage(),
	}
	for _, mp := range m.mounts {
		d.Mounts = append(d.Mounts, MountDraw{
			Position:  mp.WorldPosition(w),
			Angle:     mp.WorldAngle(w),
			Index:     mp.Index,
			Highlight: mp.Highlight,
		})
	}
	switch b := m.behavior.(type) {
	case *thruster:
		d.Thrust = b.thrust
	case *beam:
		if b.ttl > 0 {
			d.Beam = []cp.Vector{b.start, b.end}
		}
	}
	return d
}

// DrawData snapshots every module in creation order.
func (w *World) DrawData() []DrawData {
	out := make([]DrawData, 0, w.modules.Len())
	w.modules.Each(func(_ ecs.Entity, m *Module) {
		out = append(out, m.DrawData(w))
	})
	return out
}
