package obj

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/ecs"
)

const (
	highlightIdle = 1.0
	highlightSnap = 3.0
)

// MountPoint is a docking site on a module. Local and Angle are in the
// owning module's frame; Angle points outward.
type MountPoint struct {
	Local     cp.Vector
	Angle     float64
	Index     int
	Owner     ecs.Entity
	Highlight float64
}

func (mp *MountPoint) WorldPosition(w *World) cp.Vector {
	m, ok := w.Module(mp.Owner)
	if !ok {
		return mp.Local
	}
	return m.LocalToWorld(w, mp.Local)
}

func (mp *MountPoint) WorldAngle(w *World) float64 {
	m, ok := w.Module(mp.Owner)
	if !ok {
		return mp.Angle
	}
	return m.WorldAngle(w) + mp.Angle
}
