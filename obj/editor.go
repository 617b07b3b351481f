package obj

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/common"
	"github.com/milk9111/modular/ecs"
)

// Editor implements drag-and-drop assembly over a World.
type Editor struct {
	w          *World
	selected   ecs.Entity
	grab       cp.Vector
	startPos   cp.Vector
	startAngle float64
}

func NewEditor(w *World) *Editor {
	return &Editor{w: w}
}

// Pick returns the most recently created editable module under p.
func (ed *Editor) Pick(p cp.Vector) (*Module, bool) {
	mods := ed.w.Modules()
	for i := len(mods) - 1; i >= 0; i-- {
		m := mods[i]
		if m.Compatible() && m.Contains(ed.w, p) {
			return m, true
		}
	}
	return nil, false
}

func (ed *Editor) Selected() (*Module, bool) {
	if !ed.selected.Valid() {
		return nil, false
	}
	m, ok := ed.w.Module(ed.selected)
	if !ok {
		ed.selected = 0
	}
	return m, ok
}

// StartDrag selects m, remembering where the cursor grabbed it.
func (ed *Editor) StartDrag(m *Module, cursor cp.Vector) bool {
	if m == nil || !m.Compatible() {
		return false
	}
	ed.selected = m.id
	pos := m.WorldPosition(ed.w)
	ed.grab = pos.Sub(cursor)
	ed.startPos = pos
	ed.startAngle = m.WorldAngle(ed.w)
	if st, ok := m.state.(Standalone); ok {
		st.Body.SetVelocity(0, 0)
		st.Body.SetAngularVelocity(0)
	}
	return true
}

// Drag moves the selection with the cursor. An attached module holds its
// place until pulled past BreakDistance on either axis, then detaches.
func (ed *Editor) Drag(cursor cp.Vector) {
	m, ok := ed.Selected()
	if !ok {
		return
	}
	target := cursor.Add(ed.grab)
	if _, attached := m.Attachment(); attached {
		d := target.Sub(ed.startPos)
		if math.Abs(d.X) <= ed.w.opts.BreakDistance && math.Abs(d.Y) <= ed.w.opts.BreakDistance {
			return
		}
		ed.w.Detach(m)
	}
	ed.place(m, target, m.WorldAngle(ed.w))
	ed.updateHighlights(m)
}

// Rotate turns the selection to face the cursor. An attached module
// detaches once turned past BreakAngle.
func (ed *Editor) Rotate(cursor cp.Vector) {
	m, ok := ed.Selected()
	if !ok {
		return
	}
	pos := m.WorldPosition(ed.w)
	d := cursor.Sub(pos)
	if d.Length() == 0 {
		return
	}
	angle := d.ToAngle()
	if _, attached := m.Attachment(); attached {
		if math.Abs(common.NormalizeAngle(angle-ed.startAngle)) <= ed.w.opts.BreakAngle {
			return
		}
		ed.w.Detach(m)
	}
	ed.place(m, pos, angle)
	ed.updateHighlights(m)
}

// Release ends the drag. Every own mount within SnapEpsilon of another
// module's mount is matched, in mount order; each match repositions the
// module and replaces its inbound edge, so the last match owns it. The
// module then joins the matched module's ship, or a new ship with it.
// Only the surviving inbound edge is returned.
func (ed *Editor) Release() []Connection {
	defer ed.clearHighlights()
	m, ok := ed.Selected()
	ed.selected = 0
	if !ok {
		return nil
	}
	if _, attached := m.Attachment(); attached {
		return nil
	}

	w := ed.w
	var made []Connection
	var host *Module
	for i, own := range m.mounts {
		for _, target := range ed.candidates(m) {
			if own.WorldPosition(w).Distance(target.WorldPosition(w)) >= w.opts.SnapEpsilon {
				continue
			}
			owner, ok := w.Module(target.Owner)
			if !ok {
				continue
			}
			if parent, ok := w.graph.ParentOf(m.id); ok {
				w.graph.Disconnect(parent.From, m.id)
			}
			angle := target.WorldAngle(w) + math.Pi - own.Angle
			pos := target.WorldPosition(w).Sub(own.Local.Rotate(cp.ForAngle(angle)))
			ed.place(m, pos, angle)

			c, err := w.graph.Connect(owner.id, m.id, target.Index, i)
			if err != nil {
				w.log.Warn().Err(err).Msg("editor connect")
				continue
			}
			w.graph.TestLoop(c)
			m.Meta.ParentMount = target.Index
			m.Meta.MountOn = i
			made = append(made, *c)
			host = owner
		}
	}
	if host != nil {
		ed.join(m, host)
	}
	parent, ok := w.graph.ParentOf(m.id)
	if !ok {
		return nil
	}
	for _, c := range made {
		if c == *parent {
			return []Connection{c}
		}
	}
	return nil
}

// Discard destroys the selected module.
func (ed *Editor) Discard() bool {
	m, ok := ed.Selected()
	ed.selected = 0
	ed.clearHighlights()
	if !ok {
		return false
	}
	return ed.w.RemoveModule(m.id)
}

func (ed *Editor) join(m, host *Module) {
	w := ed.w
	s, ok := w.ShipOf(host)
	if ok {
		s.Add(w, m)
	} else {
		p := host.WorldPosition(w)
		s = w.NewShip(p.X, p.Y, 0)
		s.AddModules(w, host, m)
	}
	if !s.cockpit.Valid() {
		s.SetCockpit(w)
	}
}

// place teleports a standalone module and stops it.
func (ed *Editor) place(m *Module, pos cp.Vector, angle float64) {
	st, ok := m.state.(Standalone)
	if !ok {
		return
	}
	st.Body.SetPosition(pos)
	st.Body.SetAngle(angle)
	st.Body.SetVelocity(0, 0)
	st.Body.SetAngularVelocity(0)
	ed.w.physics.Reindex(st.Body)
	m.syncMeta(ed.w)
}

// candidates lists mounts on every other editable module.
func (ed *Editor) candidates(m *Module) []*MountPoint {
	var out []*MountPoint
	for _, o := range ed.w.Modules() {
		if o.id == m.id || !o.Compatible() {
			continue
		}
		out = append(out, o.mounts...)
	}
	return out
}

func (ed *Editor) updateHighlights(m *Module) {
	ed.clearHighlights()
	w := ed.w
	for _, own := range m.mounts {
		for _, target := range ed.candidates(m) {
			if own.WorldPosition(w).Distance(target.WorldPosition(w)) < w.opts.SnapEpsilon {
				own.Highlight = highlightSnap
				target.Highlight = highlightSnap
			}
		}
	}
}

func (ed *Editor) clearHighlights() {
	for _, m := range ed.w.Modules() {
		for _, mp := range m.mounts {
			mp.Highlight = highlightIdle
		}
	}
}
