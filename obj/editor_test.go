package obj

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorSnapsAndJoins(t *testing.T) {
	w := newTestWorld(t)
	ed := NewEditor(w)
	cockpit := mustModule(t, w, KindCockpit, 0, 0, 0, nil)
	thruster := mustModule(t, w, KindThruster, 37, 1, 180, nil)

	require.True(t, ed.StartDrag(thruster, cp.Vector{X: 37, Y: 1}))
	ed.Drag(cp.Vector{X: 37, Y: 1})
	assert.Equal(t, float64(highlightSnap), thruster.mounts[2].Highlight)
	assert.Equal(t, float64(highlightSnap), cockpit.mounts[1].Highlight)
	assert.Equal(t, float64(highlightIdle), cockpit.mounts[0].Highlight)

	made := ed.Release()
	require.Len(t, made, 1)
	assert.Equal(t, cockpit.ID(), made[0].From)
	assert.Equal(t, thruster.ID(), made[0].To)
	assert.Equal(t, 1, made[0].FromMount)
	assert.Equal(t, 2, made[0].ToMount)

	assertVec(t, cp.Vector{X: 35, Y: 0}, thruster.WorldPosition(w))
	assert.InDelta(t, math.Pi, thruster.WorldAngle(w), eps)
	assert.Equal(t, 1, thruster.Meta.ParentMount)
	assert.Equal(t, 2, thruster.Meta.MountOn)
	assert.Equal(t, float64(highlightIdle), thruster.mounts[2].Highlight)

	ship, ok := w.ShipOf(thruster)
	require.True(t, ok)
	assert.True(t, ship.Has(cockpit.ID()))
	assert.Equal(t, cockpit.ID(), ship.Cockpit())
	assert.InDelta(t, 20, ship.Mass(), eps)
	assert.Empty(t, w.FreeModules())
}

func TestEditorDragBreaksAttachment(t *testing.T) {
	w := newTestWorld(t)
	ed := NewEditor(w)
	cockpit := mustModule(t, w, KindCockpit, 0, 0, 0, nil)
	thruster := mustModule(t, w, KindThruster, 37, 1, 180, nil)
	ed.StartDrag(thruster, cp.Vector{X: 37, Y: 1})
	require.Len(t, ed.Release(), 1)

	require.True(t, ed.StartDrag(thruster, cp.Vector{X: 35, Y: 0}))
	ed.Drag(cp.Vector{X: 40, Y: 3})
	_, attached := thruster.Attachment()
	assert.True(t, attached, "small pulls hold")

	ed.Drag(cp.Vector{X: 50, Y: 0})
	_, attached = thruster.Attachment()
	require.False(t, attached)
	assertVec(t, cp.Vector{X: 50, Y: 0}, thruster.WorldPosition(w))
	assert.Empty(t, w.graph.ConnectionsFor(thruster.ID()))
	assert.Equal(t, -1, thruster.Meta.ParentMount)

	ship, ok := w.ShipOf(cockpit)
	require.True(t, ok)
	assert.False(t, ship.Has(thruster.ID()))
	assert.InDelta(t, 10, ship.Mass(), eps)

	assert.Empty(t, ed.Release(), "nothing in reach")
	_, attached = thruster.Attachment()
	assert.False(t, attached)
}

func TestEditorRotateBreaksAttachment(t *testing.T) {
	w := newTestWorld(t)
	ed := NewEditor(w)
	mustModule(t, w, KindCockpit, 0, 0, 0, nil)
	thruster := mustModule(t, w, KindThruster, 37, 1, 180, nil)
	ed.StartDrag(thruster, cp.Vector{X: 37, Y: 1})
	require.Len(t, ed.Release(), 1)

	ed.StartDrag(thruster, cp.Vector{X: 35, Y: 0})
	ed.Rotate(cp.Vector{X: 0, Y: 0.5})
	_, attached := thruster.Attachment()
	assert.True(t, attached, "cursor still behind the module")

	ed.Rotate(cp.Vector{X: 35, Y: 100})
	_, attached = thruster.Attachment()
	assert.False(t, attached)
	assert.InDelta(t, math.Pi/2, thruster.WorldAngle(w), eps)
}

func TestEditorPickAndDiscard(t *testing.T) {
	w := newTestWorld(t)
	ed := NewEditor(w)
	mustModule(t, w, KindCockpit, 0, 0, 0, nil)
	tube := mustModule(t, w, KindTube, 10, 0, 0, nil)

	got, ok := ed.Pick(cp.Vector{X: 5, Y: 0})
	require.True(t, ok)
	assert.Equal(t, tube.ID(), got.ID(), "latest module wins on overlap")

	_, ok = ed.Pick(cp.Vector{X: 1000, Y: 1000})
	assert.False(t, ok)

	rocket := w.spawnRocket(mustModule(t, w, KindCannon, 500, 500, 0, nil))
	_, ok = ed.Pick(rocket.WorldPosition(w))
	assert.False(t, ok, "projectiles are not editable")
	assert.False(t, ed.StartDrag(rocket, rocket.WorldPosition(w)))

	require.True(t, ed.StartDrag(tube, cp.Vector{X: 10, Y: 0}))
	assert.True(t, ed.Discard())
	_, ok = w.Module(tube.ID())
	assert.False(t, ok)
	_, ok = ed.Selected()
	assert.False(t, ok)
	assert.False(t, ed.Discard())
}

func TestEditorReleaseLastMatchOwnsEdge(t *testing.T) {
	w := newTestWorld(t)
	ed := NewEditor(w)
	left := mustModule(t, w, KindTube, -70, 0, 0, nil)
	right := mustModule(t, w, KindTube, 70, 0, 0, nil)
	middle := mustModule(t, w, KindTube, 0, 0, 0, nil)

	require.True(t, ed.StartDrag(middle, cp.Vector{}))
	made := ed.Release()
	require.Len(t, made, 1, "the first edge was replaced")
	assert.Equal(t, Connection{From: right.ID(), To: middle.ID(), FromMount: 0, ToMount: 1}, made[0])

	assert.Equal(t, 1, w.graph.Len())
	parent, ok := w.graph.ParentOf(middle.ID())
	require.True(t, ok)
	assert.Equal(t, made[0], *parent)
	assert.Empty(t, w.graph.ConnectionsFrom(left.ID()))
	assert.Equal(t, 0, middle.Meta.ParentMount)
	assert.Equal(t, 1, middle.Meta.MountOn)

	assertVec(t, cp.Vector{}, middle.WorldPosition(w))
	assert.InDelta(t, 1, math.Cos(middle.WorldAngle(w)), eps)

	ship, ok := w.ShipOf(middle)
	require.True(t, ok)
	assert.True(t, ship.Has(right.ID()))
	assert.False(t, ship.Has(left.ID()))
	_, attached := left.Attachment()
	assert.False(t, attached)
}
