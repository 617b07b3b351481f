package obj

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainShip builds cockpit -> tube -> thruster(W) plus a cannon(S) on the cockpit.
func chainShip(t *testing.T, w *World) (*Ship, *Module, *Module, *Module, *Module) {
	t.Helper()
	ship, err := w.BuildFromScheme(&prefabs.Scheme{
		Type: "Cockpit",
		X:    float64Ptr(0),
		Y:    float64Ptr(0),
		Mounts: map[int]*prefabs.Scheme{
			1: {Type: "Tube", MountOn: intPtr(0), Mounts: map[int]*prefabs.Scheme{
				1: {Type: "Thruster", MountOn: intPtr(2), Angle: 180, Triggers: map[string]string{"W": "thrust"}},
			}},
			3: {Type: "Cannon", MountOn: intPtr(2), Angle: 90, Triggers: map[string]string{"S": "fire"}},
		},
	})
	require.NoError(t, err)
	byKind := map[Kind]*Module{}
	for _, e := range ship.Children() {
		m, _ := w.Module(e)
		byKind[m.Kind()] = m
	}
	return ship, byKind[KindCockpit], byKind[KindTube], byKind[KindThruster], byKind[KindCannon]
}

func TestStartTriggerLatchesDownstream(t *testing.T) {
	w := newTestWorld(t)
	ship, cockpit, tube, thruster, cannon := chainShip(t, w)

	require.True(t, w.StartTrigger(ship, "W", true))
	assert.True(t, thruster.TriggerValue("W"))
	assert.False(t, cannon.TriggerValue("S"))
	assert.Empty(t, tube.Triggers())

	require.True(t, w.StartTrigger(ship, "W", false))
	assert.False(t, thruster.TriggerValue("W"))

	assert.False(t, cockpit.Trigger("W", true), "cockpits ignore their own triggers")
	assert.False(t, w.StartTrigger(w.NewShip(0, 0, 0), "W", true), "no cockpit")
}

func TestThrustDrawsPowerAndPushes(t *testing.T) {
	w := newTestWorld(t)
	ship, _, _, thruster, _ := chainShip(t, w)

	w.Update()
	assert.Zero(t, ship.Body().Velocity().Length())

	w.StartTrigger(ship, "W", true)
	w.Update()
	assert.InDelta(t, 99.5, thruster.Battery().Level(), eps)
	assert.Greater(t, ship.Body().Velocity().Length(), 0.0)
	assert.InDelta(t, 0.9, thruster.DrawData(w).Thrust, eps, "flame decays in the same pass")

	w.StartTrigger(ship, "W", false)
	w.Update()
	assert.InDelta(t, 0.8, thruster.DrawData(w).Thrust, eps)
}

func TestThrustWithoutPowerDoesNothing(t *testing.T) {
	w := newTestWorld(t)
	m := mustModule(t, w, KindThruster, 0, 0, 0, nil)
	m.Battery().Set(100, 0.2)
	m.Trigger("W", true)

	w.Update()
	assert.Zero(t, m.Body(w).Velocity().Length())
	assert.InDelta(t, 0.2, m.Battery().Level(), eps)
}

func TestCockpitDistributesPower(t *testing.T) {
	w := newTestWorld(t)
	cockpit := mustModule(t, w, KindCockpit, 0, 0, 0, nil)
	empty := mustModule(t, w, KindThruster, 100, 0, 0, map[TriggerCode]string{})
	nearlyFull := mustModule(t, w, KindThruster, -100, 0, 0, map[TriggerCode]string{})
	empty.Battery().Set(100, 0)
	nearlyFull.Battery().Set(100, 80)
	_, err := w.graph.Connect(cockpit.ID(), empty.ID(), 1, 2)
	require.NoError(t, err)
	_, err = w.graph.Connect(cockpit.ID(), nearlyFull.ID(), 0, 2)
	require.NoError(t, err)

	w.Update()
	assert.InDelta(t, 5, empty.Battery().Level(), eps)
	assert.InDelta(t, 80+5.0/81.0, nearlyFull.Battery().Level(), eps)
	assert.InDelta(t, 200-5-5.0/81.0, cockpit.Battery().Level(), eps)
	assert.InDelta(t, 5, empty.LastPower(), eps)
}

func TestDrainedCockpitHoldsPower(t *testing.T) {
	w := newTestWorld(t)
	cockpit := mustModule(t, w, KindCockpit, 0, 0, 0, nil)
	rx := mustModule(t, w, KindThruster, 100, 0, 0, map[TriggerCode]string{})
	rx.Battery().Set(100, 0)
	cockpit.Battery().Set(200, 0)
	_, err := w.graph.Connect(cockpit.ID(), rx.ID(), 1, 2)
	require.NoError(t, err)

	w.Update()
	assert.InDelta(t, 2, cockpit.Battery().Level(), eps, "1% is below the sharing threshold")
	assert.Zero(t, rx.Battery().Level())
}

func TestCannonFiresRocketWithCooldown(t *testing.T) {
	w := newTestWorld(t)
	ship, _, _, _, cannon := chainShip(t, w)
	rockets := func() []*Module {
		var out []*Module
		for _, m := range w.Modules() {
			if m.Kind() == KindRocket {
				out = append(out, m)
			}
		}
		return out
	}

	w.StartTrigger(ship, "S", true)
	w.Update()
	require.Len(t, rockets(), 1)
	assert.InDelta(t, 90, cannon.Battery().Level(), eps)

	r := rockets()[0]
	assert.False(t, r.Compatible())
	assert.True(t, r.IsProjectile())
	assert.InDelta(t, cannon.WorldAngle(w)+3.141592653589793, r.WorldAngle(w), eps)

	w.Update()
	assert.Len(t, rockets(), 1, "cooldown blocks a second shot")

	w.StartTrigger(ship, "S", false)
	for i := 0; i < 200; i++ {
		w.Update()
	}
	assert.Empty(t, rockets(), "rockets expire")
}

func TestRocketHitDetachesTarget(t *testing.T) {
	w := newTestWorld(t)
	ship, _, tube, thruster, _ := chainShip(t, w)
	launcher := mustModule(t, w, KindCannon, 500, 500, 0, nil)
	rocket := w.spawnRocket(launcher)

	w.rocketHit(rocket.ID(), tube.ID())
	_, ok := w.Module(rocket.ID())
	require.True(t, ok, "collision work is deferred")
	_, attached := tube.Attachment()
	require.True(t, attached)

	w.Update()
	_, ok = w.Module(rocket.ID())
	assert.False(t, ok)
	_, attached = tube.Attachment()
	assert.False(t, attached)
	assert.False(t, ship.Has(tube.ID()))
	assert.True(t, ship.Has(thruster.ID()), "downstream modules stay on the ship")
	assert.Empty(t, w.graph.ConnectionsFor(tube.ID()))
}

func TestRocketCollisionThroughPhysics(t *testing.T) {
	w := newTestWorld(t)
	ship, err := w.BuildFromScheme(&prefabs.Scheme{Type: "Cockpit", X: float64Ptr(300), Y: float64Ptr(0)})
	require.NoError(t, err)
	target, _ := w.Module(ship.Cockpit())
	launcher := mustModule(t, w, KindCannon, 450, 0, 0, map[TriggerCode]string{})
	w.spawnRocket(launcher)

	for i := 0; i < 170; i++ {
		w.Update()
		if _, attached := target.Attachment(); !attached {
			break
		}
	}
	_, attached := target.Attachment()
	assert.False(t, attached, "rocket should knock the cockpit off its ship")
}

func TestScriptedAction(t *testing.T) {
	w := newTestWorld(t)
	m := mustModule(t, w, KindThruster, 0, 0, 0, map[TriggerCode]string{"P": "pulse"})
	m.Trigger("P", true)

	w.Update()
	assert.InDelta(t, 96, m.Battery().Level(), eps)
	assertVec(t, cp.Vector{X: 0, Y: 0.6}, m.Body(w).Velocity())

	_, err := w.NewModule(KindTube, 0, 0, 0, map[TriggerCode]string{"X": "no_such_script"})
	assert.ErrorIs(t, err, ErrUnknownAction)
	_, err = w.NewModule(KindTube, 0, 0, 0, map[TriggerCode]string{"X": "thrust"})
	assert.ErrorIs(t, err, ErrUnknownAction, "thrust is not a tube action")
}

func TestScheduledRemovalRunsBeforeStep(t *testing.T) {
	w := newTestWorld(t)
	m := mustModule(t, w, KindTube, 0, 0, 0, nil)
	w.ScheduleRemove(m.ID())
	w.ScheduleRemove(m.ID())
	_, ok := w.Module(m.ID())
	assert.True(t, ok)

	w.Update()
	_, ok = w.Module(m.ID())
	assert.False(t, ok)
	assert.Empty(t, w.FreeModules())
	assert.Equal(t, uint64(1), w.Frame())
}

func TestDefaultTriggersAndDrawData(t *testing.T) {
	w := newTestWorld(t)
	thruster := mustModule(t, w, KindThruster, 10, 20, 0, nil)
	tube := mustModule(t, w, KindTube, 0, 0, 0, nil)

	assert.Equal(t, map[string]string{"W": "thrust"}, thruster.TriggerMap())
	assert.Nil(t, tube.TriggerMap())

	d := thruster.DrawData(w)
	assert.Equal(t, KindThruster, d.Kind)
	assert.Len(t, d.Polygon, 4)
	assert.Len(t, d.Mounts, 3)
	assert.True(t, d.HasBattery)
	assert.Equal(t, 100, d.Charge)
	assertVec(t, cp.Vector{X: 20, Y: 20}, d.Mounts[2].Position)
	assert.False(t, tube.DrawData(w).HasBattery)
	assert.Len(t, w.DrawData(), 2)
}

func TestBeamFiresAlongMuzzle(t *testing.T) {
	cases := []struct {
		name     string
		level    float64
		sameShip bool
		end      cp.Vector
		hit      bool
		spent    float64
	}{
		{"hits free module", 100, false, cp.Vector{X: -65, Y: 0}, true, 1},
		{"empty battery", 0, false, cp.Vector{}, false, 0},
		{"ignores own ship", 100, true, cp.Vector{X: -316, Y: 0}, false, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := newTestWorld(t)
			emitter := mustModule(t, w, KindBeam, 0, 0, 0, nil)
			target := mustModule(t, w, KindTube, -100, 0, 0, nil)
			if c.sameShip {
				s := w.NewShip(0, 0, 0)
				require.Equal(t, 2, s.AddModules(w, emitter, target))
			}
			emitter.Battery().Set(100, c.level)

			emitter.Trigger("L", true)
			w.Update()

			assert.InDelta(t, c.level-c.spent, emitter.Battery().Level(), eps)
			d := emitter.DrawData(w)
			if c.spent == 0 {
				assert.Empty(t, d.Beam)
				assertVec(t, cp.Vector{}, target.WorldVelocity(w))
				return
			}
			require.Len(t, d.Beam, 2)
			assertVec(t, cp.Vector{X: -16, Y: 0}, d.Beam[0])
			assert.InDelta(t, c.end.X, d.Beam[1].X, 1e-3)
			assert.InDelta(t, c.end.Y, d.Beam[1].Y, 1e-3)
			if c.hit {
				assertVec(t, cp.Vector{X: -beamImpulse / target.Mass(), Y: 0}, target.WorldVelocity(w))
			} else {
				assertVec(t, cp.Vector{}, target.WorldVelocity(w))
			}
		})
	}
}
