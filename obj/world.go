package obj

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/common"
	"github.com/milk9111/modular/ecs"
	"github.com/milk9111/modular/prefabs"
	"github.com/rs/zerolog"
)

const (
	cockpitGeneration     = 2.0
	cockpitShareThreshold = 2
)

// Options tunes the simulation. Zero fields take the defaults.
type Options struct {
	SubSteps      int
	Dt            float64
	Damping       float64
	SnapEpsilon   float64
	BreakDistance float64
	BreakAngle    float64
	BeamRange     float64
}

func DefaultOptions() Options {
	return Options{
		SubSteps:      common.SubSteps,
		Dt:            common.Dt,
		Damping:       1,
		SnapEpsilon:   5,
		BreakDistance: 10,
		BreakAngle:    1,
		BeamRange:     300,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SubSteps <= 0 {
		o.SubSteps = d.SubSteps
	}
	if o.Dt <= 0 {
		o.Dt = d.Dt
	}
	if o.Damping <= 0 {
		o.Damping = d.Damping
	}
	if o.SnapEpsilon <= 0 {
		o.SnapEpsilon = d.SnapEpsilon
	}
	if o.BreakDistance <= 0 {
		o.BreakDistance = d.BreakDistance
	}
	if o.BreakAngle <= 0 {
		o.BreakAngle = d.BreakAngle
	}
	if o.BeamRange <= 0 {
		o.BeamRange = d.BeamRange
	}
	return o
}

type requestKind int

const (
	requestRemove requestKind = iota + 1
	requestDetach
)

// request is structural work deferred out of physics callbacks.
type request struct {
	kind   requestKind
	target ecs.Entity
}

// World is the simulation context: every module, ship, edge and body lives
// here, and handles from one World mean nothing to another.
type World struct {
	log       zerolog.Logger
	opts      Options
	physics   *PhysicsWorld
	modules   ecs.Registry[*Module]
	ships     ecs.Registry[*Ship]
	graph     *ConnectionGraph
	requests  ecs.Queue[request]
	scheduler *ecs.Scheduler[*World]
	defs      map[Kind]*kindDef
	scripts   *scriptCache
	free      map[ecs.Entity]struct{}
	frame     uint64
}

func NewWorld(log zerolog.Logger, opts Options) (*World, error) {
	specs, err := prefabs.LoadModuleSpecs()
	if err != nil {
		return nil, fmt.Errorf("obj: new world: %w", err)
	}
	defs, err := newKindDefs(specs)
	if err != nil {
		return nil, fmt.Errorf("obj: new world: %w", err)
	}

	opts = opts.withDefaults()
	w := &World{
		log:     log.With().Str("component", "world").Logger(),
		opts:    opts,
		physics: NewPhysicsWorld(log.With().Str("component", "physics").Logger(), opts.Damping),
		graph:   NewConnectionGraph(log.With().Str("component", "graph").Logger()),
		defs:    defs,
		scripts: newScriptCache(log.With().Str("component", "scripts").Logger()),
		free:    make(map[ecs.Entity]struct{}),
	}
	w.physics.onRocketHit = w.rocketHit
	w.scheduler = ecs.NewScheduler[*World](
		ecs.SystemFunc[*World](powerSystem),
		ecs.SystemFunc[*World](moduleSystem),
		ecs.SystemFunc[*World](projectileSystem),
	)
	return w, nil
}

func (w *World) Options() Options { return w.opts }
func (w *World) Graph() *ConnectionGraph { return w.graph }
func (w *World) Physics() *PhysicsWorld { return w.physics }
func (w *World) Frame() uint64 { return w.frame }
func (w *World) Logger() zerolog.Logger { return w.log }

func (w *World) Module(e ecs.Entity) (*Module, bool) {
	return w.modules.Get(e)
}

func (w *World) Ship(e ecs.Entity) (*Ship, bool) {
	return w.ships.Get(e)
}

// Modules returns every live module, projectiles included, in creation order.
func (w *World) Modules() []*Module {
	out := make([]*Module, 0, w.modules.Len())
	w.modules.Each(func(_ ecs.Entity, m *Module) { out = append(out, m) })
	return out
}

func (w *World) Ships() []*Ship {
	out := make([]*Ship, 0, w.ships.Len())
	w.ships.Each(func(_ ecs.Entity, s *Ship) { out = append(out, s) })
	return out
}

// FreeModules returns the editable modules not attached to any ship.
func (w *World) FreeModules() []*Module {
	var out []*Module
	w.modules.Each(func(e ecs.Entity, m *Module) {
		if _, ok := w.free[e]; ok {
			out = append(out, m)
		}
	})
	return out
}

// ShipOf returns the ship m is attached to.
func (w *World) ShipOf(m *Module) (*Ship, bool) {
	st, ok := m.Attachment()
	if !ok {
		return nil, false
	}
	return w.Ship(st.Ship)
}

// NewModule creates a standalone module. A nil trigger map takes the kind's
// default bindings; an empty one means no bindings.
func (w *World) NewModule(kind Kind, x, y, angleDeg float64, triggers map[TriggerCode]string) (*Module, error) {
	def, ok := w.defs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if triggers == nil {
		triggers = def.triggers
	}
	for code, action := range triggers {
		if err := w.checkAction(def, action); err != nil {
			return nil, fmt.Errorf("obj: %s trigger %s: %w", kind, code, err)
		}
	}
	return w.newModule(def, cp.Vector{X: x, Y: y}, common.DegToRad(angleDeg), triggers), nil
}

func (w *World) checkAction(def *kindDef, action string) error {
	if def.actions[action] {
		return nil
	}
	if _, err := w.scripts.get(action); err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return nil
}

func (w *World) newModule(def *kindDef, pos cp.Vector, angle float64, triggers map[TriggerCode]string) *Module {
	m := &Module{
		def:      def,
		battery:  NewBattery(def.battery),
		triggers: newTriggers(triggers),
		behavior: newBehavior(def.kind),
	}
	m.id = w.modules.Create(m)
	for i, md := range def.mounts {
		m.mounts = append(m.mounts, &MountPoint{
			Local:     md.local,
			Angle:     md.angle,
			Index:     i,
			Owner:     m.id,
			Highlight: highlightIdle,
		})
	}

	body := cp.NewBody(def.mass, def.moment)
	body.SetPosition(pos)
	body.SetAngle(angle)
	body.UserData = m.id
	w.physics.AddBody(body)
	m.state = Standalone{Body: body}
	w.reshape(m, body, cp.Vector{}, 0, moduleGroup(m.id))

	m.Meta = Metadata{
		X:           pos.X,
		Y:           pos.Y,
		Angle:       common.RadToDeg(angle),
		Compatible:  def.editable,
		ParentMount: -1,
		MountOn:     -1,
	}
	if def.editable {
		w.free[m.id] = struct{}{}
	}
	return m
}

// reshape replaces m's collision shape with one on body at the given pose.
func (w *World) reshape(m *Module, body *cp.Body, offset cp.Vector, angle float64, group uint) {
	w.physics.RemoveShape(m.shape)
	verts := transformPoly(m.def.geometry, offset, angle)
	shape := cp.NewPolyShape(body, len(verts), verts, cp.NewTransformIdentity(), 0)
	shape.SetFriction(0.7)
	shape.SetElasticity(0.2)
	if m.def.projectile {
		shape.SetCollisionType(collisionTypeRocket)
	} else {
		shape.SetCollisionType(collisionTypeModule)
	}
	shape.UserData = m.id
	m.shape = shape
	w.physics.AddShape(shape, m.id, group)
}

// Ship and module handles come from separate registries, so the filter
// groups are tagged to keep them apart.
func moduleGroup(e ecs.Entity) uint { return uint(e) << 1 }
func shipGroup(e ecs.Entity) uint { return uint(e)<<1 | 1 }

func (m *Module) group(w *World) uint {
	if st, ok := m.Attachment(); ok {
		return shipGroup(st.Ship)
	}
	return moduleGroup(m.id)
}

// NewShip creates an empty ship at a world pose. Its body joins the space
// with the first attached module.
func (w *World) NewShip(x, y, angle float64) *Ship {
	body := cp.NewBody(1, 1)
	body.SetPosition(cp.Vector{X: x, Y: y})
	body.SetAngle(angle)
	s := &Ship{body: body}
	s.id = w.ships.Create(s)
	body.UserData = s.id
	return s
}

// RemoveModule destroys a module, detaching it first when attached.
func (w *World) RemoveModule(e ecs.Entity) bool {
	m, ok := w.Module(e)
	if !ok {
		return false
	}
	if _, attached := m.Attachment(); attached {
		w.Detach(m)
	}
	if st, ok := m.state.(Standalone); ok {
		w.physics.RemoveShape(m.shape)
		w.physics.RemoveBody(st.Body)
	}
	w.graph.RemoveForObject(e)
	delete(w.free, e)
	w.modules.Destroy(e)
	return true
}

// RemoveShip destroys every module on s. The empty ship record stays.
func (w *World) RemoveShip(s *Ship) int {
	if s == nil {
		return 0
	}
	n := 0
	for _, e := range s.Children() {
		if w.RemoveModule(e) {
			n++
		}
	}
	return n
}

func (w *World) ScheduleRemove(e ecs.Entity) {
	w.requests.Push(request{kind: requestRemove, target: e})
}

func (w *World) ScheduleDetach(e ecs.Entity) {
	w.requests.Push(request{kind: requestDetach, target: e})
}

func (w *World) flush() {
	for _, req := range w.requests.Drain() {
		switch req.kind {
		case requestRemove:
			w.RemoveModule(req.target)
		case requestDetach:
			if m, ok := w.Module(req.target); ok {
				w.Detach(m)
			}
		}
	}
}

func (w *World) rocketHit(rocket, target ecs.Entity) {
	w.ScheduleRemove(rocket)
	if m, ok := w.Module(target); ok {
		if _, attached := m.Attachment(); attached {
			w.ScheduleDetach(target)
		}
	}
}

// Update advances one frame: deferred work and physics per sub-step, then
// the power, module and projectile passes.
func (w *World) Update() {
	for i := 0; i < w.opts.SubSteps; i++ {
		w.flush()
		w.physics.Step(w.opts.Dt)
	}
	w.scheduler.Update(w)
	w.frame++
}

// StartTrigger sends a control value from a ship's cockpit.
func (w *World) StartTrigger(s *Ship, code TriggerCode, value bool) bool {
	if s == nil {
		return false
	}
	cockpit, ok := w.Module(s.cockpit)
	if !ok {
		return false
	}
	cockpit.StartTrigger(w, code, value)
	return true
}

func (w *World) perform(m *Module, action string) {
	if m.behavior.perform(w, m, action) {
		return
	}
	w.runScript(m, action)
}

// InvalidateScript drops a cached script after its file changed.
func (w *World) InvalidateScript(action string) {
	w.scripts.Invalidate(action)
}

func (w *World) spawnRocket(src *Module) *Module {
	def := w.defs[KindRocket]
	pos := src.LocalToWorld(w, src.def.muzzle)
	angle := src.WorldAngle(w) + math.Pi
	r := w.newModule(def, pos, angle, map[TriggerCode]string{})
	r.state.(Standalone).Body.SetVelocityVector(src.WorldVelocity(w))
	w.physics.SetGroup(r.shape, src.group(w))
	return r
}

// powerSystem charges cockpits and lets everything downstream pull power.
func powerSystem(w *World) {
	w.modules.Each(func(e ecs.Entity, m *Module) {
		if m.def.kind != KindCockpit {
			return
		}
		m.battery.AddPower(cockpitGeneration)
		if m.battery.Percentage() <= cockpitShareThreshold {
			return
		}
		w.graph.Walk(e, func(child ecs.Entity) {
			if c, ok := w.Module(child); ok {
				c.ReceivePower(m.battery)
			}
		})
	})
}

func moduleSystem(w *World) {
	w.modules.Each(func(_ ecs.Entity, m *Module) {
		if m.def.projectile {
			return
		}
		m.handleTriggers(w)
		m.behavior.update(w, m)
	})
}

func projectileSystem(w *World) {
	w.modules.Each(func(_ ecs.Entity, m *Module) {
		if !m.def.projectile {
			return
		}
		m.behavior.update(w, m)
	})
}
