package obj

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/ecs"
	"github.com/rs/zerolog"
)

const (
	collisionTypeModule cp.CollisionType = iota + 1
	collisionTypeRocket
)

// PhysicsWorld owns the Chipmunk space and the shape -> module index.
type PhysicsWorld struct {
	log           zerolog.Logger
	space         *cp.Space
	handlersReady bool

	shapeToModule map[*cp.Shape]ecs.Entity
	bodies        map[*cp.Body]bool

	// onRocketHit is called from inside the step; it must only enqueue work.
	onRocketHit func(rocket, target ecs.Entity)
}

func NewPhysicsWorld(log zerolog.Logger, damping float64) *PhysicsWorld {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{})
	space.SetDamping(damping)

	pw := &PhysicsWorld{
		log:           log,
		space:         space,
		shapeToModule: make(map[*cp.Shape]ecs.Entity),
		bodies:        make(map[*cp.Body]bool),
	}
	pw.setupHandlers()
	return pw
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

func (pw *PhysicsWorld) AddBody(body *cp.Body) {
	if body == nil || pw.bodies[body] {
		return
	}
	pw.space.AddBody(body)
	pw.bodies[body] = true
}

func (pw *PhysicsWorld) RemoveBody(body *cp.Body) {
	if body == nil || !pw.bodies[body] {
		return
	}
	pw.space.RemoveBody(body)
	delete(pw.bodies, body)
}

func (pw *PhysicsWorld) HasBody(body *cp.Body) bool {
	return pw.bodies[body]
}

// AddShape indexes shape for owner. Shapes sharing a non-zero group never
// collide or see each other in queries.
func (pw *PhysicsWorld) AddShape(shape *cp.Shape, owner ecs.Entity, group uint) {
	if shape == nil {
		return
	}
	pw.SetGroup(shape, group)
	pw.space.AddShape(shape)
	pw.shapeToModule[shape] = owner
}

func (pw *PhysicsWorld) SetGroup(shape *cp.Shape, group uint) {
	shape.SetFilter(cp.NewShapeFilter(group, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))
}

func (pw *PhysicsWorld) RemoveShape(shape *cp.Shape) {
	if shape == nil {
		return
	}
	if _, ok := pw.shapeToModule[shape]; !ok {
		return
	}
	pw.space.RemoveShape(shape)
	delete(pw.shapeToModule, shape)
}

// Reindex refreshes cached shape bounds after a teleport.
func (pw *PhysicsWorld) Reindex(body *cp.Body) {
	if body == nil || !pw.bodies[body] {
		return
	}
	body.EachShape(func(s *cp.Shape) { s.CacheBB() })
}

func (pw *PhysicsWorld) ModuleFor(shape *cp.Shape) (ecs.Entity, bool) {
	e, ok := pw.shapeToModule[shape]
	return e, ok
}

func (pw *PhysicsWorld) Step(dt float64) {
	if pw == nil || pw.space == nil {
		return
	}
	pw.space.Step(dt)
}

// SegmentFirst returns the first module shape crossed by a->b, skipping
// shapes in group.
func (pw *PhysicsWorld) SegmentFirst(a, b cp.Vector, group uint) (ecs.Entity, cp.Vector, bool) {
	filter := cp.NewShapeFilter(group, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES)
	info := pw.space.SegmentQueryFirst(a, b, 0, filter)
	if info.Shape == nil {
		return 0, b, false
	}
	e, ok := pw.shapeToModule[info.Shape]
	if !ok {
		return 0, info.Point, false
	}
	return e, info.Point, true
}

func (pw *PhysicsWorld) setupHandlers() {
	if pw == nil || pw.handlersReady || pw.space == nil {
		return
	}

	rocketHandler := pw.space.NewCollisionHandler(collisionTypeRocket, collisionTypeModule)
	rocketHandler.UserData = pw
	rocketHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*PhysicsWorld)
		if !ok || world == nil {
			return false
		}
		shapeA, shapeB := arb.Shapes()
		rocketID, okA := world.shapeToModule[shapeA]
		targetID, okB := world.shapeToModule[shapeB]
		if !okA || !okB {
			return false
		}
		world.log.Debug().Stringer("rocket", rocketID).Stringer("target", targetID).Msg("rocket hit")
		if world.onRocketHit != nil {
			world.onRocketHit(rocketID, targetID)
		}
		return false
	}

	pw.handlersReady = true
}
