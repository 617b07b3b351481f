package obj

import (
	"fmt"

	"github.com/milk9111/modular/ecs"
	"github.com/rs/zerolog"
)

// Connection is a directed parent->child edge between two modules' mounts.
type Connection struct {
	From      ecs.Entity
	To        ecs.Entity
	FromMount int
	ToMount   int
}

func (c Connection) String() string {
	return fmt.Sprintf("%s[%d] -> %s[%d]", c.From, c.FromMount, c.To, c.ToMount)
}

// ConnectionGraph stores the mount graph. Every module has at most one
// inbound edge, so well-formed graphs are forests rooted at cockpits.
type ConnectionGraph struct {
	log   zerolog.Logger
	edges []*Connection
}

func NewConnectionGraph(log zerolog.Logger) *ConnectionGraph {
	return &ConnectionGraph{log: log}
}

func (g *ConnectionGraph) Connect(from, to ecs.Entity, fromMount, toMount int) (*Connection, error) {
	if from == to {
		return nil, fmt.Errorf("%w: %s", ErrSelfConnection, from)
	}
	for _, c := range g.edges {
		if c.From == from && c.To == to {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyConnected, c)
		}
		if c.To == to {
			return nil, fmt.Errorf("%w: %s", ErrHasParent, c)
		}
	}
	c := &Connection{From: from, To: to, FromMount: fromMount, ToMount: toMount}
	g.edges = append(g.edges, c)
	return c, nil
}

func (g *ConnectionGraph) Disconnect(from, to ecs.Entity) bool {
	for i, c := range g.edges {
		if c.From == from && c.To == to {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return true
		}
	}
	return false
}

// ConnectionsFrom returns x's outbound edges in insertion order.
func (g *ConnectionGraph) ConnectionsFrom(x ecs.Entity) []*Connection {
	var out []*Connection
	for _, c := range g.edges {
		if c.From == x {
			out = append(out, c)
		}
	}
	return out
}

// ConnectionsFor returns every edge touching x.
func (g *ConnectionGraph) ConnectionsFor(x ecs.Entity) []*Connection {
	var out []*Connection
	for _, c := range g.edges {
		if c.From == x || c.To == x {
			out = append(out, c)
		}
	}
	return out
}

func (g *ConnectionGraph) ParentOf(x ecs.Entity) (*Connection, bool) {
	for _, c := range g.edges {
		if c.To == x {
			return c, true
		}
	}
	return nil, false
}

// RemoveForObject drops every edge touching x and returns how many went.
func (g *ConnectionGraph) RemoveForObject(x ecs.Entity) int {
	kept := g.edges[:0]
	removed := 0
	for _, c := range g.edges {
		if c.From == x || c.To == x {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(g.edges); i++ {
		g.edges[i] = nil
	}
	g.edges = kept
	return removed
}

func (g *ConnectionGraph) Len() int {
	return len(g.edges)
}

// All returns a copy of every edge in insertion order.
func (g *ConnectionGraph) All() []Connection {
	out := make([]Connection, 0, len(g.edges))
	for _, c := range g.edges {
		out = append(out, *c)
	}
	return out
}

// Walk visits root's descendants depth-first in preorder, following edges
// in insertion order. Each module is visited at most once, which keeps
// malformed cyclic graphs from recursing forever; root itself is never
// visited.
func (g *ConnectionGraph) Walk(root ecs.Entity, visit func(ecs.Entity)) {
	seen := map[ecs.Entity]bool{root: true}
	var walk func(ecs.Entity)
	walk = func(x ecs.Entity) {
		for _, c := range g.ConnectionsFrom(x) {
			if seen[c.To] {
				continue
			}
			seen[c.To] = true
			visit(c.To)
			walk(c.To)
		}
	}
	walk(root)
}

// Descendants lists Walk order.
func (g *ConnectionGraph) Descendants(root ecs.Entity) []ecs.Entity {
	var out []ecs.Entity
	g.Walk(root, func(e ecs.Entity) { out = append(out, e) })
	return out
}

// TestLoop reports whether following edges from c leads back to c.From.
// It is diagnostic only and never changes the graph.
func (g *ConnectionGraph) TestLoop(c *Connection) bool {
	if c == nil {
		return false
	}
	if c.To == c.From {
		return true
	}
	loop := false
	g.Walk(c.To, func(e ecs.Entity) {
		if e == c.From {
			loop = true
		}
	})
	if loop {
		g.log.Warn().Stringer("connection", c).Msg("connection loop detected")
	}
	return loop
}

// FindLoops runs TestLoop on every edge and returns the ones closing a loop.
func (g *ConnectionGraph) FindLoops() []Connection {
	var out []Connection
	for _, c := range g.edges {
		if g.TestLoop(c) {
			out = append(out, *c)
		}
	}
	return out
}
