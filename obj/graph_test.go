package obj

import (
	"testing"

	"github.com/milk9111/modular/ecs"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRules(t *testing.T) {
	a, b, c := ecs.Entity(1), ecs.Entity(2), ecs.Entity(3)
	cases := []struct {
		name    string
		setup   [][2]ecs.Entity
		from    ecs.Entity
		to      ecs.Entity
		wantErr error
	}{
		{"fresh", nil, a, b, nil},
		{"self", nil, a, a, ErrSelfConnection},
		{"duplicate", [][2]ecs.Entity{{a, b}}, a, b, ErrAlreadyConnected},
		{"second_parent", [][2]ecs.Entity{{a, b}}, c, b, ErrHasParent},
		{"reverse_edge_allowed", [][2]ecs.Entity{{a, b}}, b, a, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := NewConnectionGraph(zerolog.Nop())
			for _, e := range tc.setup {
				_, err := g.Connect(e[0], e[1], 0, 0)
				require.NoError(t, err)
			}
			conn, err := g.Connect(tc.from, tc.to, 1, 2)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, conn)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Connection{From: tc.from, To: tc.to, FromMount: 1, ToMount: 2}, *conn)
		})
	}
}

func TestGraphQueriesAndRemoval(t *testing.T) {
	g := NewConnectionGraph(zerolog.Nop())
	a, b, c, d := ecs.Entity(1), ecs.Entity(2), ecs.Entity(3), ecs.Entity(4)
	for _, e := range [][2]ecs.Entity{{a, b}, {a, c}, {b, d}} {
		_, err := g.Connect(e[0], e[1], 0, 0)
		require.NoError(t, err)
	}

	from := g.ConnectionsFrom(a)
	require.Len(t, from, 2)
	assert.Equal(t, b, from[0].To)
	assert.Equal(t, c, from[1].To)
	assert.Len(t, g.ConnectionsFor(b), 2)

	parent, ok := g.ParentOf(d)
	require.True(t, ok)
	assert.Equal(t, b, parent.From)
	_, ok = g.ParentOf(a)
	assert.False(t, ok)

	assert.Equal(t, 2, g.RemoveForObject(b))
	assert.Equal(t, 1, g.Len())
	assert.Empty(t, g.ConnectionsFor(b))
	assert.Equal(t, 0, g.RemoveForObject(b))

	assert.True(t, g.Disconnect(a, c))
	assert.False(t, g.Disconnect(a, c))
	assert.Equal(t, 0, g.Len())
}

func TestWalkPreorder(t *testing.T) {
	g := NewConnectionGraph(zerolog.Nop())
	// 1 -> 2 -> 4, 1 -> 3 -> 5, 2 -> 6
	edges := [][2]ecs.Entity{{1, 2}, {1, 3}, {2, 4}, {3, 5}, {2, 6}}
	for _, e := range edges {
		_, err := g.Connect(e[0], e[1], 0, 0)
		require.NoError(t, err)
	}
	assert.Equal(t, []ecs.Entity{2, 4, 6, 3, 5}, g.Descendants(1))
	assert.Equal(t, []ecs.Entity{4, 6}, g.Descendants(2))
	assert.Empty(t, g.Descendants(5))
}

func TestWalkTerminatesOnLoop(t *testing.T) {
	g := NewConnectionGraph(zerolog.Nop())
	for _, e := range [][2]ecs.Entity{{1, 2}, {2, 3}, {3, 1}} {
		_, err := g.Connect(e[0], e[1], 0, 0)
		require.NoError(t, err)
	}
	assert.Equal(t, []ecs.Entity{2, 3}, g.Descendants(1))

	first := g.ConnectionsFrom(1)[0]
	assert.True(t, g.TestLoop(first))
	assert.Len(t, g.FindLoops(), 3)
	assert.Equal(t, 3, g.Len(), "loop check must not change the graph")

	tree := NewConnectionGraph(zerolog.Nop())
	conn, err := tree.Connect(1, 2, 0, 0)
	require.NoError(t, err)
	assert.False(t, tree.TestLoop(conn))
	assert.Empty(t, tree.FindLoops())
}
