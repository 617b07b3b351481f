package obj

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-6

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := NewWorld(zerolog.Nop(), DefaultOptions())
	require.NoError(t, err)
	return w
}

func mustModule(t *testing.T, w *World, kind Kind, x, y, deg float64, triggers map[TriggerCode]string) *Module {
	t.Helper()
	m, err := w.NewModule(kind, x, y, deg, triggers)
	require.NoError(t, err)
	return m
}

func assertVec(t *testing.T, want, got cp.Vector, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, eps, msgAndArgs...)
}

func intPtr(i int) *int {
	return &i
}

func float64Ptr(f float64) *float64 {
	return &f
}
