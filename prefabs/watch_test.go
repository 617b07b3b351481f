package prefabs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want ChangeKind
	}{
		{"ship.yaml", ChangeScheme},
		{"a/b/ship.msgpack", ChangeScheme},
		{"scripts/pulse.tengo", ChangeScript},
		{"notes.txt", 0},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			assert.Equal(t, c.want, classify(c.path))
		})
	}
}

func TestWatcherReportsSchemeWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ship.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: Cockpit\n"), 0o644))

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("type: Tube\n"), 0o644))

	select {
	case change := <-w.Events:
		assert.Equal(t, ChangeScheme, change.Kind)
		assert.Equal(t, "ship.yaml", filepath.Base(change.Path))
	case <-time.After(5 * time.Second):
		t.Fatal("no change event")
	}
	assert.NoError(t, w.Close())
}
