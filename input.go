package main

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/obj"
)

// Input holds one frame of polled keyboard and mouse state.
type Input struct {
	// Pressed and Released are the keys that changed this frame.
	Pressed  []ebiten.Key
	Released []ebiten.Key

	// Cursor is the mouse position in world coordinates.
	Cursor cp.Vector

	LeftPressed   bool
	LeftHeld      bool
	LeftReleased  bool
	RightPressed  bool
	RightHeld     bool
	RightReleased bool

	camera *Camera
}

func NewInput(camera *Camera) *Input {
	return &Input{camera: camera}
}

func (i *Input) Update() {
	i.Pressed = inpututil.AppendJustPressedKeys(i.Pressed[:0])
	i.Released = inpututil.AppendJustReleasedKeys(i.Released[:0])

	mx, my := ebiten.CursorPosition()
	i.Cursor = i.camera.ScreenToWorld(float64(mx), float64(my))

	i.LeftPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	i.LeftHeld = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	i.LeftReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	i.RightPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	i.RightHeld = ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	i.RightReleased = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight)
}

// JustPressed reports whether k went down this frame.
func (i *Input) JustPressed(k ebiten.Key) bool {
	return slices.Contains(i.Pressed, k)
}

// triggerCode names a key the way ship schemes bind it ("W", "Space").
func triggerCode(k ebiten.Key) obj.TriggerCode {
	return obj.TriggerCode(k.String())
}
