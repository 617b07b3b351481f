package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/modular/common"
	"github.com/milk9111/modular/config"
	"github.com/milk9111/modular/hangar"
	"github.com/milk9111/modular/logging"
	"github.com/milk9111/modular/obj"
	"github.com/milk9111/modular/prefabs"
	"github.com/rs/zerolog"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
)

type scene int

const (
	sceneSpace scene = iota
	sceneEditor
)

func (s scene) String() string {
	if s == sceneEditor {
		return "editor"
	}
	return "space"
}

// reservedKeys drive the shell and never reach ship triggers.
var reservedKeys = map[ebiten.Key]bool{
	ebiten.KeyE:      true,
	ebiten.KeyB:      true,
	ebiten.KeyN:      true,
	ebiten.KeyZ:      true,
	ebiten.KeyEscape: true,
}

// paletteKeys spawn a loose module at the cursor in the editor.
var paletteKeys = map[ebiten.Key]obj.Kind{
	ebiten.KeyDigit1: obj.KindTube,
	ebiten.KeyDigit2: obj.KindThruster,
	ebiten.KeyDigit3: obj.KindCannon,
	ebiten.KeyDigit4: obj.KindBeam,
	ebiten.KeyDigit5: obj.KindCockpit,
}

type Game struct {
	log zerolog.Logger
	cfg config.Config

	world   *obj.World
	editor  *obj.Editor
	hangar  *hangar.Hangar
	watcher *prefabs.Watcher

	camera *Camera
	input  *Input

	scene      scene
	debug      debugMode
	paused     bool
	quit       bool
	pauseUI    *ebitenui.UI
	clipboard  bool
	schemePath string
	shipName   string

	// ship is the one the keyboard flies.
	ship *obj.Ship
}

func simOptions(cfg config.Config) obj.Options {
	return obj.Options{
		SubSteps:      cfg.Sim.SubSteps,
		Dt:            cfg.Sim.Dt,
		Damping:       cfg.Sim.Damping,
		SnapEpsilon:   cfg.Editor.SnapEpsilon,
		BreakDistance: cfg.Editor.BreakDistance,
		BreakAngle:    cfg.Editor.BreakAngle,
		BeamRange:     cfg.Weapons.BeamRange,
	}
}

// schemeFilePath resolves a bare scheme file name into prefabs/.
func schemeFilePath(name string) string {
	if filepath.IsAbs(name) || strings.ContainsRune(filepath.ToSlash(name), '/') {
		return name
	}
	return filepath.Join("prefabs", name)
}

func NewGame(cfg config.Config, log zerolog.Logger) (*Game, error) {
	world, err := obj.NewWorld(logging.Component(log, "obj"), simOptions(cfg))
	if err != nil {
		return nil, err
	}

	path := schemeFilePath(cfg.Scheme.File)
	camera := NewCamera(common.BaseWidth, common.BaseHeight, 1)
	g := &Game{
		log:        logging.Component(log, "game"),
		cfg:        cfg,
		world:      world,
		editor:     obj.NewEditor(world),
		camera:     camera,
		input:      NewInput(camera),
		schemePath: path,
		shipName:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
	}
	if err := g.loadShip(); err != nil {
		return nil, err
	}

	if h, err := hangar.Open(cfg.Hangar.Path, logging.Component(log, "hangar")); err != nil {
		g.log.Warn().Err(err).Msg("hangar unavailable")
	} else {
		g.hangar = h
	}

	if cfg.Scheme.Watch {
		dirs := []string{filepath.Dir(path), filepath.Join("prefabs", "scripts")}
		if w, err := prefabs.NewWatcher(dirs...); err != nil {
			g.log.Warn().Err(err).Msg("hot reload disabled")
		} else {
			g.watcher = w
		}
	}

	if err := clipboard.Init(); err != nil {
		g.log.Warn().Err(err).Msg("clipboard unavailable")
	} else {
		g.clipboard = true
	}

	g.pauseUI = NewPauseUI(g)
	return g, nil
}

// loadShip replaces the flown ship with the one in the scheme file.
func (g *Game) loadShip() error {
	s, err := prefabs.LoadScheme(g.schemePath)
	if err != nil {
		return err
	}
	ship, err := g.world.BuildFromScheme(s)
	if err != nil {
		return fmt.Errorf("game: build %s: %w", g.schemePath, err)
	}
	if g.ship != nil {
		g.world.RemoveShip(g.ship)
	}
	g.ship = ship
	if c, ok := g.world.Module(ship.Cockpit()); ok {
		g.camera.SnapTo(c.WorldPosition(g.world))
	}
	return nil
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	if g.hangar != nil {
		if err := g.hangar.Close(); err != nil {
			g.log.Warn().Err(err).Msg("hangar close")
		}
	}
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	g.input.Update()
	g.pollWatcher()

	if g.input.JustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	if g.input.JustPressed(ebiten.KeyZ) {
		g.debug = g.debug.next()
	}
	if g.input.JustPressed(ebiten.KeyE) {
		g.toggleEditor()
	}

	switch g.scene {
	case sceneSpace:
		g.updateSpace()
	case sceneEditor:
		g.updateEditor()
	}

	g.world.Update()

	if g.scene == sceneSpace {
		if c, ok := g.flown(); ok {
			g.camera.Follow(c.WorldPosition(g.world))
		}
	}
	return nil
}

func (g *Game) toggleEditor() {
	if g.scene == sceneEditor {
		g.editor.Release()
		g.scene = sceneSpace
	} else {
		g.scene = sceneEditor
	}
	g.log.Debug().Stringer("scene", g.scene).Msg("scene change")
}

// flown returns the cockpit of the ship under keyboard control, falling
// back to any other ship that still has one.
func (g *Game) flown() (*obj.Module, bool) {
	if g.ship != nil {
		if c, ok := g.world.Module(g.ship.Cockpit()); ok {
			return c, true
		}
	}
	for _, s := range g.world.Ships() {
		if c, ok := g.world.Module(s.Cockpit()); ok {
			g.ship = s
			return c, true
		}
	}
	return nil, false
}

func (g *Game) updateSpace() {
	if _, ok := g.flown(); ok {
		for _, k := range g.input.Pressed {
			if !reservedKeys[k] {
				g.world.StartTrigger(g.ship, triggerCode(k), true)
			}
		}
		for _, k := range g.input.Released {
			if !reservedKeys[k] {
				g.world.StartTrigger(g.ship, triggerCode(k), false)
			}
		}
	}

	if g.input.JustPressed(ebiten.KeyB) {
		g.saveShip()
	}
	if g.input.JustPressed(ebiten.KeyN) {
		g.loadSavedShip()
	}
}

func (g *Game) updateEditor() {
	in := g.input
	if in.LeftPressed || in.RightPressed {
		if m, ok := g.editor.Pick(in.Cursor); ok {
			g.editor.StartDrag(m, in.Cursor)
		}
	}
	if _, ok := g.editor.Selected(); ok {
		switch {
		case in.LeftHeld:
			g.editor.Drag(in.Cursor)
		case in.RightHeld:
			g.editor.Rotate(in.Cursor)
		}
		if in.LeftReleased || in.RightReleased {
			made := g.editor.Release()
			if len(made) > 0 {
				g.log.Debug().Int("connections", len(made)).Msg("module mounted")
			}
		}
	}
	if in.JustPressed(ebiten.KeyDelete) || in.JustPressed(ebiten.KeyBackspace) {
		g.editor.Discard()
	}

	for k, kind := range paletteKeys {
		if !in.JustPressed(k) {
			continue
		}
		if _, err := g.world.NewModule(kind, in.Cursor.X, in.Cursor.Y, 0, nil); err != nil {
			g.log.Warn().Err(err).Str("kind", string(kind)).Msg("spawn module")
		}
	}

	if in.JustPressed(ebiten.KeyC) {
		g.copyShip()
	}
	if in.JustPressed(ebiten.KeyV) {
		g.pasteShip(in.Cursor)
	}
}

func (g *Game) saveShip() {
	s, err := g.world.ShipScheme(g.ship)
	if err != nil {
		g.log.Warn().Err(err).Msg("save ship")
		return
	}
	if g.hangar != nil {
		if err := g.hangar.Save(g.shipName, s); err != nil {
			g.log.Error().Err(err).Msg("save ship")
			return
		}
	}
	path := filepath.Join(filepath.Dir(g.schemePath), g.shipName+".saved.msgpack")
	if err := prefabs.SaveScheme(path, s); err != nil {
		g.log.Error().Err(err).Msg("save ship")
		return
	}
	g.log.Info().Str("ship", g.shipName).Int("modules", s.Count()).Str("path", path).Msg("ship saved")
}

// loadSavedShip builds the hangar copy beside the flown ship.
func (g *Game) loadSavedShip() {
	var s *prefabs.Scheme
	var err error
	if g.hangar != nil {
		s, err = g.hangar.Load(g.shipName)
	} else {
		err = hangar.ErrNotFound
	}
	if errors.Is(err, hangar.ErrNotFound) {
		path := filepath.Join(filepath.Dir(g.schemePath), g.shipName+".saved.msgpack")
		s, err = prefabs.LoadScheme(path)
	}
	if err != nil {
		g.log.Warn().Err(err).Msg("load saved ship")
		return
	}
	if s.X != nil {
		x := *s.X + 200
		s.X = &x
	}
	if _, err := g.world.BuildFromScheme(s); err != nil {
		g.log.Error().Err(err).Msg("load saved ship")
	}
}

func (g *Game) copyShip() {
	if !g.clipboard {
		return
	}
	s, err := g.world.ShipScheme(g.ship)
	if err != nil {
		g.log.Warn().Err(err).Msg("copy ship")
		return
	}
	data, err := prefabs.MarshalScheme(s, prefabs.FormatYAML)
	if err != nil {
		g.log.Error().Err(err).Msg("copy ship")
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.log.Info().Int("modules", s.Count()).Msg("ship copied")
}

// pasteShip builds the clipboard scheme with its root at the cursor.
func (g *Game) pasteShip(at cp.Vector) {
	if !g.clipboard {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	if len(data) == 0 {
		return
	}
	s, err := prefabs.UnmarshalScheme(data, prefabs.FormatYAML)
	if err != nil {
		g.log.Warn().Err(err).Msg("paste ship")
		return
	}
	s.X, s.Y = &at.X, &at.Y
	if _, err := g.world.BuildFromScheme(s); err != nil {
		g.log.Warn().Err(err).Msg("paste ship")
	}
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case ch, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.applyChange(ch)
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn().Err(err).Msg("watcher")
			}
		default:
			return
		}
	}
}

func (g *Game) applyChange(ch prefabs.Change) {
	switch ch.Kind {
	case prefabs.ChangeScheme:
		if filepath.Clean(ch.Path) != filepath.Clean(g.schemePath) {
			return
		}
		if err := g.loadShip(); err != nil {
			g.log.Error().Err(err).Msg("reload ship")
			return
		}
		g.log.Info().Str("path", ch.Path).Msg("ship reloaded")
	case prefabs.ChangeScript:
		action := strings.TrimSuffix(filepath.Base(ch.Path), filepath.Ext(ch.Path))
		g.world.InvalidateScript(action)
		g.log.Info().Str("action", action).Msg("script reloaded")
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	drawModules(screen, g.camera, g.world.DrawData(), g.scene == sceneEditor)

	if g.debug >= debugShapes {
		drawPhysicsDebug(screen, g.camera, g.world.Physics().Space())
	}
	if g.debug >= debugStats {
		drawStats(screen, g.world, g.ship)
	}
	ebitenutil.DebugPrintAt(screen, g.scene.String(), 10, common.BaseHeight-20)

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
