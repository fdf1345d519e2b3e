package app

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"gones/internal/cartridge"
	"gones/internal/console"
	"gones/internal/graphics"
)

// UIActionKind identifies which front-end action try_dequeue_ui_action
// returned, per spec.md §6.
type UIActionKind int

const (
	UIActionNone UIActionKind = iota
	UIActionLoadROM
	UIActionCloseROM
	UIActionExit
)

// UIAction is a single queued front-end request; Path is only set for
// UIActionLoadROM.
type UIAction struct {
	Kind UIActionKind
	Path string
}

// ApplicationError wraps a component/operation pair around the underlying
// failure, matching the style of errors surfaced across this package.
type ApplicationError struct {
	Component string
	Operation string
	Err       error
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("application %s error during %s: %v", e.Component, e.Operation, e.Err)
}

// Application wires a Console to a graphics backend and window, driving
// the console one frame per host tick and translating window input
// events into controller state, per spec.md §6's front-end contract.
type Application struct {
	console *console.Console

	graphicsBackend graphics.Backend
	window          graphics.Window
	videoProcessor  *graphics.VideoProcessor

	config *Config

	running     bool
	paused      bool
	initialized bool
	headless    bool

	romPath   string
	romLoaded bool

	lastController1 uint8
	lastController2 uint8

	lastESCTime time.Time
	uiActions   chan UIAction

	lastFrameBuffer []uint8

	frameCount uint64
	startTime  time.Time
}

// NewApplication creates an application in GUI mode, loading configuration
// from configPath if non-empty.
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode creates an application, optionally forcing a
// headless graphics backend regardless of configuration.
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	app := &Application{
		config:    NewConfig(),
		headless:  headless,
		startTime: time.Now(),
		uiActions: make(chan UIAction, 8),
	}

	if configPath != "" {
		if err := app.config.LoadFromFile(configPath); err != nil {
			log.Printf("[app] could not load config from %s, using defaults: %v", configPath, err)
		}
	}

	if err := app.initializeComponents(headless); err != nil {
		return nil, &ApplicationError{Component: "initialization", Operation: "component setup", Err: err}
	}

	return app, nil
}

func (app *Application) initializeComponents(headless bool) error {
	app.console = console.New()

	if err := app.initializeGraphicsBackend(headless); err != nil {
		return fmt.Errorf("failed to initialize graphics backend: %v", err)
	}

	app.initialized = true
	return nil
}

// initializeGraphicsBackend picks a backend from configuration (or forces
// headless) and falls back to headless if the preferred backend cannot
// start, e.g. because no display is available.
func (app *Application) initializeGraphicsBackend(headless bool) error {
	var backendType graphics.BackendType
	if headless {
		backendType = graphics.BackendHeadless
	} else {
		switch app.config.Video.Backend {
		case "ebitengine":
			backendType = graphics.BackendEbitengine
		case "headless":
			backendType = graphics.BackendHeadless
		case "terminal":
			backendType = graphics.BackendTerminal
		default:
			backendType = graphics.BackendEbitengine
		}
	}

	var err error
	app.graphicsBackend, err = graphics.CreateBackend(backendType)
	if err != nil {
		return fmt.Errorf("failed to create graphics backend: %v", err)
	}

	graphicsConfig := graphics.Config{
		WindowTitle:  "gones - Go NES Emulator",
		WindowWidth:  app.config.Window.Width,
		WindowHeight: app.config.Window.Height,
		Fullscreen:   app.config.Window.Fullscreen,
		VSync:        app.config.Video.VSync,
		Filter:       app.config.Video.Filter,
		AspectRatio:  app.config.Video.AspectRatio,
		Headless:     headless,
		Debug:        app.config.Debug.EnableLogging,
	}

	if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
		if backendType != graphics.BackendEbitengine {
			return fmt.Errorf("failed to initialize graphics backend: %v", err)
		}
		log.Printf("[app] Ebitengine backend failed (%v), falling back to headless", err)
		app.graphicsBackend, err = graphics.CreateBackend(graphics.BackendHeadless)
		if err != nil {
			return fmt.Errorf("failed to create fallback headless backend: %v", err)
		}
		graphicsConfig.Headless = true
		if err := app.graphicsBackend.Initialize(graphicsConfig); err != nil {
			return fmt.Errorf("failed to initialize fallback headless backend: %v", err)
		}
	}

	if !headless && !app.graphicsBackend.IsHeadless() {
		app.window, err = app.graphicsBackend.CreateWindow(
			graphicsConfig.WindowTitle, graphicsConfig.WindowWidth, graphicsConfig.WindowHeight)
		if err != nil {
			return fmt.Errorf("failed to create window: %v", err)
		}
	}

	app.videoProcessor = graphics.NewVideoProcessor(
		app.config.Video.Brightness, app.config.Video.Contrast, app.config.Video.Saturation)

	return nil
}

// LoadROM reads, parses and inserts a cartridge, then resets the console.
func (app *Application) LoadROM(romPath string) error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	cart, err := cartridge.LoadFromFile(romPath)
	if err != nil {
		return &ApplicationError{Component: "cartridge", Operation: "load ROM", Err: err}
	}

	app.console.InsertCartridge(cart)
	app.console.Reset()
	app.romPath = romPath
	app.romLoaded = true

	if app.window != nil {
		app.window.SetTitle(fmt.Sprintf("gones - %s", filepath.Base(romPath)))
	}

	return nil
}

// CloseROM removes the currently inserted cartridge.
func (app *Application) CloseROM() {
	app.console.RemoveCartridge()
	app.romPath = ""
	app.romLoaded = false
}

// Run starts the main application loop. Ebitengine drives its own timed
// loop through SetEmulatorUpdateFunc; other backends fall back to a
// manual loop with a simple frame-rate cap.
func (app *Application) Run() error {
	if !app.initialized {
		return errors.New("application not initialized")
	}

	app.running = true

	if app.graphicsBackend.GetName() == "Ebitengine" && app.window != nil {
		if ebitengineWindow, ok := graphics.AsEbitengineWindow(app.window); ok {
			ebitengineWindow.SetEmulatorUpdateFunc(func() error {
				app.processInput()
				app.updateEmulator()
				if err := app.render(); err != nil {
					return err
				}
				if app.window.ShouldClose() {
					app.Stop()
				}
				return nil
			})
			return ebitengineWindow.Run()
		}
	}

	for app.running {
		frameStart := time.Now()

		app.processInput()
		app.updateEmulator()
		if err := app.render(); err != nil && app.config.Debug.EnableLogging {
			log.Printf("[app] render error: %v", err)
		}

		if app.window != nil && app.window.ShouldClose() {
			app.Stop()
		}

		elapsed := time.Since(frameStart)
		target := time.Second / 60
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	return nil
}

// updateEmulator clocks the console through one frame. Run calls this
// once per host tick; runFrames exists so an alternate front end can
// catch up after a stall by clocking several console frames per tick,
// bounded by Emulation.CatchUpCap. Run itself never clocks more than one
// frame per tick.
func (app *Application) updateEmulator() {
	app.runFrames(1)
}

// runFrames clocks the console through up to n frames (capped by
// Emulation.CatchUpCap), submitting each frame's audio and keeping only
// the last frame's video for render.
func (app *Application) runFrames(n int) {
	if app.paused || !app.romLoaded {
		return
	}

	if max := app.config.Emulation.CatchUpCap; n > max {
		n = max
	}

	for i := 0; i < n; i++ {
		frame, samples := app.console.RunFrame()
		app.frameCount++
		app.lastFrameBuffer = frame
		if app.window != nil && len(samples) > 0 {
			if err := app.window.SubmitAudio(samples); err != nil && app.config.Debug.EnableLogging {
				log.Printf("[app] audio submit error: %v", err)
			}
		}
	}
}

// processInput drains window events and applies them to the controller
// latches, per spec.md §6's get_controller_state bit order (bit
// 0=A,1=B,2=Select,3=Start,4=Up,5=Down,6=Left,7=Right).
func (app *Application) processInput() {
	if app.window == nil {
		return
	}

	events := app.window.PollEvents()
	if len(events) == 0 {
		return
	}

	c1, c2 := app.lastController1, app.lastController2

	for _, event := range events {
		switch event.Type {
		case graphics.InputEventTypeQuit:
			app.enqueueUIAction(UIAction{Kind: UIActionExit})
			app.Stop()
			return

		case graphics.InputEventTypeButton:
			if bit, player2, ok := buttonBit(event.Button); ok {
				if player2 {
					c2 = setBit(c2, bit, event.Pressed)
				} else {
					c1 = setBit(c1, bit, event.Pressed)
				}
			}

		case graphics.InputEventTypeKey:
			if event.Pressed && event.Key == graphics.KeyEscape {
				app.handleEscape()
			}
		}
	}

	if c1 != app.lastController1 {
		app.console.SetButtons(0, c1)
		app.lastController1 = c1
	}
	if c2 != app.lastController2 {
		app.console.SetButtons(1, c2)
		app.lastController2 = c2
	}
}

// handleEscape requires a double-tap within 3 seconds to quit, so a
// single stray ESC during play does not end the session.
func (app *Application) handleEscape() {
	now := time.Now()
	if !app.lastESCTime.IsZero() && now.Sub(app.lastESCTime) < 3*time.Second {
		app.enqueueUIAction(UIAction{Kind: UIActionExit})
		app.Stop()
		return
	}
	app.lastESCTime = now
}

func (app *Application) enqueueUIAction(action UIAction) {
	select {
	case app.uiActions <- action:
	default:
		// Queue full; drop rather than block input processing.
	}
}

// TryDequeueUIAction implements spec.md §6's try_dequeue_ui_action,
// returning UIActionNone when nothing is queued.
func (app *Application) TryDequeueUIAction() UIAction {
	select {
	case action := <-app.uiActions:
		return action
	default:
		return UIAction{Kind: UIActionNone}
	}
}

// buttonBit maps a graphics.Button to its bit position in the controller
// mask and whether it belongs to the second controller.
func buttonBit(button graphics.Button) (bit uint8, player2 bool, ok bool) {
	switch button {
	case graphics.ButtonA:
		return 0, false, true
	case graphics.ButtonB:
		return 1, false, true
	case graphics.ButtonSelect:
		return 2, false, true
	case graphics.ButtonStart:
		return 3, false, true
	case graphics.ButtonUp:
		return 4, false, true
	case graphics.ButtonDown:
		return 5, false, true
	case graphics.ButtonLeft:
		return 6, false, true
	case graphics.ButtonRight:
		return 7, false, true
	case graphics.Button2A:
		return 0, true, true
	case graphics.Button2B:
		return 1, true, true
	case graphics.Button2Select:
		return 2, true, true
	case graphics.Button2Start:
		return 3, true, true
	case graphics.Button2Up:
		return 4, true, true
	case graphics.Button2Down:
		return 5, true, true
	case graphics.Button2Left:
		return 6, true, true
	case graphics.Button2Right:
		return 7, true, true
	default:
		return 0, false, false
	}
}

func setBit(mask uint8, bit uint8, set bool) uint8 {
	if set {
		return mask | (1 << bit)
	}
	return mask &^ (1 << bit)
}

// GetControllerState implements spec.md §6's get_controller_state for
// callers driving the console directly rather than through Run.
func (app *Application) GetControllerState(player int) uint8 {
	if player == 1 {
		return app.lastController2
	}
	return app.lastController1
}

// render converts the PPU's RGBA framebuffer into the packed-uint32 form
// the graphics backends expect, applies video post-processing, and hands
// it to the window.
func (app *Application) render() error {
	if app.window == nil {
		return nil
	}
	if !app.romLoaded || app.lastFrameBuffer == nil {
		return nil
	}

	packed := rgbaToPacked(app.lastFrameBuffer)
	if app.videoProcessor != nil {
		packed = app.videoProcessor.ProcessFrame(packed)
	}

	var frame [256 * 240]uint32
	copy(frame[:], packed)

	if err := app.window.RenderFrame(frame); err != nil {
		return fmt.Errorf("failed to render frame: %v", err)
	}
	app.window.SwapBuffers()
	return nil
}

// rgbaToPacked repacks 256*240*4 RGBA bytes into 256*240 0x00RRGGBB words.
func rgbaToPacked(rgba []uint8) []uint32 {
	out := make([]uint32, 256*240)
	for i := range out {
		o := i * 4
		r, g, b := uint32(rgba[o]), uint32(rgba[o+1]), uint32(rgba[o+2])
		out[i] = r<<16 | g<<8 | b
	}
	return out
}

// SetRomLoaded reports whether a cartridge is currently inserted,
// matching spec.md §6's set_rom_loaded.
func (app *Application) SetRomLoaded(loaded bool) {
	app.romLoaded = loaded
}

func (app *Application) Stop() {
	app.running = false
}

func (app *Application) Pause() {
	app.paused = true
}

func (app *Application) Resume() {
	app.paused = false
}

func (app *Application) TogglePause() {
	app.paused = !app.paused
}

// Reset resets the console without removing the inserted cartridge.
func (app *Application) Reset() {
	app.console.Reset()
}

func (app *Application) IsRunning() bool { return app.running }
func (app *Application) IsPaused() bool  { return app.paused }

func (app *Application) GetFrameCount() uint64 { return app.frameCount }
func (app *Application) GetROMPath() string    { return app.romPath }
func (app *Application) GetConfig() *Config    { return app.config }

// Console exposes the underlying console for direct control (tests,
// alternate front ends).
func (app *Application) Console() *console.Console { return app.console }

// Cleanup releases the graphics backend and window.
func (app *Application) Cleanup() error {
	if app.window != nil {
		if err := app.window.Cleanup(); err != nil {
			return err
		}
	}
	if app.graphicsBackend != nil {
		return app.graphicsBackend.Cleanup()
	}
	return nil
}
