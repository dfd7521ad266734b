// Package app runs the viewer in an SDL2 window: it wires configuration,
// assets, audio and the OpenGL renderer around a viewer.Viewer and drives
// the frame loop.
package app

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/panorama/internal/assets"
	"github.com/Faultbox/panorama/internal/config"
	"github.com/Faultbox/panorama/internal/engine/audio"
	"github.com/Faultbox/panorama/internal/engine/camera"
	"github.com/Faultbox/panorama/internal/engine/debug"
	"github.com/Faultbox/panorama/internal/engine/input"
	"github.com/Faultbox/panorama/internal/engine/render"
	"github.com/Faultbox/panorama/internal/engine/renderer"
	"github.com/Faultbox/panorama/internal/engine/window"
	"github.com/Faultbox/panorama/internal/logger"
	"github.com/Faultbox/panorama/internal/pano"
	"github.com/Faultbox/panorama/internal/tour"
	"github.com/Faultbox/panorama/internal/viewer"
)

// App is a running viewer window.
type App struct {
	cfg      *config.Config
	log      *zap.Logger
	running  bool
	wantShot bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	assets   *assets.Manager
	audio    *audio.Manager
	shots    *debug.ScreenshotCapture
	tour     *tour.File
	viewer   *viewer.Viewer
}

// New opens the window, loads the tour and shows its start node.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:   cfg,
		log:   logger.Named("app"),
		input: input.New(),
		shots: debug.NewScreenshotCapture(cfg.Debug.ScreenshotDir, "panorama"),
	}

	var err error
	a.tour, err = tour.Load(cfg.Tour.Path)
	if err != nil {
		return nil, err
	}

	a.assets = assets.NewManager(cfg.Viewer.MaxTextureSize, logger.Named("assets"))
	for _, root := range cfg.Tour.AssetRoots {
		if err := a.assets.AddDir(root); err != nil {
			return nil, err
		}
	}

	iconPath := cfg.Tour.Icon
	if a.tour.Icon != "" {
		iconPath = a.tour.Icon
	}
	icon, err := a.assets.LoadIcon(iconPath)
	if err != nil {
		return nil, fmt.Errorf("marker icon: %w", err)
	}

	title := "Panorama"
	if a.tour.Title != "" {
		title = a.tour.Title + " - Panorama"
	}
	a.window, err = window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer must come after the window, since the GL context must exist.
	dw, dh := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:      dw,
		Height:     dh,
		ClearColor: [3]float32{0, 0, 0},
	}, logger.Named("render"))
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	if err := a.setupViewer(icon); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) setupViewer(icon *render.Texture) error {
	vc := a.cfg.Viewer
	sphere := render.DefaultSphereOptions()
	sphere.Radius = vc.SphereRadius
	sphere.WidthSegments = vc.SphereSegments
	sphere.HeightSegments = vc.SphereSegments

	w, h := a.window.GetSize()
	v, err := viewer.New(viewer.Options{
		Camera: camera.Config{
			FOV:         vc.FOV,
			Near:        vc.Near,
			Far:         vc.Far,
			MinFOV:      vc.MinFOV,
			MaxFOV:      vc.MaxFOV,
			RotateSpeed: vc.RotateSpeed,
			ZoomSpeed:   vc.ZoomSpeed,
		},
		Layout: pano.Layout{
			Sphere:         sphere,
			MarkerDistance: vc.MarkerDistance,
			MarkerSize:     vc.MarkerSize,
			Icon:           icon,
		},
		Duration:       vc.TransitionDuration,
		Easing:         vc.Easing,
		ClickTolerance: vc.ClickTolerance,
		Width:          w,
		Height:         h,
		Ambient:        a.tour.Ambient,
		TransitionCue:  a.cfg.Audio.TransitionCue,
	}, a.assets, logger.Named("viewer"))
	if err != nil {
		return err
	}
	a.viewer = v

	// Pointer coordinates are in window units; GL wants drawable pixels.
	v.SetSurface(viewer.SurfaceFunc(func(int, int) {
		a.renderer.Resize(a.window.DrawableSize())
	}))

	if a.cfg.Audio.Enabled {
		a.startAudio()
	}

	start, err := a.tour.Build(v.Graph())
	if err != nil {
		return err
	}

	if vc.Preload {
		began := time.Now()
		failed := a.assets.Preload(context.Background(), a.tour.Images(), runtime.NumCPU())
		a.log.Info("panoramas preloaded",
			zap.Int("count", len(a.tour.Nodes)),
			zap.Int("failed", failed),
			zap.Int("decoded", a.assets.Stats().Textures),
			zap.Duration("took", time.Since(began)),
		)
	}

	return v.Start(start)
}

// startAudio enables sound if a device is available. The viewer runs silent
// otherwise.
func (a *App) startAudio() {
	ac := a.cfg.Audio
	m := audio.New(audio.Volumes{
		Master:  ac.MasterVolume,
		Ambient: ac.AmbientVolume,
		Cue:     ac.CueVolume,
	}, logger.Named("audio"))
	if err := m.Init(); err != nil {
		a.log.Warn("audio disabled", zap.Error(err))
		return
	}
	a.audio = m
	a.viewer.SetSound(m)
	vol := m.Volumes()
	a.log.Info("audio ready",
		zap.Float64("master", vol.Master),
		zap.Float64("ambient", vol.Ambient),
		zap.Float64("cue", vol.Cue),
	)
}

// idleFrame is the frame time used while nothing on screen can change.
const idleFrame = 100 * time.Millisecond

// Run starts the main loop and returns when the window closes. Frames slow
// to idleFrame while no input arrives and the viewer is idle.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	var minFrame time.Duration
	if a.cfg.Graphics.FPSLimit > 0 {
		minFrame = time.Second / time.Duration(a.cfg.Graphics.FPSLimit)
	}

	a.log.Info("starting main loop")

	for a.running {
		frameStart := time.Now()
		dt := frameStart.Sub(lastTime)
		lastTime = frameStart

		// 1. Process input
		if a.input.Update() {
			a.running = false
			break
		}
		events := a.input.Events()
		for _, event := range events {
			a.handle(event)
		}

		// 2. Advance animations
		a.viewer.Update(dt)

		// 3. Render
		a.renderer.Draw(a.viewer.Scene(), a.viewer.Camera())
		if a.wantShot {
			a.wantShot = false
			a.screenshot()
		}

		// 4. Present (swap buffers)
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			if a.cfg.Debug.ShowFPS {
				a.window.SetTitle(fmt.Sprintf("Panorama - %d fps", frameCount))
			}
			a.log.Debug("fps",
				zap.Int("count", frameCount),
				zap.Duration("dt", dt),
				zap.Int("objects", a.viewer.Scene().Len()),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}

		budget := minFrame
		if len(events) == 0 && a.viewer.Idle() && budget < idleFrame {
			budget = idleFrame
		}
		if rest := budget - time.Since(frameStart); rest > 0 {
			time.Sleep(rest)
		}
	}

	return nil
}

func (a *App) handle(event input.Event) {
	switch event.Type {
	case input.EventWindowResize:
		a.viewer.OnViewportResize(event.Width, event.Height)
	case input.EventMouseDown:
		if event.Button == sdl.BUTTON_LEFT {
			a.viewer.OnPointerDown(float32(event.MouseX), float32(event.MouseY))
		}
	case input.EventMouseMove:
		a.viewer.OnPointerMove(float32(event.MouseX), float32(event.MouseY))
	case input.EventMouseUp:
		if event.Button == sdl.BUTTON_LEFT {
			a.viewer.OnPointerUp(float32(event.MouseX), float32(event.MouseY))
		}
	case input.EventMouseWheel:
		a.viewer.OnWheel(event.Wheel)
	case input.EventKeyDown:
		switch event.Key {
		case sdl.SCANCODE_ESCAPE:
			a.running = false
		case sdl.SCANCODE_F12:
			a.wantShot = true
		default:
			a.volumeKey(event.Key)
		}
	}
}

// volumeStep is how far one key press moves the master volume.
const volumeStep = 0.1

// volumeAction maps a key to a master volume change or a mute toggle.
func volumeAction(key sdl.Scancode) (delta float64, mute, ok bool) {
	switch key {
	case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
		return -volumeStep, false, true
	case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
		return volumeStep, false, true
	case sdl.SCANCODE_M:
		return 0, true, true
	}
	return 0, false, false
}

func (a *App) volumeKey(key sdl.Scancode) {
	delta, mute, ok := volumeAction(key)
	if !ok || a.audio == nil {
		return
	}
	if mute {
		a.log.Info("audio muted", zap.Bool("muted", a.audio.ToggleMute()))
		return
	}
	a.log.Info("master volume", zap.Float64("level", a.audio.AdjustMasterVolume(delta)))
}

// screenshot reads the frame just drawn, before it is swapped away.
func (a *App) screenshot() {
	pixels, w, h := a.renderer.ReadPixels()
	label := ""
	if n := a.viewer.Graph().Active(); n != nil {
		label = n.Name
	}
	path, err := a.shots.CaptureFromPixels(pixels, w, h, label)
	if err != nil {
		a.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	a.log.Info("screenshot saved", zap.String("path", path))
}

// Close releases audio, GPU and window resources.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.viewer != nil {
		a.log.Debug("transitions", zap.Int("dropped", a.viewer.Controller().Dropped()))
	}

	if a.audio != nil {
		a.audio.Close()
	}
	if a.assets != nil {
		st := a.assets.Stats()
		a.log.Debug("asset cache",
			zap.Int("textures", st.Textures),
			zap.Int("texture_hits", st.TextureHits),
			zap.Int("texture_misses", st.TextureMisses),
			zap.Int("file_hits", st.FileHits),
			zap.Int("file_misses", st.FileMisses),
		)
		a.assets.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
