// Package viewer is the host side of the panorama core: it owns the scene,
// graph, transition controller and camera, and turns pointer gestures and
// window changes into operations on them.
package viewer

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/panorama/internal/engine/camera"
	"github.com/Faultbox/panorama/internal/engine/render"
	"github.com/Faultbox/panorama/internal/engine/tween"
	"github.com/Faultbox/panorama/internal/pano"
	"github.com/Faultbox/panorama/pkg/math"
)

// Assets loads panoramas and raw files. *assets.Manager implements it.
type Assets interface {
	pano.AssetLoader
	Load(name string) ([]byte, error)
}

// Sound plays ambient loops and cues. *audio.Manager implements it.
type Sound interface {
	PlayAmbient(data []byte, source string) error
	StopAmbient()
	PlayCue(data []byte) error
}

// Surface is the drawing target resized along with the viewport.
type Surface interface {
	Resize(width, height int)
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(width, height int)

// Resize calls f.
func (f SurfaceFunc) Resize(width, height int) { f(width, height) }

// Options configures a Viewer.
type Options struct {
	Camera         camera.Config
	Layout         pano.Layout
	Duration       time.Duration
	Easing         string
	ClickTolerance float32 // Pixels a press may travel and still count as a click
	Width, Height  int

	// Ambient maps a node name to its ambient sound file, "" for none.
	Ambient func(node string) string
	// TransitionCue is played whenever a transition starts; "" disables it.
	TransitionCue string
}

// Viewer connects the panorama core to a window.
type Viewer struct {
	opts   Options
	log    *zap.Logger
	assets Assets

	scene *render.Scene
	graph *pano.SceneGraph
	ctrl  *pano.TransitionController
	disp  *pano.PointerDispatcher
	cam   *camera.PanoramaCamera
	vp    pano.Viewport

	sound   Sound
	surface Surface

	pressed      bool
	dragging     bool
	pressX       float32
	pressY       float32
	lastX, lastY float32
}

// New builds a viewer. Nodes are added through Graph before Start.
func New(opts Options, assets Assets, log *zap.Logger) (*Viewer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Duration <= 0 {
		opts.Duration = pano.DefaultTransitionDuration
	}
	if opts.Easing == "" {
		opts.Easing = "linear"
	}
	fn, err := tween.Easing(opts.Easing)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		opts:   opts,
		log:    log,
		assets: assets,
		scene:  render.NewScene(tween.New(fn), log.Named("render")),
		cam:    camera.New(opts.Camera, opts.Width, opts.Height),
		vp:     pano.Viewport{Width: float32(opts.Width), Height: float32(opts.Height)},
	}
	v.graph = pano.NewSceneGraph(v.scene, assets,
		pano.WithLayout(opts.Layout),
		pano.WithLogger(log.Named("pano")),
	)
	v.ctrl = pano.NewTransitionController(v.graph,
		pano.WithDuration(opts.Duration),
		pano.WithTransitionLogger(log.Named("pano")),
		pano.OnNavigate(v.transitionStarted),
		pano.OnSettled(v.transitionSettled),
	)
	v.disp = pano.NewPointerDispatcher(v.graph, v.ctrl, log.Named("pano"))
	return v, nil
}

// SetSound attaches audio output. nil detaches it.
func (v *Viewer) SetSound(s Sound) { v.sound = s }

// SetSurface attaches the drawing target resized by OnViewportResize.
func (v *Viewer) SetSurface(s Surface) { v.surface = s }

func (v *Viewer) Graph() *pano.SceneGraph                { return v.graph }
func (v *Viewer) Controller() *pano.TransitionController { return v.ctrl }
func (v *Viewer) Scene() *render.Scene                   { return v.scene }
func (v *Viewer) Camera() *camera.PanoramaCamera         { return v.cam }

// Start shows the first panorama.
func (v *Viewer) Start(initial *pano.Node) error {
	if err := v.graph.Activate(initial); err != nil {
		return err
	}
	v.log.Info("panorama shown",
		zap.String("node", initial.Name),
		zap.Int("nodes", len(v.graph.Nodes())),
	)
	v.playAmbient(initial)
	return nil
}

// Update advances animations by dt.
func (v *Viewer) Update(dt time.Duration) {
	v.scene.Update(dt)
}

// OnPointerClick hit-tests a click at window pixel (x, y) and navigates when
// a hotspot was hit. Load failures abort that navigation only.
func (v *Viewer) OnPointerClick(x, y float32) {
	h, err := v.disp.Dispatch(x, y, v.vp, v.cam)
	var loadErr *pano.AssetLoadError
	switch {
	case errors.As(err, &loadErr):
		v.log.Warn("panorama failed to load",
			zap.String("node", loadErr.Node),
			zap.String("path", loadErr.Path),
			zap.Error(loadErr.Err),
		)
	case err != nil:
		v.log.Error("navigation failed", zap.Error(err))
	case h != nil:
		v.log.Debug("hotspot clicked", zap.String("hotspot", h.Name), zap.Stringer("target", h.Target))
	}
}

// OnViewportResize adapts the camera and surface to a new window size. The
// graph and any running transition are left alone.
func (v *Viewer) OnViewportResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.vp = pano.Viewport{Width: float32(width), Height: float32(height)}
	v.cam.SetViewport(width, height)
	if v.surface != nil {
		v.surface.Resize(width, height)
	}
}

// OnPointerDown starts a press that becomes a click or a drag.
func (v *Viewer) OnPointerDown(x, y float32) {
	v.pressed = true
	v.dragging = false
	v.pressX, v.pressY = x, y
	v.lastX, v.lastY = x, y
}

// OnPointerMove turns the view while a press travels past the click tolerance.
func (v *Viewer) OnPointerMove(x, y float32) {
	if !v.pressed {
		return
	}
	if !v.dragging {
		moved := math.Vec2{X: x, Y: y}.Sub(math.Vec2{X: v.pressX, Y: v.pressY}).Length()
		if moved <= v.opts.ClickTolerance {
			return
		}
		v.dragging = true
	}
	v.cam.HandleDrag(x-v.lastX, y-v.lastY, int(v.vp.Height))
	v.lastX, v.lastY = x, y
}

// OnPointerUp ends a press; a press that never became a drag is a click.
func (v *Viewer) OnPointerUp(x, y float32) {
	if !v.pressed {
		return
	}
	v.OnPointerMove(x, y)
	click := !v.dragging
	v.pressed, v.dragging = false, false
	if click {
		v.OnPointerClick(v.pressX, v.pressY)
	}
}

// OnWheel zooms by notches; positive zooms in.
func (v *Viewer) OnWheel(notches float32) {
	v.cam.HandleZoom(notches)
}

// Idle reports whether the picture is static: no animation is running and
// the view is not being dragged.
func (v *Viewer) Idle() bool {
	return !v.dragging && !v.scene.Animating()
}

func (v *Viewer) transitionStarted(from, to *pano.Node) {
	if v.sound == nil {
		return
	}
	if v.opts.TransitionCue != "" {
		if data, err := v.assets.Load(v.opts.TransitionCue); err != nil {
			v.log.Warn("transition cue unavailable", zap.String("path", v.opts.TransitionCue), zap.Error(err))
		} else if err := v.sound.PlayCue(data); err != nil {
			v.log.Warn("transition cue failed", zap.Error(err))
		}
	}
	v.playAmbient(to)
}

func (v *Viewer) transitionSettled(n *pano.Node) {
	v.log.Info("panorama shown", zap.String("node", n.Name))
}

func (v *Viewer) playAmbient(n *pano.Node) {
	if v.sound == nil {
		return
	}
	src := ""
	if v.opts.Ambient != nil {
		src = v.opts.Ambient(n.Name)
	}
	if src == "" {
		v.sound.StopAmbient()
		return
	}
	data, err := v.assets.Load(src)
	if err != nil {
		v.log.Warn("ambient sound unavailable", zap.String("node", n.Name), zap.String("path", src), zap.Error(err))
		v.sound.StopAmbient()
		return
	}
	if err := v.sound.PlayAmbient(data, src); err != nil {
		v.log.Warn("ambient sound failed", zap.String("node", n.Name), zap.Error(err))
	}
}
