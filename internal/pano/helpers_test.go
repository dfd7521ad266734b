package pano

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/panorama/internal/engine/camera"
	"github.com/Faultbox/panorama/internal/engine/render"
	"github.com/Faultbox/panorama/pkg/math"
)

var errMissing = errors.New("file not found")

// memLoader hands out tiny textures and fails for paths listed in fail.
type memLoader struct {
	fail  map[string]bool
	loads []string
}

func newMemLoader() *memLoader {
	return &memLoader{fail: make(map[string]bool)}
}

func (l *memLoader) LoadTexture(path string) (*render.Texture, error) {
	l.loads = append(l.loads, path)
	if l.fail[path] {
		return nil, errMissing
	}
	return &render.Texture{Source: path, Image: image.NewRGBA(image.Rect(0, 0, 2, 1))}, nil
}

// tour is the two-node fixture: A --H1--> B --H2--> A, both hotspots
// straight down +X.
type tour struct {
	graph  *SceneGraph
	ctrl   *TransitionController
	disp   *PointerDispatcher
	scene  *render.Scene
	loader *memLoader
	cam    *camera.PanoramaCamera
	vp     Viewport
	a, b   *Node
	h1, h2 *Hotspot
}

func newTour(t *testing.T, log *zap.Logger, opts ...TransitionOption) *tour {
	t.Helper()
	if log == nil {
		log = zap.NewNop()
	}

	tr := &tour{
		scene:  render.NewScene(nil, log),
		loader: newMemLoader(),
		cam: camera.New(camera.Config{
			FOV: 75, Near: 0.1, Far: 1000, MinFOV: 30, MaxFOV: 90, RotateSpeed: 0.35, ZoomSpeed: 0.1,
		}, 800, 600),
		vp: Viewport{Width: 800, Height: 600},
		a:  NewNode("outside", "img/outside.jpeg"),
		b:  NewNode("inside", "img/inside.jpeg"),
	}
	tr.graph = NewSceneGraph(tr.scene, tr.loader, WithLogger(log))
	tr.ctrl = NewTransitionController(tr.graph, append([]TransitionOption{WithTransitionLogger(log)}, opts...)...)
	tr.disp = NewPointerDispatcher(tr.graph, tr.ctrl, log)

	require.NoError(t, tr.graph.AddNode(tr.a))
	require.NoError(t, tr.graph.AddNode(tr.b))

	tr.h1 = &Hotspot{Name: "Entrance", Direction: math.Vec3{X: 1}, Target: tr.b}
	tr.h2 = &Hotspot{Name: "Exit", Direction: math.Vec3{X: 2}, Target: tr.a}
	require.NoError(t, tr.graph.Connect(tr.a, tr.h1))
	require.NoError(t, tr.graph.Connect(tr.b, tr.h2))
	return tr
}

// clickCenter clicks the middle of the viewport.
func (tr *tour) clickCenter() (*Hotspot, error) {
	return tr.disp.Dispatch(tr.vp.Width/2, tr.vp.Height/2, tr.vp, tr.cam)
}

// advance runs the render loop for d in 1/60 s frames.
func (tr *tour) advance(d time.Duration) {
	const frame = time.Second / 60
	for d > 0 {
		step := min(frame, d)
		tr.scene.Update(step)
		d -= step
	}
}

// settle runs frames until the controller is idle.
func (tr *tour) settle(t *testing.T) {
	t.Helper()
	for i := 0; i < 600 && !tr.ctrl.Idle(); i++ {
		tr.scene.Update(time.Second / 60)
	}
	require.True(t, tr.ctrl.Idle(), "transition did not settle")
}

func (tr *tour) opacity(t *testing.T, n *Node) float32 {
	t.Helper()
	o, ok := tr.scene.Object(n.SphereHandle())
	require.True(t, ok, "node %s has no sphere", n.Name)
	return o.Opacity
}

func (tr *tour) builtNodes() []*Node {
	var out []*Node
	for _, n := range tr.graph.Nodes() {
		if n.Built() {
			out = append(out, n)
		}
	}
	return out
}
