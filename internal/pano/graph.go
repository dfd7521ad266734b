package pano

import (
	"go.uber.org/zap"

	"github.com/Faultbox/panorama/internal/engine/render"
)

// Layout controls how nodes are turned into render objects.
type Layout struct {
	Sphere         render.SphereOptions
	MarkerDistance float32 // Distance from the sphere center to each marker
	MarkerSize     float32
	Icon           *render.Texture
}

// DefaultLayout returns the stock panorama layout: a 50 unit sphere with
// markers 15 units out.
func DefaultLayout() Layout {
	return Layout{
		Sphere:         render.DefaultSphereOptions(),
		MarkerDistance: 15,
		MarkerSize:     0.85,
	}
}

// SceneGraph is the set of panorama nodes and the single active node.
type SceneGraph struct {
	engine Engine
	loader AssetLoader
	layout Layout
	log    *zap.Logger

	nodes  []*Node
	known  map[*Node]bool
	byName map[string]*Node
	owner  map[render.Handle]*Hotspot

	active    *Node
	activated bool
}

// GraphOption configures a SceneGraph.
type GraphOption func(*SceneGraph)

// WithLayout overrides DefaultLayout.
func WithLayout(l Layout) GraphOption {
	return func(g *SceneGraph) { g.layout = l }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) GraphOption {
	return func(g *SceneGraph) { g.log = log }
}

// NewSceneGraph creates an empty graph.
func NewSceneGraph(engine Engine, loader AssetLoader, opts ...GraphOption) *SceneGraph {
	g := &SceneGraph{
		engine: engine,
		loader: loader,
		layout: DefaultLayout(),
		log:    zap.NewNop(),
		known:  make(map[*Node]bool),
		byName: make(map[string]*Node),
		owner:  make(map[render.Handle]*Hotspot),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode registers a node. Nodes can only be added before Activate.
func (g *SceneGraph) AddNode(n *Node) error {
	switch {
	case n == nil:
		return configErrorf("nil node")
	case g.activated:
		return configErrorf("node %q added after activation", n.Name)
	case g.known[n]:
		return configErrorf("node %q registered twice", n.Name)
	}
	if n.Name != "" {
		if _, dup := g.byName[n.Name]; dup {
			return configErrorf("duplicate node name %q", n.Name)
		}
		g.byName[n.Name] = n
	}
	g.known[n] = true
	g.nodes = append(g.nodes, n)
	return nil
}

// Connect appends h to from's hotspots. Both from and h.Target must already
// be registered and h.Direction must not be zero.
func (g *SceneGraph) Connect(from *Node, h *Hotspot) error {
	switch {
	case g.activated:
		return configErrorf("hotspot added after activation")
	case h == nil:
		return configErrorf("nil hotspot")
	case !g.known[from]:
		return configErrorf("hotspot %q: source node %s is not registered", h.Name, from)
	case h.Target == nil:
		return configErrorf("hotspot %q on %s has no target", h.Name, from)
	case !g.known[h.Target]:
		return configErrorf("hotspot %q on %s targets unregistered node %s", h.Name, from, h.Target)
	case h.Direction.IsZero():
		return configErrorf("hotspot %q on %s has a zero direction", h.Name, from)
	}
	from.points = append(from.points, h)
	return nil
}

// Activate shows initial and makes it the active node. It may succeed only
// once. If the panorama cannot be loaded the graph stays inactive.
func (g *SceneGraph) Activate(initial *Node) error {
	if g.activated {
		return stateErrorf("graph already activated")
	}
	if !g.known[initial] {
		return configErrorf("initial node %s is not registered", initial)
	}
	if err := g.build(initial, 1, 1); err != nil {
		return err
	}
	g.activated = true
	g.active = initial
	g.log.Info("scene graph activated",
		zap.String("node", initial.Name),
		zap.Int("nodes", len(g.nodes)),
	)
	return nil
}

// SetActive records n as the active node without touching the scene.
func (g *SceneGraph) SetActive(n *Node) {
	g.active = n
}

// Active returns the active node, or nil before activation.
func (g *SceneGraph) Active() *Node {
	return g.active
}

// Activated reports whether Activate has succeeded.
func (g *SceneGraph) Activated() bool {
	return g.activated
}

// Contains reports whether n is registered.
func (g *SceneGraph) Contains(n *Node) bool {
	return g.known[n]
}

// Nodes returns the registered nodes in registration order.
func (g *SceneGraph) Nodes() []*Node {
	return g.nodes
}

// Node looks a node up by name.
func (g *SceneGraph) Node(name string) *Node {
	return g.byName[name]
}

// HotspotForMarker maps a rendered marker back to its hotspot.
func (g *SceneGraph) HotspotForMarker(h render.Handle) (*Hotspot, bool) {
	hs, ok := g.owner[h]
	return hs, ok
}

// build creates and adds n's sphere and markers with the given starting
// opacity and marker scale. A node that is already built is left alone.
func (g *SceneGraph) build(n *Node, opacity, scale float32) error {
	if n.Built() {
		return nil
	}

	tex, err := g.loader.LoadTexture(n.Image)
	if err != nil {
		return &AssetLoadError{Node: n.Name, Path: n.Image, Err: err}
	}

	n.sphere = g.engine.CreateSphere(tex, g.layout.Sphere)
	g.engine.Set(n.sphere, render.PropertyOpacity, opacity)
	g.engine.Add(n.sphere)

	n.markers = make(map[*Hotspot]render.Handle, len(n.points))
	for _, h := range n.points {
		pos := h.Direction.Normalize().Scale(g.layout.MarkerDistance)
		m := g.engine.CreateMarker(g.layout.Icon, pos, g.layout.MarkerSize)
		g.engine.Set(m, render.PropertyScale, scale)
		g.engine.Add(m)
		n.markers[h] = m
		g.owner[m] = h
	}

	g.log.Debug("node built",
		zap.String("node", n.Name),
		zap.Uint32("sphere", uint32(n.sphere)),
		zap.Int("markers", len(n.markers)),
	)
	return nil
}

// teardown removes n's render objects. Safe to call on a node that is not built.
func (g *SceneGraph) teardown(n *Node) {
	for _, m := range n.markers {
		delete(g.owner, m)
		g.engine.Remove(m)
	}
	n.markers = nil
	if n.sphere != 0 {
		g.engine.Remove(n.sphere)
		n.sphere = 0
		g.log.Debug("node torn down", zap.String("node", n.Name))
	}
}
