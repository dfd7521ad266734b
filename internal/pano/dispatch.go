package pano

import (
	"go.uber.org/zap"

	"github.com/Faultbox/panorama/internal/engine/picking"
	"github.com/Faultbox/panorama/internal/engine/render"
)

// Viewport is the size of the drawing surface in pixels.
type Viewport struct {
	Width  float32
	Height float32
}

// Navigator starts a transition to a node and reports whether it did.
// *TransitionController implements it.
type Navigator interface {
	TryNavigate(target *Node) (started bool, err error)
}

// PointerDispatcher maps pointer clicks to hotspots on the active node.
type PointerDispatcher struct {
	graph     *SceneGraph
	navigator Navigator
	log       *zap.Logger
}

// NewPointerDispatcher creates a dispatcher that hit-tests graph's active
// node and forwards hits to navigator.
func NewPointerDispatcher(graph *SceneGraph, navigator Navigator, log *zap.Logger) *PointerDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &PointerDispatcher{graph: graph, navigator: navigator, log: log}
}

// Dispatch handles a click at pixel (x, y). Only the active node's markers are
// tested, never the sphere; the nearest marker wins. It returns the hotspot
// whose transition started, or nil when nothing was hit or the navigator
// dropped the request. On a navigation error the hit hotspot is returned
// with the error.
func (d *PointerDispatcher) Dispatch(x, y float32, vp Viewport, cam render.Projector) (*Hotspot, error) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return nil, nil
	}
	active := d.graph.Active()
	if active == nil || !active.Built() {
		return nil, nil
	}

	ndc := picking.ScreenToNDC(x, y, vp.Width, vp.Height)
	hits := d.graph.engine.Raycast(ndc, cam, active.markerHandles())
	if len(hits) == 0 {
		return nil, nil
	}

	h, ok := d.graph.HotspotForMarker(hits[0].Handle)
	if !ok {
		return nil, nil
	}

	d.log.Debug("hotspot hit",
		zap.String("node", active.Name),
		zap.String("hotspot", h.Name),
		zap.Float32("distance", hits[0].Distance),
	)
	started, err := d.navigator.TryNavigate(h.Target)
	if err != nil {
		return h, err
	}
	if !started {
		return nil, nil
	}
	return h, nil
}
