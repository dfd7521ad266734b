package pano

import (
	"github.com/Faultbox/panorama/internal/engine/render"
	"github.com/Faultbox/panorama/pkg/math"
)

// Hotspot is a directional marker on a node that links to another node.
type Hotspot struct {
	Name string
	// Direction points from the sphere center to the marker. It is stored as
	// authored and normalized when the marker is placed.
	Direction math.Vec3
	Target    *Node
}

// Node is one panorama: an image mapped onto a sphere and its hotspots.
type Node struct {
	Name  string
	Image string

	points  []*Hotspot
	sphere  render.Handle
	markers map[*Hotspot]render.Handle
}

// NewNode creates a node for the panorama at image.
func NewNode(name, image string) *Node {
	return &Node{Name: name, Image: image}
}

// Hotspots returns the node's hotspots in authoring order.
func (n *Node) Hotspots() []*Hotspot {
	return n.points
}

// Hotspot finds a hotspot by name.
func (n *Node) Hotspot(name string) *Hotspot {
	for _, h := range n.points {
		if h.Name == name {
			return h
		}
	}
	return nil
}

// SphereHandle returns the rendered sphere, or zero when the node is not shown.
func (n *Node) SphereHandle() render.Handle {
	return n.sphere
}

// Built reports whether the node currently has render objects.
func (n *Node) Built() bool {
	return n.sphere != 0
}

// MarkerHandle returns the rendered marker for h.
func (n *Node) MarkerHandle(h *Hotspot) (render.Handle, bool) {
	m, ok := n.markers[h]
	return m, ok
}

// markerHandles returns the marker handles in hotspot order.
func (n *Node) markerHandles() []render.Handle {
	out := make([]render.Handle, 0, len(n.markers))
	for _, h := range n.points {
		if m, ok := n.markers[h]; ok {
			out = append(out, m)
		}
	}
	return out
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.Name
}
