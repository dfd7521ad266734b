// Package tour reads tour descriptions: the panoramas of a walkthrough, the
// hotspots linking them and the node shown first.
package tour

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/panorama/internal/pano"
	"github.com/Faultbox/panorama/pkg/math"
)

// File is a parsed tour description.
type File struct {
	Title string     `yaml:"title"`
	Start string     `yaml:"start"` // Empty starts at the first node
	Icon  string     `yaml:"icon"`  // Marker icon; empty uses the built-in arrow
	Nodes []NodeSpec `yaml:"nodes"`
}

// NodeSpec describes one panorama.
type NodeSpec struct {
	Name     string        `yaml:"name"`
	Image    string        `yaml:"image"`
	Ambient  string        `yaml:"ambient"`
	Hotspots []HotspotSpec `yaml:"hotspots"`
}

// HotspotSpec links a direction in one panorama to another node.
type HotspotSpec struct {
	Name      string `yaml:"name"`
	Direction Vector `yaml:"direction"`
	Target    string `yaml:"target"`
}

// Vector is an [x, y, z] triple.
type Vector [3]float32

// UnmarshalYAML accepts exactly three numbers.
func (v *Vector) UnmarshalYAML(node *yaml.Node) error {
	var xs []float32
	if err := node.Decode(&xs); err != nil {
		return err
	}
	if len(xs) != 3 {
		return fmt.Errorf("line %d: direction needs 3 components, got %d", node.Line, len(xs))
	}
	copy(v[:], xs)
	return nil
}

// Vec3 converts v to a math.Vec3.
func (v Vector) Vec3() math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// Load reads and validates the tour at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tour: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("tour %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes and validates a tour. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", pano.ErrConfiguration, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks names, references and directions. Every problem is reported.
func (f *File) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{pano.ErrConfiguration}, args...)...))
	}

	if len(f.Nodes) == 0 {
		bad("tour has no nodes")
	}

	names := make(map[string]bool, len(f.Nodes))
	for i, n := range f.Nodes {
		switch {
		case n.Name == "":
			bad("node %d has no name", i)
		case names[n.Name]:
			bad("duplicate node %q", n.Name)
		}
		names[n.Name] = true
		if n.Image == "" {
			bad("node %q has no image", n.Name)
		}
	}

	if f.Start != "" && !names[f.Start] {
		bad("start node %q does not exist", f.Start)
	}

	for _, n := range f.Nodes {
		spots := make(map[string]bool, len(n.Hotspots))
		for i, h := range n.Hotspots {
			label := h.Name
			if label == "" {
				label = fmt.Sprintf("#%d", i)
			}
			if h.Name != "" && spots[h.Name] {
				bad("node %q: duplicate hotspot %q", n.Name, h.Name)
			}
			spots[h.Name] = true
			if !names[h.Target] {
				bad("node %q: hotspot %s targets unknown node %q", n.Name, label, h.Target)
			}
			if h.Direction.Vec3().IsZero() {
				bad("node %q: hotspot %s has a zero direction", n.Name, label)
			}
		}
	}

	return errors.Join(errs...)
}

// StartNode returns the name of the first node to show.
func (f *File) StartNode() string {
	if f.Start != "" || len(f.Nodes) == 0 {
		return f.Start
	}
	return f.Nodes[0].Name
}

// Images returns each node's image path in node order.
func (f *File) Images() []string {
	out := make([]string, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		out = append(out, n.Image)
	}
	return out
}

// Ambient returns the ambient sound for a node, or "".
func (f *File) Ambient(node string) string {
	for _, n := range f.Nodes {
		if n.Name == node {
			return n.Ambient
		}
	}
	return ""
}

// Build registers every node with g, wires the hotspots and returns the
// start node. The graph must not be activated yet.
func (f *File) Build(g *pano.SceneGraph) (*pano.Node, error) {
	for _, spec := range f.Nodes {
		if err := g.AddNode(pano.NewNode(spec.Name, spec.Image)); err != nil {
			return nil, fmt.Errorf("add node %q: %w", spec.Name, err)
		}
	}

	for _, spec := range f.Nodes {
		from := g.Node(spec.Name)
		for _, hs := range spec.Hotspots {
			h := &pano.Hotspot{
				Name:      hs.Name,
				Direction: hs.Direction.Vec3(),
				Target:    g.Node(hs.Target),
			}
			if err := g.Connect(from, h); err != nil {
				return nil, fmt.Errorf("connect %q to %q: %w", spec.Name, hs.Target, err)
			}
		}
	}

	start := g.Node(f.StartNode())
	if start == nil {
		return nil, fmt.Errorf("%w: start node %q does not exist", pano.ErrConfiguration, f.StartNode())
	}
	return start, nil
}

// Unreachable returns the nodes no chain of hotspots leads to from the start
// node, in node order.
func (f *File) Unreachable() []string {
	links := make(map[string][]string, len(f.Nodes))
	for _, n := range f.Nodes {
		for _, h := range n.Hotspots {
			links[n.Name] = append(links[n.Name], h.Target)
		}
	}

	seen := map[string]bool{}
	queue := []string{f.StartNode()}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true
		queue = append(queue, links[name]...)
	}

	var out []string
	for _, n := range f.Nodes {
		if !seen[n.Name] {
			out = append(out, n.Name)
		}
	}
	return out
}
