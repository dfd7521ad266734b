package pano

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/panorama/internal/engine/render"
	"github.com/Faultbox/panorama/pkg/math"
)

func TestConnectRejectsUnregisteredTarget(t *testing.T) {
	tr := newTour(t, nil)
	stray := NewNode("stray", "img/stray.jpeg")

	err := tr.graph.Connect(tr.a, &Hotspot{Name: "Nowhere", Direction: math.Vec3{Z: 1}, Target: stray})

	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Len(t, tr.a.Hotspots(), 1, "no dangling edge may be created")
}

func TestConnectValidation(t *testing.T) {
	tr := newTour(t, nil)
	stray := NewNode("stray", "img/stray.jpeg")

	tests := []struct {
		name string
		from *Node
		h    *Hotspot
	}{
		{"nil hotspot", tr.a, nil},
		{"nil target", tr.a, &Hotspot{Name: "x", Direction: math.Vec3{X: 1}}},
		{"unregistered source", stray, &Hotspot{Name: "x", Direction: math.Vec3{X: 1}, Target: tr.a}},
		{"zero direction", tr.a, &Hotspot{Name: "x", Target: tr.b}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tr.graph.Connect(tt.from, tt.h), ErrConfiguration)
		})
	}
}

func TestAddNodeValidation(t *testing.T) {
	tr := newTour(t, nil)

	assert.ErrorIs(t, tr.graph.AddNode(nil), ErrConfiguration)
	assert.ErrorIs(t, tr.graph.AddNode(tr.a), ErrConfiguration, "same node twice")
	assert.ErrorIs(t, tr.graph.AddNode(NewNode("outside", "other.jpeg")), ErrConfiguration, "duplicate name")
}

func TestGraphFrozenAfterActivation(t *testing.T) {
	tr := newTour(t, nil)
	require.NoError(t, tr.graph.Activate(tr.a))

	assert.ErrorIs(t, tr.graph.AddNode(NewNode("late", "late.jpeg")), ErrConfiguration)
	assert.ErrorIs(t, tr.graph.Connect(tr.a, &Hotspot{Name: "late", Direction: math.Vec3{Y: 1}, Target: tr.b}), ErrConfiguration)
}

func TestActivate(t *testing.T) {
	tr := newTour(t, nil)
	assert.Nil(t, tr.graph.Active())

	require.NoError(t, tr.graph.Activate(tr.a))

	assert.Same(t, tr.a, tr.graph.Active())
	assert.True(t, tr.a.Built())
	assert.False(t, tr.b.Built())
	assert.Equal(t, float32(1), tr.opacity(t, tr.a))

	m, ok := tr.a.MarkerHandle(tr.h1)
	require.True(t, ok)
	obj, ok := tr.scene.Object(m)
	require.True(t, ok)
	assert.Equal(t, math.Vec3{X: 15}, obj.Position, "marker sits at the normalized direction times the marker distance")
	assert.Equal(t, float32(1), obj.Scale)
	assert.True(t, obj.InScene())

	owner, ok := tr.graph.HotspotForMarker(m)
	require.True(t, ok)
	assert.Same(t, tr.h1, owner)
}

func TestActivateTwice(t *testing.T) {
	tr := newTour(t, nil)
	require.NoError(t, tr.graph.Activate(tr.a))

	err := tr.graph.Activate(tr.b)

	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Same(t, tr.a, tr.graph.Active())
	assert.False(t, tr.b.Built())
}

func TestActivateUnregistered(t *testing.T) {
	tr := newTour(t, nil)
	assert.ErrorIs(t, tr.graph.Activate(NewNode("stray", "x.jpeg")), ErrConfiguration)
	assert.False(t, tr.graph.Activated())
}

func TestActivateAssetFailure(t *testing.T) {
	tr := newTour(t, nil)
	tr.loader.fail[tr.a.Image] = true

	err := tr.graph.Activate(tr.a)

	var loadErr *AssetLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "outside", loadErr.Node)
	assert.True(t, errors.Is(err, ErrAssetLoad))
	assert.True(t, errors.Is(err, errMissing))
	assert.False(t, tr.graph.Activated())
	assert.Nil(t, tr.graph.Active())
	assert.Zero(t, tr.scene.Len())

	// A failed activation can be retried.
	delete(tr.loader.fail, tr.a.Image)
	assert.NoError(t, tr.graph.Activate(tr.a))
}

func TestLookups(t *testing.T) {
	tr := newTour(t, nil)

	assert.Same(t, tr.b, tr.graph.Node("inside"))
	assert.Nil(t, tr.graph.Node("attic"))
	assert.Same(t, tr.h1, tr.a.Hotspot("Entrance"))
	assert.Nil(t, tr.a.Hotspot("Exit"))
	assert.Equal(t, []*Node{tr.a, tr.b}, tr.graph.Nodes())
}

func TestTeardownIsIdempotent(t *testing.T) {
	tr := newTour(t, nil)
	require.NoError(t, tr.graph.Activate(tr.a))
	sphere := tr.a.SphereHandle()

	tr.graph.teardown(tr.a)
	tr.graph.teardown(tr.a)
	tr.scene.Remove(sphere)

	assert.False(t, tr.a.Built())
	_, ok := tr.a.MarkerHandle(tr.h1)
	assert.False(t, ok)
	assert.Zero(t, tr.scene.Len())
}

func TestBuildUsesLayout(t *testing.T) {
	tr := newTour(t, nil)
	icon := &render.Texture{Source: "icon"}
	layout := DefaultLayout()
	layout.MarkerDistance = 20
	layout.MarkerSize = 2
	layout.Icon = icon
	g := NewSceneGraph(tr.scene, tr.loader, WithLayout(layout))
	n := NewNode("n", "n.jpeg")
	other := NewNode("m", "m.jpeg")
	require.NoError(t, g.AddNode(n))
	require.NoError(t, g.AddNode(other))
	h := &Hotspot{Name: "up", Direction: math.Vec3{Y: 3}, Target: other}
	require.NoError(t, g.Connect(n, h))

	require.NoError(t, g.Activate(n))

	m, _ := n.MarkerHandle(h)
	obj, _ := tr.scene.Object(m)
	assert.Equal(t, math.Vec3{Y: 20}, obj.Position)
	assert.Equal(t, float32(2), obj.Size)
	assert.Same(t, icon, obj.Texture)
}
