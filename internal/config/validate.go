package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/panorama/internal/engine/tween"
)

// Validate reports every setting that cannot be used as given.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	g := c.Graphics
	if g.Width <= 0 || g.Height <= 0 {
		bad("graphics: window size %dx%d must be positive", g.Width, g.Height)
	}
	if g.FPSLimit < 0 {
		bad("graphics: fps_limit %d is negative", g.FPSLimit)
	}

	v := c.Viewer
	if v.Near <= 0 || v.Far <= v.Near {
		bad("viewer: need 0 < near < far, got near=%g far=%g", v.Near, v.Far)
	}
	if v.MinFOV <= 0 || v.MaxFOV >= 180 || v.MinFOV > v.MaxFOV {
		bad("viewer: fov range [%g, %g] must lie inside (0, 180)", v.MinFOV, v.MaxFOV)
	} else if v.FOV < v.MinFOV || v.FOV > v.MaxFOV {
		bad("viewer: fov %g outside [%g, %g]", v.FOV, v.MinFOV, v.MaxFOV)
	}
	if v.RotateSpeed <= 0 {
		bad("viewer: rotate_speed %g must be positive", v.RotateSpeed)
	}
	if v.ZoomSpeed < 0 || v.ZoomSpeed >= 1 {
		bad("viewer: zoom_speed %g outside [0, 1)", v.ZoomSpeed)
	}
	if v.ClickTolerance < 0 {
		bad("viewer: click_tolerance %g is negative", v.ClickTolerance)
	}
	if v.TransitionDuration <= 0 {
		bad("viewer: transition_duration %v must be positive", v.TransitionDuration)
	}
	if _, err := tween.Easing(v.Easing); err != nil {
		bad("viewer: %w", err)
	}
	if v.SphereRadius <= 0 {
		bad("viewer: sphere_radius %g must be positive", v.SphereRadius)
	}
	if v.SphereSegments < 3 {
		bad("viewer: sphere_segments %d is below 3", v.SphereSegments)
	}
	if v.MarkerSize <= 0 {
		bad("viewer: marker_size %g must be positive", v.MarkerSize)
	}
	if v.MarkerDistance <= 0 || v.MarkerDistance >= v.SphereRadius {
		bad("viewer: marker_distance %g must lie inside the sphere (radius %g)", v.MarkerDistance, v.SphereRadius)
	} else if v.MarkerDistance <= v.Near {
		bad("viewer: marker_distance %g is inside the near plane %g", v.MarkerDistance, v.Near)
	}
	if v.MaxTextureSize < 0 {
		bad("viewer: max_texture_size %d is negative", v.MaxTextureSize)
	}

	if c.Tour.Path == "" {
		bad("tour: path is empty")
	}

	a := c.Audio
	for _, vol := range []struct {
		name  string
		level float64
	}{
		{"master_volume", a.MasterVolume},
		{"ambient_volume", a.AmbientVolume},
		{"cue_volume", a.CueVolume},
	} {
		if vol.level < 0 || vol.level > 1 {
			bad("audio: %s %g outside [0, 1]", vol.name, vol.level)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		bad("logging: unknown level %q", c.Logging.Level)
	}

	return errors.Join(errs...)
}
