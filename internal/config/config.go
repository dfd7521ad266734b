// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Tour     TourConfig     `yaml:"tour"`
	Audio    AudioConfig    `yaml:"audio"`
	Debug    DebugConfig    `yaml:"debug"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// ViewerConfig holds camera, transition and layout settings.
type ViewerConfig struct {
	FOV         float32 `yaml:"fov"` // Vertical field of view in degrees
	Near        float32 `yaml:"near"`
	Far         float32 `yaml:"far"`
	RotateSpeed float32 `yaml:"rotate_speed"`
	ZoomSpeed   float32 `yaml:"zoom_speed"` // Fraction of the FOV per wheel notch
	MinFOV      float32 `yaml:"min_fov"`
	MaxFOV      float32 `yaml:"max_fov"`

	// A press released within this many pixels of where it started is a click.
	ClickTolerance float32 `yaml:"click_tolerance"`

	TransitionDuration time.Duration `yaml:"transition_duration"`
	Easing             string        `yaml:"easing"`

	SphereRadius   float32 `yaml:"sphere_radius"`
	SphereSegments int     `yaml:"sphere_segments"`
	MarkerDistance float32 `yaml:"marker_distance"`
	MarkerSize     float32 `yaml:"marker_size"`
	MaxTextureSize int     `yaml:"max_texture_size"` // 0 keeps source size

	Preload bool `yaml:"preload"` // Decode every panorama at startup
}

// TourConfig points at the tour description and its assets.
type TourConfig struct {
	Path       string   `yaml:"path"`
	AssetRoots []string `yaml:"asset_roots"` // Later roots override earlier ones
	Icon       string   `yaml:"icon"`        // Empty uses the built-in arrow
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	Enabled       bool    `yaml:"enabled"`
	MasterVolume  float64 `yaml:"master_volume"`
	AmbientVolume float64 `yaml:"ambient_volume"`
	CueVolume     float64 `yaml:"cue_volume"`
	TransitionCue string  `yaml:"transition_cue"`
}

// DebugConfig holds developer settings.
type DebugConfig struct {
	ScreenshotDir string `yaml:"screenshot_dir"`
	ShowFPS       bool   `yaml:"show_fps"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Viewer: ViewerConfig{
			FOV:                75,
			Near:               0.1,
			Far:                1000,
			RotateSpeed:        0.35,
			ZoomSpeed:          0.05,
			MinFOV:             30,
			MaxFOV:             90,
			ClickTolerance:     4,
			TransitionDuration: time.Second,
			Easing:             "linear",
			SphereRadius:       50,
			SphereSegments:     32,
			MarkerDistance:     15,
			MarkerSize:         0.85,
			MaxTextureSize:     8192,
			Preload:            false,
		},
		Tour: TourConfig{
			Path:       "tours/example.yaml",
			AssetRoots: []string{"."},
		},
		Audio: AudioConfig{
			Enabled:       true,
			MasterVolume:  0.8,
			AmbientVolume: 0.7,
			CueVolume:     0.8,
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
