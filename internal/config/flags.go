package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagTour       = flag.String("tour", "", "Path to tour file")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")

	flagWriteConfig = flag.String("write-config", "", "Write the effective config to this path (- for stdout) and exit")
)

// ParseFlags parses the command line. Call it before Load.
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the path given with -config, or "".
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigPath returns the path given with -write-config, or "".
func WriteConfigPath() string {
	return *flagWriteConfig
}

// applyFlags overrides cfg with the flags that were set. -debug also turns
// on the FPS counter.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Debug.ShowFPS = true
	}
	if *flagTour != "" {
		cfg.Tour.Path = *flagTour
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
