// Package audio plays the ambient loop of the active panorama and the
// short cue sounded when a transition starts.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"
)

// DefaultSampleRate is the default sample rate for audio playback.
const DefaultSampleRate = beep.SampleRate(44100)

// ErrNotInitialized is returned by playback calls made before Init.
var ErrNotInitialized = errors.New("audio not initialized")

// Volumes holds the initial levels, each 0.0 to 1.0.
type Volumes struct {
	Master  float64
	Ambient float64
	Cue     float64
}

// Manager owns the speaker and a mixer that carries the ambient loop and cues.
type Manager struct {
	mu  sync.RWMutex
	log *zap.Logger

	initialized bool
	sampleRate  beep.SampleRate
	mixer       *beep.Mixer

	// Ambient loop
	ambientStreamer beep.StreamSeekCloser
	ambientCtrl     *beep.Ctrl
	ambientVolume   *effects.Volume
	ambientSource   string

	masterVolume float64
	muted        bool
	ambientLevel float64
	cueLevel     float64
}

// New creates an audio manager. The speaker is not opened until Init.
func New(vol Volumes, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		log:          log,
		sampleRate:   DefaultSampleRate,
		mixer:        &beep.Mixer{},
		masterVolume: clamp(vol.Master, 0, 1),
		ambientLevel: clamp(vol.Ambient, 0, 1),
		cueLevel:     clamp(vol.Cue, 0, 1),
	}
}

// Init opens the speaker and starts the mixer.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.mixer)

	m.initialized = true
	m.log.Debug("speaker ready", zap.Int("sample_rate", int(m.sampleRate)))
	return nil
}

// Close stops all playback and releases the speaker.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}
	m.stopAmbientLocked()
	speaker.Clear()
	speaker.Close()
	m.initialized = false
}

// SetMasterVolume sets the master volume (0.0 to 1.0) and returns the
// level actually applied.
func (m *Manager) SetMasterVolume(vol float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.masterVolume = clamp(vol, 0, 1)
	m.updateAmbientVolume()
	return m.masterVolume
}

// AdjustMasterVolume moves the master volume by delta.
func (m *Manager) AdjustMasterVolume(delta float64) float64 {
	m.mu.RLock()
	vol := m.masterVolume
	m.mu.RUnlock()
	return m.SetMasterVolume(vol + delta)
}

// ToggleMute silences or restores every sound without touching the levels.
// It reports whether audio is now muted.
func (m *Manager) ToggleMute() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = !m.muted
	m.updateAmbientVolume()
	return m.muted
}

// master is the effective master level. Callers hold mu.
func (m *Manager) master() float64 {
	if m.muted {
		return 0
	}
	return m.masterVolume
}

// Volumes returns the current levels.
func (m *Manager) Volumes() Volumes {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Volumes{Master: m.masterVolume, Ambient: m.ambientLevel, Cue: m.cueLevel}
}

func (m *Manager) updateAmbientVolume() {
	if m.ambientVolume == nil {
		return
	}
	vol := m.master() * m.ambientLevel
	if m.initialized {
		speaker.Lock()
		defer speaker.Unlock()
	}
	applyVolume(m.ambientVolume, vol)
}

func applyVolume(v *effects.Volume, vol float64) {
	v.Silent = vol <= 0
	v.Volume = volumeToDb(vol)
}

// volumeToDb maps a 0-1 level to the base-2 exponent effects.Volume expects,
// so 0.5 is one halving (about -6 dB).
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100
	}
	return math.Log2(vol)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// decode reads WAV data and resamples it to rate when needed.
func decode(data []byte, rate beep.SampleRate) (beep.StreamSeekCloser, beep.Streamer, error) {
	streamer, format, err := wav.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("decode wav: %w", err)
	}
	if format.SampleRate != rate {
		return streamer, beep.Resample(4, format.SampleRate, rate, streamer), nil
	}
	return streamer, streamer, nil
}

// PlayAmbient starts looping WAV data as the ambient sound. Calling it again
// with the source that is already playing keeps the loop running.
func (m *Manager) PlayAmbient(data []byte, source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}
	if source != "" && source == m.ambientSource && m.ambientCtrl != nil {
		return nil
	}

	streamer, resampled, err := decode(data, m.sampleRate)
	if err != nil {
		return fmt.Errorf("ambient %s: %w", source, err)
	}

	m.stopAmbientLocked()

	m.ambientCtrl = &beep.Ctrl{Streamer: &loopStreamer{streamer: streamer, resampled: resampled}}
	m.ambientVolume = &effects.Volume{Streamer: m.ambientCtrl, Base: 2}
	applyVolume(m.ambientVolume, m.master()*m.ambientLevel)
	m.ambientStreamer = streamer
	m.ambientSource = source

	speaker.Lock()
	m.mixer.Add(m.ambientVolume)
	speaker.Unlock()
	m.log.Debug("ambient started", zap.String("source", source))
	return nil
}

// StopAmbient stops the ambient loop, if any.
func (m *Manager) StopAmbient() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopAmbientLocked()
}

func (m *Manager) stopAmbientLocked() {
	if m.ambientCtrl == nil {
		return
	}
	if m.initialized {
		speaker.Lock()
	}
	// A nil streamer makes the Ctrl report exhaustion, which drops it from the mixer.
	m.ambientCtrl.Streamer = nil
	if m.initialized {
		speaker.Unlock()
	}
	if m.ambientStreamer != nil {
		if err := m.ambientStreamer.Close(); err != nil {
			m.log.Debug("close ambient", zap.Error(err))
		}
	}
	m.ambientStreamer = nil
	m.ambientCtrl = nil
	m.ambientVolume = nil
	m.ambientSource = ""
}

// PlayCue plays WAV data once over the ambient loop.
func (m *Manager) PlayCue(data []byte) error {
	m.mu.RLock()
	initialized := m.initialized
	vol := m.master() * m.cueLevel
	rate := m.sampleRate
	m.mu.RUnlock()

	if !initialized {
		return ErrNotInitialized
	}

	_, resampled, err := decode(data, rate)
	if err != nil {
		return fmt.Errorf("cue: %w", err)
	}

	cue := &effects.Volume{Streamer: resampled, Base: 2}
	applyVolume(cue, vol)

	speaker.Lock()
	m.mixer.Add(cue)
	speaker.Unlock()
	return nil
}

// loopStreamer rewinds its source whenever the resampled stream runs dry.
type loopStreamer struct {
	streamer  beep.StreamSeekCloser
	resampled beep.Streamer
}

func (l *loopStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	filled := 0
	for filled < len(samples) {
		n, ok := l.resampled.Stream(samples[filled:])
		filled += n
		if ok {
			continue
		}
		if l.streamer.Len() == 0 {
			return filled, filled > 0
		}
		if err := l.streamer.Seek(0); err != nil {
			return filled, false
		}
	}
	return filled, true
}

func (l *loopStreamer) Err() error {
	return l.streamer.Err()
}
