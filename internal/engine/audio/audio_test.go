package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// silentWAV encodes n frames of silence at rate.
func silentWAV(t *testing.T, rate beep.SampleRate, n int) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "silence.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Silence(n), format))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestVolumeConversion(t *testing.T) {
	tests := []struct {
		vol float64
		min float64
		max float64
	}{
		{1.0, -0.01, 0.01},
		{0.5, -1.01, -0.99},
		{0.25, -2.01, -1.99},
		{0.0, -200, -90},
	}

	for _, tt := range tests {
		db := volumeToDb(tt.vol)
		if db < tt.min || db > tt.max {
			t.Errorf("volumeToDb(%f) = %f, want between %f and %f", tt.vol, db, tt.min, tt.max)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{0, 0, 1, 0},
		{1, 0, 1, 1},
	}

	for _, tt := range tests {
		got := clamp(tt.v, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("clamp(%f, %f, %f) = %f, want %f", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestNewManager(t *testing.T) {
	m := New(Volumes{Master: 1.0, Ambient: 0.7, Cue: 1.0}, nil)
	require.NotNil(t, m)
	assert.Equal(t, Volumes{Master: 1.0, Ambient: 0.7, Cue: 1.0}, m.Volumes())

	m = New(Volumes{Master: 3, Ambient: -1, Cue: 0.5}, nil)
	assert.Equal(t, Volumes{Master: 1, Ambient: 0, Cue: 0.5}, m.Volumes())
}

func TestMasterVolume(t *testing.T) {
	m := New(Volumes{Master: 1.0, Ambient: 0.7, Cue: 1.0}, nil)

	assert.Equal(t, 0.5, m.SetMasterVolume(0.5))
	assert.InDelta(t, 0.6, m.AdjustMasterVolume(0.1), 1e-9)
	assert.Equal(t, 1.0, m.AdjustMasterVolume(5))
	assert.Equal(t, 0.0, m.AdjustMasterVolume(-5))
	assert.Equal(t, Volumes{Master: 0, Ambient: 0.7, Cue: 1.0}, m.Volumes())
}

func TestToggleMute(t *testing.T) {
	m := New(Volumes{Master: 0.8, Ambient: 0.5, Cue: 1}, nil)

	assert.True(t, m.ToggleMute())
	assert.Equal(t, 0.0, m.master())
	assert.Equal(t, 0.8, m.Volumes().Master, "muting keeps the configured level")

	assert.False(t, m.ToggleMute())
	assert.Equal(t, 0.8, m.master())
}

func TestPlaybackRequiresInit(t *testing.T) {
	m := New(Volumes{Master: 1.0, Ambient: 0.7, Cue: 1.0}, nil)
	data := silentWAV(t, DefaultSampleRate, 64)

	assert.ErrorIs(t, m.PlayAmbient(data, "outside.wav"), ErrNotInitialized)
	assert.ErrorIs(t, m.PlayCue(data), ErrNotInitialized)

	m.StopAmbient()
	m.Close()
}

func TestDecode(t *testing.T) {
	src, out, err := decode(silentWAV(t, DefaultSampleRate, 128), DefaultSampleRate)
	require.NoError(t, err)
	defer src.Close()
	assert.Equal(t, 128, src.Len())
	assert.Equal(t, beep.Streamer(src), out, "matching rates skip resampling")

	src, out, err = decode(silentWAV(t, 22050, 128), DefaultSampleRate)
	require.NoError(t, err)
	defer src.Close()
	assert.NotEqual(t, beep.Streamer(src), out)

	_, _, err = decode([]byte("RIFF"), DefaultSampleRate)
	assert.Error(t, err)
}

func TestLoopStreamerWraps(t *testing.T) {
	src, out, err := decode(silentWAV(t, DefaultSampleRate, 100), DefaultSampleRate)
	require.NoError(t, err)
	defer src.Close()

	loop := &loopStreamer{streamer: src, resampled: out}
	buf := make([][2]float64, 1000)
	n, ok := loop.Stream(buf)

	assert.Equal(t, 1000, n)
	assert.True(t, ok)
	assert.NoError(t, loop.Err())
}
