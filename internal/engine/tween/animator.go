// Package tween animates float properties over time on top of gween.
//
// An Animator holds one track per key. Callers advance it once per frame with
// Update; finished tracks fire their completion callback after the frame's
// values have been applied, in the order the tracks were started.
package tween

import (
	"fmt"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Easings maps config names to easing curves. Only curves that approach their
// target monotonically are listed; overshooting curves (back, elastic, bounce)
// would let opacity leave [0, 1].
var Easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
	"out-expo":     ease.OutExpo,
	"out-circ":     ease.OutCirc,
}

// Easing looks up an easing curve by name.
func Easing(name string) (ease.TweenFunc, error) {
	fn, ok := Easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing %q", name)
	}
	return fn, nil
}

// track is a running animation of one property.
type track struct {
	key   any
	tween *gween.Tween
	set   func(float32)
	done  func()
}

// Animator drives a set of property tweens. It is not safe for concurrent use;
// it is meant to be updated from the render loop.
type Animator struct {
	easing ease.TweenFunc
	tracks []*track
}

// New creates an animator that uses fn for every track. A nil fn means linear.
func New(fn ease.TweenFunc) *Animator {
	if fn == nil {
		fn = ease.Linear
	}
	return &Animator{easing: fn}
}

// Start animates a property from -> to over duration. set receives every
// intermediate value; done (optional) runs once the value reaches to.
//
// Starting a track for a key that is already animating finishes the old track
// first: its done callback fires without a final set.
// A non-positive duration applies the value and completes immediately.
func (a *Animator) Start(key any, from, to float32, duration time.Duration, set func(float32), done func()) {
	a.Cancel(key)

	if duration <= 0 {
		set(to)
		if done != nil {
			done()
		}
		return
	}

	set(from)
	a.tracks = append(a.tracks, &track{
		key:   key,
		tween: gween.New(from, to, float32(duration.Seconds()), a.easing),
		set:   set,
		done:  done,
	})
}

// Update advances every track by dt.
func (a *Animator) Update(dt time.Duration) {
	if len(a.tracks) == 0 {
		return
	}

	step := float32(dt.Seconds())
	var finished []*track
	running := a.tracks[:0]
	for _, tr := range a.tracks {
		val, done := tr.tween.Update(step)
		tr.set(val)
		if done {
			finished = append(finished, tr)
		} else {
			running = append(running, tr)
		}
	}
	// Clear the tail so finished tracks can be collected.
	for i := len(running); i < len(a.tracks); i++ {
		a.tracks[i] = nil
	}
	a.tracks = running

	// Callbacks may start new tracks, so they run after the slice is settled.
	for _, tr := range finished {
		if tr.done != nil {
			tr.done()
		}
	}
}

// Cancel stops the tracks for key and fires their done callbacks.
func (a *Animator) Cancel(key any) {
	var stopped []*track
	kept := a.tracks[:0]
	for _, tr := range a.tracks {
		if tr.key == key {
			stopped = append(stopped, tr)
		} else {
			kept = append(kept, tr)
		}
	}
	if len(stopped) == 0 {
		return
	}
	for i := len(kept); i < len(a.tracks); i++ {
		a.tracks[i] = nil
	}
	a.tracks = kept

	for _, tr := range stopped {
		if tr.done != nil {
			tr.done()
		}
	}
}

// Len returns the number of running tracks.
func (a *Animator) Len() int {
	return len(a.tracks)
}
