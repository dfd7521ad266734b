package pano

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/panorama/internal/engine/render"
)

// DefaultTransitionDuration is the length of the cross-fade.
const DefaultTransitionDuration = time.Second

// Phase is the step of a transition.
type Phase int

const (
	// PhaseIdle means no transition is running; Navigate is accepted.
	PhaseIdle Phase = iota
	// PhaseDisappearing means the outgoing node is still fading out.
	PhaseDisappearing
	// PhaseAppearing means the outgoing node is gone and the incoming one is
	// still fading in.
	PhaseAppearing
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDisappearing:
		return "disappearing"
	case PhaseAppearing:
		return "appearing"
	default:
		return "unknown"
	}
}

// TransitionState describes the transition in flight.
type TransitionState struct {
	Phase Phase
	From  *Node
	To    *Node
}

// TransitionController runs the cross-fade between the active node and the
// next one. At most one transition is in flight; requests made meanwhile are
// dropped.
type TransitionController struct {
	graph    *SceneGraph
	duration time.Duration
	log      *zap.Logger

	state    TransitionState
	outDone  bool
	inDone   bool
	started  time.Time
	dropped  int
	navigate []func(from, to *Node)
	settled  []func(node *Node)
}

// TransitionOption configures a TransitionController.
type TransitionOption func(*TransitionController)

// WithDuration sets the cross-fade length.
func WithDuration(d time.Duration) TransitionOption {
	return func(c *TransitionController) { c.duration = d }
}

// WithTransitionLogger sets the logger.
func WithTransitionLogger(log *zap.Logger) TransitionOption {
	return func(c *TransitionController) { c.log = log }
}

// OnNavigate registers fn to run when a transition starts.
func OnNavigate(fn func(from, to *Node)) TransitionOption {
	return func(c *TransitionController) { c.navigate = append(c.navigate, fn) }
}

// OnSettled registers fn to run when a transition has fully completed.
func OnSettled(fn func(node *Node)) TransitionOption {
	return func(c *TransitionController) { c.settled = append(c.settled, fn) }
}

// NewTransitionController creates a controller for graph.
func NewTransitionController(graph *SceneGraph, opts ...TransitionOption) *TransitionController {
	c := &TransitionController{
		graph:    graph,
		duration: DefaultTransitionDuration,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current transition state.
func (c *TransitionController) State() TransitionState {
	return c.state
}

// Idle reports whether a new navigation would be accepted.
func (c *TransitionController) Idle() bool {
	return c.state.Phase == PhaseIdle
}

// Dropped returns how many navigation requests were rejected because a
// transition was in flight.
func (c *TransitionController) Dropped() int {
	return c.dropped
}

// Navigate starts a transition from the active node to target.
//
// The call is dropped (nil error) while another transition is running or
// when target is already active. If target's panorama cannot be loaded an
// *AssetLoadError is returned and the scene is unchanged. The active node
// switches to target as soon as the transition starts.
func (c *TransitionController) Navigate(target *Node) error {
	_, err := c.TryNavigate(target)
	return err
}

// TryNavigate is Navigate that also reports whether a transition started.
func (c *TransitionController) TryNavigate(target *Node) (started bool, err error) {
	if c.state.Phase != PhaseIdle {
		c.dropped++
		c.log.Debug("navigation dropped: transition in flight",
			zap.Stringer("target", target),
			zap.Stringer("phase", c.state.Phase),
		)
		return false, nil
	}

	from := c.graph.Active()
	switch {
	case !c.graph.Activated() || from == nil:
		return false, stateErrorf("navigate before activation")
	case !c.graph.Contains(target):
		return false, configErrorf("navigate to unregistered node %s", target)
	case target == from:
		c.log.Debug("navigation ignored: target already active", zap.Stringer("node", target))
		return false, nil
	}

	if err := c.graph.build(target, 0, 0); err != nil {
		c.log.Debug("navigation aborted", zap.Stringer("target", target), zap.Error(err))
		return false, err
	}

	c.graph.SetActive(target)
	c.state = TransitionState{Phase: PhaseDisappearing, From: from, To: target}
	c.outDone, c.inDone = false, false
	c.started = time.Now()

	c.log.Info("transition started",
		zap.String("from", from.Name),
		zap.String("to", target.Name),
		zap.Duration("duration", c.duration),
	)
	for _, fn := range c.navigate {
		fn(from, target)
	}

	c.fade(target, 1, c.appeared)
	c.fade(from, 0, c.disappeared)
	return true, nil
}

// fade animates n's sphere opacity and marker scale to value and calls done
// once every property has arrived.
func (c *TransitionController) fade(n *Node, value float32, done func()) {
	engine := c.graph.engine
	markers := n.markerHandles()
	pending := 1 + len(markers)
	step := func() {
		pending--
		if pending == 0 {
			done()
		}
	}

	engine.Animate(n.sphere, render.PropertyOpacity, value, c.duration, step)
	for _, m := range markers {
		engine.Animate(m, render.PropertyScale, value, c.duration, step)
	}
}

func (c *TransitionController) disappeared() {
	from := c.state.From
	c.graph.teardown(from)
	c.outDone = true
	if !c.inDone {
		c.state.Phase = PhaseAppearing
	}
	c.finish()
}

func (c *TransitionController) appeared() {
	c.inDone = true
	c.finish()
}

func (c *TransitionController) finish() {
	if !c.outDone || !c.inDone {
		return
	}
	to := c.state.To
	c.state = TransitionState{Phase: PhaseIdle}
	c.log.Info("transition finished",
		zap.String("node", to.Name),
		zap.Duration("elapsed", time.Since(c.started)),
	)
	for _, fn := range c.settled {
		fn(to)
	}
}
