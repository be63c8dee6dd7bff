// Package playback selects which frame of a splat sequence is visible at a
// given time.
//
// The Player is a pure state machine over injected time: callers feed it
// wall-clock deltas (or seek it directly) and read back the current frame.
// It never touches the clock, spawns no goroutines and does no I/O, so the
// same tick sequence always produces the same frames.
package playback

import (
	"fmt"

	"github.com/arnevik/splatstream/pkg/splat"
)

// LoopMode controls what happens when playback reaches the end of the
// sequence.
type LoopMode uint8

const (
	// LoopOnce plays to the last frame, then pauses and reports completion.
	LoopOnce LoopMode = iota
	// LoopRepeat wraps back to the first frame indefinitely.
	LoopRepeat
	// LoopPingPong alternates forward and backward passes indefinitely.
	LoopPingPong
)

func (m LoopMode) String() string {
	switch m {
	case LoopOnce:
		return "once"
	case LoopRepeat:
		return "loop"
	case LoopPingPong:
		return "pingpong"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseLoopMode maps a config name to its mode.
func ParseLoopMode(s string) (LoopMode, error) {
	switch s {
	case "once":
		return LoopOnce, nil
	case "loop":
		return LoopRepeat, nil
	case "pingpong":
		return LoopPingPong, nil
	default:
		return 0, fmt.Errorf("unknown loop mode %q", s)
	}
}

// State is the player's transport state.
type State uint8

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Options configure a Player.
type Options struct {
	Mode LoopMode

	// Speed multiplies every time delta; values <= 0 fall back to 1.
	Speed float64

	// AutoPlay starts playback on the first Update instead of waiting for
	// an explicit Play.
	AutoPlay bool

	// OnFrameChange fires once per frame index transition, including the
	// ones caused by seeks and Stop.
	OnFrameChange func(frame int)

	// OnComplete fires exactly once when a LoopOnce run reaches the last
	// frame. Stop rearms it.
	OnComplete func()
}

// Player steps through the frames of one sequence. It is not safe for
// concurrent use.
type Player struct {
	seq   *splat.Sequence
	mode  LoopMode
	speed float64
	state State

	time      float64
	frame     int
	completed bool
	autoPlay  bool

	onFrameChange func(int)
	onComplete    func()
}

// NewPlayer returns a stopped player on frame 0. A nil or empty sequence, or
// one without a positive frame rate, yields an inert player that ignores
// every call.
func NewPlayer(seq *splat.Sequence, opts Options) *Player {
	speed := opts.Speed
	if speed <= 0 {
		speed = 1
	}
	return &Player{
		seq:           seq,
		mode:          opts.Mode,
		speed:         speed,
		autoPlay:      opts.AutoPlay,
		onFrameChange: opts.OnFrameChange,
		onComplete:    opts.OnComplete,
	}
}

// playable reports whether the sequence can drive frame selection at all.
func (p *Player) playable() bool {
	return p.seq.FrameCount() > 0 && p.seq.FPS > 0
}

// State returns the transport state.
func (p *Player) State() State { return p.state }

// Frame returns the current frame index.
func (p *Player) Frame() int { return p.frame }

// Time returns the accumulated playback time in seconds.
func (p *Player) Time() float64 { return p.time }

// Mode returns the loop mode.
func (p *Player) Mode() LoopMode { return p.mode }

// Speed returns the playback rate multiplier.
func (p *Player) Speed() float64 { return p.speed }

// Completed reports whether a LoopOnce run has reached its end.
func (p *Player) Completed() bool { return p.completed }

// CurrentAsset returns the encoded frame to display, nil when the player is
// inert.
func (p *Player) CurrentAsset() *splat.Asset {
	return p.seq.Frame(p.frame)
}

// Sequence returns the sequence the player was built around.
func (p *Player) Sequence() *splat.Sequence { return p.seq }

// SetMode switches the loop behavior; it takes effect on the next tick or
// seek.
func (p *Player) SetMode(m LoopMode) { p.mode = m }

// SetSpeed changes the playback rate multiplier. Rates <= 0 are ignored.
func (p *Player) SetSpeed(s float64) {
	if s > 0 {
		p.speed = s
	}
}

// Play starts or resumes playback.
func (p *Player) Play() {
	if !p.playable() {
		return
	}
	p.state = StatePlaying
}

// Pause freezes playback at the current frame.
func (p *Player) Pause() {
	if p.state == StatePlaying {
		p.state = StatePaused
	}
}

// Stop halts playback and rewinds to frame 0.
func (p *Player) Stop() {
	if !p.playable() {
		return
	}
	p.state = StateStopped
	p.time = 0
	p.completed = false
	p.setFrame(0)
}

// Update advances playback time by dt seconds, scaled by the speed
// multiplier, and reselects the frame. Time only moves while playing.
func (p *Player) Update(dt float64) {
	if !p.playable() {
		return
	}
	if p.autoPlay {
		p.autoPlay = false
		if p.state == StateStopped {
			p.state = StatePlaying
		}
	}
	if p.state != StatePlaying {
		return
	}
	p.time += dt * p.speed
	if p.time < 0 {
		p.time = 0
	}
	p.applyTime()
}

// GoToFrame seeks directly to a frame, clamped to the sequence range. Seeks
// work in every state and fire the frame signal on an actual change.
func (p *Player) GoToFrame(i int) {
	if !p.playable() {
		return
	}
	n := p.seq.FrameCount()
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	// Land mid-frame so later ticks cannot round back across the boundary.
	p.time = (float64(i) + 0.5) / p.seq.FPS
	if i < n-1 {
		p.completed = false
	}
	p.setFrame(i)
}

// NextFrame steps one frame forward, clamped to the last frame.
func (p *Player) NextFrame() { p.GoToFrame(p.frame + 1) }

// PreviousFrame steps one frame back, clamped to frame 0.
func (p *Player) PreviousFrame() { p.GoToFrame(p.frame - 1) }

// NormalizedTime returns the playback position as a fraction of the
// sequence duration. Looping modes report the position inside the current
// pass.
func (p *Player) NormalizedTime() float64 {
	if !p.playable() {
		return 0
	}
	d := p.seq.Duration()
	frac := p.time / d
	if p.mode == LoopOnce {
		if frac > 1 {
			return 1
		}
		return frac
	}
	frac -= float64(int(frac))
	return frac
}

// SetNormalizedTime seeks to a fraction of the sequence duration, clamped
// to [0,1].
func (p *Player) SetNormalizedTime(t float64) {
	if !p.playable() {
		return
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	p.time = t * p.seq.Duration()
	if p.frameForTime() < p.seq.FrameCount()-1 {
		p.completed = false
	}
	p.setFrame(p.frameForTime())
}

// applyTime reselects the frame after a tick and handles end-of-sequence.
func (p *Player) applyTime() {
	n := p.seq.FrameCount()
	frame := p.frameForTime()
	p.setFrame(frame)
	if p.mode == LoopOnce && frame == n-1 && !p.completed {
		p.completed = true
		p.state = StatePaused
		if p.onComplete != nil {
			p.onComplete()
		}
	}
}

// frameForTime maps accumulated time to a frame index under the loop mode.
func (p *Player) frameForTime() int {
	n := p.seq.FrameCount()
	raw := int(p.time * p.seq.FPS)
	switch p.mode {
	case LoopRepeat:
		return raw % n
	case LoopPingPong:
		if n == 1 {
			return 0
		}
		cycle := raw / (n - 1)
		pos := raw % (n - 1)
		if cycle%2 == 1 {
			return n - 1 - pos
		}
		return pos
	default:
		if raw > n-1 {
			return n - 1
		}
		return raw
	}
}

// setFrame records the frame and fires the change signal on transitions.
func (p *Player) setFrame(f int) {
	if f == p.frame {
		return
	}
	p.frame = f
	if p.onFrameChange != nil {
		p.onFrameChange(f)
	}
}
