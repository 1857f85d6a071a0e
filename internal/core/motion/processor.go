package motion

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"chosenoffset.com/labyrinth/internal/core/geom"
	"chosenoffset.com/labyrinth/internal/logger"
)

// ErrInvalidTuning is returned by NewProcessor for unusable tuning values.
var ErrInvalidTuning = errors.New("invalid motion tuning")

// Tuning holds the gain constants of the input pipeline
type Tuning struct {
	MaxSpeed   float64 // gain applied to calibrated tilt
	DeadZone   float64 // per-axis magnitude below which output is forced to 0
	SampleRate float64 // samples per second requested from the source
}

// DefaultTuning returns the reference constants: gain 6, dead zone 0.1, 60 Hz.
func DefaultTuning() Tuning {
	return Tuning{
		MaxSpeed:   6.0,
		DeadZone:   0.1,
		SampleRate: 60,
	}
}

// Validate checks that the tuning can drive the pipeline
func (t Tuning) Validate() error {
	if math.IsNaN(t.MaxSpeed) || math.IsInf(t.MaxSpeed, 0) {
		return fmt.Errorf("%w: max speed %v", ErrInvalidTuning, t.MaxSpeed)
	}
	if t.DeadZone < 0 || math.IsNaN(t.DeadZone) {
		return fmt.Errorf("%w: dead zone %v", ErrInvalidTuning, t.DeadZone)
	}
	if !(t.SampleRate > 0) || math.IsInf(t.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidTuning, t.SampleRate)
	}
	return nil
}

// Interval returns the sampling period derived from SampleRate
func (t Tuning) Interval() time.Duration {
	return time.Duration(float64(time.Second) / t.SampleRate)
}

// Displacement is one published output of the processor, tagged with the
// monitoring session that produced it.
type Displacement struct {
	Session uint64
	Vector  geom.Vector2
}

// Processor is the motion input pipeline. On every raw sample it applies
// calibration, gain and dead zone, then publishes the result.
//
// The first sample after Start becomes the calibration baseline, so whatever
// orientation the device is held in at that moment counts as level.
type Processor struct {
	// lifecycle serializes Start and Stop; mu guards the fields below and is
	// the only lock taken on the delivery path.
	lifecycle sync.Mutex
	mu        sync.Mutex

	source Source
	tuning Tuning
	log    *zap.Logger

	running  bool
	degraded bool
	session  uint64

	baseline   geom.Vector2
	calibrated bool
	output     geom.Vector2
	consumer   func(Displacement)
}

// NewProcessor creates a processor reading from src. A nil src is allowed and
// leaves the processor permanently in the zero-output degraded state.
func NewProcessor(src Source, tuning Tuning, log *zap.Logger) (*Processor, error) {
	if err := tuning.Validate(); err != nil {
		return nil, err
	}
	return &Processor{
		source: src,
		tuning: tuning,
		log:    logger.OrNop(log).Named("motion"),
	}, nil
}

// SetConsumer registers the single callback invoked once per processed sample.
// The callback runs on the source's delivery goroutine while the processor's
// lock is held; it must not block and must not call back into the processor.
func (p *Processor) SetConsumer(fn func(Displacement)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.consumer = fn
}

// Start begins sampling. It is a no-op when already running. If the source is
// missing, unavailable or fails to start, the processor silently stays at (0,0).
func (p *Processor) Start() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	p.running = true
	p.session++
	p.resetLocked()

	if p.source == nil || !p.source.Available() {
		p.markDegradedLocked(nil)
		return
	}

	session := p.session
	handler := func(s Sample) { p.handle(session, s) }

	// The source may deliver synchronously from Start; release the lock so that
	// delivery can take it. Stop cannot run meanwhile because lifecycle is held.
	p.mu.Unlock()
	err := p.source.Start(p.tuning.Interval(), handler)
	p.mu.Lock()

	if err != nil {
		p.markDegradedLocked(err)
		return
	}
	p.degraded = false
	p.log.Debug("monitoring started",
		zap.Uint64("session", session),
		zap.Duration("interval", p.tuning.Interval()))
}

// Stop halts sampling, zeroes the output and clears calibration so the next
// Start recalibrates. Once Stop returns no further displacement is published
// until the next Start.
func (p *Processor) Stop() {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()

	p.mu.Lock()
	wasRunning := p.running
	p.running = false
	// Advancing the session orphans any sample already in flight.
	p.session++
	p.resetLocked()
	src := p.source
	p.mu.Unlock()

	if wasRunning && src != nil {
		src.Stop()
		p.log.Debug("monitoring stopped")
	}
}

// Displacement returns the most recently published vector.
func (p *Processor) Displacement() geom.Vector2 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.output
}

// Session returns the id of the current monitoring session. It changes on
// every Start and Stop.
func (p *Processor) Session() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Running reports whether Start has been called without a matching Stop.
func (p *Processor) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Degraded reports whether the last Start could not reach a working source.
func (p *Processor) Degraded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.degraded
}

// Calibrated reports whether the current session has captured its baseline.
func (p *Processor) Calibrated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calibrated
}

func (p *Processor) handle(session uint64, s Sample) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running || session != p.session {
		return
	}

	raw := geom.Vector2{X: s.GravityX, Y: -s.GravityY}
	if !raw.IsFinite() {
		return
	}

	if !p.calibrated {
		p.baseline = raw
		p.calibrated = true
	}

	out := raw.Sub(p.baseline).Scale(p.tuning.MaxSpeed)
	out.X = p.deadZone(out.X)
	out.Y = p.deadZone(out.Y)

	p.output = out
	if p.consumer != nil {
		p.consumer(Displacement{Session: session, Vector: out})
	}
}

func (p *Processor) deadZone(v float64) float64 {
	if math.Abs(v) < p.tuning.DeadZone {
		return 0
	}
	return v
}

func (p *Processor) resetLocked() {
	p.baseline = geom.Vector2{}
	p.calibrated = false
	p.output = geom.Vector2{}
}

func (p *Processor) markDegradedLocked(err error) {
	if !p.degraded {
		fields := []zap.Field{zap.Uint64("session", p.session)}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		p.log.Warn("orientation source unavailable, ball will not respond to tilt", fields...)
	}
	p.degraded = true
}
