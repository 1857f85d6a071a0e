// Package input adapts local devices into motion sources. Held arrow keys or
// WASD and a gamepad's left stick stand in for tilting the board.
package input

import (
	"errors"
	"math"
	"time"

	"chosenoffset.com/labyrinth/internal/core/motion"
	"chosenoffset.com/labyrinth/internal/render"
)

// maxCatchUp bounds how many samples one Poll may emit after a stall.
const maxCatchUp = 4

// Mode selects which devices a DeviceSource reads
type Mode int

const (
	// ModeKeyboard reads the arrow keys and WASD.
	ModeKeyboard Mode = iota
	// ModeGamepad reads the first gamepad's left stick, plus the keyboard.
	ModeGamepad
)

// DeviceSource turns keyboard and gamepad state into gravity samples.
// It is polled from the frame loop, so samples are delivered on the game thread.
type DeviceSource struct {
	input   render.InputManager
	mode    Mode
	keyTilt float64

	running  bool
	interval time.Duration
	elapsed  time.Duration
	handler  func(motion.Sample)
}

// NewDeviceSource creates a source reading in. keyTilt is the gravity component
// produced by one held direction key, in -1..1 device units.
func NewDeviceSource(in render.InputManager, mode Mode, keyTilt float64) *DeviceSource {
	return &DeviceSource{
		input:   in,
		mode:    mode,
		keyTilt: keyTilt,
	}
}

// Available reports whether the selected device is present. The keyboard always
// is; a gamepad must be connected.
func (d *DeviceSource) Available() bool {
	if d.input == nil {
		return false
	}
	if d.mode == ModeGamepad {
		return d.input.GamepadConnected()
	}
	return true
}

// Start begins emitting one sample per interval from Poll.
func (d *DeviceSource) Start(interval time.Duration, handler func(motion.Sample)) error {
	if handler == nil {
		return errors.New("input: nil sample handler")
	}
	if interval <= 0 {
		return errors.New("input: sampling interval must be positive")
	}
	d.interval = interval
	d.handler = handler
	d.elapsed = 0
	d.running = true
	return nil
}

// Stop halts sample delivery.
func (d *DeviceSource) Stop() {
	d.running = false
	d.handler = nil
}

// Running reports whether the source is delivering samples.
func (d *DeviceSource) Running() bool {
	return d.running
}

// Poll advances the source's clock by dt and emits a sample for each sampling
// interval that elapsed. Call it once per frame.
func (d *DeviceSource) Poll(dt time.Duration) {
	if !d.running {
		return
	}
	d.elapsed += dt

	emitted := 0
	for d.elapsed >= d.interval && d.running {
		d.elapsed -= d.interval
		if emitted == maxCatchUp {
			continue
		}
		d.handler(d.Read())
		emitted++
	}
}

// Read returns the current simulated gravity. Holding "down" tilts the top of
// the board up, which a real device reports as negative gravity Y.
func (d *DeviceSource) Read() motion.Sample {
	var s motion.Sample
	if d.input == nil {
		return s
	}

	if d.pressed(render.KeyRight, render.KeyD) {
		s.GravityX += d.keyTilt
	}
	if d.pressed(render.KeyLeft, render.KeyA) {
		s.GravityX -= d.keyTilt
	}
	if d.pressed(render.KeyDown, render.KeyS) {
		s.GravityY -= d.keyTilt
	}
	if d.pressed(render.KeyUp, render.KeyW) {
		s.GravityY += d.keyTilt
	}

	if d.mode == ModeGamepad {
		if x, y, ok := d.input.GamepadLeftStick(); ok {
			s.GravityX += x
			// Stick Y grows downward.
			s.GravityY -= y
		}
	}

	s.GravityX = clampUnit(s.GravityX)
	s.GravityY = clampUnit(s.GravityY)
	return s
}

func (d *DeviceSource) pressed(keys ...render.Key) bool {
	for _, k := range keys {
		if d.input.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
