// Package motion turns raw device tilt into a calibrated, scaled and dead-zoned
// displacement vector for the ball.
package motion

import "time"

// Sample is one raw gravity reading in device-normalized units (roughly -1..1).
type Sample struct {
	GravityX float64
	GravityY float64
}

// Source is an orientation sensor. Implementations may deliver samples from any
// goroutine; the Processor serializes them.
type Source interface {
	// Available reports whether the host can currently supply readings.
	Available() bool

	// Start begins delivering one sample per interval to handler.
	Start(interval time.Duration, handler func(Sample)) error

	// Stop halts delivery. Calling Stop on a stopped source is a no-op.
	Stop()
}
