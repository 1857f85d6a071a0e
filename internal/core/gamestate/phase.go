package gamestate

// Phase is the stage of a single run through the maze
type Phase int

const (
	// PhaseCountdown: the ball waits at the start while the countdown runs.
	PhaseCountdown Phase = iota
	// PhaseActive: tilt moves the ball.
	PhaseActive
	// PhaseWon: the ball reached the finish. Terminal until Reset.
	PhaseWon
)

// String returns a lower-case name for logs
func (p Phase) String() string {
	switch p {
	case PhaseCountdown:
		return "countdown"
	case PhaseActive:
		return "active"
	case PhaseWon:
		return "won"
	default:
		return "unknown"
	}
}
