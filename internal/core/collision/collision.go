// Package collision resolves where the ball ends up each tick given the walls,
// the screen edges and the finish zone.
package collision

import (
	"chosenoffset.com/labyrinth/internal/core/geom"
	"chosenoffset.com/labyrinth/internal/world/maze"
)

// ProbeScale is the side of the wall probe in ball radii. The probe is smaller
// than the drawn ball (side 2r) so grazing a wall does not stop the ball.
const ProbeScale = 1.6

// Resolve moves the ball from position by displacement and returns where it
// lands, plus whether it reached the finish zone.
//
// Walls are tested with a 1.6r probe. A touched horizontal wall freezes Y for this
// tick and a touched vertical wall freezes X; each touched wall writes the old
// coordinate over its axis, so several walls on one axis do not compound.
// An axis that would leave the screen inset by ballRadius keeps its old value
// instead of being clamped to the edge. The goal test uses the full 2r box.
func Resolve(position, displacement geom.Vector2, walls []geom.Rect, screen geom.Size, finish geom.Rect, ballRadius float64) (geom.Vector2, bool) {
	proposed := position.Add(displacement)
	probe := geom.RectAround(proposed, ProbeScale*ballRadius)

	finalX, finalY := proposed.X, proposed.Y
	for _, wall := range walls {
		if !probe.Intersects(wall) {
			continue
		}
		if wall.IsHorizontal() {
			finalY = position.Y
		} else {
			finalX = position.X
		}
	}

	boundary := screen.Bounds().Inset(ballRadius)
	if finalX < boundary.MinX() || finalX > boundary.MaxX() {
		finalX = position.X
	}
	if finalY < boundary.MinY() || finalY > boundary.MaxY() {
		finalY = position.Y
	}

	next := geom.Vector2{X: finalX, Y: finalY}
	ball := geom.RectAround(next, 2*ballRadius)
	return next, ball.Intersects(finish)
}

// Resolver applies Resolve against one validated maze.
type Resolver struct {
	walls  []geom.Rect
	screen geom.Size
	finish geom.Rect
	radius float64
}

// NewResolver binds a resolver to m. The maze must already be validated;
// maze.Load and maze.Classic both guarantee that.
func NewResolver(m *maze.Maze) *Resolver {
	return &Resolver{
		walls:  m.WallsCopy(),
		screen: m.Screen,
		finish: m.Finish,
		radius: m.BallRadius,
	}
}

// Resolve moves the ball from position by displacement inside the bound maze.
func (r *Resolver) Resolve(position, displacement geom.Vector2) (geom.Vector2, bool) {
	return Resolve(position, displacement, r.walls, r.screen, r.finish, r.radius)
}
