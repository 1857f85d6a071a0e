package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/labyrinth/internal/core/geom"
	"chosenoffset.com/labyrinth/internal/world/maze"
)

var (
	screen    = geom.Size{Width: 400, Height: 700}
	farFinish = geom.Rect{X: 0, Y: 650, Width: 50, Height: 50}
)

const radius = 20.0

func TestFreeMovement(t *testing.T) {
	got, goal := Resolve(geom.Vector2{X: 200, Y: 300}, geom.Vector2{X: 3, Y: -2}, nil, screen, farFinish, radius)
	assert.Equal(t, geom.Vector2{X: 203, Y: 298}, got)
	assert.False(t, goal)
}

func TestHorizontalWallBlocksY(t *testing.T) {
	// Probe half-side is 16, so at y=180 the probe bottom is 196, touching at 200.
	wall := geom.Rect{X: 100, Y: 200, Width: 200, Height: 10}
	pos := geom.Vector2{X: 200, Y: 180}

	got, _ := Resolve(pos, geom.Vector2{X: 4, Y: 5}, []geom.Rect{wall}, screen, farFinish, radius)
	assert.Equal(t, 180.0, got.Y, "Y is locked by a horizontal wall")
	assert.Equal(t, 204.0, got.X, "X keeps moving")
}

func TestVerticalWallBlocksX(t *testing.T) {
	wall := geom.Rect{X: 200, Y: 100, Width: 10, Height: 200}
	pos := geom.Vector2{X: 180, Y: 200}

	got, _ := Resolve(pos, geom.Vector2{X: 5, Y: -3}, []geom.Rect{wall}, screen, farFinish, radius)
	assert.Equal(t, 180.0, got.X, "X is locked by a vertical wall")
	assert.Equal(t, 197.0, got.Y, "Y keeps moving")
}

func TestSquareWallCountsAsVertical(t *testing.T) {
	wall := geom.Rect{X: 210, Y: 190, Width: 20, Height: 20}
	pos := geom.Vector2{X: 190, Y: 200}

	got, _ := Resolve(pos, geom.Vector2{X: 5, Y: 1}, []geom.Rect{wall}, screen, farFinish, radius)
	assert.Equal(t, 190.0, got.X)
	assert.Equal(t, 201.0, got.Y)
}

func TestProbeIsSmallerThanBall(t *testing.T) {
	// Full ball (half-side 20) would overlap this wall; the 16 half-side probe does not.
	wall := geom.Rect{X: 100, Y: 218, Width: 200, Height: 10}
	pos := geom.Vector2{X: 200, Y: 199}

	got, _ := Resolve(pos, geom.Vector2{X: 0, Y: 1}, []geom.Rect{wall}, screen, farFinish, radius)
	assert.Equal(t, 200.0, got.Y, "a wall within the ball's rim but outside the probe does not block")
}

func TestMultipleWallsOverwriteNotCompound(t *testing.T) {
	// Both walls touch the probe; each only ever writes the previous tick's
	// coordinate, so the result is the same regardless of how many hit.
	walls := []geom.Rect{
		{X: 100, Y: 200, Width: 200, Height: 10},
		{X: 150, Y: 150, Width: 200, Height: 20},
		{X: 215, Y: 100, Width: 10, Height: 200},
	}
	pos := geom.Vector2{X: 200, Y: 182}

	got, _ := Resolve(pos, geom.Vector2{X: 3, Y: 2}, walls, screen, farFinish, radius)
	assert.Equal(t, pos, got)

	got, _ = Resolve(pos, geom.Vector2{X: 3, Y: 2}, walls[:2], screen, farFinish, radius)
	assert.Equal(t, geom.Vector2{X: 203, Y: 182}, got)
}

func TestWallOrderDoesNotMatterForSameAxis(t *testing.T) {
	walls := []geom.Rect{
		{X: 100, Y: 200, Width: 200, Height: 10},
		{X: 100, Y: 160, Width: 200, Height: 8},
	}
	pos := geom.Vector2{X: 200, Y: 184}
	disp := geom.Vector2{X: 1, Y: 1}

	a, _ := Resolve(pos, disp, walls, screen, farFinish, radius)
	b, _ := Resolve(pos, disp, []geom.Rect{walls[1], walls[0]}, screen, farFinish, radius)
	assert.Equal(t, a, b)
	assert.Equal(t, geom.Vector2{X: 201, Y: 184}, a)
}

func TestBoundaryRejectsAxis(t *testing.T) {
	tests := []struct {
		name string
		pos  geom.Vector2
		disp geom.Vector2
		want geom.Vector2
	}{
		{"past right edge", geom.Vector2{X: 378, Y: 300}, geom.Vector2{X: 5, Y: 2}, geom.Vector2{X: 378, Y: 302}},
		{"past left edge", geom.Vector2{X: 22, Y: 300}, geom.Vector2{X: -5, Y: -2}, geom.Vector2{X: 22, Y: 298}},
		{"past top edge", geom.Vector2{X: 200, Y: 21}, geom.Vector2{X: 3, Y: -4}, geom.Vector2{X: 203, Y: 21}},
		{"past bottom edge", geom.Vector2{X: 200, Y: 679}, geom.Vector2{X: -3, Y: 4}, geom.Vector2{X: 197, Y: 679}},
		{"exactly on edge", geom.Vector2{X: 375, Y: 300}, geom.Vector2{X: 5, Y: 0}, geom.Vector2{X: 380, Y: 300}},
		{"corner rejects both", geom.Vector2{X: 379, Y: 679}, geom.Vector2{X: 5, Y: 5}, geom.Vector2{X: 379, Y: 679}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Resolve(tt.pos, tt.disp, nil, screen, farFinish, radius)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoalUsesFullBallBox(t *testing.T) {
	finish := geom.Rect{X: 150, Y: 400, Width: 100, Height: 100}

	// Ball box bottom = y + 20; touching at 400 counts.
	_, goal := Resolve(geom.Vector2{X: 200, Y: 379}, geom.Vector2{X: 0, Y: 1}, nil, screen, finish, radius)
	assert.True(t, goal, "shared edge intersects")

	_, goal = Resolve(geom.Vector2{X: 200, Y: 378}, geom.Vector2{X: 0, Y: 1}, nil, screen, finish, radius)
	assert.False(t, goal, "strictly outside does not")

	// Within the full box but outside the probe still counts.
	_, goal = Resolve(geom.Vector2{X: 130, Y: 450}, geom.Vector2{}, nil, screen, finish, radius)
	assert.True(t, goal)
}

func TestGoalCheckedAfterRejection(t *testing.T) {
	finish := geom.Rect{X: 150, Y: 400, Width: 100, Height: 100}
	wall := geom.Rect{X: 100, Y: 396, Width: 200, Height: 4}

	got, goal := Resolve(geom.Vector2{X: 200, Y: 370}, geom.Vector2{X: 0, Y: 12}, []geom.Rect{wall}, screen, finish, radius)
	assert.Equal(t, 370.0, got.Y)
	assert.False(t, goal, "goal is tested at the resolved position, not the proposed one")
}

func TestEndToEndRunToRightEdge(t *testing.T) {
	pos := geom.Vector2{X: 200, Y: 70}
	prev := pos.X

	for i := 0; i < 40; i++ {
		pos, _ = Resolve(pos, geom.Vector2{X: 5, Y: 0}, nil, screen, farFinish, radius)
		assert.GreaterOrEqual(t, pos.X, prev)
		prev = pos.X
	}
	assert.Equal(t, screen.Width-radius, pos.X)
	assert.Equal(t, 70.0, pos.Y)
}

func TestResolverUsesMaze(t *testing.T) {
	m := maze.Classic()
	r := NewResolver(m)

	// From the start point the ball can drift sideways freely.
	got, goal := r.Resolve(m.StartPosition(), geom.Vector2{X: -2, Y: 0})
	assert.Equal(t, geom.Vector2{X: 198, Y: 70}, got)
	assert.False(t, goal)

	// Dropping onto the wall at y=130 (x 230..400) locks Y.
	got, _ = r.Resolve(geom.Vector2{X: 300, Y: 110}, geom.Vector2{X: 1, Y: 5})
	assert.Equal(t, geom.Vector2{X: 301, Y: 110}, got)

	// Inside the finish zone.
	_, goal = r.Resolve(geom.Vector2{X: 200, Y: 450}, geom.Vector2{})
	require.True(t, goal)
}
