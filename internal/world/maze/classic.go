package maze

import "chosenoffset.com/labyrinth/internal/core/geom"

// Classic returns the built-in layout used when no maze file is given.
func Classic() *Maze {
	m, err := New(Maze{
		Name:       "Classic",
		Screen:     geom.Size{Width: 400, Height: 720},
		BallRadius: 20,
		Finish:     geom.Rect{X: 150, Y: 400, Width: 100, Height: 100},
		Walls: []geom.Rect{
			{X: 160, Y: 100, Width: 10, Height: 90},
			{X: 0, Y: 130, Width: 160, Height: 10},
			{X: 230, Y: 100, Width: 10, Height: 30},
			{X: 230, Y: 130, Width: 170, Height: 10},
			{X: 20, Y: 140, Width: 10, Height: 190},
			{X: 360, Y: 140, Width: 10, Height: 190},
			{X: 230, Y: 320, Width: 140, Height: 10},
			{X: 20, Y: 320, Width: 150, Height: 10},
			{X: 230, Y: 200, Width: 80, Height: 10},
			{X: 300, Y: 210, Width: 10, Height: 110},
			{X: 90, Y: 190, Width: 10, Height: 80},
			{X: 90, Y: 270, Width: 150, Height: 10},
			{X: 130, Y: 280, Width: 10, Height: 40},
		},
	})
	if err != nil {
		panic(err)
	}
	return m
}
