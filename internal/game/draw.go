package game

import (
	"fmt"
	"image/color"
	"strconv"

	"chosenoffset.com/labyrinth/internal/core/gamestate"
	"chosenoffset.com/labyrinth/internal/render"
)

var (
	backgroundColor = color.Black
	wallColor       = color.RGBA{128, 128, 128, 255}
	finishColor     = color.NRGBA{0, 200, 0, 128}
	ballRimColor    = color.NRGBA{0, 200, 0, 255}
	ballCoreColor   = color.NRGBA{255, 255, 255, 255}
	ballEdgeColor   = color.NRGBA{0, 120, 0, 255}
	overlayColor    = color.NRGBA{0, 0, 0, 178}
	digitColor      = color.NRGBA{255, 255, 255, 204}
	glowColor       = color.NRGBA{0, 200, 0, 160}
	textColor       = color.White
)

const (
	labelScale    = 2
	countdownSize = 12
	titleScale    = 3
	// Ball opacity while the countdown is showing.
	countdownBallAlpha = 0.3
	ballEdgeWidth      = 2
)

// Draw renders the game to the screen.
func (g *Game) Draw(screen render.Image) {
	screen.Fill(backgroundColor)

	g.drawWalls(screen)
	g.drawFinish(screen)
	g.drawBall(screen)

	switch g.ctrl.Phase() {
	case gamestate.PhaseCountdown:
		g.drawCountdown(screen)
	case gamestate.PhaseWon:
		g.drawWin(screen)
	}
}

func (g *Game) drawWalls(screen render.Image) {
	for _, w := range g.ctrl.Maze().Walls {
		g.Renderer.FillRect(screen, float32(w.X), float32(w.Y), float32(w.Width), float32(w.Height), wallColor)
	}
}

func (g *Game) drawFinish(screen render.Image) {
	f := g.ctrl.Maze().Finish
	g.Renderer.FillRect(screen, float32(f.X), float32(f.Y), float32(f.Width), float32(f.Height), finishColor)
	g.drawCentered(screen, "FINISH", f.MidX(), f.MidY(), textColor, labelScale)
}

func (g *Game) drawBall(screen render.Image) {
	pos := g.ctrl.Ball()
	r := float32(g.ctrl.Maze().BallRadius)

	rim, core, edge := ballRimColor, ballCoreColor, ballEdgeColor
	if g.ctrl.Phase() == gamestate.PhaseCountdown {
		rim = fade(rim, countdownBallAlpha)
		core = fade(core, countdownBallAlpha)
		edge = fade(edge, countdownBallAlpha)
	}
	g.Renderer.FillCircle(screen, float32(pos.X), float32(pos.Y), r, rim)
	g.Renderer.FillCircle(screen, float32(pos.X), float32(pos.Y), r*0.55, core)
	g.Renderer.StrokeCircle(screen, float32(pos.X), float32(pos.Y), r, ballEdgeWidth, edge)
}

func (g *Game) drawCountdown(screen render.Image) {
	w, h := screen.Size()
	g.Renderer.FillRect(screen, 0, 0, float32(w), float32(h), overlayColor)

	digit := strconv.Itoa(g.ctrl.Countdown())
	cx, cy := float64(w)/2, float64(h)/2
	g.drawCentered(screen, digit, cx+3, cy+3, glowColor, countdownSize)
	g.drawCentered(screen, digit, cx, cy, digitColor, countdownSize)
}

func (g *Game) drawWin(screen render.Image) {
	w, h := screen.Size()
	g.Renderer.FillRect(screen, 0, 0, float32(w), float32(h), overlayColor)

	cx, cy := float64(w)/2, float64(h)/2
	g.drawCentered(screen, "You win!", cx, cy-60, textColor, titleScale)
	g.drawCentered(screen, "You made it through the labyrinth.", cx, cy-10, textColor, 1)
	if g.lastResult != nil {
		line := fmt.Sprintf("Time %.1fs", g.lastResult.Elapsed.Seconds())
		g.drawCentered(screen, line, cx, cy+20, textColor, labelScale)
	}
	g.drawCentered(screen, "Press SPACE to play again", cx, cy+70, ballRimColor, 1)
}

// drawCentered draws text centred on (cx, cy).
func (g *Game) drawCentered(screen render.Image, text string, cx, cy float64, clr color.Color, scale float64) {
	tw, th := g.Renderer.MeasureText(text, scale)
	g.Renderer.DrawText(screen, text, int(cx)-tw/2, int(cy)-th/2, clr, scale)
}

func fade(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(float64(c.A) * alpha)
	return c
}
