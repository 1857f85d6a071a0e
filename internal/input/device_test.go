package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chosenoffset.com/labyrinth/internal/core/geom"
	"chosenoffset.com/labyrinth/internal/core/motion"
	"chosenoffset.com/labyrinth/internal/render"
)

type fakeInput struct {
	held        map[render.Key]bool
	padAttached bool
	padX, padY  float64
}

func (f *fakeInput) IsKeyPressed(k render.Key) bool                   { return f.held[k] }
func (f *fakeInput) IsKeyJustPressed(render.Key) bool                 { return false }
func (f *fakeInput) IsMouseButtonJustPressed(render.MouseButton) bool { return false }
func (f *fakeInput) GamepadConnected() bool                           { return f.padAttached }
func (f *fakeInput) GamepadLeftStick() (float64, float64, bool)       { return f.padX, f.padY, f.padAttached }

func TestAvailability(t *testing.T) {
	in := &fakeInput{}
	assert.True(t, NewDeviceSource(in, ModeKeyboard, 0.5).Available())
	assert.False(t, NewDeviceSource(in, ModeGamepad, 0.5).Available())
	assert.False(t, NewDeviceSource(nil, ModeKeyboard, 0.5).Available())

	in.padAttached = true
	assert.True(t, NewDeviceSource(in, ModeGamepad, 0.5).Available())
}

func TestReadKeyboard(t *testing.T) {
	in := &fakeInput{held: map[render.Key]bool{}}
	src := NewDeviceSource(in, ModeKeyboard, 0.5)

	assert.Equal(t, motion.Sample{}, src.Read())

	in.held[render.KeyRight] = true
	in.held[render.KeyS] = true
	assert.Equal(t, motion.Sample{GravityX: 0.5, GravityY: -0.5}, src.Read())

	in.held[render.KeyLeft] = true
	assert.Equal(t, motion.Sample{GravityX: 0, GravityY: -0.5}, src.Read(), "opposite keys cancel")
}

func TestReadGamepadAddsStick(t *testing.T) {
	in := &fakeInput{held: map[render.Key]bool{render.KeyRight: true}, padAttached: true, padX: 0.8, padY: 0.25}
	src := NewDeviceSource(in, ModeGamepad, 0.5)

	s := src.Read()
	assert.Equal(t, 1.0, s.GravityX, "clamped to the device range")
	assert.Equal(t, -0.25, s.GravityY)

	kb := NewDeviceSource(in, ModeKeyboard, 0.5)
	assert.Equal(t, 0.5, kb.Read().GravityX, "keyboard mode ignores the stick")
}

func TestPollEmitsAtInterval(t *testing.T) {
	in := &fakeInput{held: map[render.Key]bool{render.KeyUp: true}}
	src := NewDeviceSource(in, ModeKeyboard, 0.5)

	var got []motion.Sample
	require.NoError(t, src.Start(10*time.Millisecond, func(s motion.Sample) { got = append(got, s) }))

	src.Poll(5 * time.Millisecond)
	assert.Empty(t, got)
	src.Poll(5 * time.Millisecond)
	require.Len(t, got, 1)
	assert.Equal(t, 0.5, got[0].GravityY)

	src.Poll(25 * time.Millisecond)
	assert.Len(t, got, 3)

	src.Poll(time.Second)
	assert.Len(t, got, 3+maxCatchUp, "a stall does not flood the pipeline")

	src.Stop()
	src.Poll(time.Second)
	assert.Len(t, got, 3+maxCatchUp)
	assert.False(t, src.Running())
}

func TestStartRejectsBadArguments(t *testing.T) {
	src := NewDeviceSource(&fakeInput{}, ModeKeyboard, 0.5)
	assert.Error(t, src.Start(time.Millisecond, nil))
	assert.Error(t, src.Start(0, func(motion.Sample) {}))
}

func TestDrivesProcessor(t *testing.T) {
	in := &fakeInput{held: map[render.Key]bool{}}
	src := NewDeviceSource(in, ModeKeyboard, 0.5)
	p, err := motion.NewProcessor(src, motion.DefaultTuning(), nil)
	require.NoError(t, err)

	frame := time.Second / 60
	p.Start()
	src.Poll(frame) // calibrates at rest
	assert.Equal(t, geom.Vector2{}, p.Displacement())

	in.held[render.KeyDown] = true
	in.held[render.KeyRight] = true
	src.Poll(frame)
	assert.Equal(t, geom.Vector2{X: 3, Y: 3}, p.Displacement(), "down-right moves the ball down-right")

	p.Stop()
	assert.False(t, src.Running())
}
