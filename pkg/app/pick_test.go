package app

import (
	"math"
	"os"
	"testing"

	"github.com/chazu/ligninpick/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBoxApp evaluates the example box at a coarse mesh resolution.
func newBoxApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Kernel.MeshCells = 80
	a := New(cfg)

	source, err := os.ReadFile("../../examples/box.lignin")
	require.NoError(t, err)
	result := a.Evaluate(string(source))
	require.Empty(t, result.Errors)
	require.Len(t, result.Meshes, 5)
	return a
}

func TestPickBeforeEvaluate(t *testing.T) {
	res := NewApp().Pick(PickRequest{Start: &[3]float64{0, 0, 1}, End: &[3]float64{0, 0, -1}})
	assert.NotEmpty(t, res.Error)
	assert.Empty(t, res.Hits)
	assert.NotNil(t, res.Hits)
	assert.NotNil(t, res.Parts)
}

func TestPickSegmentIntoBox(t *testing.T) {
	a := newBoxApp(t)

	// Straight down through the middle of the bottom panel.
	res := a.Pick(PickRequest{
		Start: &[3]float64{200.3, 150.7, 500},
		End:   &[3]float64{200.3, 150.7, -500},
	})
	require.Empty(t, res.Error)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, []string{"bottom"}, res.Parts)

	nearest := res.Hits[0]
	assert.Equal(t, "bottom", nearest.Part)
	assert.Equal(t, []string{"design", "box", "bottom"}, nearest.Path)
	assert.InDelta(t, 19, nearest.Point[2], 2)
	assert.InDelta(t, 481, nearest.Distance, 2)

	for i := 1; i < len(res.Hits); i++ {
		assert.LessOrEqual(t, res.Hits[i-1].Ratio, res.Hits[i].Ratio, "hits sorted nearest first")
	}
}

func TestPickSegmentThroughWalls(t *testing.T) {
	a := newBoxApp(t)

	// Along +Y at mid height: front wall, then back wall.
	res := a.Pick(PickRequest{
		Start: &[3]float64{200.3, -100, 100.7},
		End:   &[3]float64{200.3, 500, 100.7},
	})
	require.Empty(t, res.Error)
	assert.Equal(t, []string{"front", "back"}, res.Parts)
	assert.InDelta(t, 0, res.Hits[0].Point[1], 2)
}

func TestPickWithCamera(t *testing.T) {
	a := newBoxApp(t)

	res := a.Pick(PickRequest{
		X: 400, Y: 300, Width: 800, Height: 600,
		Eye:    [3]float64{200.3, 150.7, 1000},
		Target: [3]float64{200.3, 150.7, 0},
	})
	require.Empty(t, res.Error)
	require.NotEmpty(t, res.Hits)
	assert.Equal(t, "bottom", res.Hits[0].Part)
	assert.InDelta(t, 19, res.Hits[0].Point[2], 2)
}

func TestPickMiss(t *testing.T) {
	a := newBoxApp(t)

	res := a.Pick(PickRequest{
		Start: &[3]float64{1000, 1000, 500},
		End:   &[3]float64{1000, 1000, -500},
	})
	assert.Empty(t, res.Error)
	assert.Empty(t, res.Hits)
	assert.Empty(t, res.Parts)
}

func TestPickEmptyViewport(t *testing.T) {
	a := newBoxApp(t)

	res := a.Pick(PickRequest{X: 1, Y: 1, Eye: [3]float64{0, 0, 100}})
	assert.NotEmpty(t, res.Error)
}

func TestFailedEvaluateClearsScene(t *testing.T) {
	a := newBoxApp(t)

	result := a.Evaluate(`(part "missing")`)
	require.NotEmpty(t, result.Errors)

	res := a.Pick(PickRequest{
		Start: &[3]float64{200.3, 150.7, 500},
		End:   &[3]float64{200.3, 150.7, -500},
	})
	assert.NotEmpty(t, res.Error)
}

func TestCameraDefaults(t *testing.T) {
	cam := PickRequest{Width: 100, Height: 50, Eye: [3]float64{0, 0, 10}}.camera()
	assert.Equal(t, 100, cam.Width)
	assert.Equal(t, 50, cam.Height)

	// With the default up vector the view matrix is finite.
	for _, v := range cam.View {
		assert.False(t, math.IsNaN(v), "view matrix has NaN")
	}
}
