package pick

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Camera turns window coordinates into world-space pick segments.
type Camera struct {
	View       mgl64.Mat4
	Projection mgl64.Mat4
	Width      int
	Height     int
}

// NewPerspectiveCamera returns a camera at eye looking at center.
// fovy is in degrees.
func NewPerspectiveCamera(eye, center, up mgl64.Vec3, fovy float64, width, height int, near, far float64) Camera {
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	return Camera{
		View:       mgl64.LookAtV(eye, center, up),
		Projection: mgl64.Perspective(mgl64.DegToRad(fovy), aspect, near, far),
		Width:      width,
		Height:     height,
	}
}

// Segment returns the world-space segment under window pixel (x, y), from
// the near plane to the far plane. y grows downwards from the top edge, as
// in browser and window-system coordinates.
func (c Camera) Segment(x, y float64) (start, end mgl64.Vec3, err error) {
	if c.Width <= 0 || c.Height <= 0 {
		return start, end, fmt.Errorf("pick: camera viewport %dx%d is empty", c.Width, c.Height)
	}
	wy := float64(c.Height) - y

	start, err = mgl64.UnProject(mgl64.Vec3{x, wy, 0}, c.View, c.Projection, 0, 0, c.Width, c.Height)
	if err != nil {
		return start, end, fmt.Errorf("pick: unproject near point: %w", err)
	}
	end, err = mgl64.UnProject(mgl64.Vec3{x, wy, 1}, c.View, c.Projection, 0, 0, c.Width, c.Height)
	if err != nil {
		return start, end, fmt.Errorf("pick: unproject far point: %w", err)
	}
	return start, end, nil
}
