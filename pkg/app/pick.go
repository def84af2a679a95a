package app

import (
	"errors"

	"github.com/chazu/ligninpick/pkg/pick"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/samber/lo"
)

// Viewport camera defaults used when a PickRequest leaves them unset.
const (
	DefaultFovy = 45.0
	DefaultNear = 1.0
	DefaultFar  = 10000.0
)

// PickRequest describes a pick either as a window pixel seen through a
// perspective camera, or directly as a world-space segment. When Start and
// End are both set the camera fields are ignored.
type PickRequest struct {
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Eye    [3]float64 `json:"eye"`
	Target [3]float64 `json:"target"`
	Up     [3]float64 `json:"up"`
	Fovy   float64    `json:"fovy"` // degrees
	Near   float64    `json:"near"`
	Far    float64    `json:"far"`

	Start *[3]float64 `json:"start,omitempty"`
	End   *[3]float64 `json:"end,omitempty"`
}

// PickHitData is one JSON-serializable hit, nearest first.
type PickHitData struct {
	Part        string     `json:"part"`
	Path        []string   `json:"path"`
	Point       [3]float64 `json:"point"`
	LocalPoint  [3]float64 `json:"localPoint"`
	Distance    float64    `json:"distance"`
	Ratio       float64    `json:"ratio"`
	Triangle    [3]uint32  `json:"triangle"`
	Barycentric [3]float64 `json:"barycentric"`
}

// PickResult is returned to the frontend. Parts lists the distinct parts
// hit, nearest first, for selection highlighting.
type PickResult struct {
	Hits  []PickHitData `json:"hits"`
	Parts []string      `json:"parts"`
	Error string        `json:"error,omitempty"`
}

var errNoScene = errors.New("nothing to pick: evaluate a design first")

// Pick intersects the last evaluated scene with the request's segment.
func (a *App) Pick(req PickRequest) PickResult {
	result := PickResult{Hits: []PickHitData{}, Parts: []string{}}

	root := a.currentScene()
	if root == nil {
		result.Error = errNoScene.Error()
		return result
	}

	picker := pick.NewPicker(root)
	picker.Epsilon = a.cfg.Epsilon()
	picker.Logger = a.logger

	var hits []pick.Hit
	if req.Start != nil && req.End != nil {
		hits = picker.PickSegment(mgl64.Vec3(*req.Start), mgl64.Vec3(*req.End))
	} else {
		var err error
		hits, err = picker.Pick(req.camera(), req.X, req.Y)
		if err != nil {
			a.logger.Printf("Pick error: %v", err)
			result.Error = err.Error()
			return result
		}
	}

	result.Hits = lo.Map(hits, func(h pick.Hit, _ int) PickHitData {
		return PickHitData{
			Part:        h.Part,
			Path:        h.Path.Names(),
			Point:       h.WorldPoint,
			LocalPoint:  h.LocalPoint,
			Distance:    h.Distance,
			Ratio:       h.Ratio,
			Triangle:    h.Indices,
			Barycentric: h.Barycentric,
		}
	})
	result.Parts = append(result.Parts, pick.Parts(hits)...)
	return result
}

// camera builds the perspective camera described by the request,
// filling in viewport defaults.
func (r PickRequest) camera() pick.Camera {
	up := mgl64.Vec3(r.Up)
	if up.Len() == 0 {
		up = mgl64.Vec3{0, 1, 0}
	}
	fovy, near, far := r.Fovy, r.Near, r.Far
	if fovy <= 0 {
		fovy = DefaultFovy
	}
	if near <= 0 {
		near = DefaultNear
	}
	if far <= near {
		far = DefaultFar
	}
	return pick.NewPerspectiveCamera(mgl64.Vec3(r.Eye), mgl64.Vec3(r.Target), up, fovy, r.Width, r.Height, near, far)
}
