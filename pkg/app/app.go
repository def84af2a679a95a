// Package app is the backend bound to the desktop shell. It evaluates
// design source into meshes for the viewport and answers pick requests
// against the most recently evaluated scene.
package app

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/chazu/ligninpick/pkg/config"
	"github.com/chazu/ligninpick/pkg/engine"
	"github.com/chazu/ligninpick/pkg/kernel"
	"github.com/chazu/ligninpick/pkg/kernel/sdfx"
	"github.com/chazu/ligninpick/pkg/scene"
	"github.com/chazu/ligninpick/pkg/tessellate"
	"github.com/samber/lo"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App is the desktop backend. Its exported methods are bound to the
// frontend.
type App struct {
	ctx    context.Context
	cfg    *config.Config
	engine *engine.Engine
	kernel kernel.Kernel
	logger *log.Logger

	mu    sync.Mutex
	scene *scene.Group
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// BoundsData is the axis-aligned extent of a set of meshes.
type BoundsData struct {
	Min [3]float32 `json:"min"`
	Max [3]float32 `json:"max"`
}

// EvalResult is the full result returned to the frontend. Bounds is nil
// when there is nothing to draw.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Bounds   *BoundsData     `json:"bounds"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// New creates an App from cfg. A nil cfg means config.Default().
func New(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{
		cfg:    cfg,
		engine: engine.NewEngineWithTimeout(cfg.Timeout()),
		kernel: sdfx.NewWithCells(cfg.Kernel.MeshCells),
		logger: log.New(os.Stderr, "ligninpick: ", log.LstdFlags),
	}
}

// NewApp creates an App with default settings.
func NewApp() *App {
	return New(nil)
}

// Startup is called by the shell on app startup. The context is saved
// so we can call runtime methods later if needed.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes Lisp source and returns mesh data + errors.
// This is the primary binding called by the frontend editor. A successful
// evaluation replaces the scene that Pick queries; a failed one clears it.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	res, err := a.engine.EvaluateAll(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.logger.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		a.setScene(nil)
		return result
	}

	result.Errors = append(result.Errors, lo.Map(res.Errors, func(e engine.EvalError, _ int) EvalErrorData {
		return EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
	})...)
	result.Warnings = append(result.Warnings, lo.Map(res.Warnings, func(w engine.EvalWarning, _ int) EvalErrorData {
		return EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message}
	})...)
	if res.Graph == nil {
		a.setScene(nil)
		return result
	}

	root, err := tessellate.Build(res.Graph, a.kernel)
	if err != nil {
		a.logger.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		a.setScene(nil)
		return result
	}
	a.setScene(root)

	meshes := scene.Flatten(root)
	result.Bounds = meshBounds(meshes)
	colors := partColors(meshes)
	result.Meshes = lo.Map(meshes, func(m *kernel.Mesh, _ int) MeshData {
		return MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colors[m.PartName],
		}
	})
	return result
}

// meshBounds unions the bounds of every non-empty mesh.
func meshBounds(meshes []*kernel.Mesh) *BoundsData {
	var b *BoundsData
	for _, m := range meshes {
		mn, mx, ok := m.Bounds()
		if !ok {
			continue
		}
		if b == nil {
			b = &BoundsData{Min: mn, Max: mx}
			continue
		}
		for i := 0; i < 3; i++ {
			b.Min[i] = min(b.Min[i], mn[i])
			b.Max[i] = max(b.Max[i], mx[i])
		}
	}
	return b
}

// partColors gives each distinct part one palette color, so every
// placement of a part is drawn alike.
func partColors(meshes []*kernel.Mesh) map[string]string {
	names := lo.Uniq(lo.Map(meshes, func(m *kernel.Mesh, _ int) string { return m.PartName }))
	colors := make(map[string]string, len(names))
	for i, name := range names {
		colors[name] = colorPalette[i%len(colorPalette)]
	}
	return colors
}

func (a *App) setScene(root *scene.Group) {
	a.mu.Lock()
	a.scene = root
	a.mu.Unlock()
}

func (a *App) currentScene() *scene.Group {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.scene
}
