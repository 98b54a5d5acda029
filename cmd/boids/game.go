package main

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/spatial"
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/ui"
	"github.com/tochemey/goakt/v3/log"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	backgroundClr = color.RGBA{R: 20, G: 26, B: 31, A: 255}
	boundClr      = color.RGBA{R: 135, G: 3, B: 51, A: 255}
	goalClr       = color.RGBA{R: 250, G: 200, B: 40, A: 255}
	localityClr   = color.RGBA{R: 80, G: 200, B: 120, A: 255}
)

func init() {
	whiteImage.Fill(color.White)
}

// settingsWidgets are the panel controls bound to Config fields.
type settingsWidgets struct {
	x0, y0, x1, y1 *ui.Slider

	count, speed, maxSpeed     *ui.Slider
	cohesion, alignment        *ui.Slider
	sepDistance, sepStrength   *ui.Slider
	turnFactor, localityRadius *ui.Slider
	goal                       *ui.Checkbox
	goalDuration, goalStrength *ui.Slider
	windAngle, windStrength    *ui.Slider
	showGrid, showLocality     *ui.Checkbox
}

type Game struct {
	cfg        *simulation.Config
	configFile string
	logger     log.Logger
	world      *simulation.World

	panel   *ui.UIPanel
	widgets settingsWidgets

	vertices []ebiten.Vertex
	indices  []uint16

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

func NewGame(cfg *simulation.Config, configFile string, logger log.Logger) (*Game, error) {
	world, err := simulation.NewWorld(cfg, logger)
	if err != nil {
		return nil, err
	}
	g := &Game{
		cfg:        cfg,
		configFile: configFile,
		logger:     logger,
		world:      world,
	}
	g.buildPanel()
	return g, nil
}

func (g *Game) buildPanel() {
	cfg := g.cfg
	w, h := cfg.WorldWidth, cfg.WorldHeight
	panel := ui.NewUIPanel("Settings (Tab to hide)", 10, 10, 280, h-20)

	var sw settingsWidgets

	panel.AddSection("Boundary")
	sw.x0 = panel.AddSlider("X0", 0, w/2, cfg.BoundTopLeft.X)
	sw.y0 = panel.AddSlider("Y0", 0, h/2, cfg.BoundTopLeft.Y)
	sw.x1 = panel.AddSlider("X1", w/2, w, cfg.BoundBottomRight.X)
	sw.y1 = panel.AddSlider("Y1", h/2, h, cfg.BoundBottomRight.Y)
	panel.EndSection()

	panel.AddSection("Boids")
	sw.count = panel.AddIntSlider("Boid count (restart)", 1, 1000, cfg.Count)
	sw.speed = panel.AddSlider("Boid speed", 0.1, 10, cfg.Speed)
	sw.maxSpeed = panel.AddSlider("Max speed", 0, 100, cfg.MaxSpeed)
	sw.cohesion = panel.AddIntSlider("Center of mass strength, %", 1, 100, int(cfg.Cohesion))
	sw.alignment = panel.AddIntSlider("Average velocity strength, %", 1, 100, int(cfg.Alignment))
	sw.sepDistance = panel.AddIntSlider("Separation distance", 1, 100, int(cfg.SeparationDistance))
	sw.sepStrength = panel.AddIntSlider("Separation strength, %", 1, 100, int(cfg.SeparationStrength))
	sw.turnFactor = panel.AddIntSlider("Turn factor", 1, 75, int(cfg.TurnFactor))
	sw.localityRadius = panel.AddIntSlider("Locality radius", 5, 300, int(cfg.LocalityRadius))
	panel.EndSection()

	panel.AddSection("Environment")
	sw.goal = panel.AddCheckbox("Random goal", cfg.Goal)
	sw.goalDuration = panel.AddIntSlider("Goal duration, s.", 1, 30, cfg.GoalDurationSec)
	sw.goalStrength = panel.AddIntSlider("Goal strength, %", 1, 100, int(cfg.GoalStrength))
	windDeg := math.Mod(cfg.WindDirection.Angle()*180/math.Pi+360, 360)
	sw.windAngle = panel.AddIntSlider("Wind direction, deg", 0, 359, int(math.Round(windDeg)))
	sw.windStrength = panel.AddIntSlider("Wind strength, %", 0, 100, int(cfg.WindStrength))
	panel.EndSection()

	panel.AddSection(fmt.Sprintf("Index: %s", cfg.IndexKind))
	sw.showGrid = panel.AddCheckbox("Show grid cells", false)
	sw.showLocality = panel.AddCheckbox("Show first boid locality", false)
	panel.AddButton("Restart Flock", g.restart)
	panel.AddButton("Reset Settings", g.resetSettings)
	panel.EndSection()

	if g.panel != nil {
		panel.Hidden = g.panel.Hidden
	}
	g.panel = panel
	g.widgets = sw
}

// applyWidgets copies the panel values into the live config.
func (g *Game) applyWidgets() {
	sw, cfg := &g.widgets, g.cfg

	cfg.BoundTopLeft = geometry.NewVector(sw.x0.Value, sw.y0.Value)
	cfg.BoundBottomRight = geometry.NewVector(sw.x1.Value, sw.y1.Value)

	cfg.Count = int(sw.count.Value)
	cfg.Speed = sw.speed.Value
	cfg.MaxSpeed = sw.maxSpeed.Value
	cfg.Cohesion = sw.cohesion.Value
	cfg.Alignment = sw.alignment.Value
	cfg.SeparationDistance = sw.sepDistance.Value
	cfg.SeparationStrength = sw.sepStrength.Value
	cfg.TurnFactor = sw.turnFactor.Value
	cfg.LocalityRadius = sw.localityRadius.Value

	cfg.Goal = sw.goal.Value
	cfg.GoalDurationSec = int(sw.goalDuration.Value)
	cfg.GoalStrength = sw.goalStrength.Value
	cfg.WindDirection = geometry.NewVectorPolar(1, sw.windAngle.Value*math.Pi/180)
	cfg.WindStrength = sw.windStrength.Value
}

func (g *Game) saveSettings() {
	if g.configFile == "" {
		return
	}
	if err := simulation.SaveConfig(g.configFile, g.cfg); err != nil {
		g.logger.Warnf("Could not save settings: %v", err)
	}
}

func (g *Game) restart() {
	if err := g.world.Reset(g.cfg); err != nil {
		g.logger.Errorf("Restart refused: %v", err)
	}
}

func (g *Game) resetSettings() {
	fresh := simulation.DefaultConfig()
	fresh.WorldWidth, fresh.WorldHeight = g.cfg.WorldWidth, g.cfg.WorldHeight
	fresh.BoundBottomRight = geometry.NewVector(g.cfg.WorldWidth, g.cfg.WorldHeight)
	fresh.IndexKind, fresh.CellSize, fresh.UpdatePolicy = g.cfg.IndexKind, g.cfg.CellSize, g.cfg.UpdatePolicy
	fresh.Seed = g.cfg.Seed

	*g.cfg = *fresh
	g.buildPanel()
	g.restart()
	g.saveSettings()
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.panel.Hidden = !g.panel.Hidden
	}

	panel := g.panel
	panel.Update()
	// A button may have rebuilt the panel, its widgets are already applied.
	if panel == g.panel && panel.Changed() {
		g.applyWidgets()
		g.saveSettings()
	}

	g.world.Step(1 / float64(ebiten.TPS()))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(backgroundClr)

	if g.widgets.showGrid.Value {
		g.drawGrid(screen)
	}

	boids := g.world.Boids()
	g.drawBoids(screen, boids)

	vector.StrokeRect(screen,
		float32(g.cfg.BoundTopLeft.X), float32(g.cfg.BoundTopLeft.Y),
		float32(g.cfg.BoundBottomRight.X-g.cfg.BoundTopLeft.X),
		float32(g.cfg.BoundBottomRight.Y-g.cfg.BoundTopLeft.Y),
		2, boundClr, true)

	if goal := g.world.Goal(); goal.Alive {
		vector.FillCircle(screen, float32(goal.Position.X), float32(goal.Position.Y), 6, goalClr, true)
	}

	if g.widgets.showLocality.Value && len(boids) > 0 {
		g.drawLocality(screen, boids[0])
	}

	g.panel.Draw(screen)

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nBoids: %d\nTick: %d\n\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.world.Index().Len(),
		g.world.Tick(),
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, int(g.cfg.WorldWidth)-150, 10)
}

// drawBoids renders every boid as a triangle pointing along its velocity,
// batched into a single DrawTriangles call.
func (g *Game) drawBoids(screen *ebiten.Image, boids []simulation.Boid) {
	g.vertices = g.vertices[:0]
	g.indices = g.indices[:0]

	for _, b := range boids {
		angle := b.Heading()
		x, y := b.Position.X, b.Position.Y

		base := uint16(len(g.vertices))
		g.vertices = append(g.vertices,
			boidVertex(x+math.Cos(angle)*6, y+math.Sin(angle)*6),
			boidVertex(x+math.Cos(angle+2.5)*5, y+math.Sin(angle+2.5)*5),
			boidVertex(x+math.Cos(angle-2.5)*5, y+math.Sin(angle-2.5)*5),
		)
		g.indices = append(g.indices, base, base+1, base+2)
	}

	screen.DrawTriangles(g.vertices, g.indices, whiteImage, &ebiten.DrawTrianglesOptions{})
}

func boidVertex(x, y float64) ebiten.Vertex {
	return ebiten.Vertex{
		DstX: float32(x),
		DstY: float32(y),
		SrcX: 1, SrcY: 1,
		ColorR: 0.86, ColorG: 0.08, ColorB: 0.24, ColorA: 1,
	}
}

// drawGrid shades the occupied cells of a grid index.
func (g *Game) drawGrid(screen *ebiten.Image) {
	grid, ok := g.world.Index().(*spatial.Grid[simulation.Boid])
	if !ok {
		return
	}
	cs := grid.CellSize()
	for key, n := range grid.Cells() {
		alpha := uint8(min(20+n*12, 160))
		vector.FillRect(screen,
			float32(float64(key[0])*cs), float32(float64(key[1])*cs),
			float32(cs), float32(cs),
			color.RGBA{R: 40, G: 90, B: 160, A: alpha}, false)
	}
}

// drawLocality shows what one radius query returns for b.
func (g *Game) drawLocality(screen *ebiten.Image, b simulation.Boid) {
	x, y := float32(b.Position.X), float32(b.Position.Y)
	vector.StrokeCircle(screen, x, y, float32(g.cfg.LocalityRadius), 1, localityClr, true)
	for _, n := range g.world.Neighbors(b) {
		vector.StrokeLine(screen, x, y, float32(n.Position.X), float32(n.Position.Y), 1, localityClr, true)
	}
}

func (g *Game) Layout(w, h int) (int, int) { return int(g.cfg.WorldWidth), int(g.cfg.WorldHeight) }
