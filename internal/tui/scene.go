package tui

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tatianab/virtual-lab/internal/engine"
	"github.com/tatianab/virtual-lab/internal/models"
)

const (
	sceneWidth  = 60
	sceneHeight = 18

	// Terminal cell of the scene's top-left corner: one blank line, the
	// header and the canvas border sit above it.
	canvasOriginX = 1
	canvasOriginY = 3

	beakerRows = 3
)

// scene draws the workspace onto a character grid through the engine camera.
type scene struct {
	camera        engine.Camera
	width, height int
}

func newScene(width, height int) scene {
	cam := engine.DefaultCamera()
	// terminal cells are about twice as tall as they are wide
	cam.Aspect = float64(width) / (2 * float64(height))
	return scene{camera: cam, width: width, height: height}
}

func (s scene) toCell(p mgl64.Vec3) (col, row int) {
	x, y := s.camera.ToScreen(p)
	col = int(math.Floor((x + 1) / 2 * float64(s.width)))
	row = int(math.Floor((1 - y) / 2 * float64(s.height)))
	return col, row
}

// toNDC returns the normalised device coordinates of a cell's centre.
func (s scene) toNDC(col, row int) (x, y float64) {
	x = (float64(col)+0.5)/float64(s.width)*2 - 1
	y = 1 - (float64(row)+0.5)/float64(s.height)*2
	return x, y
}

func containerBody(c engine.ContainerSnapshot) string {
	if !c.Known {
		return "(?)"
	}
	switch c.Kind {
	case models.Dropper:
		if c.Squeezed {
			return "-V-"
		}
		return "-v-"
	case models.LitmusStrip:
		return "|#|"
	}
	if c.Tilt < -0.2 {
		return "(_/"
	}
	return "(_)"
}

func containerLabel(c engine.ContainerSnapshot, focused bool) string {
	label := c.ChemicalID
	if len(label) > 8 {
		label = label[:8]
	}
	if focused {
		return ">" + label + "<"
	}
	return label
}

// span is the cell range a container occupies: its label on row-1 and its
// body on row.
type span struct {
	left, right, top, bottom int
}

func (s scene) containerSpan(c engine.ContainerSnapshot, focused bool) span {
	col, row := s.toCell(c.Position)
	w := max(len(containerLabel(c, focused)), len(containerBody(c)))
	left := col - w/2
	return span{left: left, right: left + w - 1, top: row - 1, bottom: row}
}

// hit returns the container under a cell, preferring the one drawn last.
func (s scene) hit(snap engine.Snapshot, focused string, col, row int) (string, bool) {
	for i := len(snap.Containers) - 1; i >= 0; i-- {
		c := snap.Containers[i]
		sp := s.containerSpan(c, c.ChemicalID == focused)
		if col >= sp.left && col <= sp.right && row >= sp.top && row <= sp.bottom {
			return c.ChemicalID, true
		}
	}
	return "", false
}

type grid [][]rune

func newGrid(width, height int) grid {
	g := make(grid, height)
	for i := range g {
		g[i] = []rune(strings.Repeat(" ", width))
	}
	return g
}

func (g grid) put(col, row int, s string) {
	if row < 0 || row >= len(g) {
		return
	}
	for i, r := range []rune(s) {
		if c := col + i; c >= 0 && c < len(g[row]) {
			g[row][c] = r
		}
	}
}

func (g grid) String() string {
	lines := make([]string, len(g))
	for i, row := range g {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

// render draws the bench, the beaker and every container.
func (s scene) render(snap engine.Snapshot, focused string) string {
	g := newGrid(s.width, s.height)

	_, benchRow := s.toCell(engine.HomeSlot(0))
	g.put(0, benchRow+1, strings.Repeat("=", s.width))

	col, row := s.toCell(engine.VesselPosition)
	s.drawBeaker(g, col, row, snap.Vessel)

	for _, c := range snap.Containers {
		sp := s.containerSpan(c, c.ChemicalID == focused)
		g.put(sp.left, sp.top, containerLabel(c, c.ChemicalID == focused))
		g.put(sp.left, sp.bottom, containerBody(c))
		if c.Dragged && c.InPourZone && c.Known && c.Kind != models.LitmusStrip {
			g.put(sp.left+1, sp.bottom+1, ":")
		}
	}
	return g.String()
}

func (s scene) drawBeaker(g grid, col, row int, v engine.VesselSnapshot) {
	const inner = 5
	left := col - inner/2 - 1
	top := row - beakerRows

	filled := int(math.Round(v.LiquidLevel * beakerRows))
	for i := 0; i < beakerRows; i++ {
		fill := " "
		if beakerRows-i <= filled {
			fill = "~"
			if v.Effervescence && beakerRows-i == filled {
				fill = "o"
			}
		}
		g.put(left, top+i, "|"+strings.Repeat(fill, inner)+"|")
	}
	base := "\\" + strings.Repeat("_", inner) + "/"
	if v.Precipitate {
		base = "\\" + strings.Repeat(".", inner) + "/"
	}
	g.put(left, row, base)
}
