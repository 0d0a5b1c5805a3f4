package tui

import (
	"strconv"
	"strings"

	"github.com/1broseidon/flickpanel/internal/geom"
)

// renderDisplayMap draws the usable area as a double border with the panel
// frame inside it and the four snap corners marked. A frame parked past an
// edge is clipped to the border.
func renderDisplayMap(usable, frame geom.Rect, width, height int) []string {
	if width < 4 || height < 4 || usable.Empty() {
		return emptyCanvas(width, height)
	}
	canvas := newCanvas(width, height)

	local := geom.Rect{X: frame.X - usable.X, Y: frame.Y - usable.Y, Width: frame.Width, Height: frame.Height}
	drawBox(canvas, local, "", usable.Width, usable.Height)
	drawBorder(canvas, width, height)
	for _, c := range [][2]int{{1, 1}, {width - 2, 1}, {1, height - 2}, {width - 2, height - 2}} {
		if canvas[c[1]][c[0]] == ' ' {
			canvas[c[1]][c[0]] = '+'
		}
	}
	return canvasLines(canvas)
}

// renderPanelMap draws the panel at the given size with its non-drag regions
// numbered and the bottom band shaded.
func renderPanelMap(size geom.Rect, regions []geom.Rect, bottomBand float64, width, height int) []string {
	if width < 4 || height < 4 || size.Empty() {
		return emptyCanvas(width, height)
	}
	canvas := newCanvas(width, height)

	if bottomBand > 0 {
		top := int((size.Height - bottomBand) * float64(height) / size.Height)
		for y := max(top, 1); y < height-1; y++ {
			for x := 1; x < width-1; x++ {
				canvas[y][x] = '░'
			}
		}
	}
	for i, r := range regions {
		drawBox(canvas, r, strconv.Itoa(i+1), size.Width, size.Height)
	}
	drawBorder(canvas, width, height)
	return canvasLines(canvas)
}

func newCanvas(width, height int) [][]rune {
	canvas := make([][]rune, height)
	for y := range canvas {
		canvas[y] = []rune(strings.Repeat(" ", width))
	}
	return canvas
}

func canvasLines(canvas [][]rune) []string {
	lines := make([]string, len(canvas))
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

// drawBox maps rect from a spaceW x spaceH coordinate space onto the canvas
// interior and draws it with a single-line border and an optional label.
func drawBox(canvas [][]rune, rect geom.Rect, label string, spaceW, spaceH float64) {
	canvasH := len(canvas)
	canvasW := len(canvas[0])

	x1 := int(rect.X * float64(canvasW) / spaceW)
	y1 := int(rect.Y * float64(canvasH) / spaceH)
	x2 := int(rect.MaxX() * float64(canvasW) / spaceW)
	y2 := int(rect.MaxY() * float64(canvasH) / spaceH)

	x1 = max(x1, 1)
	y1 = max(y1, 1)
	x2 = min(x2, canvasW-2)
	y2 = min(y2, canvasH-2)

	// Need at least 2x2 for a box
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = '─'
		canvas[y2][x] = '─'
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = '│'
		canvas[y][x2] = '│'
	}
	canvas[y1][x1] = '┌'
	canvas[y1][x2] = '┐'
	canvas[y2][x1] = '└'
	canvas[y2][x2] = '┘'

	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if label != "" && centerY > y1 && centerY < y2 {
		startX := centerX - len(label)/2
		for i, r := range label {
			if startX+i > x1 && startX+i < x2 {
				canvas[centerY][startX+i] = r
			}
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	lines := make([]string, max(height, 0))
	empty := strings.Repeat(" ", max(width, 0))
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
