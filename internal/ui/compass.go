package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderCompass renders a compass with an arrow pointing where the bubble
// has drifted. heading: radians (0=up, clockwise); strength: deviation as
// a fraction of the reach, 0..1. No arrow is drawn while level.
func RenderCompass(width, height int, heading, strength float64, level bool) string {
	if width < 9 || height < 5 {
		return ""
	}

	grid := make([][]byte, height)
	isArrow := make([][]bool, height)
	for i := range grid {
		grid[i] = make([]byte, width)
		isArrow[i] = make([]bool, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	fcx := float64(width) / 2.0
	fcy := float64(height) / 2.0
	rx := max(3, fcx-2.0) // horizontal radius in columns
	ry := max(2, fcy-2.0) // vertical radius in rows

	// Ring
	steps := 80
	for i := 0; i < steps; i++ {
		a := float64(i) * 2 * math.Pi / float64(steps)
		col := int(math.Round(fcx + rx*math.Sin(a)))
		row := int(math.Round(fcy - ry*math.Cos(a)))
		if col >= 0 && col < width && row >= 0 && row < height && grid[row][col] == ' ' {
			grid[row][col] = ringChar(a)
		}
	}

	cx := int(math.Round(fcx))
	cy := int(math.Round(fcy))

	// Screen edge markers
	setGrid(grid, width, height, cx, cy-int(math.Round(ry))-1, 'T')
	setGrid(grid, width, height, cx, cy+int(math.Round(ry))+1, 'B')
	setGrid(grid, width, height, cx+int(math.Round(rx))+1, cy, 'R')
	setGrid(grid, width, height, cx-int(math.Round(rx))-1, cy, 'L')

	// Faint axes
	for r := cy - int(ry) + 1; r < cy+int(ry); r++ {
		if r >= 0 && r < height && r != cy && grid[r][cx] == ' ' {
			grid[r][cx] = ':'
		}
	}
	for c := cx - int(rx) + 1; c < cx+int(rx); c++ {
		if c >= 0 && c < width && c != cx && grid[cy][c] == ' ' {
			grid[cy][c] = '.'
		}
	}

	setGrid(grid, width, height, cx, cy, '+')

	if !level {
		drawArrow(grid, isArrow, fcx, fcy, rx, ry, heading, strength)
	}

	arrowSty := lipgloss.NewStyle().Foreground(ColorGray).Bold(true)
	ringSty := lipgloss.NewStyle().Foreground(ColorDimGray)
	axisSty := lipgloss.NewStyle().Foreground(ColorBarBg)
	markSty := lipgloss.NewStyle().Foreground(ColorWhite).Bold(true)
	if level {
		ringSty = lipgloss.NewStyle().Foreground(ColorLimeDim)
		markSty = lipgloss.NewStyle().Foreground(ColorLime).Bold(true)
	}

	var sb strings.Builder
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			ch := grid[row][col]
			switch {
			case ch == 'T' || ch == 'B' || ch == 'L' || ch == 'R' || ch == '+':
				sb.WriteString(markSty.Render(string(ch)))
			case isArrow[row][col]:
				sb.WriteString(arrowSty.Render(string(ch)))
			case ch == ':' || ch == '.':
				sb.WriteString(axisSty.Render(string(ch)))
			case ch != ' ':
				sb.WriteString(ringSty.Render(string(ch)))
			default:
				sb.WriteByte(' ')
			}
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

// drawArrow draws a shaft from the center toward heading; the stronger the
// drift, the longer the shaft.
func drawArrow(grid [][]byte, isArrow [][]bool, fcx, fcy, rx, ry, heading, strength float64) {
	height := len(grid)
	width := len(grid[0])

	const maxFrac, minFrac = 0.85, 0.3
	strength = math.Max(0, math.Min(1, strength))
	arrowFrac := minFrac + (maxFrac-minFrac)*strength

	sinA := math.Sin(heading)
	cosA := math.Cos(heading)

	shaftSteps := max(2, int(math.Max(rx, ry)*arrowFrac))

	tipCol, tipRow := -1, -1
	for s := 1; s <= shaftSteps; s++ {
		t := float64(s) / float64(shaftSteps) * arrowFrac
		col := int(math.Round(fcx + t*rx*sinA))
		row := int(math.Round(fcy - t*ry*cosA))
		if col >= 0 && col < width && row >= 0 && row < height {
			grid[row][col] = shaftChar(heading)
			isArrow[row][col] = true
			tipCol, tipRow = col, row
		}
	}
	if tipCol < 0 {
		return
	}
	grid[tipRow][tipCol] = arrowTip(heading)
}

func setGrid(grid [][]byte, w, h, col, row int, ch byte) {
	if col >= 0 && col < w && row >= 0 && row < h {
		grid[row][col] = ch
	}
}

func sector(a float64) int {
	for a < 0 {
		a += 2 * math.Pi
	}
	for a >= 2*math.Pi {
		a -= 2 * math.Pi
	}
	return int(math.Round(a/(math.Pi/4))) % 8
}

func ringChar(a float64) byte {
	switch sector(a) {
	case 0, 4:
		return '-'
	case 1, 5:
		return '\\'
	case 2, 6:
		return '|'
	default:
		return '/'
	}
}

// shaftChar returns the line character for a given direction.
func shaftChar(a float64) byte {
	switch sector(a) {
	case 0, 4: // up, down
		return '|'
	case 2, 6: // right, left
		return '-'
	case 3, 7:
		return '\\'
	default:
		return '/'
	}
}

// arrowTip returns the arrowhead character for a given direction.
func arrowTip(a float64) byte {
	return "^/>\\v/<\\"[sector(a)]
}

// DirectionName names the screen direction of a heading.
func DirectionName(a float64) string {
	dirs := []string{"up", "up-right", "right", "down-right", "down", "down-left", "left", "up-left"}
	return dirs[sector(a)]
}
