package selection

import (
	"fmt"
	"strconv"
	"strings"
)

// Text grid size. Constant regardless of the image aspect ratio; the grid
// is a preview only and never the source of coordinates.
const (
	GridWidth  = 24
	GridHeight = 8
)

const (
	cellEmpty  = ' '
	cellBorder = '█'
	cellFill   = '░'
)

// RenderLayout draws every candidate as a numbered block on the text grid.
// Output depends only on the candidates, so equal input renders equal text.
func RenderLayout(cands []Candidate) string {
	if len(cands) == 0 {
		return "❌ No faces detected"
	}

	grid := make([][]rune, GridHeight)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(string(cellEmpty), GridWidth))
	}

	for _, c := range cands {
		drawMarker(grid, c)
	}

	var b strings.Builder
	b.WriteString("🎭 DETECTED FACES\n")
	b.WriteString("┌" + strings.Repeat("─", GridWidth) + "┐\n")
	for _, row := range grid {
		b.WriteString("│" + string(row) + "│\n")
	}
	b.WriteString("└" + strings.Repeat("─", GridWidth) + "┘")
	return b.String()
}

// drawMarker places a block at the candidate's scaled center. The margin
// (4 columns, 2 rows) keeps the block inside the frame at the right and
// bottom edges. Blocks are at least 3x3 so the label has an interior cell.
func drawMarker(grid [][]rune, c Candidate) {
	gx := int(c.Center.X * (GridWidth - 4))
	gy := int(c.Center.Y * (GridHeight - 2))
	bw := max(2, int(c.Width*GridWidth*0.3))
	bh := max(2, int(c.Height*GridHeight*0.4))

	for dy := 0; dy <= bh; dy++ {
		for dx := 0; dx <= bw; dx++ {
			y, x := gy+dy, gx+dx
			if y < 0 || y >= GridHeight || x < 0 || x >= GridWidth {
				continue
			}
			switch {
			case dy == 0 || dy == bh || dx == 0 || dx == bw:
				grid[y][x] = cellBorder
			case grid[y][x] == cellEmpty:
				grid[y][x] = cellFill
			}
		}
	}

	ly, lx := gy+bh/2, gx+bw/2
	if ly < 0 || ly >= GridHeight {
		return
	}
	for i, r := range strconv.Itoa(c.Index) {
		if x := lx + i; x >= 0 && x < GridWidth {
			grid[ly][x] = r
		}
	}
}

// Position returns a short human description of where the candidate sits
// among n faces.
func Position(index, n int) string {
	switch {
	case n == 1:
		return "Center person"
	case n == 2 && index == 1:
		return "Left person"
	case n == 2:
		return "Right person"
	case index == 1:
		return "Leftmost person"
	case index == n:
		return "Rightmost person"
	default:
		return fmt.Sprintf("Person #%d", index)
	}
}

// Describe returns one listing line per candidate in display order.
func Describe(cands []Candidate) []string {
	lines := make([]string, 0, len(cands))
	for _, c := range cands {
		lines = append(lines, fmt.Sprintf("[%d] %-16s (%.3f, %.3f)  quality %.2f",
			c.Index, Position(c.Index, len(cands)), c.Center.X, c.Center.Y, c.Quality))
	}
	return lines
}
