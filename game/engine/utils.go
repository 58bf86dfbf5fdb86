package engine

import (
	"fmt"
	"strings"
)

// IsPowerOfTwo reports whether a token value is a positive power of two
func IsPowerOfTwo(value TokenValue) bool {
	return value > 0 && value&(value-1) == 0
}

// MergesToWin returns how many equal-value merges are needed to grow a held
// token to the target, or -1 when the target is unreachable from that value
func MergesToWin(held, target TokenValue) int {
	if held <= 0 || !IsPowerOfTwo(held) || !IsPowerOfTwo(target) {
		return -1
	}
	merges := 0
	for value := held; value < target; value *= 2 {
		merges++
	}
	return merges
}

// ViewWindow returns the cells in a square window of the given radius around
// the player's current cell, with their values, override status, range flag
// and geographic bounds. Rows run north to south, columns west to east.
func (e *GameEngine) ViewWindow(radius int) []ViewCell {
	if radius < 0 {
		radius = 0
	}
	if radius > MaxViewRadius {
		radius = MaxViewRadius
	}

	center := e.config.CellAt(e.state.PlayerPos)
	cells := make([]ViewCell, 0, (2*radius+1)*(2*radius+1))
	for di := radius; di >= -radius; di-- {
		for dj := -radius; dj <= radius; dj++ {
			cell := CellCoord{I: center.I + di, J: center.J + dj}
			cells = append(cells, ViewCell{
				Cell:     cell,
				Value:    e.state.TokenAt(cell, e.generator),
				Override: e.state.IsOverridden(cell),
				InRange:  Chebyshev(center, cell) <= e.config.InteractionRadius,
				Bounds:   e.config.CellBounds(cell),
			})
		}
	}
	return cells
}

// RenderView renders the view window as fixed-width text, one line per cell
// row from north to south. The player cell renders as @, empty cells as dots,
// token cells as their value.
func (e *GameEngine) RenderView(radius int) string {
	if radius < 0 {
		radius = 0
	}
	if radius > MaxViewRadius {
		radius = MaxViewRadius
	}

	center := e.config.CellAt(e.state.PlayerPos)
	var b strings.Builder
	for di := radius; di >= -radius; di-- {
		for dj := -radius; dj <= radius; dj++ {
			cell := CellCoord{I: center.I + di, J: center.J + dj}
			value := e.state.TokenAt(cell, e.generator)
			switch {
			case cell == center:
				b.WriteString("  @")
			case value == NoToken:
				b.WriteString("  .")
			default:
				fmt.Fprintf(&b, "%3d", value)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// CountSpawnsInWindow counts the tokens the generator spawns in a square
// window around a center cell, ignoring overrides, keyed by value. Tooling
// uses it to report the density a configuration produces.
func CountSpawnsInWindow(gen *Generator, center CellCoord, radius int) map[TokenValue]int {
	counts := make(map[TokenValue]int)
	for di := -radius; di <= radius; di++ {
		for dj := -radius; dj <= radius; dj++ {
			cell := CellCoord{I: center.I + di, J: center.J + dj}
			if value := gen.SpawnValue(cell); value != NoToken {
				counts[value]++
			}
		}
	}
	return counts
}

// NearestSpawn scans outward ring by ring for the closest cell the generator
// spawns a token in, returning its coordinate and Chebyshev distance. The
// search gives up beyond maxRadius.
func NearestSpawn(gen *Generator, center CellCoord, maxRadius int) (CellCoord, int, bool) {
	if gen.SpawnValue(center) != NoToken {
		return center, 0, true
	}
	for r := 1; r <= maxRadius; r++ {
		for di := -r; di <= r; di++ {
			for dj := -r; dj <= r; dj++ {
				if abs(di) != r && abs(dj) != r {
					continue
				}
				cell := CellCoord{I: center.I + di, J: center.J + dj}
				if gen.SpawnValue(cell) != NoToken {
					return cell, r, true
				}
			}
		}
	}
	return CellCoord{}, -1, false
}
