package engine

import "math"

// CellAt maps a continuous position to the coordinate of the cell containing
// it. The offset from the world origin is floor-divided by the tile edge per
// axis, so the cells partition the plane with no gaps or overlaps and the
// mapping is correct for positions south or west of the origin.
func (c *GameConfig) CellAt(pos LatLng) CellCoord {
	return CellCoord{
		I: int(math.Floor((pos.Lat - c.Origin.Lat) / c.TileDegrees)),
		J: int(math.Floor((pos.Lng - c.Origin.Lng) / c.TileDegrees)),
	}
}

// CellBounds returns the geographic region covered by a cell, the inverse of
// CellAt. Presentation layers use it to draw tiles.
func (c *GameConfig) CellBounds(cell CellCoord) Bounds {
	south := c.Origin.Lat + float64(cell.I)*c.TileDegrees
	west := c.Origin.Lng + float64(cell.J)*c.TileDegrees
	return Bounds{
		South: south,
		West:  west,
		North: south + c.TileDegrees,
		East:  west + c.TileDegrees,
	}
}

// CellCenter returns the midpoint of a cell's region. Step movement lands on
// centers so repeated steps never leave the player on a cell boundary.
func (c *GameConfig) CellCenter(cell CellCoord) LatLng {
	return LatLng{
		Lat: c.Origin.Lat + (float64(cell.I)+0.5)*c.TileDegrees,
		Lng: c.Origin.Lng + (float64(cell.J)+0.5)*c.TileDegrees,
	}
}

// Chebyshev returns the chessboard distance between two cells, the maximum of
// the per-axis absolute differences
func Chebyshev(a, b CellCoord) int {
	di := abs(a.I - b.I)
	dj := abs(a.J - b.J)
	if di > dj {
		return di
	}
	return dj
}

// InRange reports whether the target cell is within the interaction radius of
// the player's current cell. The player cell is recomputed from the position
// on every call, never cached.
func (c *GameConfig) InRange(player LatLng, target CellCoord) bool {
	return Chebyshev(c.CellAt(player), target) <= c.InteractionRadius
}
