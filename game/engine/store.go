package engine

// TokenAt returns the current token in a cell: the recorded override when one
// exists, otherwise the deterministic spawn value. Untouched cells cost no
// storage, so the world can be unbounded.
func (gs *GameState) TokenAt(cell CellCoord, gen *Generator) TokenValue {
	if value, ok := gs.Overrides[cell.Key()]; ok {
		return value
	}
	return gen.SpawnValue(cell)
}

// SetToken records an explicit override for a cell, replacing any prior
// override. Overrides are never removed individually, which makes repeated
// emptying of the same cell idempotent; only a reset clears the map.
func (gs *GameState) SetToken(cell CellCoord, value TokenValue) {
	if gs.Overrides == nil {
		gs.Overrides = make(map[string]TokenValue)
	}
	gs.Overrides[cell.Key()] = value
}

// IsOverridden reports whether a cell has an explicit override recorded
func (gs *GameState) IsOverridden(cell CellCoord) bool {
	_, ok := gs.Overrides[cell.Key()]
	return ok
}

// OverrideCount returns the number of cells with a recorded override
func (gs *GameState) OverrideCount() int {
	return len(gs.Overrides)
}
