package engine

import (
	"fmt"
	"time"
)

// MovementSource is one provider of player movement events. Exactly one
// source is active at a time; switching modes disables the old source before
// enabling the new one so position updates never arrive from two places.
type MovementSource interface {
	// Mode identifies which movement mode this source serves
	Mode() MovementMode
	// Enable acquires whatever the source needs to start delivering movement.
	// A failed Enable leaves the engine in its previous mode.
	Enable() error
	// Disable stops the source from delivering movement
	Disable()
}

// stepSource is the discrete keyboard-style movement source. It has nothing
// to acquire, so enabling always succeeds.
type stepSource struct {
	active bool
}

// Mode returns ModeSteps
func (s *stepSource) Mode() MovementMode { return ModeSteps }

// Enable activates the source
func (s *stepSource) Enable() error {
	s.active = true
	return nil
}

// Disable deactivates the source
func (s *stepSource) Disable() { s.active = false }

// GeoProbe reports whether continuous location updates can be acquired.
// Transports install a probe reflecting the real client capability; a nil
// probe always succeeds.
type GeoProbe func() error

// geoSource is the continuous location-update movement source. Enable runs
// the availability probe, so an unavailable provider keeps the engine in its
// previous mode.
type geoSource struct {
	active bool
	probe  GeoProbe
}

// Mode returns ModeGeo
func (s *geoSource) Mode() MovementMode { return ModeGeo }

// Enable runs the availability probe and activates the source on success
func (s *geoSource) Enable() error {
	if s.probe != nil {
		if err := s.probe(); err != nil {
			return fmt.Errorf("geolocation unavailable: %w", err)
		}
	}
	s.active = true
	return nil
}

// Disable deactivates the source
func (s *geoSource) Disable() { s.active = false }

// stepOffsets maps compass directions to cell-index deltas. I follows
// latitude (north is positive), J follows longitude (east is positive).
var stepOffsets = map[string]struct{ di, dj int }{
	DirNorth: {1, 0},
	DirSouth: {-1, 0},
	DirEast:  {0, 1},
	DirWest:  {0, -1},
}

// ApplyStep moves the player one cell in a compass direction and reports
// whether the direction was valid. The player lands on the center of the
// destination cell, keeping step positions off cell boundaries.
func (gs *GameState) ApplyStep(direction string, config *GameConfig) bool {
	offset, ok := stepOffsets[direction]
	if !ok {
		gs.Message = fmt.Sprintf("Unknown direction %q", direction)
		return false
	}

	current := config.CellAt(gs.PlayerPos)
	next := CellCoord{I: current.I + offset.di, J: current.J + offset.dj}
	gs.PlayerPos = config.CellCenter(next)
	gs.Message = fmt.Sprintf("Moved %s to cell %s", direction, next.Key())
	return true
}

// ApplyPosition replaces the player position with a continuous fix from the
// location source
func (gs *GameState) ApplyPosition(pos LatLng, config *GameConfig) {
	gs.PlayerPos = pos
	gs.Message = fmt.Sprintf("Position updated, now in cell %s", config.CellAt(pos).Key())
}

// AddActionToHistory appends an entry to the cumulative action history,
// stamping it with the sequence number, current mode, resulting position,
// resulting held token and timestamp
func (gs *GameState) AddActionToHistory(entry ActionHistoryEntry) {
	entry.Timestamp = time.Now().Unix()
	entry.ActionNumber = gs.TotalActions + 1
	entry.Mode = gs.Mode
	entry.ToPosition = gs.PlayerPos
	entry.HeldAfter = gs.HeldToken

	// Append to cumulative history (never cleared by reset) and increment total
	gs.History = append(gs.History, entry)
	gs.TotalActions++

	// Append to current segment history and increment its counter
	gs.CurrentActions = append(gs.CurrentActions, entry)
	gs.CurrentActionsCount++
}
