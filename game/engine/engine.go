package engine

import "fmt"

// ChangeListener receives the redraw trigger after a state mutation: "state
// changed, recompute visible tokens". Listeners run synchronously inside the
// mutating call and must not block.
type ChangeListener func(state *GameState)

// WinListener receives the held value that newly crossed the win target.
// Listeners run synchronously inside the mutating call and must not block.
type WinListener func(held TokenValue)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsVictory() bool
	GetHeldToken() TokenValue
	GetPlayerPosition() LatLng
	GetPlayerCell() CellCoord
	GetMovementMode() MovementMode

	// Board queries
	TokenAt(cell CellCoord) TokenValue
	ViewWindow(radius int) []ViewCell
	RenderView(radius int) string

	// Interaction and movement operations
	AttemptInteraction(cell CellCoord) InteractResult
	MoveStep(direction string) bool
	BulkSteps(directions []string) []bool
	UpdatePosition(pos LatLng) bool
	SetMovementMode(mode MovementMode) error
	ToggleMovementMode() (MovementMode, error)

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetActionHistory() []ActionHistoryEntry
	GetLastAction() *ActionHistoryEntry

	// Notifications
	OnChange(listener ChangeListener)
	OnWin(listener WinListener)
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state     *GameState
	config    *GameConfig
	generator *Generator
	sources   map[MovementMode]MovementSource

	changeListeners []ChangeListener
	winListeners    []WinListener
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	return NewEngineWithGenerator(config, nil)
}

// NewEngineWithGenerator creates a new game engine with a custom token
// generator. Tests and tooling use this to script exact spawn rolls; a nil
// generator uses the deterministic hash roller.
func NewEngineWithGenerator(config *GameConfig, gen *Generator) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if gen == nil {
		gen = NewGenerator(config)
	}

	engine := &GameEngine{
		config:    config,
		generator: gen,
		state:     InitGameStateFromConfig(config),
		sources: map[MovementMode]MovementSource{
			ModeSteps: &stepSource{},
			ModeGeo:   &geoSource{},
		},
	}
	engine.syncMovementSource()

	return engine, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in default
// configuration
func NewEngineWithDefaults() *GameEngine {
	// The built-in config always validates
	engine, _ := NewEngine(DefaultGameConfig())
	return engine
}

// SetGeoProbe installs the availability probe run when the location source is
// enabled. Transports install a probe reflecting the real client capability.
func (e *GameEngine) SetGeoProbe(probe GeoProbe) {
	if src, ok := e.sources[ModeGeo].(*geoSource); ok {
		src.probe = probe
	}
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading). Missing fields
// are filled with their defaults and the win latch is recomputed from the
// held token, so a loaded game that already crossed the target does not
// notify again.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	state.Normalize(e.config)
	e.state = state
	e.syncMovementSource()
	return nil
}

// Reset restores the persisted fields (override store, held token, player
// position, movement mode) to their defaults. Cumulative history and totals
// survive so a session keeps its full record across new games; this is also
// the only operation that shrinks the override store.
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.History
	prevTotal := e.state.TotalActions

	// Reinitialize core state from config
	e.state = InitGameStateFromConfig(e.config)

	// Restore cumulative history and totals; clear only the current segment
	e.state.History = prevHistory
	e.state.TotalActions = prevTotal
	e.state.CurrentActions = []ActionHistoryEntry{}
	e.state.CurrentActionsCount = 0

	e.state.AddActionToHistory(ActionHistoryEntry{
		Action:       ActionReset,
		FromPosition: e.state.PlayerPos,
		Success:      true,
	})
	e.syncMovementSource()
	e.notifyChange()

	return e.state
}

// IsVictory returns whether the win target has ever been reached
func (e *GameEngine) IsVictory() bool {
	return e.state.Victory
}

// GetHeldToken returns the token currently held by the player, or NoToken
func (e *GameEngine) GetHeldToken() TokenValue {
	return e.state.HeldToken
}

// GetPlayerPosition returns the current continuous player position
func (e *GameEngine) GetPlayerPosition() LatLng {
	return e.state.PlayerPos
}

// GetPlayerCell returns the cell containing the current player position
func (e *GameEngine) GetPlayerCell() CellCoord {
	return e.config.CellAt(e.state.PlayerPos)
}

// GetMovementMode returns the active movement mode
func (e *GameEngine) GetMovementMode() MovementMode {
	return e.state.Mode
}

// TokenAt returns the current token in a cell, override or spawned
func (e *GameEngine) TokenAt(cell CellCoord) TokenValue {
	return e.state.TokenAt(cell, e.generator)
}

// AttemptInteraction runs the interaction state machine against the target
// cell, records the attempt in the history, and notifies listeners of state
// changes and win crossings
func (e *GameEngine) AttemptInteraction(cell CellCoord) InteractResult {
	heldBefore := e.state.HeldToken
	result := e.state.ApplyInteraction(cell, e.generator, e.config)

	target := cell
	e.state.AddActionToHistory(ActionHistoryEntry{
		Action:       ActionInteract,
		Cell:         &target,
		Outcome:      result.Outcome,
		FromPosition: e.state.PlayerPos,
		HeldBefore:   heldBefore,
		Success:      result.Changed,
	})

	if result.Changed {
		e.notifyChange()
	}
	if result.Won {
		e.notifyWin(e.state.HeldToken)
	}

	return result
}

// MoveStep moves the player one cell in a compass direction. Steps are only
// accepted while the step source is the active movement mode.
func (e *GameEngine) MoveStep(direction string) bool {
	if e.state.Mode != ModeSteps {
		e.state.Message = "Step movement is disabled while location updates are active"
		return false
	}

	from := e.state.PlayerPos
	heldBefore := e.state.HeldToken
	success := e.state.ApplyStep(direction, e.config)

	e.state.AddActionToHistory(ActionHistoryEntry{
		Action:       ActionMove,
		Direction:    direction,
		FromPosition: from,
		HeldBefore:   heldBefore,
		Success:      success,
	})

	if success {
		e.notifyChange()
	}
	return success
}

// BulkSteps executes up to MaxBulkSteps step moves in order and reports the
// result of each. Directions beyond the cap are ignored.
func (e *GameEngine) BulkSteps(directions []string) []bool {
	if len(directions) > MaxBulkSteps {
		directions = directions[:MaxBulkSteps]
	}

	results := make([]bool, 0, len(directions))
	for _, direction := range directions {
		results = append(results, e.MoveStep(direction))
	}
	return results
}

// UpdatePosition replaces the player position with a continuous location fix.
// Fixes are only accepted while the location source is the active movement
// mode.
func (e *GameEngine) UpdatePosition(pos LatLng) bool {
	if e.state.Mode != ModeGeo {
		e.state.Message = "Location updates are disabled while step movement is active"
		return false
	}

	from := e.state.PlayerPos
	heldBefore := e.state.HeldToken
	e.state.ApplyPosition(pos, e.config)

	e.state.AddActionToHistory(ActionHistoryEntry{
		Action:       ActionPosition,
		FromPosition: from,
		HeldBefore:   heldBefore,
		Success:      true,
	})

	e.notifyChange()
	return true
}

// SetMovementMode switches the active movement source. The previous source is
// disabled before the new one is enabled; if enabling fails the previous
// source is restored and the engine stays in its previous mode.
func (e *GameEngine) SetMovementMode(mode MovementMode) error {
	next, ok := e.sources[mode]
	if !ok {
		return fmt.Errorf("unknown movement mode %q", mode)
	}
	if mode == e.state.Mode {
		return nil
	}

	prev := e.sources[e.state.Mode]
	if prev != nil {
		prev.Disable()
	}
	if err := next.Enable(); err != nil {
		// Restore the previous source; the engine stays in its mode
		if prev != nil {
			prev.Enable()
		}
		return err
	}

	from := e.state.PlayerPos
	heldBefore := e.state.HeldToken
	e.state.Mode = mode

	message := fmt.Sprintf("Movement mode switched to %s", mode)
	if e.config.Messages.ModeSwitch != "" {
		message = fmt.Sprintf(e.config.Messages.ModeSwitch, mode)
	}
	e.state.Message = message

	e.state.AddActionToHistory(ActionHistoryEntry{
		Action:       ActionMode,
		FromPosition: from,
		HeldBefore:   heldBefore,
		Success:      true,
	})
	e.notifyChange()
	return nil
}

// ToggleMovementMode switches to the other movement mode and returns the mode
// that is active afterwards
func (e *GameEngine) ToggleMovementMode() (MovementMode, error) {
	next := ModeGeo
	if e.state.Mode == ModeGeo {
		next = ModeSteps
	}
	if err := e.SetMovementMode(next); err != nil {
		return e.state.Mode, err
	}
	return e.state.Mode, nil
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.generator = NewGenerator(config)
	e.state = InitGameStateFromConfig(config)
	e.syncMovementSource()
	return nil
}

// GetActionHistory returns the complete cumulative action history
func (e *GameEngine) GetActionHistory() []ActionHistoryEntry {
	return e.state.History
}

// GetLastAction returns the last recorded action, or nil if none
func (e *GameEngine) GetLastAction() *ActionHistoryEntry {
	if len(e.state.History) == 0 {
		return nil
	}
	return &e.state.History[len(e.state.History)-1]
}

// OnChange registers a listener for the redraw trigger
func (e *GameEngine) OnChange(listener ChangeListener) {
	e.changeListeners = append(e.changeListeners, listener)
}

// OnWin registers a listener for win notifications
func (e *GameEngine) OnWin(listener WinListener) {
	e.winListeners = append(e.winListeners, listener)
}

// notifyChange fires the change listeners once for one mutation
func (e *GameEngine) notifyChange() {
	for _, listener := range e.changeListeners {
		listener(e.state)
	}
}

// notifyWin fires the win listeners once for one threshold crossing
func (e *GameEngine) notifyWin(held TokenValue) {
	for _, listener := range e.winListeners {
		listener(held)
	}
}

// syncMovementSource aligns source activation with the state's current mode.
// If the mode's source cannot be enabled the engine falls back to steps,
// which always enable.
func (e *GameEngine) syncMovementSource() {
	for mode, src := range e.sources {
		if mode != e.state.Mode {
			src.Disable()
		}
	}
	if src, ok := e.sources[e.state.Mode]; ok {
		if err := src.Enable(); err != nil {
			e.state.Mode = ModeSteps
			e.sources[ModeSteps].Enable()
		}
	}
}

// Normalize fills zero-value fields left by partial or missing persisted data
// with their defaults and recomputes derived state. Malformed persisted data
// degrades to defaults rather than failing.
func (gs *GameState) Normalize(config *GameConfig) {
	if config == nil {
		config = DefaultGameConfig()
	}
	if gs.Overrides == nil {
		gs.Overrides = make(map[string]TokenValue)
	}
	if gs.HeldToken < 0 {
		gs.HeldToken = NoToken
	}
	if gs.Mode != ModeSteps && gs.Mode != ModeGeo {
		gs.Mode = ModeSteps
		if config.StartMode == ModeGeo {
			gs.Mode = ModeGeo
		}
	}
	if (gs.PlayerPos == LatLng{}) {
		gs.PlayerPos = config.Origin
	}
	if gs.ConfigName == "" {
		gs.ConfigName = config.Name
	}
	if gs.Message == "" {
		gs.Message = config.Messages.Welcome
	}
	if gs.History == nil {
		gs.History = []ActionHistoryEntry{}
	}
	if gs.CurrentActions == nil {
		gs.CurrentActions = []ActionHistoryEntry{}
	}
	// A loaded game that already crossed the target must not notify again
	gs.winLatched = gs.HeldToken >= config.WinTarget
}
