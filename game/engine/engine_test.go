package engine

import (
	"errors"
	"testing"
)

func createTestConfig() *GameConfig {
	config := &GameConfig{
		Name:              "Engine Test Config",
		Description:       "Configuration for engine integration tests",
		Origin:            LatLng{Lat: 37.7749, Lng: -122.4194},
		TileDegrees:       0.001,
		InteractionRadius: 3,
		SpawnProbability:  0.15,
		WinTarget:         16,
		StartMode:         ModeSteps,
	}
	config.Messages.Welcome = "Welcome to the test world!"
	config.Messages.Pickup = "Picked up a %d token"
	config.Messages.Place = "Placed your %d token"
	config.Messages.Merge = "Merged into a %d token!"
	config.Messages.Mismatch = "Your %d token doesn't match the %d there"
	config.Messages.OutOfRange = "Too far away to reach that cell"
	config.Messages.NothingHere = "Nothing here to pick up"
	config.Messages.Win = "You win! Your token reached %d!"
	config.Messages.ModeSwitch = "Movement mode switched to %s"
	return config
}

// scriptedRoller returns scripted rolls for specific cells and an
// always-empty roll for everything else
type scriptedRoller struct {
	rolls map[string]float64
}

func (r *scriptedRoller) Roll(cell CellCoord) float64 {
	if roll, ok := r.rolls[cell.Key()]; ok {
		return roll
	}
	return 0.99
}

// newStubEngine builds an engine whose generator rolls are scripted per cell
// key, with every unscripted cell empty
func newStubEngine(t *testing.T, rolls map[string]float64) *GameEngine {
	t.Helper()
	config := createTestConfig()
	gen := NewGeneratorWithRoller(&scriptedRoller{rolls: rolls}, config.SpawnProbability)
	engine, err := NewEngineWithGenerator(config, gen)
	if err != nil {
		t.Fatalf("Failed to create stub engine: %v", err)
	}
	return engine
}

func TestNewEngine(t *testing.T) {
	config := createTestConfig()
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	if engine == nil {
		t.Fatal("Expected engine to be non-nil")
	}

	// Test initial state
	if engine.GetHeldToken() != NoToken {
		t.Errorf("Expected empty hands initially, got %d", engine.GetHeldToken())
	}
	if engine.GetPlayerPosition() != config.Origin {
		t.Errorf("Expected player at origin %+v, got %+v", config.Origin, engine.GetPlayerPosition())
	}
	if cell := engine.GetPlayerCell(); cell != (CellCoord{I: 0, J: 0}) {
		t.Errorf("Expected player in cell 0:0, got %s", cell.Key())
	}
	if engine.GetMovementMode() != ModeSteps {
		t.Errorf("Expected steps mode initially, got %s", engine.GetMovementMode())
	}
	if engine.IsVictory() {
		t.Error("Expected game not to be won initially")
	}
	if engine.GetState().OverrideCount() != 0 {
		t.Errorf("Expected empty override store initially, got %d entries", engine.GetState().OverrideCount())
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Name = "" // Make config invalid

	_, err := NewEngine(config)
	if err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestNewEngineWithDefaults(t *testing.T) {
	engine := NewEngineWithDefaults()
	if engine == nil {
		t.Fatal("Expected engine to be non-nil")
	}

	// Should have reasonable defaults
	if engine.GetConfig().WinTarget < MinWinTarget {
		t.Errorf("Expected win target of at least %d, got %d", MinWinTarget, engine.GetConfig().WinTarget)
	}
	if engine.GetHeldToken() != NoToken {
		t.Errorf("Expected empty hands, got %d", engine.GetHeldToken())
	}
}

func TestEngine_BasicStepMovement(t *testing.T) {
	config := createTestConfig()
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	// Test successful step
	success := engine.MoveStep(DirNorth)
	if !success {
		t.Error("Expected successful step north")
	}

	if cell := engine.GetPlayerCell(); cell != (CellCoord{I: 1, J: 0}) {
		t.Errorf("Expected player in cell 1:0 after stepping north, got %s", cell.Key())
	}

	engine.MoveStep(DirEast)
	if cell := engine.GetPlayerCell(); cell != (CellCoord{I: 1, J: 1}) {
		t.Errorf("Expected player in cell 1:1 after stepping east, got %s", cell.Key())
	}

	// Test action history
	history := engine.GetActionHistory()
	if len(history) != 2 {
		t.Errorf("Expected 2 actions in history, got %d", len(history))
	}

	lastAction := engine.GetLastAction()
	if lastAction == nil {
		t.Fatal("Expected last action to be non-nil")
	}
	if lastAction.Action != ActionMove || lastAction.Direction != DirEast {
		t.Errorf("Expected last action move east, got %s %s", lastAction.Action, lastAction.Direction)
	}
	if !lastAction.Success {
		t.Error("Expected last action to be successful")
	}
}

func TestEngine_InvalidStepDirection(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if engine.MoveStep("diagonal") {
		t.Error("Expected step to fail with invalid direction")
	}
	if engine.MoveStep("") {
		t.Error("Expected step to fail with empty direction")
	}
	if cell := engine.GetPlayerCell(); cell != (CellCoord{I: 0, J: 0}) {
		t.Errorf("Expected player to stay in cell 0:0, got %s", cell.Key())
	}
}

func TestEngine_ModeGating(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	// Location fixes are rejected while step movement is active
	if engine.UpdatePosition(LatLng{Lat: 37.7800, Lng: -122.4100}) {
		t.Error("Expected position update to be rejected in steps mode")
	}

	if err := engine.SetMovementMode(ModeGeo); err != nil {
		t.Fatalf("Failed to switch to geo mode: %v", err)
	}

	// Steps are rejected while location updates are active
	if engine.MoveStep(DirNorth) {
		t.Error("Expected step to be rejected in geo mode")
	}

	if !engine.UpdatePosition(LatLng{Lat: 37.7800, Lng: -122.4100}) {
		t.Error("Expected position update to succeed in geo mode")
	}
	expected := CellCoord{I: 5, J: 9}
	if cell := engine.GetPlayerCell(); cell != expected {
		t.Errorf("Expected player in cell %s after fix, got %s", expected.Key(), cell.Key())
	}
}

func TestEngine_ToggleMovementMode(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	mode, err := engine.ToggleMovementMode()
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if mode != ModeGeo {
		t.Errorf("Expected geo mode after toggle, got %s", mode)
	}

	mode, err = engine.ToggleMovementMode()
	if err != nil {
		t.Fatalf("Toggle back failed: %v", err)
	}
	if mode != ModeSteps {
		t.Errorf("Expected steps mode after second toggle, got %s", mode)
	}
}

func TestEngine_GeoUnavailableStaysInPreviousMode(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	engine.SetGeoProbe(func() error { return errors.New("no location provider") })

	if err := engine.SetMovementMode(ModeGeo); err == nil {
		t.Fatal("Expected error switching to unavailable geo source")
	}
	if engine.GetMovementMode() != ModeSteps {
		t.Errorf("Expected engine to stay in steps mode, got %s", engine.GetMovementMode())
	}

	// The previous source must still work after the failed switch
	if !engine.MoveStep(DirNorth) {
		t.Error("Expected step movement to keep working after failed mode switch")
	}
}

func TestEngine_SetUnknownMode(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if err := engine.SetMovementMode("teleport"); err == nil {
		t.Error("Expected error for unknown movement mode")
	}
	if engine.GetMovementMode() != ModeSteps {
		t.Errorf("Expected mode unchanged, got %s", engine.GetMovementMode())
	}
}

func TestEngine_ConfigManagement(t *testing.T) {
	config := createTestConfig()
	engine, err := NewEngine(config)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	// Test getting config
	retrievedConfig := engine.GetConfig()
	if retrievedConfig.Name != config.Name {
		t.Errorf("Expected config name '%s', got '%s'", config.Name, retrievedConfig.Name)
	}

	// Test setting new config
	newConfig := createTestConfig()
	newConfig.Name = "New Config"
	newConfig.WinTarget = 32

	err = engine.SetConfig(newConfig)
	if err != nil {
		t.Errorf("Failed to set new config: %v", err)
	}

	if engine.GetConfig().Name != newConfig.Name {
		t.Errorf("Expected new config name '%s', got '%s'", newConfig.Name, engine.GetConfig().Name)
	}
	if engine.GetHeldToken() != NoToken {
		t.Errorf("Expected state reset with new config, held %d", engine.GetHeldToken())
	}

	// Test setting invalid config
	invalidConfig := createTestConfig()
	invalidConfig.WinTarget = 5
	err = engine.SetConfig(invalidConfig)
	if err == nil {
		t.Error("Expected error when setting invalid config")
	}
}

func TestEngine_Reset(t *testing.T) {
	engine := newStubEngine(t, map[string]float64{
		"1:0": 0.05, // value 1 one cell north
	})

	// Change all four persisted fields
	engine.MoveStep(DirNorth)
	result := engine.AttemptInteraction(CellCoord{I: 1, J: 0})
	if result.Outcome != OutcomePickup {
		t.Fatalf("Expected pickup, got %s", result.Outcome)
	}
	if err := engine.SetMovementMode(ModeGeo); err != nil {
		t.Fatalf("Failed to switch mode: %v", err)
	}

	if engine.GetHeldToken() == NoToken {
		t.Fatal("Expected a held token before reset")
	}
	if engine.GetState().OverrideCount() == 0 {
		t.Fatal("Expected overrides before reset")
	}

	actionsBefore := len(engine.GetActionHistory())

	// Reset restores the four persisted fields to defaults
	newState := engine.Reset()
	if newState == nil {
		t.Fatal("Expected reset to return game state")
	}
	if newState.HeldToken != NoToken {
		t.Errorf("Expected no held token after reset, got %d", newState.HeldToken)
	}
	if newState.OverrideCount() != 0 {
		t.Errorf("Expected empty override store after reset, got %d entries", newState.OverrideCount())
	}
	if newState.PlayerPos != engine.GetConfig().Origin {
		t.Errorf("Expected player back at origin after reset, got %+v", newState.PlayerPos)
	}
	if newState.Mode != ModeSteps {
		t.Errorf("Expected default mode after reset, got %s", newState.Mode)
	}

	// Cumulative history survives the reset; the current segment restarts
	// with the reset entry itself
	if len(engine.GetActionHistory()) != actionsBefore+1 {
		t.Errorf("Expected cumulative history retained plus reset entry, got %d actions", len(engine.GetActionHistory()))
	}
	if newState.CurrentActionsCount != 1 {
		t.Errorf("Expected only the reset entry in the current segment, got %d", newState.CurrentActionsCount)
	}
	if last := engine.GetLastAction(); last == nil || last.Action != ActionReset {
		t.Error("Expected the last action to be the reset entry")
	}
}

func TestEngine_SetState(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if err := engine.SetState(nil); err == nil {
		t.Error("Expected error setting nil state")
	}

	// A sparse state loaded from persistence is filled with defaults
	loaded := &GameState{
		Overrides: map[string]TokenValue{"2:2": NoToken},
		HeldToken: 4,
	}
	if err := engine.SetState(loaded); err != nil {
		t.Fatalf("Failed to set state: %v", err)
	}

	state := engine.GetState()
	if state.PlayerPos != engine.GetConfig().Origin {
		t.Errorf("Expected missing position defaulted to origin, got %+v", state.PlayerPos)
	}
	if state.Mode != ModeSteps {
		t.Errorf("Expected missing mode defaulted to steps, got %s", state.Mode)
	}
	if state.HeldToken != 4 {
		t.Errorf("Expected held token preserved, got %d", state.HeldToken)
	}
	if !state.IsOverridden(CellCoord{I: 2, J: 2}) {
		t.Error("Expected override preserved through SetState")
	}
}

func TestEngine_Listeners(t *testing.T) {
	engine := newStubEngine(t, map[string]float64{
		"0:1": 0.10, // value 2 east of the player
		"1:1": 0.10, // value 2 north-east
	})
	engine.GetConfig().WinTarget = 4

	changes := 0
	var wins []TokenValue
	engine.OnChange(func(state *GameState) { changes++ })
	engine.OnWin(func(held TokenValue) { wins = append(wins, held) })

	engine.AttemptInteraction(CellCoord{I: 0, J: 1}) // pickup 2
	engine.AttemptInteraction(CellCoord{I: 1, J: 1}) // merge to 4, crossing the target

	if changes != 2 {
		t.Errorf("Expected 2 change notifications, got %d", changes)
	}
	if len(wins) != 1 || wins[0] != 4 {
		t.Errorf("Expected a single win notification at 4, got %v", wins)
	}

	// A rejected attempt fires no change notification
	engine.AttemptInteraction(CellCoord{I: 9, J: 9})
	if changes != 2 {
		t.Errorf("Expected no change notification for rejected attempt, got %d", changes)
	}
}

func TestEngine_StateConsistency(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	// Test that engine methods are consistent with direct state access
	state := engine.GetState()

	if engine.GetHeldToken() != state.HeldToken {
		t.Error("GetHeldToken() inconsistent with state.HeldToken")
	}
	if engine.GetPlayerPosition() != state.PlayerPos {
		t.Error("GetPlayerPosition() inconsistent with state.PlayerPos")
	}
	if engine.GetMovementMode() != state.Mode {
		t.Error("GetMovementMode() inconsistent with state.Mode")
	}
	if engine.IsVictory() != state.Victory {
		t.Error("IsVictory() inconsistent with state.Victory")
	}

	// Test that moves through the engine update state consistently
	engine.MoveStep(DirNorth)
	newState := engine.GetState()

	if len(engine.GetActionHistory()) != len(newState.History) {
		t.Error("GetActionHistory() inconsistent with state.History")
	}
	if engine.GetPlayerCell() != engine.GetConfig().CellAt(newState.PlayerPos) {
		t.Error("GetPlayerCell() inconsistent with state.PlayerPos")
	}
}
