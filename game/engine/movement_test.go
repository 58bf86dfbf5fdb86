package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestStepSource_AlwaysEnables(t *testing.T) {
	src := &stepSource{}
	if src.Mode() != ModeSteps {
		t.Errorf("Expected steps mode, got %s", src.Mode())
	}
	if err := src.Enable(); err != nil {
		t.Fatalf("Step source must always enable, got %v", err)
	}
	if !src.active {
		t.Error("Expected source active after Enable")
	}
	src.Disable()
	if src.active {
		t.Error("Expected source inactive after Disable")
	}
}

func TestGeoSource_ProbeGatesEnable(t *testing.T) {
	src := &geoSource{}
	if src.Mode() != ModeGeo {
		t.Errorf("Expected geo mode, got %s", src.Mode())
	}

	// No probe installed means availability is assumed
	if err := src.Enable(); err != nil {
		t.Fatalf("Expected enable without probe to succeed, got %v", err)
	}
	src.Disable()

	src.probe = func() error { return errors.New("permission denied") }
	err := src.Enable()
	if err == nil {
		t.Fatal("Expected enable to fail when the probe fails")
	}
	if !strings.Contains(err.Error(), "geolocation unavailable") {
		t.Errorf("Expected wrapped availability error, got %v", err)
	}
	if src.active {
		t.Error("Expected source to stay inactive after failed Enable")
	}

	src.probe = func() error { return nil }
	if err := src.Enable(); err != nil {
		t.Fatalf("Expected enable with passing probe to succeed, got %v", err)
	}
	if !src.active {
		t.Error("Expected source active after successful Enable")
	}
}

func TestEngine_ExactlyOneSourceActive(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	steps := engine.sources[ModeSteps].(*stepSource)
	geo := engine.sources[ModeGeo].(*geoSource)

	if !steps.active || geo.active {
		t.Errorf("Expected only the step source active at start, steps=%v geo=%v", steps.active, geo.active)
	}

	if err := engine.SetMovementMode(ModeGeo); err != nil {
		t.Fatalf("Failed to switch to geo: %v", err)
	}
	if steps.active || !geo.active {
		t.Errorf("Expected only the geo source active after switch, steps=%v geo=%v", steps.active, geo.active)
	}

	if err := engine.SetMovementMode(ModeSteps); err != nil {
		t.Fatalf("Failed to switch back to steps: %v", err)
	}
	if !steps.active || geo.active {
		t.Errorf("Expected only the step source active after switching back, steps=%v geo=%v", steps.active, geo.active)
	}
}

func TestEngine_FailedSwitchRestoresPreviousSource(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	engine.SetGeoProbe(func() error { return errors.New("no fix") })

	steps := engine.sources[ModeSteps].(*stepSource)
	geo := engine.sources[ModeGeo].(*geoSource)

	if err := engine.SetMovementMode(ModeGeo); err == nil {
		t.Fatal("Expected switch to unavailable geo source to fail")
	}
	if !steps.active {
		t.Error("Expected step source re-enabled after failed switch")
	}
	if geo.active {
		t.Error("Expected geo source inactive after failed switch")
	}
}

func TestApplyStep_AllDirections(t *testing.T) {
	config := createTestConfig()

	tests := []struct {
		direction string
		expected  CellCoord
	}{
		{DirNorth, CellCoord{I: 1, J: 0}},
		{DirSouth, CellCoord{I: -1, J: 0}},
		{DirEast, CellCoord{I: 0, J: 1}},
		{DirWest, CellCoord{I: 0, J: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.direction, func(t *testing.T) {
			state := InitGameStateFromConfig(config)
			if !state.ApplyStep(tt.direction, config) {
				t.Fatalf("Expected step %s to succeed", tt.direction)
			}
			if got := config.CellAt(state.PlayerPos); got != tt.expected {
				t.Errorf("Expected cell %s after stepping %s, got %s", tt.expected.Key(), tt.direction, got.Key())
			}
			if state.PlayerPos != config.CellCenter(tt.expected) {
				t.Errorf("Expected player on the cell center, got %+v", state.PlayerPos)
			}
		})
	}
}

func TestApplyStep_LongWalkStaysOnCells(t *testing.T) {
	// Cell centers keep long walks free of boundary drift
	config := createTestConfig()
	state := InitGameStateFromConfig(config)

	for i := 0; i < 250; i++ {
		state.ApplyStep(DirNorth, config)
	}
	if got := config.CellAt(state.PlayerPos); got != (CellCoord{I: 250, J: 0}) {
		t.Errorf("Expected cell 250:0 after 250 steps north, got %s", got.Key())
	}

	for i := 0; i < 250; i++ {
		state.ApplyStep(DirWest, config)
	}
	if got := config.CellAt(state.PlayerPos); got != (CellCoord{I: 250, J: -250}) {
		t.Errorf("Expected cell 250:-250 after 250 steps west, got %s", got.Key())
	}
}

func TestApplyStep_InvalidDirection(t *testing.T) {
	config := createTestConfig()
	state := InitGameStateFromConfig(config)
	posBefore := state.PlayerPos

	if state.ApplyStep("up", config) {
		t.Error("Expected step with unknown direction to fail")
	}
	if state.PlayerPos != posBefore {
		t.Error("Expected failed step to leave the position unchanged")
	}
	if !strings.Contains(state.Message, "up") {
		t.Errorf("Expected message to name the bad direction, got %q", state.Message)
	}
}

func TestApplyPosition_ReplacesPosition(t *testing.T) {
	config := createTestConfig()
	state := InitGameStateFromConfig(config)

	fix := LatLng{Lat: 37.7793, Lng: -122.4150}
	state.ApplyPosition(fix, config)

	if state.PlayerPos != fix {
		t.Errorf("Expected position %+v, got %+v", fix, state.PlayerPos)
	}
	if got := config.CellAt(state.PlayerPos); got != (CellCoord{I: 4, J: 4}) {
		t.Errorf("Expected cell 4:4 after fix, got %s", got.Key())
	}
	if !strings.Contains(state.Message, "4:4") {
		t.Errorf("Expected message to name the new cell, got %q", state.Message)
	}
}

func TestAddActionToHistory_StampsEntries(t *testing.T) {
	config := createTestConfig()
	state := InitGameStateFromConfig(config)
	state.HeldToken = 2

	state.AddActionToHistory(ActionHistoryEntry{
		Action:    ActionMove,
		Direction: DirNorth,
		Success:   true,
	})
	state.AddActionToHistory(ActionHistoryEntry{
		Action:  ActionInteract,
		Outcome: OutcomeNoop,
	})

	if len(state.History) != 2 || state.TotalActions != 2 {
		t.Fatalf("Expected 2 history entries and total 2, got %d and %d", len(state.History), state.TotalActions)
	}
	if len(state.CurrentActions) != 2 || state.CurrentActionsCount != 2 {
		t.Fatalf("Expected current segment to mirror history, got %d and %d", len(state.CurrentActions), state.CurrentActionsCount)
	}

	first, second := state.History[0], state.History[1]
	if first.ActionNumber != 1 || second.ActionNumber != 2 {
		t.Errorf("Expected sequential action numbers 1 and 2, got %d and %d", first.ActionNumber, second.ActionNumber)
	}
	if first.Timestamp == 0 {
		t.Error("Expected entries to be timestamped")
	}
	if first.Mode != ModeSteps {
		t.Errorf("Expected entries stamped with the active mode, got %s", first.Mode)
	}
	if first.HeldAfter != 2 {
		t.Errorf("Expected entries stamped with the resulting held token, got %d", first.HeldAfter)
	}
	if first.ToPosition != state.PlayerPos {
		t.Error("Expected entries stamped with the resulting position")
	}
}

func TestEngine_HistoryRecordsFailedActions(t *testing.T) {
	engine, err := NewEngine(createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	engine.MoveStep("sideways")
	last := engine.GetLastAction()
	if last == nil {
		t.Fatal("Expected failed step to be recorded")
	}
	if last.Success {
		t.Error("Expected failed step recorded as unsuccessful")
	}
	if last.Action != ActionMove || last.Direction != "sideways" {
		t.Errorf("Expected move entry with the attempted direction, got %s %s", last.Action, last.Direction)
	}
}
