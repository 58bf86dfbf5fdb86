package engine

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMovementModeConstants(t *testing.T) {
	if string(ModeSteps) != "steps" {
		t.Errorf("Expected steps, got %s", ModeSteps)
	}
	if string(ModeGeo) != "geo" {
		t.Errorf("Expected geo, got %s", ModeGeo)
	}
}

func TestOutcomeConstants(t *testing.T) {
	tests := []struct {
		outcome  InteractionOutcome
		expected string
	}{
		{OutcomeNoop, "noop"},
		{OutcomePickup, "pickup"},
		{OutcomePlace, "place"},
		{OutcomeMerge, "merge"},
		{OutcomeMismatch, "mismatch"},
		{OutcomeOutOfRange, "out_of_range"},
	}

	for _, test := range tests {
		if string(test.outcome) != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, string(test.outcome))
		}
	}
}

func TestValidationConstants(t *testing.T) {
	tests := []struct {
		name     string
		actual   int
		expected int
	}{
		{"MinInteractionRadius", MinInteractionRadius, 1},
		{"MaxInteractionRadius", MaxInteractionRadius, 32},
		{"MinWinTarget", MinWinTarget, 2},
		{"MaxViewRadius", MaxViewRadius, 24},
		{"DefaultViewRadius", DefaultViewRadius, 5},
	}

	for _, test := range tests {
		if test.actual != test.expected {
			t.Errorf("Expected %s to be %d, got %d", test.name, test.expected, test.actual)
		}
	}
}

func TestGameState_JSONDocument(t *testing.T) {
	state := InitGameStateFromConfig(createValidConfig())
	state.HeldToken = 4
	state.SetToken(CellCoord{I: 2, J: -3}, NoToken)
	state.SetToken(CellCoord{I: 0, J: 1}, 8)
	state.winLatched = true

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Failed to marshal game state: %v", err)
	}
	doc := string(data)

	// The persisted document carries the four core fields under stable names
	for _, field := range []string{`"overrides"`, `"held_token"`, `"player_pos"`, `"mode"`} {
		if !strings.Contains(doc, field) {
			t.Errorf("Expected persisted document to contain %s", field)
		}
	}
	if strings.Contains(doc, "winLatched") || strings.Contains(doc, "win_latched") {
		t.Error("The win latch is derived state and must not be persisted")
	}

	var loaded GameState
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Failed to unmarshal game state: %v", err)
	}
	if loaded.HeldToken != 4 {
		t.Errorf("Expected held token 4, got %d", loaded.HeldToken)
	}
	if value, ok := loaded.Overrides["2:-3"]; !ok || value != NoToken {
		t.Error("Expected explicit-empty override to survive the round trip")
	}
	if value, ok := loaded.Overrides["0:1"]; !ok || value != 8 {
		t.Errorf("Expected override 8 under key 0:1, got %d (present=%v)", value, ok)
	}
	if loaded.winLatched {
		t.Error("Expected the latch to reset on load until Normalize recomputes it")
	}
}

func TestGameState_SparseDocumentUnmarshals(t *testing.T) {
	// Documents written by older builds may omit any field
	var state GameState
	if err := json.Unmarshal([]byte(`{"held_token": 2}`), &state); err != nil {
		t.Fatalf("Failed to unmarshal sparse document: %v", err)
	}
	if state.HeldToken != 2 {
		t.Errorf("Expected held token 2, got %d", state.HeldToken)
	}
	if state.Overrides != nil {
		t.Error("Expected absent overrides to stay nil until normalized")
	}

	state.Normalize(DefaultGameConfig())
	if state.Overrides == nil {
		t.Error("Expected Normalize to initialize the override store")
	}
	if state.Mode != ModeSteps {
		t.Errorf("Expected Normalize to default the mode, got %s", state.Mode)
	}
	if (state.PlayerPos == LatLng{}) {
		t.Error("Expected Normalize to default the position to the origin")
	}
}

func TestActionHistoryEntry_OptionalFieldsOmitted(t *testing.T) {
	entry := ActionHistoryEntry{
		Action:  ActionPosition,
		Success: true,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Failed to marshal history entry: %v", err)
	}
	doc := string(data)

	if strings.Contains(doc, `"direction"`) {
		t.Error("Expected empty direction to be omitted")
	}
	if strings.Contains(doc, `"cell"`) {
		t.Error("Expected nil cell to be omitted")
	}
	if strings.Contains(doc, `"outcome"`) {
		t.Error("Expected empty outcome to be omitted")
	}

	entry.Cell = &CellCoord{I: 1, J: 2}
	entry.Outcome = OutcomePickup
	data, err = json.Marshal(entry)
	if err != nil {
		t.Fatalf("Failed to marshal history entry: %v", err)
	}
	if !strings.Contains(string(data), `"cell":{"i":1,"j":2}`) {
		t.Errorf("Expected cell coordinate in document, got %s", data)
	}
}
