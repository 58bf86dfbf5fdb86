package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenValue is the numeric value of a token occupying a cell or held by the
// player. Merging doubles values, so every token is a power of two. NoToken
// marks the empty state; it is not a legal token value.
type TokenValue int

// NoToken is the empty state of a cell or of the player's hand
const NoToken TokenValue = 0

// MovementMode identifies which movement source drives the player position
type MovementMode string

const (
	ModeSteps MovementMode = "steps"
	ModeGeo   MovementMode = "geo"

	// Validation constants
	MinTileDegrees       = 0.000001
	MaxTileDegrees       = 1.0
	MinInteractionRadius = 1
	MaxInteractionRadius = 32
	MinWinTarget         = 2
	MaxSpawnProbability  = 0.95
	MaxViewRadius        = 24
	DefaultViewRadius    = 5
	MaxBulkSteps         = 50
	WebSocketBufferSize  = 256
)

// Compass directions accepted by step movement
const (
	DirNorth = "north"
	DirSouth = "south"
	DirEast  = "east"
	DirWest  = "west"
)

// Action kinds recorded in the game history
const (
	ActionMove     = "move"
	ActionPosition = "position"
	ActionInteract = "interact"
	ActionMode     = "mode"
	ActionReset    = "reset"
)

// CellCoord identifies a grid cell by integer indices relative to the world
// origin. I follows latitude, J follows longitude.
type CellCoord struct {
	I int `json:"i"`
	J int `json:"j"`
}

// Key returns the canonical "i:j" string form of the coordinate, used as the
// override map key and on the wire
func (c CellCoord) Key() string {
	return strconv.Itoa(c.I) + ":" + strconv.Itoa(c.J)
}

// ParseCellKey parses the canonical "i:j" key form back into a CellCoord
func ParseCellKey(key string) (CellCoord, error) {
	left, right, ok := strings.Cut(key, ":")
	if !ok {
		return CellCoord{}, fmt.Errorf("invalid cell key %q: missing separator", key)
	}
	i, err := strconv.Atoi(left)
	if err != nil {
		return CellCoord{}, fmt.Errorf("invalid cell key %q: %w", key, err)
	}
	j, err := strconv.Atoi(right)
	if err != nil {
		return CellCoord{}, fmt.Errorf("invalid cell key %q: %w", key, err)
	}
	return CellCoord{I: i, J: j}, nil
}

// LatLng is a continuous geographic position in decimal degrees
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is the rectangular geographic region covered by a single cell
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	Origin            LatLng       `json:"origin"`
	TileDegrees       float64      `json:"tile_degrees"`
	InteractionRadius int          `json:"interaction_radius"`
	SpawnProbability  float64      `json:"spawn_probability"`
	WinTarget         TokenValue   `json:"win_target"`
	StartMode         MovementMode `json:"start_mode"`
	Messages          struct {
		Welcome     string `json:"welcome"`
		Pickup      string `json:"pickup"`
		Place       string `json:"place"`
		Merge       string `json:"merge"`
		Mismatch    string `json:"mismatch"`
		OutOfRange  string `json:"out_of_range"`
		NothingHere string `json:"nothing_here"`
		Win         string `json:"win"`
		ModeSwitch  string `json:"mode_switch"`
	} `json:"messages"`
}

// InteractionOutcome classifies the result of an interaction attempt
type InteractionOutcome string

const (
	OutcomeNoop       InteractionOutcome = "noop"
	OutcomePickup     InteractionOutcome = "pickup"
	OutcomePlace      InteractionOutcome = "place"
	OutcomeMerge      InteractionOutcome = "merge"
	OutcomeMismatch   InteractionOutcome = "mismatch"
	OutcomeOutOfRange InteractionOutcome = "out_of_range"
)

// InteractResult describes the outcome of a single interaction attempt
type InteractResult struct {
	Outcome   InteractionOutcome `json:"outcome"`
	Changed   bool               `json:"changed"`
	Held      TokenValue         `json:"held"`
	CellValue TokenValue         `json:"cell_value"`
	Won       bool               `json:"won"`
	Message   string             `json:"message"`
}

// ViewCell describes one cell in a view window around the player
type ViewCell struct {
	Cell     CellCoord  `json:"cell"`
	Value    TokenValue `json:"value"`
	Override bool       `json:"override"`
	InRange  bool       `json:"in_range"`
	Bounds   Bounds     `json:"bounds"`
}

// GameState represents the complete game state
type GameState struct {
	Overrides    map[string]TokenValue `json:"overrides"`
	HeldToken    TokenValue            `json:"held_token"`
	PlayerPos    LatLng                `json:"player_pos"`
	Mode         MovementMode          `json:"mode"`
	Message      string                `json:"message"`
	Victory      bool                  `json:"victory"`
	ConfigName   string                `json:"config_name"`
	History      []ActionHistoryEntry  `json:"action_history"`
	TotalActions int                   `json:"total_actions"`

	// CurrentActions tracks only the actions since the last reset. It mirrors
	// History entries but gets cleared on reset while History remains cumulative.
	CurrentActions      []ActionHistoryEntry `json:"current_actions"`
	CurrentActionsCount int                  `json:"current_actions_count"`

	// View and MergeHint are decision aids stamped by the service layer before
	// a state leaves the process. They are derived, never authoritative.
	View      []string `json:"view,omitempty"`
	MergeHint string   `json:"merge_hint,omitempty"`

	// winLatched is true while the held token sits at or above the win target.
	// It suppresses repeat win notifications until the value drops below the
	// target again, and is recomputed when state is loaded.
	winLatched bool
}

// ActionHistoryEntry represents a single entry in the game action history
type ActionHistoryEntry struct {
	Action       string             `json:"action"`
	Direction    string             `json:"direction,omitempty"`
	Cell         *CellCoord         `json:"cell,omitempty"`
	Outcome      InteractionOutcome `json:"outcome,omitempty"`
	FromPosition LatLng             `json:"from_position"`
	ToPosition   LatLng             `json:"to_position"`
	HeldBefore   TokenValue         `json:"held_before"`
	HeldAfter    TokenValue         `json:"held_after"`
	Mode         MovementMode       `json:"mode"`
	Timestamp    int64              `json:"timestamp"`
	Success      bool               `json:"success"`
	ActionNumber int                `json:"action_number"`
}
