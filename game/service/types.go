package service

import (
	"time"

	"github.com/wricardo/geomerge/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// MoveResult contains the result of a movement operation
type MoveResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	Step      *StepInfo         `json:"step,omitempty"`
}

// BulkMoveResult contains the result of multiple step moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // invalid_direction|steps_disabled
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos  engine.LatLng    `json:"start_pos"`
	EndPos    engine.LatLng    `json:"end_pos"`
	StartCell engine.CellCoord `json:"start_cell"`
	EndCell   engine.CellCoord `json:"end_cell"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	Message string `json:"message,omitempty"`
}

// StepInfo is a compact record for each executed move in a bulk call
type StepInfo struct {
	Idx      int              `json:"idx"`
	Dir      string           `json:"dir"`
	From     engine.LatLng    `json:"from"`
	To       engine.LatLng    `json:"to"`
	FromCell engine.CellCoord `json:"from_cell"`
	ToCell   engine.CellCoord `json:"to_cell"`
	Success  bool             `json:"success"`
}

// InteractionResponse contains the result of an interaction attempt
type InteractionResponse struct {
	Result    engine.InteractResult `json:"result"`
	GameState *engine.GameState     `json:"game_state"`
	Events    []GameEvent           `json:"events,omitempty"`
}

// ModeResult contains the result of a movement mode change
type ModeResult struct {
	Success   bool                `json:"success"`
	Mode      engine.MovementMode `json:"mode"`
	GameState *engine.GameState   `json:"game_state"`
	Message   string              `json:"message"`
}

// ViewResponse contains a window of cells around the player
type ViewResponse struct {
	Radius     int               `json:"radius"`
	PlayerCell engine.CellCoord  `json:"player_cell"`
	Cells      []engine.ViewCell `json:"cells"`
	Render     string            `json:"render"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string            `json:"type"` // "move", "position", "pickup", "place", "merge", "mismatch", "out_of_range", "win", "mode", "reset"
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Cell      *engine.CellCoord `json:"cell,omitempty"`
	Position  engine.LatLng     `json:"position,omitempty"`
}

// HistoryOptions configures action history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated action history
type HistoryResponse struct {
	Actions      []engine.ActionHistoryEntry `json:"actions"`
	TotalActions int                         `json:"total_actions"`
	Page         int                         `json:"page"`
	PageSize     int                         `json:"page_size"`
	TotalPages   int                         `json:"total_pages"`
	HasNext      bool                        `json:"has_next"`
	HasPrevious  bool                        `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename          string            `json:"filename"`
	ConfigID          string            `json:"config_id"` // The identifier to use for session creation
	Name              string            `json:"name"`      // Display name
	Description       string            `json:"description"`
	WinTarget         engine.TokenValue `json:"win_target"`
	InteractionRadius int               `json:"interaction_radius"`
	SpawnProbability  float64           `json:"spawn_probability"`
}
