package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/geomerge/game/engine"
	"github.com/wricardo/geomerge/pkg/logger"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Load configuration
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if strings.Contains(err.Error(), "configuration not found") {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v", configName, configIDs)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations", configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	// Determine the config identifier to return - prefer the input configName if provided,
	// otherwise look up the config_id by display name
	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	stampDecisionAids(session)

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     configID, // Return the config_id, not the display name
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}, nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	stampDecisionAids(session)

	return &SessionInfo{
		ID:             session.ID,
		ConfigName:     s.getConfigID(session.Config.Name), // Return config_id consistently
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
		GameConfig:     session.Config,
	}, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		result = append(result, &SessionInfo{
			ID:             sess.ID,
			ConfigName:     s.getConfigID(sess.Config.Name), // Return config_id consistently
			CreatedAt:      sess.CreatedAt,
			LastAccessedAt: sess.LastAccessedAt,
			GameState:      sess.Engine.GetState(),
			GameConfig:     sess.Config,
		})
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single step move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Get session
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	// Update last accessed time
	s.sessions.UpdateLastAccessed(sessionID)

	// Collect events
	events := []GameEvent{}

	// Handle reset if requested
	if reset {
		sess.Engine.Reset()
		events = append(events, GameEvent{
			Type:      "reset",
			Message:   "Game reset to initial state",
			Timestamp: time.Now(),
		})
	}

	// Execute step
	prevPos := sess.Engine.GetPlayerPosition()
	prevCell := sess.Engine.GetPlayerCell()
	success := sess.Engine.MoveStep(direction)
	newPos := sess.Engine.GetPlayerPosition()
	state := sess.Engine.GetState()

	// Build result
	result := &MoveResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
		Events:    events,
	}

	if success {
		newCell := sess.Engine.GetPlayerCell()
		result.Events = append(result.Events, GameEvent{
			Type:      "move",
			Message:   fmt.Sprintf("Moved %s to cell %s", direction, newCell.Key()),
			Timestamp: time.Now(),
			Position:  newPos,
		})
		result.Step = &StepInfo{
			Idx:      1,
			Dir:      direction,
			From:     prevPos,
			To:       newPos,
			FromCell: prevCell,
			ToCell:   newCell,
			Success:  true,
		}
	}

	stampDecisionAids(sess)

	// Auto-save session after move
	if err := s.sessions.Save(sessionID); err != nil {
		logger.Log.WithError(err).WithField("session_id", sessionID).Warn("failed to persist session after move")
	}

	return result, nil
}

// BulkMove executes multiple step moves in sequence
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	// Update last accessed
	s.sessions.UpdateLastAccessed(sessionID)

	// Initialize result and capture start snapshot
	state := sess.Engine.GetState()
	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
		StartPos:       state.PlayerPos,
		StartCell:      sess.Engine.GetPlayerCell(),
		Message:        state.Message,
	}

	// Handle reset
	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, GameEvent{
			Type:      "reset",
			Message:   "Game reset to initial state",
			Timestamp: time.Now(),
		})
	}

	// Limit moves to prevent abuse
	if len(moves) > engine.MaxBulkSteps {
		result.Truncated = true
		result.Limit = engine.MaxBulkSteps
		moves = moves[:engine.MaxBulkSteps]
	}

	// Execute moves
	for i, move := range moves {
		prevPos := sess.Engine.GetPlayerPosition()
		prevCell := sess.Engine.GetPlayerCell()
		success := sess.Engine.MoveStep(move)

		if !success {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d rejected: %s", i+1, move)
			result.StoppedOnMove = i + 1
			if sess.Engine.GetMovementMode() != engine.ModeSteps {
				result.StopReasonCode = "steps_disabled"
			} else {
				result.StopReasonCode = "invalid_direction"
			}
			break
		}

		result.MovesExecuted++
		newPos := sess.Engine.GetPlayerPosition()
		newCell := sess.Engine.GetPlayerCell()

		result.Events = append(result.Events, GameEvent{
			Type:      "move",
			Message:   fmt.Sprintf("Moved %s to cell %s", move, newCell.Key()),
			Timestamp: time.Now(),
			Position:  newPos,
		})
		result.Steps = append(result.Steps, StepInfo{
			Idx:      i + 1,
			Dir:      move,
			From:     prevPos,
			To:       newPos,
			FromCell: prevCell,
			ToCell:   newCell,
			Success:  true,
		})
	}

	// Finalize snapshots
	endState := sess.Engine.GetState()
	result.GameState = endState
	result.EndPos = endState.PlayerPos
	result.EndCell = sess.Engine.GetPlayerCell()
	result.Message = endState.Message

	stampDecisionAids(sess)

	// Auto-save session after bulk moves
	if err := s.sessions.Save(sessionID); err != nil {
		logger.Log.WithError(err).WithField("session_id", sessionID).Warn("failed to persist session after bulk moves")
	}

	return result, nil
}

// SetPosition replaces the player position with a continuous location fix
func (s *gameServiceImpl) SetPosition(ctx context.Context, sessionID string, pos engine.LatLng) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	success := sess.Engine.UpdatePosition(pos)
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success:   success,
		GameState: state,
		Message:   state.Message,
	}
	if success {
		result.Events = []GameEvent{{
			Type:      "position",
			Message:   state.Message,
			Timestamp: time.Now(),
			Position:  pos,
		}}
	}

	stampDecisionAids(sess)

	if err := s.sessions.Save(sessionID); err != nil {
		logger.Log.WithError(err).WithField("session_id", sessionID).Warn("failed to persist session after position update")
	}

	return result, nil
}

// SetMode switches the session to the given movement mode. An unavailable
// movement source is reported in-band; the session stays in its previous mode.
func (s *gameServiceImpl) SetMode(ctx context.Context, sessionID string, mode engine.MovementMode) (*ModeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	if mode != engine.ModeSteps && mode != engine.ModeGeo {
		return nil, fmt.Errorf("unknown movement mode %q", mode)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	if err := sess.Engine.SetMovementMode(mode); err != nil {
		return &ModeResult{
			Success:   false,
			Mode:      sess.Engine.GetMovementMode(),
			GameState: sess.Engine.GetState(),
			Message:   err.Error(),
		}, nil
	}

	state := sess.Engine.GetState()
	stampDecisionAids(sess)

	if err := s.sessions.Save(sessionID); err != nil {
		logger.Log.WithError(err).WithField("session_id", sessionID).Warn("failed to persist session after mode change")
	}

	return &ModeResult{
		Success:   true,
		Mode:      sess.Engine.GetMovementMode(),
		GameState: state,
		Message:   state.Message,
	}, nil
}

// ToggleMode switches the session to the other movement mode
func (s *gameServiceImpl) ToggleMode(ctx context.Context, sessionID string) (*ModeResult, error) {
	s.mu.RLock()
	sess, err := s.sessions.Get(sessionID)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	next := engine.ModeGeo
	if sess.Engine.GetMovementMode() == engine.ModeGeo {
		next = engine.ModeSteps
	}
	return s.SetMode(ctx, sessionID, next)
}

// Interact runs the interaction state machine against a target cell
func (s *gameServiceImpl) Interact(ctx context.Context, sessionID string, cell engine.CellCoord) (*InteractionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	result := sess.Engine.AttemptInteraction(cell)
	state := sess.Engine.GetState()
	stampDecisionAids(sess)

	// Auto-save session after interaction
	if err := s.sessions.Save(sessionID); err != nil {
		logger.Log.WithError(err).WithField("session_id", sessionID).Warn("failed to persist session after interaction")
	}

	return &InteractionResponse{
		Result:    result,
		GameState: state,
		Events:    interactionEvents(result, cell),
	}, nil
}

// GetView returns a window of cells around the player
func (s *gameServiceImpl) GetView(ctx context.Context, sessionID string, radius int) (*ViewResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	if radius <= 0 {
		radius = engine.DefaultViewRadius
	}
	if radius > engine.MaxViewRadius {
		radius = engine.MaxViewRadius
	}

	return &ViewResponse{
		Radius:     radius,
		PlayerCell: sess.Engine.GetPlayerCell(),
		Cells:      sess.Engine.ViewWindow(radius),
		Render:     sess.Engine.RenderView(radius),
	}, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	state := sess.Engine.Reset()
	stampDecisionAids(sess)

	// Auto-save session after reset
	if err := s.sessions.Save(sessionID); err != nil {
		logger.Log.WithError(err).WithField("session_id", sessionID).Warn("failed to persist session after reset")
	}

	return state, nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	stampDecisionAids(sess)
	return sess.Engine.GetState(), nil
}

// GetActionHistory returns paginated action history
func (s *gameServiceImpl) GetActionHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetActionHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	// Get the slice of actions
	var actions []engine.ActionHistoryEntry
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			actions = append(actions, history[i])
		}
	} else {
		// Normal chronological order
		if start < total {
			actions = history[start:end]
		}
	}

	// Ensure actions is not nil
	if actions == nil {
		actions = []engine.ActionHistoryEntry{}
	}

	return &HistoryResponse{
		Actions:      actions,
		TotalActions: total,
		Page:         opts.Page,
		PageSize:     opts.Limit,
		TotalPages:   totalPages,
		HasNext:      opts.Page < totalPages,
		HasPrevious:  opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// interactionEvents generates events from an interaction result
func interactionEvents(result engine.InteractResult, cell engine.CellCoord) []GameEvent {
	target := cell
	events := []GameEvent{{
		Type:      string(result.Outcome),
		Message:   result.Message,
		Timestamp: time.Now(),
		Cell:      &target,
	}}

	if result.Won {
		events = append(events, GameEvent{
			Type:      "win",
			Message:   result.Message,
			Timestamp: time.Now(),
			Cell:      &target,
		})
	}

	return events
}

// stampDecisionAids enriches a session's state with the rendered view around
// the player and a hint about the distance to the win target
func stampDecisionAids(sess *Session) {
	state := sess.Engine.GetState()
	state.View = localView(sess.Engine, engine.DefaultViewRadius)
	state.MergeHint = mergeHint(state, sess.Config)
}

// localView renders the window around the player as one string per row
func localView(e *engine.GameEngine, radius int) []string {
	return strings.Split(strings.TrimRight(e.RenderView(radius), "\n"), "\n")
}

// mergeHint describes how far the held token is from the win target
func mergeHint(state *engine.GameState, config *engine.GameConfig) string {
	if state.HeldToken == engine.NoToken {
		return "hand empty, pick up a token to start merging"
	}

	merges := engine.MergesToWin(state.HeldToken, config.WinTarget)
	switch {
	case merges < 0:
		return ""
	case merges == 0:
		return "held token at or above the win target"
	case merges == 1:
		return "one merge from the win target"
	default:
		return fmt.Sprintf("%d merges from the win target", merges)
	}
}
