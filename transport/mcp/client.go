package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/geomerge/game/engine"
	"github.com/wricardo/geomerge/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"GeoMerge",
		"2.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`GeoMerge - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Walk an unbounded geographic grid, pick up tokens from spawn cells, and merge
equal tokens to double them. Reach the win target (default 16) to win.

AVAILABLE TOOLS:
- game_state: Get current game state
- move: Single step (north/south/east/west) - requires intent explanation
- bulk_move: Multiple steps at once - requires intent explanation
- set_position: Report a geographic position (geo mode only)
- interact: Tap a nearby cell to pick up, place, or merge a token
- set_mode: Switch between steps and geo movement
- view_map: Render the cells around the player
- describe_cell: Get detailed info about one cell (value, range, bounds)
- reset_game: Reset to initial state
- action_history: View past actions
- create_session: Create new game session
- get_session: Get session details
- list_sessions: List all active sessions
- list_configs: List available configurations
- game_instructions: Get comprehensive game instructions and rules

NOTE: The 'intent' parameter on move/bulk_move tools serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the config to use (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Move the player one cell in a compass direction (steps mode)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"north", "south", "east", "west"},
					"description": "Direction to step",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: "Execute multiple steps in sequence",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"moves": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"north", "south", "east", "west"},
					},
					"description": "Array of steps",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this sequence of moves (serves as a rubber duck to help explain your reasoning)",
				},
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Reset before moving",
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_position",
		Description: "Report the player's geographic position (geo mode only)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"lat": map[string]interface{}{
					"type":        "number",
					"description": "Latitude in decimal degrees",
				},
				"lng": map[string]interface{}{
					"type":        "number",
					"description": "Longitude in decimal degrees",
				},
			},
			Required: []string{"session_id", "lat", "lng"},
		},
	}, c.handleSetPosition)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "interact",
		Description: "Tap a cell to pick up, place, or merge a token. The cell must be within the interaction radius of the player's cell.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"i": map[string]interface{}{
					"type":        "integer",
					"description": "Cell index along latitude",
				},
				"j": map[string]interface{}{
					"type":        "integer",
					"description": "Cell index along longitude",
				},
			},
			Required: []string{"session_id", "i", "j"},
		},
	}, c.handleInteract)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_mode",
		Description: "Switch the movement mode between steps and geo, or toggle it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"steps", "geo"},
					"description": "Target movement mode (omit with toggle=true to flip)",
				},
				"toggle": map[string]interface{}{
					"type":        "boolean",
					"description": "Toggle to the other mode instead of naming one",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSetMode)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "view_map",
		Description: "Render the window of cells around the player, showing token values and the interaction range",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"radius": map[string]interface{}{
					"type":        "integer",
					"description": "View radius in cells (default 5, max 24)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleViewMap)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "action_history",
		Description: "Get action history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleActionHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get detailed information about a specific cell: its token value, whether it holds a placed override or a deterministic spawn, and whether it is within interaction range.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"i": map[string]interface{}{
					"type":        "integer",
					"description": "Cell index along latitude",
				},
				"j": map[string]interface{}{
					"type":        "integer",
					"description": "Cell index along longitude",
				},
			},
			Required: []string{"session_id", "i", "j"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	configName, _ := args["config_name"].(string)

	body := map[string]string{}
	if configName != "" {
		body["config_name"] = configName
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Config: %s, Created: %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatSessionInfo(&session)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var state engine.GameState
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatGameState(&state)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)
	intent, _ := args["intent"].(string)
	reset, _ := args["reset"].(bool)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"direction": direction,
		"reset":     reset,
	}

	var result service.MoveResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/move", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatMoveResult(&result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	movesRaw, _ := args["moves"].([]interface{})
	intent, _ := args["intent"].(string)
	reset, _ := args["reset"].(bool)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	// Convert moves to string array
	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	body := map[string]interface{}{
		"moves": moves,
		"reset": reset,
	}

	var result service.BulkMoveResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/bulk-move", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatBulkMoveResult(sessionID, &result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleSetPosition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	lat, _ := args["lat"].(float64)
	lng, _ := args["lng"].(float64)

	body := map[string]interface{}{
		"lat": lat,
		"lng": lng,
	}

	var result service.MoveResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/position", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf("Position updated to (%.6f, %.6f)\n\n%s",
		lat, lng, formatGameState(result.GameState))
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleInteract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	i := intArg(args, "i")
	j := intArg(args, "j")

	body := map[string]interface{}{
		"i": i,
		"j": j,
	}

	var result service.InteractionResponse
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/interact", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := formatInteraction(engine.CellCoord{I: i, J: j}, &result)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleSetMode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	mode, _ := args["mode"].(string)
	toggle, _ := args["toggle"].(bool)

	body := map[string]interface{}{}
	if toggle {
		body["toggle"] = true
	} else {
		body["mode"] = mode
	}

	var result service.ModeResult
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/mode", sessionID), body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := fmt.Sprintf("%s\nMovement mode: %s", result.Message, result.Mode)
	return mcp.NewToolResultText(response), nil
}

func (c *Client) handleViewMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	path := fmt.Sprintf("/api/sessions/%s/view", sessionID)
	if radius, ok := args["radius"].(float64); ok {
		path += fmt.Sprintf("?radius=%d", int(radius))
	}

	var view service.ViewResponse
	err := c.apiCall("GET", path, nil, &view)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := formatView(&view)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleActionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/history%s", sessionID, params), nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Also fetch current segment from live state
	var session service.SessionInfo
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s", sessionID), nil, &session); err != nil {
		// If fetching session fails, still return the history
		result := formatHistory(&history)
		return mcp.NewToolResultText(result), nil
	}

	result := formatHistory(&history)
	result += "\n" + formatCurrentSegment(session.GameState)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall("GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s\n  %s\n  Target: %d, Range: %d, Spawn density: %.0f%%\n\n",
			config.Name, config.Description, config.WinTarget, config.InteractionRadius,
			config.SpawnProbability*100)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🎮 GeoMerge - Complete Instructions

GAME OBJECTIVE:
Explore an unbounded geographic grid, collect tokens, and merge equal tokens to
double them. Grow one token to the win target (default 16) to win.

GAME MECHANICS:
• The world is an infinite grid of cells laid over real coordinates
• Some cells spawn a token (value 1 or 2); spawn locations are deterministic -
  the same cell always holds the same token on a fresh board
• You carry at most ONE token at a time
• Tap a cell within your interaction range to act on it:
  - Empty hand + token in cell  → PICK UP the token
  - Held token + empty cell     → PLACE your token there
  - Held token + EQUAL token    → MERGE: cell empties, your token doubles
  - Held token + different token → MISMATCH: nothing happens
• Merging is the only way to grow a token: 1+1=2, 2+2=4, 4+4=8, 8+8=16

MOVEMENT MODES:
• steps: move cell-by-cell with north/south/east/west commands
• geo: report real coordinates with set_position; steps are disabled
• Switching modes keeps your position; use set_mode with toggle=true to flip

🤖 AI AGENTS - STRATEGY GUIDE:

🗺️ SCOUTING:
- Use view_map to see token values around you; your cell is marked
- Cells inside your interaction range are marked distinctly
- Tokens do not respawn once picked up; plan routes through fresh territory
- The board is deterministic: a cell you saw holding a 2 still holds it later
  unless you picked it up

🧩 MERGE PLANNING:
- To reach 16 from 1s you need 15 more 1-value units; prefer starting from 2s
- Count merges: from a held 2 you need 3 more doublings (4, 8, 16)
- Stage tokens: place a token near a matching one, go fetch its twin, merge
- A placed token stays where you put it - use cells as storage

⚠️ COMMON PITFALLS:
- ❌ Tapping a cell outside your interaction range does nothing
- ❌ Trying to pick up while holding a token does nothing - place it first
- ❌ Merging unequal tokens does nothing - values must match exactly
- ❌ set_position fails in steps mode; switch to geo mode first

🎮 API USAGE BEST PRACTICES:
- Use bulk_move for long walks rather than individual moves
- Check game_state after interactions to confirm held token value
- Use describe_cell to verify a cell before walking to it

MOVEMENT COMMANDS:
- north, south, east, west - Single steps in compass directions
- Bulk moves - Execute multiple steps in sequence for efficiency
- Reset parameter available for fresh starts

VICTORY CONDITION:
- Merge until your held token reaches the win target
- The game announces the win once per crossing; you can keep playing after

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has unique 4-character ID
- Sessions maintain independent state and configuration
- Use session-specific tools for multi-game management

Good luck out there! 🧭`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	sessionID, _ := args["session_id"].(string)
	target := engine.CellCoord{I: intArg(args, "i"), J: intArg(args, "j")}

	// Fetch a view wide enough to include the target cell
	var view service.ViewResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/view?radius=%d", sessionID, engine.MaxViewRadius), nil, &view)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	distance := engine.Chebyshev(view.PlayerCell, target)
	if distance > engine.MaxViewRadius {
		return mcp.NewToolResultError(fmt.Sprintf(
			"Cell %s is %d cells away from you (at %s); describe_cell covers cells within %d",
			target.Key(), distance, view.PlayerCell.Key(), engine.MaxViewRadius)), nil
	}

	var found *engine.ViewCell
	for idx := range view.Cells {
		if view.Cells[idx].Cell == target {
			found = &view.Cells[idx]
			break
		}
	}
	if found == nil {
		return mcp.NewToolResultError(fmt.Sprintf("Cell %s not present in view window", target.Key())), nil
	}

	valueDesc := "empty"
	if found.Value != engine.NoToken {
		valueDesc = fmt.Sprintf("token %d", found.Value)
	}
	source := "deterministic spawn"
	if found.Override {
		source = "player-modified (override)"
	}
	rangeDesc := "OUT of interaction range"
	if found.InRange {
		rangeDesc = "within interaction range - you can tap it"
	}

	result := fmt.Sprintf(`Cell %s:
━━━━━━━━━━━━━━━━━━━━━━━━
Contents: %s
Source: %s
Distance: %d cells (Chebyshev) from your cell %s
Range: %s
Bounds: lat [%.6f, %.6f), lng [%.6f, %.6f)`,
		target.Key(),
		valueDesc,
		source,
		distance, view.PlayerCell.Key(),
		rangeDesc,
		found.Bounds.South, found.Bounds.North,
		found.Bounds.West, found.Bounds.East)

	return mcp.NewToolResultText(result), nil
}

// intArg reads an integer tool argument, which arrives as float64 from JSON
func intArg(args map[string]interface{}, key string) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return 0
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	held := "empty"
	if state.HeldToken != engine.NoToken {
		held = fmt.Sprintf("%d", state.HeldToken)
	}
	result.WriteString(fmt.Sprintf("Position: (%.6f, %.6f) | Held: %s | Mode: %s | Actions: %d\n",
		state.PlayerPos.Lat, state.PlayerPos.Lng, held, state.Mode, state.TotalActions))

	// Decision aids (if available)
	if state.MergeHint != "" {
		result.WriteString(fmt.Sprintf("Hint: %s\n", state.MergeHint))
	}
	if len(state.View) > 0 {
		result.WriteString("\nMap:\n")
		for _, line := range state.View {
			result.WriteString(line + "\n")
		}
	}

	if state.Victory {
		result.WriteString("\n🎉 VICTORY!")
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

func formatMoveResult(result *service.MoveResult) string {
	response := ""
	if result.Success {
		response = "✓ Move successful\n"
	} else {
		response = "✗ Move failed\n"
	}

	// Compact step summary (if available)
	if result.Step != nil {
		s := result.Step
		status := "✗"
		if s.Success {
			status = "✓"
		}
		response += fmt.Sprintf("Step: %s %s→%s %s\n",
			s.Dir, s.FromCell.Key(), s.ToCell.Key(), status)
	}

	if len(result.Events) > 0 {
		response += "Events:\n"
		for _, event := range result.Events {
			response += fmt.Sprintf("- %s: %s\n", event.Type, event.Message)
		}
	}

	response += "\n" + formatGameState(result.GameState)
	return response
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	// Session header
	configName := ""
	if result.GameState != nil {
		configName = result.GameState.ConfigName
	}
	b.WriteString(fmt.Sprintf("Session: %s • Config: %s\n", sessionID, configName))

	// Bulk summary
	b.WriteString(fmt.Sprintf("Executed %d/%d steps\n", result.MovesExecuted, result.RequestedMoves))
	b.WriteString(fmt.Sprintf("Path: %s → %s\n", result.StartCell.Key(), result.EndCell.Key()))
	if result.StoppedReason != "" {
		b.WriteString(fmt.Sprintf("Stopped: %s", result.StoppedReason))
		if result.StoppedOnMove > 0 {
			b.WriteString(fmt.Sprintf(" (step %d)", result.StoppedOnMove))
		}
		b.WriteString("\n")
	}
	if result.Truncated {
		b.WriteString(fmt.Sprintf("Truncated to the first %d steps\n", result.Limit))
	}

	// Events (keep as-is, concise)
	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, event := range result.Events {
			b.WriteString(fmt.Sprintf("- %s: %s\n", event.Type, event.Message))
		}
	}

	// Per-step trace for this call
	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			status := "✗"
			if s.Success {
				status = "✓"
			}
			b.WriteString(fmt.Sprintf("%d. %s %s→%s %s\n",
				s.Idx, s.Dir, s.FromCell.Key(), s.ToCell.Key(), status))
		}
	}

	// Full state at the end (kept for compatibility)
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatInteraction(cell engine.CellCoord, response *service.InteractionResponse) string {
	var b strings.Builder

	r := response.Result
	switch r.Outcome {
	case engine.OutcomePickup:
		b.WriteString(fmt.Sprintf("✓ Picked up token %d from %s\n", r.Held, cell.Key()))
	case engine.OutcomePlace:
		b.WriteString(fmt.Sprintf("✓ Placed token %d at %s\n", r.CellValue, cell.Key()))
	case engine.OutcomeMerge:
		b.WriteString(fmt.Sprintf("✓ Merged at %s - now holding %d\n", cell.Key(), r.Held))
	case engine.OutcomeMismatch:
		b.WriteString(fmt.Sprintf("✗ Mismatch at %s: held %d vs cell %d\n", cell.Key(), r.Held, r.CellValue))
	case engine.OutcomeOutOfRange:
		b.WriteString(fmt.Sprintf("✗ Cell %s is out of interaction range\n", cell.Key()))
	default:
		b.WriteString(fmt.Sprintf("• Nothing happened at %s\n", cell.Key()))
	}

	if r.Message != "" {
		b.WriteString(r.Message + "\n")
	}
	if r.Won {
		b.WriteString("🎉 WIN! Your token reached the target!\n")
	}

	if len(response.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range response.Events {
			b.WriteString(fmt.Sprintf("- %s: %s\n", event.Type, event.Message))
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(response.GameState))
	return b.String()
}

func formatView(view *service.ViewResponse) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("View around %s (radius %d):\n\n", view.PlayerCell.Key(), view.Radius))
	b.WriteString(view.Render)
	if !strings.HasSuffix(view.Render, "\n") {
		b.WriteString("\n")
	}

	// Summarize visible tokens
	tokens := 0
	inRange := 0
	for _, cell := range view.Cells {
		if cell.Value != engine.NoToken {
			tokens++
			if cell.InRange {
				inRange++
			}
		}
	}
	b.WriteString(fmt.Sprintf("\nVisible tokens: %d (%d within reach)\n", tokens, inRange))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Action History (Page %d/%d) — Total (cumulative): %d\n\n",
		history.Page, history.TotalPages, history.TotalActions)

	for i, action := range history.Actions {
		num := (history.Page-1)*history.PageSize + i + 1
		result += formatHistoryLine(num, action)
	}

	return result
}

func formatHistoryLine(num int, entry engine.ActionHistoryEntry) string {
	status := "✓"
	if !entry.Success {
		status = "✗"
	}
	detail := entry.Direction
	if entry.Action == engine.ActionInteract {
		detail = string(entry.Outcome)
		if entry.Cell != nil {
			detail += " @" + entry.Cell.Key()
		}
	}
	if detail != "" {
		detail = " " + detail
	}
	return fmt.Sprintf("%d. %s%s %s [Held: %d]\n", num, entry.Action, detail, status, entry.HeldAfter)
}

func formatCurrentSegment(state *engine.GameState) string {
	if state == nil {
		return "Current Segment: unavailable"
	}
	actions := state.CurrentActions
	total := state.CurrentActionsCount
	header := fmt.Sprintf("Current Segment — Actions: %d\n\n", total)
	if len(actions) == 0 {
		return header + "(no actions in current segment)"
	}
	var b strings.Builder
	b.WriteString(header)
	for i, action := range actions {
		b.WriteString(formatHistoryLine(i+1, action))
	}
	return b.String()
}
