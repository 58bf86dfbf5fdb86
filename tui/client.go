package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// GameState mirrors the server's game state JSON
type GameState struct {
	Overrides    map[string]int `json:"overrides"`
	HeldToken    int            `json:"held_token"`
	PlayerPos    LatLng         `json:"player_pos"`
	Mode         string         `json:"mode"`
	Message      string         `json:"message"`
	Victory      bool           `json:"victory"`
	ConfigName   string         `json:"config_name"`
	TotalActions int            `json:"total_actions"`
	MergeHint    string         `json:"merge_hint"`
}

// LatLng is a geographic coordinate
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CellCoord is a discrete cell index pair
type CellCoord struct {
	I int `json:"i"`
	J int `json:"j"`
}

// Key returns the canonical "i:j" form
func (c CellCoord) Key() string {
	return fmt.Sprintf("%d:%d", c.I, c.J)
}

// ViewCell is one cell of the server's view window
type ViewCell struct {
	Cell     CellCoord `json:"cell"`
	Value    int       `json:"value"`
	Override bool      `json:"override"`
	InRange  bool      `json:"in_range"`
}

// View is the server's view window response
type View struct {
	Radius     int        `json:"radius"`
	PlayerCell CellCoord  `json:"player_cell"`
	Cells      []ViewCell `json:"cells"`
	Render     string     `json:"render"`
}

// InteractResult mirrors the engine's interaction outcome
type InteractResult struct {
	Outcome   string `json:"outcome"`
	Held      int    `json:"held"`
	CellValue int    `json:"cell_value"`
	Won       bool   `json:"won"`
	Message   string `json:"message"`
}

// SessionInfo is the server's session summary
type SessionInfo struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	GameState  *GameState `json:"game_state"`
}

// WSMessage wraps WebSocket pushes from the hub
type WSMessage struct {
	SessionID string          `json:"session_id"`
	GameState *GameState      `json:"game_state,omitempty"`
	Event     string          `json:"event,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// WinData is the payload of a "win" event
type WinData struct {
	Held    int    `json:"held"`
	Message string `json:"message"`
}

// Client talks to the GeoMerge REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given server base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// call performs an HTTP request against the API and decodes the JSON response
func (c *Client) call(method, path string, payload, result interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(data))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// CreateSession creates a new game session with the given config
func (c *Client) CreateSession(configID string) (*SessionInfo, error) {
	payload := map[string]string{}
	if configID != "" {
		payload["config_id"] = configID
	}

	var session SessionInfo
	if err := c.call("POST", "/api/sessions", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetState fetches the current game state
func (c *Client) GetState(sessionID string) (*GameState, error) {
	var state GameState
	if err := c.call("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// GetView fetches the view window around the player
func (c *Client) GetView(sessionID string, radius int) (*View, error) {
	var view View
	path := fmt.Sprintf("/api/sessions/%s/view?radius=%d", sessionID, radius)
	if err := c.call("GET", path, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Move executes a single compass step
func (c *Client) Move(sessionID, direction string) (*GameState, error) {
	var result struct {
		Success   bool       `json:"success"`
		GameState *GameState `json:"game_state"`
		Message   string     `json:"message"`
	}
	payload := map[string]string{"direction": direction}
	if err := c.call("POST", fmt.Sprintf("/api/sessions/%s/move", sessionID), payload, &result); err != nil {
		return nil, err
	}
	return result.GameState, nil
}

// Interact taps a cell to pick up, place, or merge
func (c *Client) Interact(sessionID string, cell CellCoord) (*InteractResult, *GameState, error) {
	var result struct {
		Result    InteractResult `json:"result"`
		GameState *GameState     `json:"game_state"`
	}
	payload := map[string]int{"i": cell.I, "j": cell.J}
	if err := c.call("POST", fmt.Sprintf("/api/sessions/%s/interact", sessionID), payload, &result); err != nil {
		return nil, nil, err
	}
	return &result.Result, result.GameState, nil
}

// ToggleMode switches the session to the other movement mode
func (c *Client) ToggleMode(sessionID string) (*GameState, error) {
	var result struct {
		Success   bool       `json:"success"`
		Mode      string     `json:"mode"`
		GameState *GameState `json:"game_state"`
		Message   string     `json:"message"`
	}
	payload := map[string]bool{"toggle": true}
	if err := c.call("POST", fmt.Sprintf("/api/sessions/%s/mode", sessionID), payload, &result); err != nil {
		return nil, err
	}
	return result.GameState, nil
}

// Reset resets the session to its initial state
func (c *Client) Reset(sessionID string) (*GameState, error) {
	var result struct {
		Message string     `json:"message"`
		State   *GameState `json:"state"`
	}
	if err := c.call("POST", fmt.Sprintf("/api/sessions/%s/reset", sessionID), map[string]string{}, &result); err != nil {
		return nil, err
	}
	return result.State, nil
}

// ConnectWS opens the WebSocket feed for a session
func (c *Client) ConnectWS(sessionID string) (*websocket.Conn, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	scheme := "ws"
	if base.Scheme == "https" {
		scheme = "wss"
	}

	wsURL := url.URL{Scheme: scheme, Host: base.Host, Path: "/ws"}
	q := wsURL.Query()
	q.Set("session", sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
