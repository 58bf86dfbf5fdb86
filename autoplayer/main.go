// Command autoplayer plays a GeoMerge session to the win target over the
// REST API. It builds the winning token by recursive doubling: pick up a
// spawned token, stash half-built tokens in empty cells, and merge pairs
// until the hand reaches the target.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type CellCoord struct {
	I int `json:"i"`
	J int `json:"j"`
}

func (c CellCoord) Key() string {
	return fmt.Sprintf("%d:%d", c.I, c.J)
}

type GameState struct {
	HeldToken    int    `json:"held_token"`
	Mode         string `json:"mode"`
	Message      string `json:"message"`
	Victory      bool   `json:"victory"`
	ConfigName   string `json:"config_name"`
	TotalActions int    `json:"total_actions"`
}

type GameConfig struct {
	Name              string  `json:"name"`
	InteractionRadius int     `json:"interaction_radius"`
	SpawnProbability  float64 `json:"spawn_probability"`
	WinTarget         int     `json:"win_target"`
}

type SessionResponse struct {
	ID         string      `json:"id"`
	ConfigName string      `json:"config_name"`
	GameState  *GameState  `json:"game_state"`
	GameConfig *GameConfig `json:"game_config"`
}

type ViewCell struct {
	Cell     CellCoord `json:"cell"`
	Value    int       `json:"value"`
	Override bool      `json:"override"`
	InRange  bool      `json:"in_range"`
}

type ViewResponse struct {
	Radius     int        `json:"radius"`
	PlayerCell CellCoord  `json:"player_cell"`
	Cells      []ViewCell `json:"cells"`
}

type BulkMoveResponse struct {
	MovesExecuted  int        `json:"moves_executed"`
	Success        bool       `json:"success"`
	GameState      *GameState `json:"game_state"`
	StopReasonCode string     `json:"stop_reason_code"`
	EndCell        CellCoord  `json:"end_cell"`
}

type InteractResponse struct {
	Result struct {
		Outcome   string `json:"outcome"`
		Held      int    `json:"held"`
		CellValue int    `json:"cell_value"`
		Won       bool   `json:"won"`
		Message   string `json:"message"`
	} `json:"result"`
	GameState *GameState `json:"game_state"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) post(path string, payload, result interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.client.Post(c.baseURL+path, "application/json", body)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("post %s failed: %s - %s", path, resp.Status, string(data))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response from %s: %w", path, err)
		}
	}
	return nil
}

func (c *Client) get(path string, result interface{}) error {
	resp, err := c.client.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("get %s failed: %s - %s", path, resp.Status, string(data))
	}
	return json.Unmarshal(data, result)
}

func (c *Client) CreateSession(configID string) (*SessionResponse, error) {
	payload := map[string]string{}
	if configID != "" {
		payload["config_id"] = configID
	}

	var session SessionResponse
	if err := c.post("/api/sessions", payload, &session); err != nil {
		return nil, err
	}
	c.sessionID = session.ID
	return &session, nil
}

func (c *Client) GetSession() (*SessionResponse, error) {
	var session SessionResponse
	if err := c.get(fmt.Sprintf("/api/sessions/%s", c.sessionID), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) GetView(radius int) (*ViewResponse, error) {
	var view ViewResponse
	path := fmt.Sprintf("/api/sessions/%s/view?radius=%d", c.sessionID, radius)
	if err := c.get(path, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *Client) BulkMove(directions []string) (*BulkMoveResponse, error) {
	var result BulkMoveResponse
	payload := map[string]interface{}{"moves": directions}
	path := fmt.Sprintf("/api/sessions/%s/bulk-move", c.sessionID)
	if err := c.post(path, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Interact(cell CellCoord) (*InteractResponse, error) {
	var result InteractResponse
	payload := map[string]int{"i": cell.I, "j": cell.J}
	path := fmt.Sprintf("/api/sessions/%s/interact", c.sessionID)
	if err := c.post(path, payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type ResetResponse struct {
	Message string     `json:"message"`
	State   *GameState `json:"state"`
}

func (c *Client) Reset() (*GameState, error) {
	var result ResetResponse
	path := fmt.Sprintf("/api/sessions/%s/reset", c.sessionID)
	if err := c.post(path, nil, &result); err != nil {
		return nil, err
	}
	return result.State, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configID := flag.String("config", "", "Game configuration (default, dense, sparse, ...)")
	continueSession := flag.String("continue", "", "Resume playing an existing session by ID")
	maxActions := flag.Int("max-actions", 5000, "Maximum actions before giving up")
	viewRadius := flag.Int("view-radius", 10, "View radius used when scanning for tokens")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between actions in milliseconds (0 = no delay)")
	flag.Parse()

	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	// Check for saved session ID
	sessionFile := ".session"
	savedSessionID := ""

	if *continueSession != "" {
		savedSessionID = *continueSession
	} else {
		if data, err := os.ReadFile(sessionFile); err == nil {
			savedSessionID = string(bytes.TrimSpace(data))
		}
	}

	var session *SessionResponse
	var err error

	if savedSessionID != "" {
		client.sessionID = savedSessionID
		log.Printf("🔄 Resuming session: %s", client.sessionID)
		session, err = client.GetSession()
		if err != nil {
			log.Printf("⚠️  Failed to resume session (may be expired): %v", err)
			log.Printf("Creating new session...")
			savedSessionID = ""
		}
	}

	if savedSessionID == "" {
		session, err = client.CreateSession(*configID)
		if err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("✨ Session created: %s", client.sessionID)

		if err := os.WriteFile(sessionFile, []byte(client.sessionID), 0644); err != nil {
			log.Printf("Warning: Failed to save session ID: %v", err)
		}
	}

	if session.GameConfig == nil {
		log.Fatalf("Session has no configuration attached")
	}
	log.Printf("Config: %s, win target: %d, interaction radius: %d, spawn probability: %g",
		session.GameConfig.Name, session.GameConfig.WinTarget,
		session.GameConfig.InteractionRadius, session.GameConfig.SpawnProbability)

	// Start every run from a clean board
	log.Printf("🔄 Resetting game state...")
	if _, err := client.Reset(); err != nil {
		log.Fatalf("Failed to reset game: %v", err)
	}

	planner := NewPlanner(client, session.GameConfig, *viewRadius, *maxActions)
	planner.verbose = *verbose
	planner.delay = time.Duration(*delayMs) * time.Millisecond

	start := time.Now()
	won, err := planner.Play()
	if err != nil {
		log.Printf("❌ Run aborted: %v", err)
		log.Printf("Session: %s", client.sessionID)
		os.Exit(1)
	}

	if won {
		log.Printf("\n🎉 VICTORY! Reached %d in %d actions (%s)",
			session.GameConfig.WinTarget, planner.actions, time.Since(start).Round(time.Millisecond))
		log.Printf("Session: %s", client.sessionID)
		os.Exit(0)
	}

	log.Printf("\n❌ Gave up after %d actions", planner.actions)
	log.Printf("Session: %s", client.sessionID)
	os.Exit(1)
}
