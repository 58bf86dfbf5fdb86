package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidateGameConfig validates a game configuration for correctness and winnability
func ValidateGameConfig(config *GameConfig) error {
	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate world geometry
	if config.TileDegrees < MinTileDegrees || config.TileDegrees > MaxTileDegrees {
		return fmt.Errorf("config validation: tile_degrees must be between %g and %g, got %g",
			float64(MinTileDegrees), float64(MaxTileDegrees), config.TileDegrees)
	}
	if config.Origin.Lat < -90 || config.Origin.Lat > 90 {
		return fmt.Errorf("config validation: origin.lat must be between -90 and 90, got %g", config.Origin.Lat)
	}
	if config.Origin.Lng < -180 || config.Origin.Lng > 180 {
		return fmt.Errorf("config validation: origin.lng must be between -180 and 180, got %g", config.Origin.Lng)
	}

	// Validate interaction radius
	if config.InteractionRadius < MinInteractionRadius || config.InteractionRadius > MaxInteractionRadius {
		return fmt.Errorf("config validation: interaction_radius must be between %d and %d, got %d",
			MinInteractionRadius, MaxInteractionRadius, config.InteractionRadius)
	}

	// Validate spawn rule
	if config.SpawnProbability <= 0 || config.SpawnProbability > MaxSpawnProbability {
		return fmt.Errorf("config validation: spawn_probability must be in (0, %g], got %g",
			float64(MaxSpawnProbability), config.SpawnProbability)
	}

	// Validate win target: merging doubles token values, so only a power of
	// two is ever reachable by the held token
	if config.WinTarget < MinWinTarget {
		return fmt.Errorf("config validation: win_target must be at least %d, got %d", MinWinTarget, config.WinTarget)
	}
	if !IsPowerOfTwo(config.WinTarget) {
		return fmt.Errorf("config validation: win_target must be a power of two, got %d", config.WinTarget)
	}

	// Validate movement mode
	if config.StartMode != "" && config.StartMode != ModeSteps && config.StartMode != ModeGeo {
		return fmt.Errorf("config validation: start_mode must be %q or %q, got %q", ModeSteps, ModeGeo, config.StartMode)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("config validation: messages.welcome is required")
	}
	if config.Messages.Win == "" {
		return fmt.Errorf("config validation: messages.win is required")
	}
	if config.Messages.Pickup == "" {
		return fmt.Errorf("config validation: messages.pickup is required")
	}
	if config.Messages.Merge == "" {
		return fmt.Errorf("config validation: messages.merge is required")
	}

	// Validate format strings
	if !strings.Contains(config.Messages.Pickup, "%d") {
		return fmt.Errorf("config validation: messages.pickup must contain %%d for the token value")
	}
	if !strings.Contains(config.Messages.Merge, "%d") {
		return fmt.Errorf("config validation: messages.merge must contain %%d for the merged value")
	}
	if !strings.Contains(config.Messages.Win, "%d") {
		return fmt.Errorf("config validation: messages.win must contain %%d for the held value")
	}
	if config.Messages.Place != "" && !strings.Contains(config.Messages.Place, "%d") {
		return fmt.Errorf("config validation: messages.place must contain %%d for the placed value")
	}
	if config.Messages.Mismatch != "" && strings.Count(config.Messages.Mismatch, "%d") < 2 {
		return fmt.Errorf("config validation: messages.mismatch must contain %%d twice for the held and cell values")
	}
	if config.Messages.ModeSwitch != "" && !strings.Contains(config.Messages.ModeSwitch, "%s") {
		return fmt.Errorf("config validation: messages.mode_switch must contain %%s for the mode name")
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		// If filename starts with "configs/", replace with CONFIG_DIR
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Validate the loaded configuration
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a game configuration by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	// Add .json extension if not present
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	configPath := filepath.Join("configs", configName)

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	// Load and parse the config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %v", configName, err)
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %v", configName, err)
	}

	// Validate the config
	if err := ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config '%s': %v", configName, err)
	}

	return &config, nil
}

// DefaultGameConfig returns the built-in configuration used when none is
// provided. It always passes validation.
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:              "default",
		Description:       "Open world with the standard spawn rate",
		Origin:            LatLng{Lat: 37.7749, Lng: -122.4194},
		TileDegrees:       0.0001,
		InteractionRadius: 3,
		SpawnProbability:  DefaultSpawnProbability,
		WinTarget:         16,
		StartMode:         ModeSteps,
	}
	config.Messages.Welcome = "Welcome to GeoMerge! Collect nearby tokens and merge equal pairs."
	config.Messages.Pickup = "Picked up a %d token"
	config.Messages.Place = "Placed your %d token"
	config.Messages.Merge = "Merged into a %d token!"
	config.Messages.Mismatch = "Your %d token doesn't match the %d in that cell"
	config.Messages.OutOfRange = "That cell is too far away to reach"
	config.Messages.NothingHere = "Nothing here to pick up"
	config.Messages.Win = "You win! Your token reached %d!"
	config.Messages.ModeSwitch = "Movement mode switched to %s"
	return config
}

// InitGameStateFromConfig creates a new game state using the provided
// configuration. A nil config falls back to the built-in default.
func InitGameStateFromConfig(config *GameConfig) *GameState {
	if config == nil {
		config = DefaultGameConfig()
	}

	mode := config.StartMode
	if mode != ModeSteps && mode != ModeGeo {
		mode = ModeSteps
	}

	return &GameState{
		Overrides:           make(map[string]TokenValue),
		HeldToken:           NoToken,
		PlayerPos:           config.Origin,
		Mode:                mode,
		Message:             config.Messages.Welcome,
		Victory:             false,
		ConfigName:          config.Name,
		History:             []ActionHistoryEntry{},
		TotalActions:        0,
		CurrentActions:      []ActionHistoryEntry{},
		CurrentActionsCount: 0,
	}
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
