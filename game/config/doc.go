// Package config provides configuration management for GeoMerge.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Configuration validation and verification
//   - Default configuration management
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each configuration defines:
//   - World geometry (origin coordinate, tile size in degrees)
//   - Token spawning (per-cell spawn probability)
//   - Interaction rules (radius in cells, win target value)
//   - Game messages for various events
//
// Available Configurations:
//
// The package ships several presets covering different play styles:
//   - default: Open world with the standard spawn rate
//   - dense: Token-rich world for quick games
//   - sparse: Low spawn rate requiring longer walks
//   - marathon: High win target with a tight interaction radius
//   - sandbox: Large radius and generous spawns for experimenting
//
// Usage:
//
//	manager := config.NewManager("configs")
//
//	// Load specific configuration
//	gameConfig, err := manager.LoadConfig("dense")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get default configuration
//	defaultConfig := manager.GetDefault()
//
//	// List available configurations
//	configs, err := manager.ListConfigs()
//
// Validation:
//
// All configurations are validated for:
//   - World geometry within geographic bounds
//   - Spawn probability and interaction radius ranges
//   - A power-of-two win target reachable by merging
//   - Required message templates and their format verbs
package config
