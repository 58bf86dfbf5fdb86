// Package engine provides the core game logic for GeoMerge.
//
// The engine package implements the game mechanics including:
//   - Mapping continuous geographic positions to discrete grid cells
//   - Deterministic token spawning from a per-cell hash roll
//   - A sparse override store layered over the procedural spawn rule
//   - The pickup/place/merge interaction state machine
//   - Movement sources (discrete steps and continuous location updates)
//   - Game state management and persistence
//   - Configuration loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState represents the current game state,
// while GameConfig defines the world geometry, spawn rule and win target
// loaded from JSON files. Generator produces the deterministic per-cell
// token rolls that make the world reproducible without storing it.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("default")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Move the player and grab what is nearby
//	gameEngine.MoveStep(engine.DirNorth)
//	result := gameEngine.AttemptInteraction(engine.CellCoord{I: 1, J: 2})
//	state := gameEngine.GetState()
//
// Game Rules:
//
// The world is an unbounded grid of geographic cells. Each cell
// deterministically spawns a small token or nothing, so the same world
// greets every restart. The player carries at most one token, picks tokens
// up from nearby cells, places them into empty cells, and merges the held
// token into an equal-valued cell token to double it. Reaching the win
// target fires a win notification; play continues afterwards.
package engine
