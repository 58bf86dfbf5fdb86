// Package service provides the business logic layer for the GeoMerge server.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration management and loading
//   - Movement, interaction and mode-switch processing
//   - Session lifecycle management
//   - Action history tracking
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine, providing session isolation, configuration management, and
// business logic orchestration. Each session maintains its own game engine
// instance with independent state: its own override store, held token, player
// position and movement mode. Every mutating operation persists the session
// synchronously before returning, keeping stored state consistent with what
// clients see.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	// Create a new session
//	sessionInfo, err := gameService.CreateSession(ctx, "dense")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Step north and try to pick up a token two cells away
//	result, err := gameService.Move(ctx, sessionInfo.ID, "north", false)
//	resp, err := gameService.Interact(ctx, sessionInfo.ID, engine.CellCoord{I: 2, J: 0})
//
// Session Management:
//
// Sessions are identified by unique 4-character IDs and maintain independent
// game state. Multiple sessions can run concurrently with different
// configurations. Sessions track creation time, last access time, and action
// history for analytics and debugging.
package service
