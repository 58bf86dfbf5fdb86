// Package mcp provides Model Context Protocol server implementation for GeoMerge.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for game operations
//   - Session-aware command execution
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - game_state: Get current game state with a rendered map
//   - move: Execute single compass step
//   - bulk_move: Execute multiple steps in sequence
//   - set_position: Report a geographic position (geo mode)
//   - interact: Tap a cell to pick up, place, or merge a token
//   - set_mode: Switch or toggle the movement mode
//   - view_map: Render the cells around the player
//   - describe_cell: Inspect one cell's value, source, and range
//   - reset_game: Reset game to initial state
//   - action_history: Retrieve action history with pagination
//   - create_session: Create new game session with config selection
//   - get_session: Get specific session details
//   - list_sessions: List all active sessions
//   - list_configs: List available game configurations
//   - game_instructions: Full rules and strategy guide
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: HTTP endpoint for remote MCP integration
//
// Architecture:
//
// The Client is a thin proxy: every tool call is translated into a REST
// request against the API server, and the JSON response is formatted into
// agent-friendly text. Game logic never runs in this package.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	srv := client.GetMCPServer()
//	server.ServeStdio(srv)
//
// AI Integration:
//
// The MCP interface enables AI agents to:
//   - Autonomously play the game
//   - Develop and test merge strategies
//   - Analyze board states and make decisions
//   - Manage multiple game sessions
//   - Learn from action history
package mcp
