// Package websocket provides WebSocket transport for the GeoMerge server.
//
// The websocket package implements:
//   - Real-time state push to connected clients
//   - Session-aware WebSocket connections
//   - Automatic state broadcasting on changes
//   - One-shot win event delivery
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a dedicated
// goroutine that manages reading, writing, and cleanup.
//
// Message Protocol:
//
// Messages are JSON-encoded with the following structure:
//   - state_update: {session_id, event: "state_update", game_state: {...}}
//     pushed after every mutating action; the client treats it as a redraw
//     trigger and recomputes its visible tokens from the state
//   - win: {session_id, event: "win", data: {held, message}} pushed once per
//     win-target crossing
//
// Session Integration:
//
// WebSocket connections are session-aware. Clients specify their session ID
// via query parameter (?session=ab12) when establishing the connection.
// State updates are broadcast only to clients connected to the same session.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	// after a mutation
//	hub.BroadcastToSession(sessionID, state)
//
// Connection Lifecycle:
//
// 1. Client connects with session ID
// 2. Connection registered with hub
// 3. Client receives state updates and win events
// 4. Disconnection (or a full send buffer) triggers cleanup
//
// Concurrency:
//
// The hub and client handlers are designed for concurrent operation.
// Multiple clients can connect, disconnect, and receive messages
// simultaneously without blocking each other. Slow clients are dropped
// rather than allowed to block a broadcast.
package websocket
