// Package api provides HTTP REST API handlers for the GeoMerge server.
//
// The api package implements:
//   - RESTful endpoints for game operations
//   - Session management endpoints
//   - Configuration listing and creation
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session (optional config_id in body)
//   - GET /api/sessions - List all sessions (sort/order/limit query params)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete a session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/move - Single step {direction, reset?}
//   - POST /api/sessions/{id}/bulk-move - Sequence of steps {moves, reset?}
//   - POST /api/sessions/{id}/position - Report a geo position {lat, lng}
//   - POST /api/sessions/{id}/interact - Tap a cell {i, j}
//   - POST /api/sessions/{id}/mode - Switch movement mode {mode} or {toggle}
//   - GET /api/sessions/{id}/view - Window of cells around the player (?radius=)
//   - POST /api/sessions/{id}/reset - Reset the game
//   - GET /api/sessions/{id}/history - Paginated action history
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - POST /api/configs - Save a new configuration
//   - GET /api/configs/{name} - Get a specific configuration
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Mutating endpoints return the updated
// game_state alongside the operation result, and push the same state to
// WebSocket clients connected to the session.
//
// Interact (POST /api/sessions/{id}/interact)
//
//	Request:  { "i": 3, "j": -2 }
//	Response:
//	  - result: { outcome, changed, held, cell_value, won, message }
//	    outcome is one of noop|pickup|place|merge|mismatch|out_of_range
//	  - game_state: full state after the attempt
//	  - events: pickup/place/merge events, plus a win event when the held
//	    token newly reaches the target
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api
