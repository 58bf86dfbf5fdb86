// Package session provides session management for the GeoMerge server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session lifecycle management
//   - Concurrent access control
//   - Session cleanup and expiration
//   - Pluggable persistence backends (JSON files, Redis)
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Session represents an individual game world with its own engine instance
// and metadata like creation time and last access time.
//
// Session Identifiers:
//
// Sessions use 4-character hexadecimal IDs for easy reference, matched
// case-insensitively. The manager provides collision-resistant generation
// using cryptographic randomness.
//
// Persistence:
//
// When a SessionPersistence backend is configured, every mutation of a
// session is written through synchronously by the service layer, so a crash
// loses at most the in-flight action. FilePersistence stores one pretty
// printed JSON file per session; RedisPersistence stores one JSON value per
// key for deployments with shared storage. Malformed persisted data is
// treated as absence and skipped with a warning, never a fatal condition.
//
// Usage:
//
//	manager := session.NewManager()
//
//	// Create a new session
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sessionID)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// List all active sessions
//	sessions := manager.List()
//
// Cleanup:
//
// Sessions can be explicitly deleted or may expire based on inactivity.
// The manager provides cleanup methods for removing stale sessions and
// freeing resources.
package session
