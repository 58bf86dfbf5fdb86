package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/wricardo/geomerge/game/engine"
	"github.com/wricardo/geomerge/game/service"
)

// redisKeyPrefix namespaces session keys so the instance can share a Redis
// database with other applications
const redisKeyPrefix = "geomerge:session:"

// RedisPersistence implements SessionPersistence on a Redis database, one
// JSON value per session key. Deployments that run several server instances
// against shared storage use it instead of the file backend.
type RedisPersistence struct {
	client        *redis.Client
	configManager service.ConfigManager
	ttl           time.Duration
}

// NewRedisPersistence connects to Redis and returns a session persistence
// layer backed by it. A zero ttl keeps sessions until they are deleted.
func NewRedisPersistence(addr, password string, db int, ttl time.Duration, configManager service.ConfigManager) (*RedisPersistence, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return &RedisPersistence{
		client:        client,
		configManager: configManager,
		ttl:           ttl,
	}, nil
}

// Save persists a session as one JSON value under its session key
func (rp *RedisPersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	configID, err := rp.getConfigIDFromName(session.Config.Name)
	if err != nil {
		return fmt.Errorf("failed to get config ID: %w", err)
	}

	data := PersistedSessionData{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		GameState:      session.Engine.GetState(),
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	ctx := context.Background()
	if err := rp.client.Set(ctx, rp.key(session.ID), jsonData, rp.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session to Redis: %w", err)
	}

	return nil
}

// Load retrieves a session from its Redis key and rebuilds the engine around
// the persisted state
func (rp *RedisPersistence) Load(id string) (*service.Session, error) {
	ctx := context.Background()

	jsonData, err := rp.client.Get(ctx, rp.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session from Redis: %w", err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}

	// A missing config degrades to the default rather than making the save
	// unloadable
	gameConfig, err := rp.configManager.LoadConfig(data.ConfigName)
	if err != nil {
		gameConfig = rp.configManager.GetDefault()
	}

	gameEngine, err := engine.NewEngine(gameConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}

	gameStateJSON, err := json.Marshal(data.GameState)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game state: %w", err)
	}

	var gameState engine.GameState
	if err := json.Unmarshal(gameStateJSON, &gameState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}

	if err := gameEngine.SetState(&gameState); err != nil {
		return nil, fmt.Errorf("failed to set game state: %w", err)
	}

	return &service.Session{
		ID:             data.ID,
		Engine:         gameEngine,
		Config:         gameConfig,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// Delete removes a session key
func (rp *RedisPersistence) Delete(id string) error {
	ctx := context.Background()

	removed, err := rp.client.Del(ctx, rp.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	if removed == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// ListAll returns the IDs of every persisted session
func (rp *RedisPersistence) ListAll() ([]string, error) {
	ctx := context.Background()

	var sessionIDs []string
	iter := rp.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		sessionIDs = append(sessionIDs, strings.TrimPrefix(iter.Val(), redisKeyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan session keys: %w", err)
	}

	return sessionIDs, nil
}

// Exists checks whether a session key is present
func (rp *RedisPersistence) Exists(id string) bool {
	ctx := context.Background()
	count, err := rp.client.Exists(ctx, rp.key(id)).Result()
	return err == nil && count > 0
}

// Close releases the underlying Redis connection
func (rp *RedisPersistence) Close() error {
	return rp.client.Close()
}

// key builds the namespaced Redis key for a session ID. IDs are lowercased so
// lookups stay case-insensitive like the in-memory manager.
func (rp *RedisPersistence) key(id string) string {
	return redisKeyPrefix + strings.ToLower(id)
}

// getConfigIDFromName returns the config ID (filename without extension) from display name
func (rp *RedisPersistence) getConfigIDFromName(displayName string) (string, error) {
	configs, err := rp.configManager.ListConfigs()
	if err != nil {
		return "", fmt.Errorf("failed to list configs: %w", err)
	}

	for _, config := range configs {
		if config.Name == displayName {
			return config.ConfigID, nil
		}
	}

	// If not found, assume the displayName is already the config ID
	return displayName, nil
}
