// Command geomerge starts the GeoMerge server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, config directory, the server settings file, debug
// logging, version output, and optional ngrok tunneling for easy external
// access during development.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/geomerge/api"
	"github.com/wricardo/geomerge/game/config"
	"github.com/wricardo/geomerge/game/service"
	"github.com/wricardo/geomerge/game/session"
	"github.com/wricardo/geomerge/pkg/logger"
	"github.com/wricardo/geomerge/transport/mcp"
	"github.com/wricardo/geomerge/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "GeoMerge Server"
)

// Configuration flags control how the server starts and which services are enabled.
var (
	port         = flag.Int("port", 0, "HTTP server port (overrides settings file)")
	host         = flag.String("host", "", "HTTP server host (overrides settings file)")
	configDir    = flag.String("config-dir", getConfigDirDefault(), "Directory containing game configurations")
	settingsFile = flag.String("settings", getSettingsDefault(), "Server settings YAML file")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Show version information")
	ngrokEnabled = flag.Bool("ngrok", false, "Enable ngrok tunnel")
	ngrokAuth    = flag.String("ngrok-auth", "", "Ngrok auth token (or use NGROK_AUTHTOKEN env var)")
	ngrokDomain  = flag.String("ngrok-domain", "", "Custom ngrok domain (optional)")
)

// getConfigDirDefault returns the default configuration directory.
// It honors the CONFIG_DIR environment variable, then falls back to empty
// (meaning: use the settings file value).
func getConfigDirDefault() string {
	return os.Getenv("CONFIG_DIR")
}

// getSettingsDefault returns the default server settings file path.
// It honors the SERVER_SETTINGS environment variable, then falls back to
// "server.yaml" (which may not exist; defaults are used in that case).
func getSettingsDefault() string {
	if path := os.Getenv("SERVER_SETTINGS"); path != "" {
		return path
	}
	return "server.yaml"
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [MODE]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "%s v%s\n\n", AppName, Version)
		fmt.Fprintf(os.Stderr, "Available modes:\n")
		fmt.Fprintf(os.Stderr, "  server, http     Run HTTP server with API, WebSocket, and MCP endpoint (default)\n")
		fmt.Fprintf(os.Stderr, "  stdio-mcp        Run MCP stdio server with internal HTTP server\n")
		fmt.Fprintf(os.Stderr, "  mcp-stdio        Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "  mcp              Alias for stdio-mcp\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                    # Run HTTP server on default port 8080\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -port 9090         # Run HTTP server on port 9090\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s stdio-mcp          # Run MCP stdio server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s mcp -port 9090     # Run MCP stdio server with internal HTTP on port 9090\n", os.Args[0])
	}
}

// main parses flags, loads settings, initializes services, and starts the selected mode.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			logger.Log.WithError(err).Warn("Error loading .env file")
		}
	} else {
		logger.Log.Info("Loaded environment variables from .env file")
	}

	logger.Init()

	flag.Parse()

	// Show version if requested
	if *version {
		fmt.Printf("%s v%s\n", AppName, Version)
		os.Exit(0)
	}

	if *debug {
		logger.Log.SetLevel(logrus.DebugLevel)
	}

	// Load server settings, then apply flag overrides
	cfg, err := LoadServerConfig(*settingsFile)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load server settings")
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *configDir != "" {
		cfg.ConfigDir = *configDir
	}

	// Determine mode from command
	args := flag.Args()
	mode := "server" // default
	if len(args) > 0 {
		mode = args[0]
	}

	logger.Log.WithFields(logrus.Fields{
		"version": Version,
		"mode":    mode,
	}).Infof("Starting %s", AppName)

	// Initialize services
	gameService, err := initializeServices(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize services")
	}

	switch mode {
	case "stdio-mcp", "mcp-stdio", "mcp":
		// Run MCP stdio server with internal HTTP server
		runStdioMCPWithInternalServer(cfg, gameService)
		return

	case "server", "http":
		// Run HTTP server with API, WebSocket, and MCP endpoint
		runHTTPServer(cfg, gameService)

	default:
		logger.Log.Fatalf("Unknown mode: %s. Use 'server' (default) or 'stdio-mcp'", mode)
	}
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled (via flag, settings, or environment), it also provisions a public tunnel.
func runHTTPServer(cfg *ServerConfig, gameService service.GameService) {
	// Create WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Create API server
	apiServer := api.NewServer(gameService, hub)

	// Setup HTTP server address
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	// Create MCP client for /mcp endpoint
	baseURL := fmt.Sprintf("http://%s", addr)
	mcpClient := mcp.NewClient(baseURL)

	// Create main router that combines API and MCP
	mainRouter := http.NewServeMux()

	// Mount API server at root
	mainRouter.Handle("/", apiServer)

	// Always add MCP endpoint for HTTP server
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	// Start regular HTTP server
	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Log.Infof("HTTP server listening on %s", addr)
		logger.Log.Infof("REST API: http://%s/api", addr)
		logger.Log.Infof("WebSocket: ws://%s/ws?session=<session_id>", addr)
		logger.Log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Check if ngrok should be enabled (from flag, settings, or environment)
	ngrokShouldRun := *ngrokEnabled || cfg.Ngrok.Enabled
	if !ngrokShouldRun {
		if envEnabled := os.Getenv("NGROK_ENABLED"); envEnabled == "true" || envEnabled == "1" {
			ngrokShouldRun = true
		}
	}

	// Start ngrok tunnel if enabled
	if ngrokShouldRun {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Get auth token from flag or environment (support both naming conventions)
			authToken := *ngrokAuth
			if authToken == "" {
				authToken = os.Getenv("NGROK_AUTHTOKEN")
				if authToken == "" {
					authToken = os.Getenv("NGROK_AUTH_TOKEN") // Also support underscore version
				}
			}

			if authToken == "" {
				logger.Log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
				return
			}

			logger.Log.Info("Starting ngrok tunnel...")

			// Get domain from flag, settings, or environment
			domain := *ngrokDomain
			if domain == "" {
				domain = cfg.Ngrok.Domain
			}
			if domain == "" {
				domain = os.Getenv("NGROK_DOMAIN")
			}

			// Configure ngrok endpoint
			var tunnel ngrokConfig.Tunnel
			if domain != "" {
				tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
				logger.Log.Infof("Using custom ngrok domain: %s", domain)
			} else {
				tunnel = ngrokConfig.HTTPEndpoint()
			}

			// Start ngrok tunnel
			tun, err := ngrok.Listen(ctx,
				tunnel,
				ngrok.WithAuthtoken(authToken),
			)
			if err != nil {
				logger.Log.WithError(err).Error("Failed to start ngrok tunnel")
				return
			}
			defer func() {
				if err := tun.Close(); err != nil {
					logger.Log.WithError(err).Error("Failed to close ngrok tunnel")
				}
			}()

			ngrokURL := tun.URL()
			logger.Log.Infof("Ngrok tunnel established: %s", ngrokURL)
			logger.Log.Infof("  REST API (ngrok): %s/api", ngrokURL)
			logger.Log.Infof("  WebSocket (ngrok): %s/ws?session=<session_id>", ngrokURL)
			logger.Log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)
			logger.Log.Infof("  Game UI (ngrok): %s/", ngrokURL)

			// Serve HTTP through ngrok tunnel
			if err := http.Serve(tun, mainRouter); err != nil && err != http.ErrServerClosed {
				logger.Log.WithError(err).Error("Ngrok server error")
			}
			logger.Log.Info("Ngrok tunnel closed")
		}()
	}

	// Wait for shutdown signal
	sig := <-stop
	logger.Log.Infof("Received signal: %v. Shutting down...", sig)
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("HTTP server shutdown error")
	}

	// Wait for all goroutines to finish
	wg.Wait()
	logger.Log.Info("Server stopped")
}

// initializeServices wires session/config managers and the game service.
// The persistence backend (file or redis) is chosen from the server settings.
// It also starts background routines to prune stale sessions.
func initializeServices(cfg *ServerConfig) (service.GameService, error) {
	// Create config manager first (needed for persistence)
	configManager, err := config.NewManager(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	// Create session persistence for the configured backend
	var persistence session.SessionPersistence
	switch cfg.Persistence.Backend {
	case "redis":
		redisCfg := cfg.Persistence.Redis
		persistence, err = session.NewRedisPersistence(redisCfg.Addr, redisCfg.Password, redisCfg.DB, redisCfg.TTL, configManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session persistence: %w", err)
		}
		logger.Log.WithField("addr", redisCfg.Addr).Info("Using redis session persistence")
	default:
		persistence, err = session.NewFilePersistence(cfg.Persistence.SessionsDir, configManager)
		if err != nil {
			return nil, fmt.Errorf("failed to create file session persistence: %w", err)
		}
		logger.Log.WithField("dir", cfg.Persistence.SessionsDir).Info("Using file session persistence")
	}

	// Create session manager with persistence
	sessionManager := session.NewManagerWithPersistence(persistence)

	// Load persisted sessions on startup
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Log.WithError(err).Warn("Failed to load persisted sessions")
	}

	// Create game service
	gameService := service.NewGameService(sessionManager, configManager)

	// Start session cleanup routine
	if cfg.Cleanup.Interval > 0 {
		go sessionCleanupRoutine(sessionManager, cfg.Cleanup.Interval, cfg.Cleanup.MaxAge)
	}

	// Start filesystem sync routine (file backend only; redis has server-side TTL)
	if cfg.Persistence.Backend != "redis" {
		go filesystemSyncRoutine(sessionManager, persistence)
	}

	return gameService, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed
// within the provided retention window.
func sessionCleanupRoutine(manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		removed := manager.CleanupExpiredSessions(maxAge)
		if removed > 0 {
			logger.Log.Infof("Cleaned up %d expired sessions", removed)
		}
	}
}

// filesystemSyncRoutine periodically syncs in-memory sessions with filesystem state.
// It removes sessions from memory when their corresponding files are deleted.
func filesystemSyncRoutine(manager *session.Manager, persistence session.SessionPersistence) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		// Skip if no persistence configured
		if persistence == nil {
			continue
		}

		// Get all sessions from memory
		memorySessions := manager.List()

		// Check each memory session against filesystem
		pruned := 0
		for _, sess := range memorySessions {
			if !persistence.Exists(sess.ID) {
				// File deleted, remove from memory
				if err := manager.DeleteFromMemory(sess.ID); err == nil {
					pruned++
					logger.Log.Infof("Pruned session %s from memory (file deleted)", sess.ID)
				}
			}
		}

		if pruned > 0 {
			logger.Log.Infof("Filesystem sync: pruned %d orphaned sessions from memory", pruned)
		}
	}
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It tries to reuse an external API at the configured address; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runStdioMCPWithInternalServer(cfg *ServerConfig, gameService service.GameService) {
	var baseURL string
	var httpServer *http.Server
	var listener net.Listener

	// First, try to connect to an external API server
	externalURL := fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
	logger.Log.Infof("Checking for external API server at %s...", externalURL)

	// Test if external server is running
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		logger.Log.Infof("External API server found at %s, using it for MCP", externalURL)
		baseURL = externalURL
	} else {
		// No external server found, start internal one
		logger.Log.Info("No external API server found, starting internal HTTP server")

		// Start internal HTTP server on a random available port
		listener, err = net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to get available port")
		}

		// Get the actual port that was assigned
		internalPort := listener.Addr().(*net.TCPAddr).Port
		internalAddr := fmt.Sprintf("127.0.0.1:%d", internalPort)

		logger.Log.Infof("Starting internal HTTP server on %s for MCP stdio", internalAddr)

		// Create WebSocket hub
		hub := websocket.NewHub()
		go hub.Run()

		// Create API server
		apiServer := api.NewServer(gameService, hub)

		// Start internal HTTP server in background
		httpServer = &http.Server{
			Handler: apiServer,
		}

		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				logger.Log.WithError(err).Error("Internal HTTP server error")
			}
		}()

		// Wait a moment for the server to be ready
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	// Create MCP client pointing to the selected server
	mcpClient := mcp.NewClient(baseURL)

	// Run MCP stdio server (blocking)
	if baseURL == externalURL {
		logger.Log.Info("MCP stdio server ready (using external HTTP server)")
	} else {
		logger.Log.Info("MCP stdio server ready (using internal HTTP server)")
	}

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		logger.Log.WithError(err).Fatal("MCP stdio server error")
	}
}
