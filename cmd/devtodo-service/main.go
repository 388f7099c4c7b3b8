// Package main provides the entry point for devtodo-service.
//
// devtodo-service is a phase-aware todo service providing:
// - REST API for programmatic access
// - Server-rendered web UI
// - MCP server for AI assistant integration
//
// Usage:
//
//	devtodo-service                 Start the service (default)
//	devtodo-service serve           Start the service
//	devtodo-service version         Show version
//	devtodo-service status          Show service status
//	devtodo-service stop            Stop the running service
//	devtodo-service mcp             Start MCP server (stdio mode)
package main

import (
	"fmt"
	"os"

	"github.com/ternarybob/devtodo/internal/api"
	"github.com/ternarybob/devtodo/internal/config"
	"github.com/ternarybob/devtodo/internal/logger"
	"github.com/ternarybob/devtodo/internal/mcp"
	"github.com/ternarybob/devtodo/internal/service"
	"github.com/ternarybob/devtodo/internal/store"
	"github.com/ternarybob/devtodo/internal/todo"
)

// version is set via -ldflags at build time
var version = "dev"

func main() {
	// Set version in API package
	api.SetVersion(version)

	if len(os.Args) < 2 {
		// Default: start service
		if err := cmdServe(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var err error
	switch os.Args[1] {
	case "serve", "start":
		err = cmdServe()
	case "version", "-v", "--version":
		cmdVersion()
	case "status":
		err = cmdStatus()
	case "stop":
		err = cmdStop()
	case "mcp", "mcp-server":
		err = cmdMCP()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`devtodo-service - Phase-aware todo service with skill recommendations

Usage:
  devtodo-service [command]

Commands:
  serve         Start the service (default)
  version       Show version information
  status        Show service status
  stop          Stop the running service
  mcp           Start MCP server (stdio mode for AI assistants)
  help          Show this help

Configuration:
  Config file: ~/.devtodo/config.yaml (or $APPDATA/devtodo on Windows)

Examples:
  devtodo-service                       Start the service
  devtodo-service mcp                   Start MCP server
  curl localhost:8430/health            Check service health
  curl localhost:8430/api/todos         List todos`)
}

func cmdVersion() {
	fmt.Printf("devtodo-service version %s\n", version)
}

func cmdServe() error {
	// Load configuration
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Check if already running
	if running, pid := service.IsRunning(cfg); running {
		return fmt.Errorf("service already running (PID %d)", pid)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	logger.SetupLogger(cfg)
	defer logger.Stop()

	// Open todo store
	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	svc := todo.NewService(st)

	// Create API server
	apiServer := api.NewServer(cfg, svc)

	// Create daemon
	daemon := service.NewDaemon(cfg)

	// Start service
	if err := daemon.Start(apiServer.Handler()); err != nil {
		return fmt.Errorf("start daemon: %w", err)
	}

	fmt.Printf("devtodo-service v%s started on %s\n", version, cfg.Address())
	fmt.Printf("Web UI: http://%s/\n", cfg.Address())
	fmt.Printf("API: http://%s/api/todos\n", cfg.Address())

	// Wait for shutdown signal
	daemon.Wait()

	return nil
}

func cmdStatus() error {
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	running, pid := service.IsRunning(cfg)
	if running {
		fmt.Printf("devtodo-service: running (PID %d)\n", pid)
		fmt.Printf("Address: %s\n", cfg.Address())
	} else {
		fmt.Println("devtodo-service: stopped")
	}

	return nil
}

func cmdStop() error {
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	running, pid := service.IsRunning(cfg)
	if !running {
		fmt.Println("devtodo-service is not running")
		return nil
	}

	fmt.Printf("Stopping devtodo-service (PID %d)...\n", pid)
	if err := service.StopRunning(cfg); err != nil {
		return err
	}

	fmt.Println("devtodo-service stopped")
	return nil
}

func cmdMCP() error {
	// Load config, falling back to defaults
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		cfg = config.DefaultConfig()
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	// MCP talks JSON-RPC on stdout; keep logs in the file writer only
	cfg.Logging.Output = []string{"file"}
	logger.SetupLogger(cfg)
	defer logger.Stop()

	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	svc := todo.NewService(st)

	mcpServer := mcp.NewServer(svc, version)
	return mcpServer.ServeStdio()
}
