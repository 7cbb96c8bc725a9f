package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/dokupress/formpdf/internal/config"
	"github.com/dokupress/formpdf/internal/forms"
	"github.com/dokupress/formpdf/internal/mcp"
	"github.com/dokupress/formpdf/internal/render"
)

// Set by build flags.
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	// The version flag short-circuits before pflag parsing.
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	loader, err := forms.NewLoader(cfg.FormsDirectory, cfg.Language)
	if err != nil {
		log.Fatalf("Failed to create form loader: %v", err)
	}

	opts := render.DefaultOptions()
	opts.Compress = cfg.Compress
	opts.MaxImageSize = cfg.MaxImageSize
	renderService := render.NewService(loader, opts, cfg.Verify)

	server, err := mcp.NewServer(cfg, renderService)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, server)
	}
}

// setupLogging keeps stdout clean in stdio mode: the MCP protocol owns
// it, so logs go to stderr, or nowhere unless debug is enabled.
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(os.NewFile(0, os.DevNull))
		}
		return
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// runServerMode runs until a shutdown signal or a server error.
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s, shutting down", sig)
		cancel()
		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}
	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped")
}

// runStdioMode lets the parent process own the lifecycle: the server
// runs until stdin closes.
func runStdioMode(ctx context.Context, server *mcp.Server) {
	if err := server.Run(ctx); err != nil {
		if os.Getenv("DEBUG") != "" {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("formpdf\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
