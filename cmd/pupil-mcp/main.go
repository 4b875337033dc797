package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ironsheep/pupil-detect-mcp/internal/config"
	"github.com/ironsheep/pupil-detect-mcp/internal/logging"
	"github.com/ironsheep/pupil-detect-mcp/internal/pipeline"
	"github.com/ironsheep/pupil-detect-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// envConfig names a JSON properties document applied at startup.
const envConfig = "PUPIL_MCP_CONFIG"

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("pupil-detect-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("pupil-detect-mcp - MCP server for pupil ellipse detection")
			fmt.Println()
			fmt.Println("Usage: pupil-detect-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from ./.env):")
			fmt.Println("  PUPIL_MCP_LOG_LEVEL=debug       Log level (default info)")
			fmt.Println("  PUPIL_MCP_LOG_FILE=/path.log    Also log to a rotating file")
			fmt.Println("  PUPIL_MCP_CONFIG=/path.json     Initial properties, {\"2d\": {...}}")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			return
		}
	}

	// A missing .env is normal; the environment may already be set.
	_ = godotenv.Load()

	logger := logging.Default()
	logger.WithFields(logging.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("starting pupil MCP server")

	store := config.NewStore()
	if path := os.Getenv(envConfig); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			logger.WithError(err).WithField("path", path).Fatal("failed to load properties")
		}
		store = loaded
		logger.WithField("path", path).Info("properties loaded")
	}

	server.Version = Version
	detector := pipeline.New(pipeline.WithStore(store), pipeline.WithLogger(logger))
	srv := server.New(server.WithDetector(detector), server.WithLogger(logger))
	if err := srv.Run(); err != nil {
		logger.WithError(err).Fatal("server error")
	}
}
