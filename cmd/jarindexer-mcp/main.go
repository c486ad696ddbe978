package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"jarindexer/internal/config"
	"jarindexer/internal/presentation/mcp"
)

var version = "dev"

func main() {
	var (
		baseDir     = pflag.String("base-dir", "", "storage base directory (default ~/.jar-indexer)")
		configPath  = pflag.String("config", "", "path to config.yaml")
		showVersion = pflag.Bool("version", false, "print version and exit")
	)
	pflag.Parse()

	if *showVersion {
		fmt.Println("jarindexer-mcp", version)
		return
	}

	// MCP stdio transport owns stdout for newline-delimited JSON-RPC.
	// All diagnostics go to stderr.
	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	if *baseDir != "" {
		cfg.BaseDir = *baseDir
	}

	srv, err := mcp.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "startup error:", err)
		os.Exit(1)
	}

	if err := srv.Serve(context.Background(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "server error:", err)
		os.Exit(1)
	}
}
