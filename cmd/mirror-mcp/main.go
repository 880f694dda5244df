package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/arian-lol/msg-mirror/internal/mcp"
)

// Serves the mirror admin tools over stdio. stdout carries the protocol,
// so diagnostics go to stderr.

const (
	defaultAPIURL = "http://127.0.0.1:9876"
	serverVersion = "v1.0.0"
)

func main() {
	apiURL := os.Getenv("MIRROR_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	flagSet := pflag.NewFlagSet("mirror-mcp", pflag.ContinueOnError)
	flagSet.StringVar(&apiURL, "api", apiURL, "base URL of the msg-mirror API (MIRROR_API_URL)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "Invalid flags: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	handler := mcp.NewHandler(mcp.NewClient(apiURL))
	server := mcp.NewServer(handler, serverVersion)

	fmt.Fprintf(os.Stderr, "[MCP] Serving mirror tools against %s\n", apiURL)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "[MCP] Server error: %v\n", err)
		os.Exit(1)
	}
}
