package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/taployalty/lightspeed-sync/pkg/app"
	"github.com/taployalty/lightspeed-sync/pkg/app/api"
	"github.com/taployalty/lightspeed-sync/pkg/config"
)

var (
	configPath = flag.String("config", "config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var server app.Runner = api.NewServer(cfg)
	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Server exited with error: %v\n", err)
		os.Exit(1)
	}
}
