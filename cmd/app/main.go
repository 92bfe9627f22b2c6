package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"celestial/internal/di"
	"celestial/pkg/config"
	xhttp "celestial/pkg/http"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	healthcheck := flag.Bool("healthcheck", false, "probe /api/health of a running instance and exit")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if *healthcheck {
		if err := probe(cfg.Server.Port); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	err = app.Run(context.Background())
	cleanup()
	if err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

// probe is the container health check.
func probe(port int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var health struct {
		Status string `json:"status"`
	}
	client := xhttp.NewClient(fmt.Sprintf("http://127.0.0.1:%d", port), xhttp.WithTimeout(3*time.Second))
	if err := client.Get(ctx, "/api/health", &health); err != nil {
		return fmt.Errorf("healthcheck: %w", err)
	}
	if health.Status != "healthy" {
		return fmt.Errorf("healthcheck: status %s", health.Status)
	}
	return nil
}
