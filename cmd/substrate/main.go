package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/nazar-pc/substrate/internal/config"
	"github.com/nazar-pc/substrate/internal/node"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	n, err := node.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create node: %v", err)
	}

	// The network stack and sync engine attach to the node's channel
	// endpoints: NetworkRequests, PeerEvents and SyncUpdates. Until
	// they do, subsystem queries fail closed with a bounded timeout.
	if err := n.Start(); err != nil {
		log.Fatalf("Failed to start node: %v", err)
	}

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down...")

	if err := n.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
