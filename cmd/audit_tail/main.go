package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"brd-discovery-be/pkg/events"
	pktNats "brd-discovery-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// Tails the workflow audit stream. Useful during support sessions to
// watch stage advances and completions across all live sessions.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	sub, err := pktNats.NewSubscriber(natsURL)
	if err != nil {
		log.Fatalf("Error: Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	stageAdvanced := color.New(color.FgGreen).PrintfFunc()
	completed := color.New(color.FgCyan, color.Bold).PrintfFunc()

	err = sub.Subscribe("events.>", "audit-tail", func(ctx context.Context, event events.Event) error {
		payload, _ := json.Marshal(event.Payload())
		switch event.EventType() {
		case "events.DISCOVERY_COMPLETED":
			completed("%s %s\n", event.EventType(), payload)
		default:
			stageAdvanced("%s %s\n", event.EventType(), payload)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Error: Failed to subscribe: %v", err)
	}

	log.Printf("Tailing audit events from %s (Ctrl-C to stop)", natsURL)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
