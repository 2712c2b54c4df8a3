package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/siegedash/r6stats/internal/adapters/ubisoft"
	"github.com/siegedash/r6stats/internal/config"
	"github.com/siegedash/r6stats/internal/logging"
)

// Prints the raw ranked and progression payloads for a player, for capturing fixtures
func main() {
	if len(os.Args) < 2 || os.Args[1] == "" {
		log.Fatal("No player name provided")
	}
	name := os.Args[1]
	platform := "uplay"
	if len(os.Args) > 2 {
		platform = os.Args[2]
	}

	conf, err := config.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logging.AddToContext(ctx, logging.NewLogger(os.Stderr, conf.LogLevel()))

	client := ubisoft.NewClient(&http.Client{Timeout: 10 * time.Second}, time.Now)

	session, err := client.OpenSession(ctx, conf.Credentials())
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}
	defer func() {
		if err := session.Close(context.WithoutCancel(ctx)); err != nil {
			log.Printf("Failed to close session: %v", err)
		}
	}()

	player, err := session.GetPlayer(ctx, name, platform)
	if err != nil {
		log.Printf("Failed to resolve player: %v", err)
		return
	}
	log.Printf("Resolved %s to %s", name, player.ProfileID)

	data, statusCode, err := session.RawRankedProfile(ctx, player)
	if err != nil {
		log.Printf("Failed to get ranked profile: %v", err)
		return
	}
	fmt.Println(string(data))
	fmt.Println(statusCode)

	data, statusCode, err = session.RawProgression(ctx, player)
	if err != nil {
		log.Printf("Failed to get progression: %v", err)
		return
	}
	fmt.Println(string(data))
	fmt.Println(statusCode)
}
