// Command token prints a bearer token for the ledger API. The API only checks
// tokens when AUTH_SECRET is set.
package main

import (
	"flag"
	"fmt"
	"os"

	"taxledger/internal/config"
	"taxledger/internal/logger"
	"taxledger/internal/middleware"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Token error: %v", err)
	}
}

func run() error {
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to AUTH_TOKEN_TTL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.AuthEnabled() {
		return fmt.Errorf("AUTH_SECRET is not set")
	}

	lifetime := cfg.AuthTokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := middleware.GenerateToken([]byte(cfg.AuthSecret), middleware.OwnerSubject, lifetime)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	fmt.Println(token)
	return nil
}
