package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/troikatech/voice-assistant/pkg/auth"
	"github.com/troikatech/voice-assistant/pkg/env"
)

// issue-token prints a bearer token for the /api admin routes
func main() {
	email := flag.String("email", "", "operator email")
	role := flag.String("role", auth.RoleOperator, "role: admin or operator")
	ttl := flag.Int("ttl", 60, "token lifetime in minutes")
	envFile := flag.String("env", ".env", "path to .env file")
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "usage: issue-token -email ops@example.com [-role admin] [-ttl 60]")
		os.Exit(2)
	}
	if *role != auth.RoleAdmin && *role != auth.RoleOperator {
		log.Fatalf("Unknown role %q", *role)
	}

	cfg, err := env.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	token, expiresAt, err := auth.GenerateAccessToken(
		uuid.New().String(),
		*email,
		*role,
		cfg.JWTSecret,
		"voice-assistant",
		"voice-api",
		*ttl,
	)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Printf("Role:    %s\n", *role)
	fmt.Printf("Expires: %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Token:   %s\n", token)
}
