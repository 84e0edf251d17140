package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/agent-trainer/pkg/config"
	pkgjwt "github.com/johnquangdev/agent-trainer/pkg/jwt"
)

// devtoken prints access tokens for local test agents, signed like Supabase signs them.
func main() {
	count := flag.Int("n", 3, "number of test agents")
	expiry := flag.Duration("expiry", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.LoadUnvalidated()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Server.Environment == "production" {
		log.Fatal("refusing to mint test tokens in production")
	}
	if cfg.Supabase.JWTSecret == "" {
		log.Fatal("SUPABASE_JWT_SECRET is required")
	}

	issuer := ""
	if cfg.Supabase.URL != "" {
		issuer = strings.TrimRight(cfg.Supabase.URL, "/") + "/auth/v1"
	}
	jwtManager := pkgjwt.NewManager(cfg.Supabase.JWTSecret, cfg.Supabase.Audience, issuer)

	for i := 1; i <= *count; i++ {
		agentID := uuid.New()
		email := fmt.Sprintf("agent%d@test.local", i)

		token, err := jwtManager.GenerateAccessToken(agentID, email, "authenticated", *expiry)
		if err != nil {
			log.Fatalf("Failed to sign token for %s: %v", email, err)
		}

		fmt.Printf("# %s (agent_id %s)\n", email, agentID)
		fmt.Printf("export AGENT%d_TOKEN=%s\n\n", i, token)
	}
}
