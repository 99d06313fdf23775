package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/tokens"
)

// Mints a signed access token for manual API testing:
//
//	go run ./cmd/token -subject alice | xargs -I{} curl -H "Authorization: Bearer {}" ...
func main() {
	subject := flag.String("subject", "test-user", "user id claim to embed")
	secret := flag.String("secret", "", "signing secret (default: JWT_SECRET from config)")
	ttl := flag.Duration("ttl", 0, "token lifetime (default: JWT_ACCESS_TOKEN_TTL from config)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *secret == "" {
		*secret = cfg.Auth.JWTSecret
	}
	if *ttl == 0 {
		*ttl = cfg.Auth.AccessTokenTTL
	}

	tok, err := tokens.Mint(*secret, *subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
