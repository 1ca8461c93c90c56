// Command devtoken mints a session token for local development.
//
// In production the identity provider issues session tokens. Locally there
// is no provider, so this signs one with the same AUTH_JWT_SECRET the server
// verifies with:
//
//	go run ./cmd/devtoken -sub seed_1 -email alice@example.com -first Alice
//	curl -H "Authorization: Bearer $(go run ./cmd/devtoken -sub seed_1)" localhost:8080/api/auth/user
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/kudos-board/internal/auth"
	"github.com/sakif/kudos-board/internal/config"
)

func main() {
	sub := flag.String("sub", "", "user id (default: a random dev_ id)")
	email := flag.String("email", "", "email claim")
	first := flag.String("first", "", "given_name claim")
	last := flag.String("last", "", "family_name claim")
	picture := flag.String("picture", "", "picture claim")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	v, err := auth.NewTokenVerifier(cfg.JWTSecret, cfg.Issuer, cfg.Audience)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *sub == "" {
		*sub = "dev_" + xid.New().String()
	}

	token, err := v.Sign(auth.Identity{
		UserID:          *sub,
		Email:           *email,
		FirstName:       *first,
		LastName:        *last,
		ProfileImageURL: *picture,
	}, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(token)
}
