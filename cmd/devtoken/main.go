// Command devtoken prints a bearer token for local testing against the
// server. It reads JWT_SECRET and TOKEN_DURATION the same way the server does.
//
//	go run ./cmd/devtoken -user alice
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mmynk/splitsettle/internal/auth"
	"github.com/mmynk/splitsettle/internal/config"
)

func main() {
	user := flag.String("user", "", "user ID to put in the token")
	flag.Parse()

	if *user == "" {
		fmt.Fprintln(os.Stderr, "usage: devtoken -user <id>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration).Generate(*user)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
