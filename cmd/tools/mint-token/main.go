// Command mint-token mints a signed bearer token for the scenario API's
// authentication middleware. It reads the same configuration as the server
// (AUTH_SIGNING_KEY, AUTH_TOKEN_TTL), so a token minted here verifies
// against a server sharing that environment.
//
// Usage:
//
//	AUTH_SIGNING_KEY=... go run ./cmd/tools/mint-token -subject ops -email ops@example.com
package main

import (
	"flag"
	"fmt"
	"os"

	"econsim/internal/auth"
	"econsim/internal/config"
)

func main() {
	subject := flag.String("subject", "", "token subject (required)")
	email := flag.String("email", "", "token email claim")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "error: -subject is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading configuration: %v\n", err)
		os.Exit(1)
	}

	verifier := auth.NewVerifier(cfg.Auth)
	if !verifier.Configured() {
		fmt.Fprintln(os.Stderr, "error: AUTH_SIGNING_KEY is not set")
		os.Exit(1)
	}

	token, err := verifier.Mint(*subject, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: minting token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
