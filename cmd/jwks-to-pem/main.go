package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"studyflow/internal/auth"
)

// Prints the identity provider's signing key as PEM, for SUPABASE_JWT_SECRET.
func main() {
	projectURL := flag.String("supabase-url", "http://127.0.0.1:54321", "Supabase project URL")
	jwksURL := flag.String("jwks-url", "", "JWKS endpoint; derived from -supabase-url when empty")
	flag.Parse()

	url := *jwksURL
	if url == "" {
		url = auth.SupabaseJWKSURL(*projectURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building request: %v\n", err)
		os.Exit(1)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching JWKS: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Unexpected status fetching JWKS: %s\n", resp.Status)
		os.Exit(1)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading response: %v\n", err)
		os.Exit(1)
	}

	out, err := auth.JWKSToPEM(body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting JWKS: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(out)
}
