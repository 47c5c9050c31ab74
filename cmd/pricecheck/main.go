// Package main fetches current prices for coin ids given on the
// command line. Useful for checking provider connectivity and id
// resolution without going through the MCP transport.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"crypto-watchlist/internal/coingecko"
)

func main() {
	baseURL := flag.String("coingecko-base-url", envOrDefault("COINGECKO_BASE_URL", "https://api.coingecko.com/api/v3"), "Price provider base URL")
	httpTimeout := flag.Duration("http-timeout", coingecko.DefaultTimeout, "Price provider HTTP timeout")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: pricecheck [flags] <coin-id> [<coin-id>...]")
		os.Exit(2)
	}

	logger := log.New(os.Stderr, "[pricecheck] ", log.LstdFlags)
	client := coingecko.New(*baseURL,
		coingecko.WithTimeout(*httpTimeout),
		coingecko.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	failed := false
	for _, id := range flag.Args() {
		snap, err := client.GetCurrentPrice(ctx, id)
		if err != nil {
			fmt.Printf("%s: failed (%v)\n", id, err)
			failed = true
			continue
		}
		if snap.Change24h != nil {
			fmt.Printf("%s: $%s (%s%%)\n", snap.CoinID, snap.PriceUSD, snap.Change24h)
		} else {
			fmt.Printf("%s: $%s\n", snap.CoinID, snap.PriceUSD)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
