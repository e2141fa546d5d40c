// wondash — personal finance dashboard backend.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daehw/wondash/api"
	"github.com/daehw/wondash/internal/cache"
	"github.com/daehw/wondash/internal/config"
	"github.com/daehw/wondash/internal/dashboard"
	"github.com/daehw/wondash/internal/news"
	"github.com/daehw/wondash/internal/providers/alphavantage"
	"github.com/daehw/wondash/internal/providers/goldapi"
	"github.com/daehw/wondash/internal/providers/naver"
	"github.com/daehw/wondash/internal/providers/twelvedata"
	"github.com/daehw/wondash/internal/providers/yahoo"
	"github.com/daehw/wondash/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wondash",
	Short: "wondash — personal finance dashboard backend",
	Long: `wondash aggregates USD/KRW, gold, S&P 500, KOSPI, and NASDAQ
quotes from multiple market-data providers with automatic fallback,
caches them in a flat file, and serves them over a small REST API with
technical-indicator based recommendations.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(keysCmd)
}

// buildService wires the provider clients and cache store from config.
func buildService() (*dashboard.Service, *cache.Store) {
	store := cache.Open(cfg.Cache.File)
	svc := dashboard.New(store, dashboard.Clients{
		AlphaVantage: alphavantage.New(cfg.Keys.AlphaVantage),
		GoldAPI:      goldapi.New(cfg.Keys.GoldAPI),
		TwelveData:   twelvedata.New(cfg.Keys.TwelveData),
		Yahoo:        yahoo.New(),
		Naver:        naver.New(),
	}, dashboard.Options{
		RealtimeTTL: time.Duration(cfg.Cache.RealtimeTTL) * time.Second,
		CandleTTL:   time.Duration(cfg.Cache.CandleTTL) * time.Second,
	})
	return svc, store
}

func newsSources() []news.Source {
	if len(cfg.News.Feeds) == 0 {
		return nil // fall back to the built-in feed list
	}
	sources := make([]news.Source, len(cfg.News.Feeds))
	for i, f := range cfg.News.Feeds {
		sources[i] = news.Source{Name: f.Name, URL: f.URL}
	}
	return sources
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wondash %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, store := buildService()
		srv := api.NewServer(cfg, store, svc, news.New(newsSources()))

		addr := cfg.API.Addr()
		fmt.Printf("Financial dashboard server listening at http://%s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch [product]",
	Short: "Fetch one product (or all) and print the payload",
	Long: `Fetch resolves a product through its provider fallback chain and
prints the composed payload as JSON. With no argument all products are
fetched.

Products: usd, gold, sp500, kospi, nasdaq`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _ := buildService()
		force, _ := cmd.Flags().GetBool("force")

		ids := models.ProductIDs
		if len(args) == 1 {
			ids = []string{args[0]}
		}

		ctx := context.Background()
		for _, id := range ids {
			payload, err := svc.Product(ctx, id, force)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
				continue
			}
			out, err := json.MarshalIndent(map[string]any{id: payload}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().Bool("force", false, "bypass the real-time cache")
}

// --- Recommend Command ---

var recommendCmd = &cobra.Command{
	Use:   "recommend [product]",
	Short: "Print the indicator-based recommendation for a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _ := buildService()

		rec, err := svc.Recommend(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s %s (%s)\n", rec.Icon, rec.Label, rec.LabelEn)
		if rec.Details != nil {
			d := rec.Details
			fmt.Printf("  SMA:  %s (SMA10 %.2f / SMA40 %.2f)\n", d.SMAStatus, d.SMA10, d.SMA40)
			fmt.Printf("  MACD: %s (%.2f / signal %.2f / hist %.2f)\n", d.MACDStatus, d.MACD, d.Signal, d.Histogram)
			fmt.Printf("  RSI:  %s (%.2f)\n", d.RSIStatus, d.RSI)
		}
		return nil
	},
}

// --- Cache Command ---

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the flat-file cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List cache entries and their ages",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cache.Open(cfg.Cache.File)
		entries := store.Status()
		if len(entries) == 0 {
			fmt.Println("cache is empty")
			return nil
		}
		for _, e := range entries {
			age := time.Duration(e.AgeMillis) * time.Millisecond
			fmt.Printf("  %-24s age %s\n", e.Key, age.Round(time.Second))
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cache entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cache.Open(cfg.Cache.File)
		store.Clear()
		fmt.Println("cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// --- Keys Command ---

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show provider API key status",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("  %-16s %s\n", k.Name+":", status)
		}
		return nil
	},
}
