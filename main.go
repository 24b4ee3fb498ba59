package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/demod-llc/nixtune/internal/generate"
)

func main() {
	app := &cli.App{
		Name:           "nixtune",
		Usage:          "generate fine-tuning data for Nix-oriented LLMs by scraping public NixOS sources",
		DefaultCommand: "generate",
		Commands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "scrape the enabled sources and export a JSONL dataset",
				Action: generate.Action,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Value:   "nix_training_data.jsonl",
						Usage:   "output file path",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "chat",
						Usage:   "output format: chat, completion-pair, or raw",
					},
					&cli.StringFlag{
						Name:  "config",
						Value: "config.yaml",
						Usage: "YAML config with query lists (optional)",
					},
					&cli.StringFlag{
						Name:  "channel",
						Usage: "NixOS channel to search (overrides config)",
					},
					&cli.StringFlag{
						Name:    "github-token",
						Aliases: []string{"g"},
						Usage:   "GitHub personal access token for nixpkgs code search",
						EnvVars: []string{"GITHUB_TOKEN"},
					},
					&cli.IntFlag{
						Name:    "max-packages",
						Aliases: []string{"p"},
						Value:   50,
						Usage:   "maximum number of package definitions to scrape",
					},
					&cli.IntFlag{
						Name:  "max-per-query",
						Value: 5,
						Usage: "maximum search API results kept per query",
					},
					&cli.IntFlag{
						Name:    "max-discourse",
						Aliases: []string{"d"},
						Value:   30,
						Usage:   "maximum Discourse topics to scrape",
					},
					&cli.BoolFlag{Name: "skip-packages", Usage: "skip nixpkgs package definition scraping"},
					&cli.BoolFlag{Name: "skip-wiki", Usage: "skip wiki scraping"},
					&cli.BoolFlag{Name: "skip-discourse", Usage: "skip Discourse scraping"},
					&cli.BoolFlag{Name: "skip-search-api", Usage: "skip search.nixos.org API scraping"},
					&cli.BoolFlag{
						Name:  "search-api-only",
						Usage: "only use the search.nixos.org API (fastest, most reliable)",
					},
					&cli.BoolFlag{Name: "csv", Usage: "also export as CSV"},
					&cli.BoolFlag{Name: "stats", Usage: "print statistics about the generated data"},
					&cli.StringFlag{
						Name:  "cache",
						Usage: "path to a SQLite response cache (disabled when empty)",
					},
					&cli.StringFlag{
						Name:  "max-age",
						Value: "24h",
						Usage: "maximum age of cached responses",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "suppress progress bars and non-error logs",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
