// Package generate implements the generate command: it sequences the
// source adapters, feeds every scraped record through the example
// builder into one store, and exports the result.
package generate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/demod-llc/nixtune/internal/scrape"
	"github.com/demod-llc/nixtune/models"
	"github.com/demod-llc/nixtune/pkg/builder"
	"github.com/demod-llc/nixtune/pkg/cache"
	"github.com/demod-llc/nixtune/pkg/export"
	"github.com/demod-llc/nixtune/pkg/fetcher"
	"github.com/demod-llc/nixtune/pkg/store"
)

// requestDelay spaces out live requests so the scraped services are not
// hammered.
const requestDelay = 200 * time.Millisecond

func Action(c *cli.Context) error {
	quiet := c.Bool("quiet")
	logLevel := slog.LevelInfo
	if quiet {
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	format, err := export.ParseFormat(c.String("format"))
	if err != nil {
		logger.Error("invalid format", "error", err)
		os.Exit(2)
	}

	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if c.IsSet("channel") {
		cfg.Channel = c.String("channel")
	}

	fetch := fetcher.NewFetcher().WithDelay(requestDelay)
	if path := c.String("cache"); path != "" {
		maxAge, err := time.ParseDuration(c.String("max-age"))
		if err != nil {
			logger.Error("invalid max-age duration", "error", err)
			os.Exit(2)
		}
		responseCache, err := cache.Open(path)
		if err != nil {
			logger.Error("failed to open response cache", "error", err)
			os.Exit(2)
		}
		defer responseCache.Close()
		fetch = fetch.WithCache(responseCache, maxAge)
	}

	r := &run{
		cfg:    cfg,
		fetch:  fetch,
		logger: logger,
		store:  store.New(),
		quiet:  quiet,
	}

	r.store.Append(ManualExamples()...)

	if c.Bool("search-api-only") {
		// Fast mode: the search API alone, with the package budget
		// spread across its queries.
		r.fromSearchAPI(c.Int("max-packages") / 10)
	} else {
		if !c.Bool("skip-search-api") {
			r.fromSearchAPI(c.Int("max-per-query"))
		}
		if !c.Bool("skip-packages") {
			r.fromNixpkgs(c.Int("max-packages"), c.String("github-token"))
		}
		if !c.Bool("skip-wiki") {
			r.fromWiki()
		}
		if !c.Bool("skip-discourse") {
			r.fromDiscourse(c.Int("max-discourse"))
		}
	}

	// Adapter failures above were warnings; from here on, failure to
	// write the dataset is fatal.
	output := c.String("output")
	exporter := &export.Exporter{Format: format, SystemPrompt: cfg.SystemPrompt}
	if err := exporter.WriteJSONL(output, r.store.Examples()); err != nil {
		logger.Error("export failed", "path", output, "error", err)
		os.Exit(1)
	}
	logger.Info("exported examples", "count", r.store.Count(), "path", output)

	if c.Bool("csv") {
		csvPath := strings.TrimSuffix(output, filepath.Ext(output)) + ".csv"
		if err := export.WriteCSV(csvPath, r.store.Examples()); err != nil {
			logger.Error("CSV export failed", "path", csvPath, "error", err)
			os.Exit(1)
		}
		logger.Info("exported CSV", "count", r.store.Count(), "path", csvPath)
	}

	if c.Bool("stats") {
		printStats(r.store.Statistics())
	}

	return nil
}

type run struct {
	cfg    *models.Config
	fetch  *fetcher.Fetcher
	logger *slog.Logger
	store  *store.Store
	quiet  bool
}

// progress returns a per-item callback backed by a progress bar, or a
// no-op in quiet mode.
func (r *run) progress(count int, description string) func() {
	if r.quiet || count <= 0 {
		return func() {}
	}
	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return func() { _ = bar.Add(1) }
}

func (r *run) fromSearchAPI(maxPerQuery int) {
	api := scrape.NewSearchAPI(r.fetch, r.cfg.Channel, r.logger)

	packages := api.Packages(r.cfg.PackageQueries, maxPerQuery,
		r.progress(len(r.cfg.PackageQueries), "Package queries"))
	for _, pkg := range packages {
		r.store.Append(builder.FromPackage(pkg)...)
	}

	options := api.Options(r.cfg.OptionQueries, maxPerQuery,
		r.progress(len(r.cfg.OptionQueries), "Option queries"))
	for _, opt := range options {
		r.store.Append(builder.FromOption(opt)...)
	}

	// Flake queries return fewer, broader results; three per query is
	// plenty.
	flakes := api.Flakes(r.cfg.FlakeQueries, 3,
		r.progress(len(r.cfg.FlakeQueries), "Flake queries"))
	for _, flake := range flakes {
		r.store.Append(builder.FromFlake(flake)...)
	}

	r.logger.Info("search API scrape finished",
		"packages", len(packages), "options", len(options), "flakes", len(flakes))
}

func (r *run) fromNixpkgs(maxPackages int, token string) {
	defs := scrape.NewNixpkgs(r.fetch, token, r.logger).
		PackageDefs(maxPackages, r.progress(maxPackages, "Package definitions"))
	for _, def := range defs {
		r.store.Append(builder.FromPackageDef(def)...)
	}
	r.logger.Info("nixpkgs scrape finished", "definitions", len(defs))
}

func (r *run) fromWiki() {
	sections := scrape.NewWiki(r.fetch, r.logger).
		Sections(r.cfg.WikiTopics, r.progress(len(r.cfg.WikiTopics), "Wiki pages"))
	for _, section := range sections {
		r.store.Append(builder.FromWikiSection(section)...)
	}
	r.logger.Info("wiki scrape finished", "sections", len(sections))
}

func (r *run) fromDiscourse(maxTopics int) {
	forum := scrape.NewDiscourse(r.fetch, r.logger)
	if r.cfg.EnglishOnly {
		forum = forum.EnglishOnly()
	}

	topics := forum.Topics(maxTopics, r.progress(maxTopics, "Discourse topics"))
	for _, topic := range topics {
		r.store.Append(builder.FromForumTopic(topic)...)
	}
	r.logger.Info("discourse scrape finished", "topics", len(topics))
}

func printStats(stats store.Stats) {
	fmt.Println("\n=== Dataset Statistics ===")
	fmt.Printf("Total examples: %d\n", stats.Total)

	fmt.Println("\nBy source:")
	for _, source := range sortedKeys(stats.BySource) {
		fmt.Printf("  %s: %d\n", source, stats.BySource[source])
	}

	fmt.Println("\nBy type:")
	for _, exType := range sortedKeys(stats.ByType) {
		fmt.Printf("  %s: %d\n", exType, stats.ByType[exType])
	}

	fmt.Printf("\nAverage prompt length: %d chars\n", stats.AvgPromptLength)
	fmt.Printf("Average completion length: %d chars\n", stats.AvgCompletionLength)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
