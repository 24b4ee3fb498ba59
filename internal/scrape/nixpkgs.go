package scrape

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"

	"github.com/demod-llc/nixtune/models"
	"github.com/demod-llc/nixtune/pkg/fetcher"
)

const (
	githubAPIBaseURL = "https://api.github.com"
	nixpkgsRawURL    = "https://raw.githubusercontent.com/NixOS/nixpkgs/master"
)

// popularPackages is the fallback set scraped without a GitHub token,
// tried under a few common nixpkgs categories.
var popularPackages = []string{
	"hello", "vim", "git", "python3", "nodejs", "gcc",
	"postgresql", "redis", "nginx", "docker",
}

var fallbackCategories = []string{
	"applications/misc", "tools/misc", "development/tools/misc",
}

// Nixpkgs scrapes package definition files from the NixOS/nixpkgs
// repository: via the GitHub code search API when a token is available,
// else over raw.githubusercontent.com for a curated package list.
type Nixpkgs struct {
	fetcher    *fetcher.Fetcher
	apiBaseURL string
	rawBaseURL string
	token      string
	logger     *slog.Logger
}

func NewNixpkgs(f *fetcher.Fetcher, token string, logger *slog.Logger) *Nixpkgs {
	return &Nixpkgs{
		fetcher:    f,
		apiBaseURL: githubAPIBaseURL,
		rawBaseURL: nixpkgsRawURL,
		token:      token,
		logger:     logger,
	}
}

// WithBaseURLs overrides the GitHub endpoints; tests point them at a
// local server.
func (n *Nixpkgs) WithBaseURLs(api, raw string) *Nixpkgs {
	n.apiBaseURL = api
	n.rawBaseURL = raw
	return n
}

type codeSearchResponse struct {
	Items []struct {
		Name string `json:"name"`
		Path string `json:"path"`
	} `json:"items"`
}

// PackageDefs returns up to maxPackages package definition files.
func (n *Nixpkgs) PackageDefs(maxPackages int, each func()) []models.PackageDef {
	if n.token == "" {
		n.logger.Warn("no GitHub token provided, using unauthenticated fallback (limited)")
		return n.fallbackDefs(maxPackages, each)
	}
	return n.searchDefs(maxPackages, each)
}

func (n *Nixpkgs) searchDefs(maxPackages int, each func()) []models.PackageDef {
	searchURL := fmt.Sprintf("%s/search/code?q=%s&per_page=%d",
		n.apiBaseURL,
		url.QueryEscape("repo:NixOS/nixpkgs path:pkgs/ filename:default.nix"),
		maxPackages)

	header := http.Header{
		"Authorization": {"Bearer " + n.token},
		"Accept":        {"application/vnd.github+json"},
	}

	body, err := n.fetcher.Get(searchURL, header)
	if err != nil {
		n.logger.Warn("GitHub code search failed", "error", err)
		return nil
	}

	var search codeSearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		n.logger.Warn("GitHub code search returned bad JSON", "error", err)
		return nil
	}

	items := search.Items
	if len(items) > maxPackages {
		items = items[:maxPackages]
	}

	var out []models.PackageDef
	for _, item := range items {
		content, err := n.fetcher.GetBytes(n.rawBaseURL + "/" + item.Path)
		if err != nil {
			n.logger.Warn("package definition fetch failed", "path", item.Path, "error", err)
		} else {
			out = append(out, models.PackageDef{
				Name:    path.Base(path.Dir(item.Path)),
				Path:    item.Path,
				Content: string(content),
			})
		}
		if each != nil {
			each()
		}
	}
	return out
}

func (n *Nixpkgs) fallbackDefs(maxPackages int, each func()) []models.PackageDef {
	pkgs := popularPackages
	if len(pkgs) > maxPackages {
		pkgs = pkgs[:maxPackages]
	}

	var out []models.PackageDef
	for _, pkg := range pkgs {
		for _, category := range fallbackCategories {
			defPath := fmt.Sprintf("pkgs/%s/%s/default.nix", category, pkg)
			content, err := n.fetcher.GetBytes(n.rawBaseURL + "/" + defPath)
			if err != nil {
				continue
			}
			out = append(out, models.PackageDef{
				Name:    pkg,
				Path:    defPath,
				Content: string(content),
			})
			break
		}
		if each != nil {
			each()
		}
	}
	return out
}
