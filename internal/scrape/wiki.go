package scrape

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/demod-llc/nixtune/models"
	"github.com/demod-llc/nixtune/pkg/fetcher"
)

// DefaultWikiBaseURL is the NixOS wiki.
const DefaultWikiBaseURL = "https://nixos.wiki"

// Wiki scrapes MediaWiki pages into per-heading sections of text and
// code blocks.
type Wiki struct {
	fetcher *fetcher.Fetcher
	baseURL string
	logger  *slog.Logger
}

func NewWiki(f *fetcher.Fetcher, logger *slog.Logger) *Wiki {
	return &Wiki{
		fetcher: f,
		baseURL: DefaultWikiBaseURL,
		logger:  logger,
	}
}

// WithBaseURL overrides the wiki URL; tests point it at a local server.
func (w *Wiki) WithBaseURL(baseURL string) *Wiki {
	w.baseURL = baseURL
	return w
}

// Sections fetches each topic page and splits it into sections. Topics
// that fail to fetch are skipped with a warning.
func (w *Wiki) Sections(topics []string, each func()) []models.WikiSection {
	var out []models.WikiSection
	for _, topic := range topics {
		pageURL := fmt.Sprintf("%s/wiki/%s", w.baseURL, topic)
		doc, err := w.fetcher.GetDocument(pageURL)
		if err != nil {
			w.logger.Warn("wiki page failed", "topic", topic, "error", err)
		} else {
			out = append(out, ExtractSections(doc, topic, pageURL)...)
		}
		if each != nil {
			each()
		}
	}
	return out
}

// ExtractSections walks the MediaWiki content area: each h2/h3 heading
// starts a section whose blocks are the sibling paragraphs (text) and
// pre elements (code) up to the next heading. Sections with no blocks
// are dropped.
func ExtractSections(doc *goquery.Document, topic, pageURL string) []models.WikiSection {
	content := doc.Find("#mw-content-text").First()
	if content.Length() == 0 {
		return nil
	}

	var sections []models.WikiSection
	content.Find("h2, h3").Each(func(_ int, heading *goquery.Selection) {
		section := models.WikiSection{
			Topic:   topic,
			Section: strings.TrimSpace(heading.Text()),
			URL:     pageURL,
		}

		heading.NextUntil("h2, h3").Each(func(_ int, sibling *goquery.Selection) {
			switch goquery.NodeName(sibling) {
			case "pre":
				section.Blocks = append(section.Blocks, models.ContentBlock{
					Kind: models.BlockCode,
					Text: sibling.Text(),
				})
			case "p":
				section.Blocks = append(section.Blocks, models.ContentBlock{
					Kind: models.BlockText,
					Text: strings.TrimSpace(sibling.Text()),
				})
			}
		})

		if len(section.Blocks) > 0 {
			sections = append(sections, section)
		}
	})

	return sections
}
