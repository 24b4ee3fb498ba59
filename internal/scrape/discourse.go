package scrape

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pemistahl/lingua-go"

	"github.com/demod-llc/nixtune/models"
	"github.com/demod-llc/nixtune/pkg/fetcher"
)

// DefaultDiscourseBaseURL is the NixOS Discourse forum.
const DefaultDiscourseBaseURL = "https://discourse.nixos.org"

// Discourse scrapes the forum's latest topics into question/answer pairs:
// the first post is the question, the second the answer.
type Discourse struct {
	fetcher  *fetcher.Fetcher
	baseURL  string
	logger   *slog.Logger
	detector lingua.LanguageDetector
}

func NewDiscourse(f *fetcher.Fetcher, logger *slog.Logger) *Discourse {
	return &Discourse{
		fetcher: f,
		baseURL: DefaultDiscourseBaseURL,
		logger:  logger,
	}
}

// WithBaseURL overrides the forum URL; tests point it at a local server.
func (d *Discourse) WithBaseURL(baseURL string) *Discourse {
	d.baseURL = baseURL
	return d
}

// EnglishOnly drops topics whose question is not detected as English.
// The detector needs a handful of candidate languages to discriminate
// against; these cover the forum's common non-English posts.
func (d *Discourse) EnglishOnly() *Discourse {
	d.detector = lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English, lingua.German, lingua.French, lingua.Spanish,
			lingua.Portuguese, lingua.Russian, lingua.Japanese, lingua.Chinese,
		).
		Build()
	return d
}

type latestResponse struct {
	TopicList struct {
		Topics []topicSummary `json:"topics"`
	} `json:"topic_list"`
}

type topicSummary struct {
	ID    int64    `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

type topicResponse struct {
	PostStream struct {
		Posts []struct {
			Cooked string `json:"cooked"`
		} `json:"posts"`
	} `json:"post_stream"`
}

// Topics fetches up to maxTopics of the forum's latest topics. Topics
// with fewer than two posts are skipped (no answer to learn from), as
// are per-topic fetch failures.
func (d *Discourse) Topics(maxTopics int, each func()) []models.ForumTopic {
	var latest latestResponse
	if err := d.fetcher.GetJSON(d.baseURL+"/latest.json", nil, &latest); err != nil {
		d.logger.Warn("discourse topic list failed", "error", err)
		return nil
	}

	summaries := latest.TopicList.Topics
	if len(summaries) > maxTopics {
		summaries = summaries[:maxTopics]
	}

	var out []models.ForumTopic
	for _, summary := range summaries {
		if topic, ok := d.fetchTopic(summary); ok {
			out = append(out, topic)
		}
		if each != nil {
			each()
		}
	}
	return out
}

func (d *Discourse) fetchTopic(summary topicSummary) (models.ForumTopic, bool) {
	topicURL := fmt.Sprintf("%s/t/%d", d.baseURL, summary.ID)

	var topic topicResponse
	if err := d.fetcher.GetJSON(topicURL+".json", nil, &topic); err != nil {
		d.logger.Warn("discourse topic failed", "topic_id", summary.ID, "error", err)
		return models.ForumTopic{}, false
	}

	posts := topic.PostStream.Posts
	if len(posts) < 2 {
		return models.ForumTopic{}, false
	}

	question := htmlToText(posts[0].Cooked)
	answer := htmlToText(posts[1].Cooked)

	if d.detector != nil {
		if lang, ok := d.detector.DetectLanguageOf(summary.Title + " " + question); ok && lang != lingua.English {
			d.logger.Debug("skipping non-English topic",
				"topic_id", summary.ID, "language", lang.String())
			return models.ForumTopic{}, false
		}
	}

	return models.ForumTopic{
		Title:    summary.Title,
		Question: question,
		Answer:   answer,
		Tags:     summary.Tags,
		URL:      topicURL,
	}, true
}

// htmlToText strips markup from a Discourse "cooked" post, keeping the
// text content only.
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.TrimSpace(doc.Text())
}
