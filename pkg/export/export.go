// Package export serializes a run's examples to line-delimited JSON for
// fine-tuning tooling, and optionally to CSV for spreadsheet review.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/demod-llc/nixtune/models"
)

// Format selects the shape of each JSONL line.
type Format string

const (
	// FormatChat emits {"messages": [...]} lines, with an optional
	// leading system message.
	FormatChat Format = "chat"
	// FormatPair emits {"prompt": ..., "completion": ...} lines.
	FormatPair Format = "completion-pair"
	// FormatRaw emits the full example record with metadata and
	// provenance.
	FormatRaw Format = "raw"
)

// ParseFormat validates a format name from the CLI.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatChat, FormatPair, FormatRaw:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want chat, completion-pair, or raw)", s)
	}
}

// Exporter writes examples to disk. The zero value exports chat format
// with no system prompt.
type Exporter struct {
	Format Format
	// SystemPrompt, when non-empty, is prepended as a system message to
	// every chat-format line.
	SystemPrompt string
}

// WriteJSONL writes one JSON object per line, UTF-8, with non-ASCII and
// HTML characters emitted literally. Every line is marshaled into memory
// before the file is touched, so a serialization failure cannot leave a
// truncated file behind.
func (e *Exporter) WriteJSONL(path string, examples []models.Example) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, ex := range examples {
		if err := enc.Encode(e.line(ex)); err != nil {
			return fmt.Errorf("failed to serialize example %d (%s): %w", i, ex.Source, err)
		}
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (e *Exporter) line(ex models.Example) any {
	format := e.Format
	if format == "" {
		format = FormatChat
	}

	switch format {
	case FormatPair:
		return models.PairRecord{Prompt: ex.Prompt, Completion: ex.Completion}
	case FormatRaw:
		return ex
	default:
		messages := make([]models.ChatMessage, 0, 3)
		if e.SystemPrompt != "" {
			messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: e.SystemPrompt})
		}
		messages = append(messages,
			models.ChatMessage{Role: models.RoleUser, Content: ex.Prompt},
			models.ChatMessage{Role: models.RoleAssistant, Content: ex.Completion},
		)
		return models.ChatRecord{Messages: messages}
	}
}

// WriteCSV writes one row per example with a fixed header. The header is
// written even for an empty store; metadata is serialized as a single
// JSON cell.
func WriteCSV(path string, examples []models.Example) error {
	// Validate metadata serialization up front so a bad record cannot
	// leave a partially written file.
	rows := make([][]string, 0, len(examples)+1)
	rows = append(rows, []string{"prompt", "completion", "source", "metadata", "timestamp"})
	for i, ex := range examples {
		metadata, err := marshalInline(ex.Metadata)
		if err != nil {
			return fmt.Errorf("failed to serialize metadata for example %d (%s): %w", i, ex.Source, err)
		}
		rows = append(rows, []string{
			ex.Prompt,
			ex.Completion,
			ex.Source,
			metadata,
			ex.Timestamp.Format(time.RFC3339Nano),
		})
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// marshalInline serializes a value compactly without the trailing newline
// or HTML escaping that json.Encoder applies.
func marshalInline(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}
