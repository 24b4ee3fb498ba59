package models

import "time"

// Example is a single fine-tuning example: one prompt/completion pair
// plus provenance. Metadata always carries a "type" key naming the
// template that produced the example.
type Example struct {
	Prompt     string         `json:"prompt"`
	Completion string         `json:"completion"`
	Metadata   map[string]any `json:"metadata"`
	Source     string         `json:"source"`
	Timestamp  time.Time      `json:"timestamp"`
}

// ChatMessage is one turn in the chat wire format.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRecord is one JSONL line in the chat export format.
type ChatRecord struct {
	Messages []ChatMessage `json:"messages"`
}

// PairRecord is one JSONL line in the completion-pair export format.
type PairRecord struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
