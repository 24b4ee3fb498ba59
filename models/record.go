// Package models defines the data structures shared across scrapers,
// the example builder, and the exporters.
package models

import "encoding/json"

// Unknown is the sentinel for string fields the upstream API left out.
// Records never carry empty identifiers into rendered text.
const Unknown = "unknown"

// Source tags identify where a record was scraped from.
const (
	SourceManual    = "manual"
	SourceSearchAPI = "search_api"
	SourceNixpkgs   = "nixpkgs"
	SourceWiki      = "nixos_wiki"
	SourceDiscourse = "discourse"
)

// PackageRecord is one package result from the search.nixos.org backend.
type PackageRecord struct {
	AttrName        string   `json:"attr_name"`
	Pname           string   `json:"pname"`
	Version         string   `json:"version"`
	Description     string   `json:"description"`
	LongDescription string   `json:"longDescription,omitempty"`
	Licenses        []string `json:"licenses,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
}

// Attr returns the package attribute name, or the Unknown sentinel.
func (p PackageRecord) Attr() string {
	return orUnknown(p.AttrName)
}

// Name returns the package pname, or the Unknown sentinel.
func (p PackageRecord) Name() string {
	return orUnknown(p.Pname)
}

// Ver returns the package version, or the Unknown sentinel.
func (p PackageRecord) Ver() string {
	return orUnknown(p.Version)
}

// OptionRecord is one NixOS option result from the search.nixos.org
// backend. Default and Example are raw JSON so that any value shape
// (scalar, list, attrset) survives untouched; a nil RawMessage means the
// field was absent upstream, which is distinct from an explicit null.
type OptionRecord struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Type         string          `json:"type"`
	Default      json.RawMessage `json:"default,omitempty"`
	Example      json.RawMessage `json:"example,omitempty"`
	Declarations []string        `json:"declarations,omitempty"`
}

// OptName returns the dotted option name, or the Unknown sentinel.
func (o OptionRecord) OptName() string {
	return orUnknown(o.Name)
}

// OptType returns the option type tag, or the Unknown sentinel.
func (o OptionRecord) OptType() string {
	return orUnknown(o.Type)
}

// HasExample reports whether the record carries a usable example value.
// An explicit JSON null is treated the same as an absent field.
func (o OptionRecord) HasExample() bool {
	return len(o.Example) > 0 && string(o.Example) != "null"
}

// FlakeRecord is one flake result from the search.nixos.org backend.
type FlakeRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Repo        string `json:"repo"`
	Resolved    string `json:"resolved,omitempty"`
}

// FlakeName returns the flake name, or the Unknown sentinel.
func (f FlakeRecord) FlakeName() string {
	return orUnknown(f.Name)
}

// RepoID returns the flake's repository identifier, or the Unknown sentinel.
func (f FlakeRecord) RepoID() string {
	return orUnknown(f.Repo)
}

// Block kinds for wiki section content.
const (
	BlockText = "text"
	BlockCode = "code"
)

// ContentBlock is one prose or code fragment within a wiki section, in
// page order.
type ContentBlock struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// WikiSection is one heading's worth of content from a MediaWiki page.
type WikiSection struct {
	Topic   string         `json:"topic"`
	Section string         `json:"section"`
	Blocks  []ContentBlock `json:"content"`
	URL     string         `json:"url"`
}

// TextBlocks returns the section's prose fragments in page order.
func (w WikiSection) TextBlocks() []string {
	return w.blocksOfKind(BlockText)
}

// CodeBlocks returns the section's code fragments in page order.
func (w WikiSection) CodeBlocks() []string {
	return w.blocksOfKind(BlockCode)
}

func (w WikiSection) blocksOfKind(kind string) []string {
	var out []string
	for _, b := range w.Blocks {
		if b.Kind == kind {
			out = append(out, b.Text)
		}
	}
	return out
}

// ForumTopic is one question/answer pair scraped from Discourse.
type ForumTopic struct {
	Title    string   `json:"title"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Tags     []string `json:"tags,omitempty"`
	URL      string   `json:"url"`
}

// PackageDef is one package definition file scraped from the nixpkgs
// repository.
type PackageDef struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
}

// DefName returns the package directory name, or the Unknown sentinel.
func (d PackageDef) DefName() string {
	return orUnknown(d.Name)
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
