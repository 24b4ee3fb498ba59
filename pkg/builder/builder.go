// Package builder turns scraped records into fine-tuning examples. Every
// function here is pure: fixed record in, fixed examples out, no I/O. The
// only nondeterminism is the creation timestamp stamped on each example.
package builder

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/demod-llc/nixtune/models"
)

// MaxAnswerLen caps forum answers carried into completions, in runes.
const MaxAnswerLen = 1000

var (
	fencedCodeRE = regexp.MustCompile("(?s)```(?:nix)?\n(.*?)```")
	versionRE    = regexp.MustCompile(`version\s*=\s*"([^"]+)"`)
	fetchurlRE   = regexp.MustCompile(`(?s)fetchurl\s*\{[^}]+\}`)
)

// FromPackage emits installation and attribute-lookup examples for every
// package, plus a quick-config example when the pname is long enough to
// not be a one- or two-letter alias.
func FromPackage(p models.PackageRecord) []models.Example {
	attr := p.Attr()
	pname := p.Name()
	version := p.Ver()
	desc := strings.TrimRight(p.Description, ".")

	examples := []models.Example{
		newExample(
			fmt.Sprintf("How do I install %s on NixOS?", pname),
			fmt.Sprintf("To install %s (%s) system-wide:\n\n```nix\nenvironment.systemPackages = with pkgs; [ %s ];\n```\n\nCurrent version: %s",
				pname, desc, attr, version),
			map[string]any{
				"type":      "package_installation",
				"package":   pname,
				"attr_name": attr,
				"version":   version,
			},
			models.SourceSearchAPI,
		),
		newExample(
			fmt.Sprintf("What is the NixOS package attribute for %s?", strings.ToLower(pname)),
			fmt.Sprintf("The attribute is `%s` (pname: %s, version: %s).\n\nDescription: %s",
				attr, pname, version, desc),
			map[string]any{
				"type":    "package_attribute",
				"package": pname,
			},
			models.SourceSearchAPI,
		),
	}

	if utf8.RuneCountInString(pname) > 2 {
		examples = append(examples, newExample(
			fmt.Sprintf("Add %s to my NixOS config", pname),
			fmt.Sprintf("Add `%s` to your `environment.systemPackages`:\n\n```nix\nenvironment.systemPackages = with pkgs; [\n  %s\n];\n```",
				attr, attr),
			map[string]any{
				"type":    "quick_config",
				"package": pname,
			},
			models.SourceSearchAPI,
		))
	}

	return examples
}

// FromOption emits a how-to and an explanation example for every option.
// When the record carries an example value it is appended to both
// completions, pretty-printed so any value shape stays readable.
func FromOption(o models.OptionRecord) []models.Example {
	name := o.OptName()
	typ := o.OptType()
	desc := strings.TrimRight(o.Description, ".")
	def := FormatValue(o.Default)

	lowerDesc := lowerFirst(desc)
	if lowerDesc == "" {
		lowerDesc = "configure this option"
	}

	howto := fmt.Sprintf("Set the option `%s`:\n\n```nix\n%s = true;  # or appropriate value\n```\n\nDescription: %s\nType: %s\nDefault: %s",
		name, name, desc, typ, def)
	explanation := fmt.Sprintf("The `%s` option %s.\n\nType: %s\nDefault: %s",
		name, lowerDesc, typ, def)

	if o.HasExample() {
		howto += fmt.Sprintf("\n\nExample:\n```nix\n%s = %s;\n```", name, FormatValueIndent(o.Example))
		explanation += fmt.Sprintf("\n\nExample value: `%s`", FormatValue(o.Example))
	}

	return []models.Example{
		newExample(
			fmt.Sprintf("How do I %s in NixOS?", lowerDesc),
			howto,
			map[string]any{
				"type":        "option_howto",
				"option":      name,
				"option_type": typ,
			},
			models.SourceSearchAPI,
		),
		newExample(
			fmt.Sprintf("What is the NixOS option %s for?", name),
			explanation,
			map[string]any{
				"type":   "option_explanation",
				"option": name,
			},
			models.SourceSearchAPI,
		),
	}
}

// FromFlake emits a usage and a description example for every flake.
func FromFlake(f models.FlakeRecord) []models.Example {
	name := f.FlakeName()
	repo := f.RepoID()
	desc := strings.TrimRight(f.Description, ".")

	return []models.Example{
		newExample(
			fmt.Sprintf("How do I use the %s flake in NixOS?", name),
			fmt.Sprintf("%s provides: %s\n\nRepository: %s\n\nAdd as input in your `flake.nix`:\n\n```nix\ninputs.%s.url = \"github:%s\";\n```\n\nThen use its outputs in your configuration (e.g., overlays, NixOS modules, packages).",
				name, desc, repo, name, repo),
			map[string]any{
				"type":  "flake_usage",
				"flake": name,
				"repo":  repo,
			},
			models.SourceSearchAPI,
		),
		newExample(
			fmt.Sprintf("What is the %s flake?", name),
			fmt.Sprintf("%s\n\nSource: github:%s\n\nThis is a Nix flake that can be used as an input in your flake-based NixOS configuration or development environment.",
				desc, repo),
			map[string]any{
				"type":  "flake_description",
				"flake": name,
			},
			models.SourceSearchAPI,
		),
	}
}

// FromWikiSection emits a guide example when the section demonstrates
// something: at least one prose block and at least one code block.
// Prose-only or code-only sections produce nothing.
func FromWikiSection(w models.WikiSection) []models.Example {
	texts := w.TextBlocks()
	codes := w.CodeBlocks()
	if len(texts) == 0 || len(codes) == 0 {
		return nil
	}

	intro := texts
	if len(intro) > 2 {
		intro = intro[:2]
	}

	return []models.Example{
		newExample(
			fmt.Sprintf("How do I %s in NixOS?", strings.ToLower(w.Section)),
			fmt.Sprintf("%s\n\n```nix\n%s\n```", strings.Join(intro, " "), codes[0]),
			map[string]any{
				"type":    "wiki_guide",
				"topic":   w.Topic,
				"section": w.Section,
			},
			models.SourceWiki,
		),
	}
}

// FromForumTopic emits a Q&A example when the answer contains a fenced
// code block. The completion is the raw answer hard-truncated to
// MaxAnswerLen runes, which can cut a code fence mid-block; the upstream
// corpus has the same behavior and downstream tooling expects it.
func FromForumTopic(t models.ForumTopic) []models.Example {
	codeBlocks := fencedCodeRE.FindAllString(t.Answer, -1)
	if len(codeBlocks) == 0 {
		return nil
	}

	return []models.Example{
		newExample(
			t.Title,
			truncate(t.Answer, MaxAnswerLen),
			map[string]any{
				"type":     "qa",
				"tags":     t.Tags,
				"has_code": true,
			},
			models.SourceDiscourse,
		),
	}
}

// FromPackageDef emits a derivation example for every scraped package
// definition, plus a version example when the file pins a version and a
// fetcher example when it uses fetchurl.
func FromPackageDef(d models.PackageDef) []models.Example {
	name := d.DefName()

	examples := []models.Example{
		newExample(
			fmt.Sprintf("Write a Nix derivation for the package '%s'", name),
			fmt.Sprintf("Here's the Nix derivation:\n\n```nix\n%s\n```", d.Content),
			map[string]any{
				"type":    "package_definition",
				"package": name,
				"path":    d.Path,
			},
			models.SourceNixpkgs,
		),
	}

	if m := versionRE.FindStringSubmatch(d.Content); m != nil {
		examples = append(examples, newExample(
			fmt.Sprintf("How do I specify the version for %s in Nix?", name),
			fmt.Sprintf("You can specify the version using the `version` attribute:\n\n```nix\nversion = %q;\n```", m[1]),
			map[string]any{
				"type":    "package_version",
				"package": name,
				"version": m[1],
			},
			models.SourceNixpkgs,
		))
	}

	if m := fetchurlRE.FindString(d.Content); m != "" {
		examples = append(examples, newExample(
			fmt.Sprintf("How do I fetch a source tarball in Nix for %s?", name),
			fmt.Sprintf("Use `fetchurl` with the URL and hash:\n\n```nix\n%s\n```", m),
			map[string]any{
				"type":    "fetcher",
				"fetcher": "fetchurl",
			},
			models.SourceNixpkgs,
		))
	}

	return examples
}

func newExample(prompt, completion string, metadata map[string]any, source string) models.Example {
	return models.Example{
		Prompt:     prompt,
		Completion: completion,
		Metadata:   metadata,
		Source:     source,
		Timestamp:  time.Now(),
	}
}

// lowerFirst lowercases the first rune so a description slots into a
// "How do I ..." phrasing.
func lowerFirst(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
