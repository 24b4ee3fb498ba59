package builder

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/demod-llc/nixtune/models"
)

func TestFromPackage_ExampleCount(t *testing.T) {
	tests := []struct {
		name  string
		pname string
		want  int
	}{
		{name: "normal name gets quick config", pname: "firefox", want: 3},
		{name: "three letter name gets quick config", pname: "git", want: 3},
		{name: "two letter alias skips quick config", pname: "fd", want: 2},
		{name: "single letter alias skips quick config", pname: "r", want: 2},
		{name: "empty pname defaults to unknown", pname: "", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromPackage(models.PackageRecord{Pname: tt.pname, AttrName: tt.pname})
			if len(got) != tt.want {
				t.Errorf("FromPackage() produced %d examples, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFromPackage_Installation(t *testing.T) {
	examples := FromPackage(models.PackageRecord{
		AttrName:    "firefox",
		Pname:       "firefox",
		Version:     "120.0",
		Description: "A web browser.",
	})

	install := examples[0]
	wantPrompt := "How do I install firefox on NixOS?"
	if install.Prompt != wantPrompt {
		t.Errorf("prompt = %q, want %q", install.Prompt, wantPrompt)
	}
	wantSnippet := "environment.systemPackages = with pkgs; [ firefox ];"
	if !strings.Contains(install.Completion, wantSnippet) {
		t.Errorf("completion missing %q:\n%s", wantSnippet, install.Completion)
	}
	// Trailing period stripped before interpolation.
	if !strings.Contains(install.Completion, "(A web browser)") {
		t.Errorf("completion did not strip trailing period:\n%s", install.Completion)
	}
	if !strings.Contains(install.Completion, "Current version: 120.0") {
		t.Errorf("completion missing version:\n%s", install.Completion)
	}
	if install.Metadata["type"] != "package_installation" {
		t.Errorf("metadata type = %v, want package_installation", install.Metadata["type"])
	}
	if install.Source != models.SourceSearchAPI {
		t.Errorf("source = %q, want %q", install.Source, models.SourceSearchAPI)
	}
}

func TestFromPackage_AttributeLookupLowercasesPrompt(t *testing.T) {
	examples := FromPackage(models.PackageRecord{AttrName: "vscode", Pname: "VSCode"})
	lookup := examples[1]

	if want := "What is the NixOS package attribute for vscode?"; lookup.Prompt != want {
		t.Errorf("prompt = %q, want %q", lookup.Prompt, want)
	}
	if !strings.Contains(lookup.Completion, "The attribute is `vscode`") {
		t.Errorf("completion missing attribute:\n%s", lookup.Completion)
	}
}

func TestFromPackage_MissingFieldsNeverEmpty(t *testing.T) {
	for _, ex := range FromPackage(models.PackageRecord{}) {
		if ex.Prompt == "" || ex.Completion == "" {
			t.Errorf("empty prompt or completion for zero record: %+v", ex)
		}
		if !strings.Contains(ex.Prompt, models.Unknown) {
			t.Errorf("prompt %q does not use the unknown sentinel", ex.Prompt)
		}
	}
}

func TestFromOption(t *testing.T) {
	examples := FromOption(models.OptionRecord{
		Name:        "services.openssh.enable",
		Description: "Whether to enable sshd.",
		Type:        "boolean",
		Default:     json.RawMessage("false"),
		Example:     json.RawMessage("true"),
	})

	if len(examples) != 2 {
		t.Fatalf("FromOption() produced %d examples, want 2", len(examples))
	}

	howto, explanation := examples[0], examples[1]

	if want := "How do I whether to enable sshd in NixOS?"; howto.Prompt != want {
		t.Errorf("howto prompt = %q, want %q", howto.Prompt, want)
	}
	if want := "What is the NixOS option services.openssh.enable for?"; explanation.Prompt != want {
		t.Errorf("explanation prompt = %q, want %q", explanation.Prompt, want)
	}

	for _, ex := range examples {
		if !strings.Contains(ex.Completion, "Type: boolean") {
			t.Errorf("completion missing type:\n%s", ex.Completion)
		}
		if !strings.Contains(ex.Completion, "Default: false") {
			t.Errorf("completion missing default:\n%s", ex.Completion)
		}
		// The example value must appear in both completions.
		if !strings.Contains(ex.Completion, "true") {
			t.Errorf("completion missing example value:\n%s", ex.Completion)
		}
	}

	if !strings.Contains(howto.Completion, "services.openssh.enable = true;") {
		t.Errorf("howto completion missing example block:\n%s", howto.Completion)
	}
	if !strings.Contains(explanation.Completion, "Example value: `true`") {
		t.Errorf("explanation completion missing example value:\n%s", explanation.Completion)
	}
}

func TestFromOption_EmptyDescription(t *testing.T) {
	examples := FromOption(models.OptionRecord{Name: "nix.settings.cores"})

	if want := "How do I configure this option in NixOS?"; examples[0].Prompt != want {
		t.Errorf("prompt = %q, want %q", examples[0].Prompt, want)
	}
	if !strings.Contains(examples[1].Completion, "option configure this option.") {
		t.Errorf("explanation did not use generic phrase:\n%s", examples[1].Completion)
	}
}

func TestFromOption_StructuredExampleValue(t *testing.T) {
	examples := FromOption(models.OptionRecord{
		Name:    "networking.firewall.allowedTCPPorts",
		Type:    "list of port numbers",
		Example: json.RawMessage(`[22,80,443]`),
	})

	howto := examples[0]
	want := "[\n  22,\n  80,\n  443\n]"
	if !strings.Contains(howto.Completion, want) {
		t.Errorf("howto completion missing pretty-printed list:\n%s", howto.Completion)
	}
	if !strings.Contains(examples[1].Completion, "Example value: `[22,80,443]`") {
		t.Errorf("explanation missing compact list:\n%s", examples[1].Completion)
	}
}

func TestFromOption_AbsentAndNullDefaults(t *testing.T) {
	tests := []struct {
		name    string
		def     json.RawMessage
		wantDef string
	}{
		{name: "absent default", def: nil, wantDef: "Default: none"},
		{name: "explicit null default", def: json.RawMessage("null"), wantDef: "Default: null"},
		{name: "string default", def: json.RawMessage(`"auto"`), wantDef: `Default: "auto"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			examples := FromOption(models.OptionRecord{Name: "nix.settings.max-jobs", Default: tt.def})
			for _, ex := range examples {
				if !strings.Contains(ex.Completion, tt.wantDef) {
					t.Errorf("completion missing %q:\n%s", tt.wantDef, ex.Completion)
				}
			}
		})
	}
}

func TestFromFlake(t *testing.T) {
	examples := FromFlake(models.FlakeRecord{
		Name:        "home-manager",
		Description: "Manage a user environment using Nix.",
		Repo:        "nix-community/home-manager",
	})

	if len(examples) != 2 {
		t.Fatalf("FromFlake() produced %d examples, want 2", len(examples))
	}

	usage := examples[0]
	if want := "How do I use the home-manager flake in NixOS?"; usage.Prompt != want {
		t.Errorf("prompt = %q, want %q", usage.Prompt, want)
	}
	if !strings.Contains(usage.Completion, `inputs.home-manager.url = "github:nix-community/home-manager";`) {
		t.Errorf("usage completion missing input line:\n%s", usage.Completion)
	}
	if !strings.Contains(examples[1].Completion, "Manage a user environment using Nix\n") {
		t.Errorf("description completion did not strip trailing period:\n%s", examples[1].Completion)
	}
}

func TestFromWikiSection(t *testing.T) {
	tests := []struct {
		name   string
		blocks []models.ContentBlock
		want   int
	}{
		{
			name: "text and code emits a guide",
			blocks: []models.ContentBlock{
				{Kind: models.BlockText, Text: "Do X."},
				{Kind: models.BlockCode, Text: "{ a = 1; }"},
			},
			want: 1,
		},
		{
			name: "prose only emits nothing",
			blocks: []models.ContentBlock{
				{Kind: models.BlockText, Text: "Just prose."},
			},
			want: 0,
		},
		{
			name: "code only emits nothing",
			blocks: []models.ContentBlock{
				{Kind: models.BlockCode, Text: "{ b = 2; }"},
			},
			want: 0,
		},
		{name: "empty section emits nothing", blocks: nil, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromWikiSection(models.WikiSection{
				Topic:   "Flakes",
				Section: "Enable flakes",
				Blocks:  tt.blocks,
			})
			if len(got) != tt.want {
				t.Errorf("FromWikiSection() produced %d examples, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFromWikiSection_CompletionShape(t *testing.T) {
	examples := FromWikiSection(models.WikiSection{
		Topic:   "Flakes",
		Section: "Enable Flakes",
		Blocks: []models.ContentBlock{
			{Kind: models.BlockText, Text: "Do X."},
			{Kind: models.BlockText, Text: "Do Y."},
			{Kind: models.BlockText, Text: "Do Z."},
			{Kind: models.BlockCode, Text: "{ a = 1; }"},
			{Kind: models.BlockCode, Text: "{ b = 2; }"},
		},
	})
	if len(examples) != 1 {
		t.Fatalf("FromWikiSection() produced %d examples, want 1", len(examples))
	}

	guide := examples[0]
	if want := "How do I enable flakes in NixOS?"; guide.Prompt != want {
		t.Errorf("prompt = %q, want %q", guide.Prompt, want)
	}
	for _, want := range []string{"Do X.", "Do Y.", "{ a = 1; }"} {
		if !strings.Contains(guide.Completion, want) {
			t.Errorf("completion missing %q:\n%s", want, guide.Completion)
		}
	}
	// Only the first two text blocks and the first code block survive.
	for _, banned := range []string{"Do Z.", "{ b = 2; }"} {
		if strings.Contains(guide.Completion, banned) {
			t.Errorf("completion should not contain %q:\n%s", banned, guide.Completion)
		}
	}
}

func TestFromForumTopic(t *testing.T) {
	withCode := "Use an overlay:\n\n```nix\nfinal: prev: { }\n```\n\nThat fixes it."

	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{name: "answer with fenced code", answer: withCode, want: 1},
		{name: "answer with plain fence", answer: "```\nnix-shell -p hello\n```", want: 1},
		{name: "answer without code", answer: "Just restart the service.", want: 0},
		{name: "empty answer", answer: "", want: 0},
		{name: "unclosed fence", answer: "```nix\nbroken", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromForumTopic(models.ForumTopic{
				Title:  "How do I override a package?",
				Answer: tt.answer,
			})
			if len(got) != tt.want {
				t.Errorf("FromForumTopic() produced %d examples, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFromForumTopic_TruncatesAnswer(t *testing.T) {
	long := "```nix\n{ }\n```\n" + strings.Repeat("x", 2*MaxAnswerLen)
	examples := FromForumTopic(models.ForumTopic{Title: "Long answer", Answer: long})
	if len(examples) != 1 {
		t.Fatalf("FromForumTopic() produced %d examples, want 1", len(examples))
	}

	got := examples[0].Completion
	if len([]rune(got)) != MaxAnswerLen {
		t.Errorf("completion length = %d runes, want %d", len([]rune(got)), MaxAnswerLen)
	}
	// Hard cut, not word-boundary aware: the completion is a strict
	// prefix of the answer.
	if !strings.HasPrefix(long, got) {
		t.Error("completion is not a prefix of the answer")
	}
}

func TestFromPackageDef(t *testing.T) {
	full := `{ lib, stdenv, fetchurl }:

stdenv.mkDerivation rec {
  pname = "hello";
  version = "2.12.1";

  src = fetchurl {
    url = "mirror://gnu/hello/hello-2.12.1.tar.gz";
    sha256 = "...";
  };
}`

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "version and fetchurl", content: full, want: 3},
		{name: "version only", content: `version = "1.0";`, want: 2},
		{name: "bare definition", content: "{ }", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromPackageDef(models.PackageDef{Name: "hello", Path: "pkgs/hello/default.nix", Content: tt.content})
			if len(got) != tt.want {
				t.Errorf("FromPackageDef() produced %d examples, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFromPackageDef_VersionExample(t *testing.T) {
	examples := FromPackageDef(models.PackageDef{Name: "hello", Content: `version = "2.12.1";`})
	if len(examples) != 2 {
		t.Fatalf("FromPackageDef() produced %d examples, want 2", len(examples))
	}
	if !strings.Contains(examples[1].Completion, `version = "2.12.1";`) {
		t.Errorf("version completion missing attribute:\n%s", examples[1].Completion)
	}
	if examples[1].Metadata["version"] != "2.12.1" {
		t.Errorf("metadata version = %v, want 2.12.1", examples[1].Metadata["version"])
	}
}

func TestLowerFirst(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Whether to enable sshd", want: "whether to enable sshd"},
		{in: "already lower", want: "already lower"},
		{in: "É", want: "é"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		if got := lowerFirst(tt.in); got != tt.want {
			t.Errorf("lowerFirst(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
