package generate

import (
	"time"

	"github.com/demod-llc/nixtune/models"
)

const flakeTemplate = `{
  description = "A basic flake";

  inputs = {
    nixpkgs.url = "github:NixOS/nixpkgs/nixos-unstable";
    flake-utils.url = "github:numtide/flake-utils";
  };

  outputs = { self, nixpkgs, flake-utils }:
    flake-utils.lib.eachDefaultSystem (system:
      let
        pkgs = nixpkgs.legacyPackages.${system};
      in
      {
        packages.default = pkgs.hello;

        devShells.default = pkgs.mkShell {
          buildInputs = [ pkgs.hello ];
        };
      }
    );
}`

const overlayExample = `final: prev: {
  # Override an existing package
  mypackage = prev.mypackage.overrideAttrs (oldAttrs: {
    version = "1.2.3";
    src = prev.fetchurl {
      url = "https://example.com/mypackage-1.2.3.tar.gz";
      sha256 = "...";
    };
  });

  # Add a new package
  newpackage = prev.callPackage ./newpackage.nix { };
}`

// ManualExamples returns the curated examples added to every run:
// patterns too common to leave to scraping luck.
func ManualExamples() []models.Example {
	now := time.Now()

	return []models.Example{
		{
			Prompt: "Create a basic Nix flake template",
			Completion: "Here's a basic Nix flake template:\n\n```nix\n" +
				flakeTemplate + "\n```",
			Metadata:  map[string]any{"type": "template", "category": "flake"},
			Source:    models.SourceManual,
			Timestamp: now,
		},
		{
			Prompt: "How do I create a Nix overlay to modify a package?",
			Completion: "Overlays allow you to customize packages. Here's an example:\n\n```nix\n" +
				overlayExample + "\n```\n\nUse it in your configuration:\n\n```nix\nnixpkgs.overlays = [ (import ./overlay.nix) ];\n```",
			Metadata:  map[string]any{"type": "guide", "category": "overlay"},
			Source:    models.SourceManual,
			Timestamp: now,
		},
	}
}
