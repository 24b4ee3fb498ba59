package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the run configuration: which queries to issue per source,
// which channel to search, and how the output is framed. Values come from
// an optional YAML file layered over the built-in defaults; per-run limits
// come from CLI flags, not from here.
type Config struct {
	Channel        string   `yaml:"channel"`
	SystemPrompt   string   `yaml:"system_prompt"`
	PackageQueries []string `yaml:"package_queries"`
	OptionQueries  []string `yaml:"option_queries"`
	FlakeQueries   []string `yaml:"flake_queries"`
	WikiTopics     []string `yaml:"wiki_topics"`
	// EnglishOnly drops non-English Discourse topics at the adapter
	// boundary. Off by default: the upstream corpus is unfiltered.
	EnglishOnly bool `yaml:"english_only"`
}

// DefaultConfig returns the built-in curated query lists. They aim for
// broad coverage of the ecosystem: browsers, editors, shells, toolchains,
// servers, gaming, VPNs, and virtualisation.
func DefaultConfig() *Config {
	return &Config{
		Channel: "unstable",
		PackageQueries: []string{
			"firefox", "chromium", "google-chrome", "brave", "librewolf",
			"vim", "neovim", "emacs", "helix", "vscode", "zed",
			"tmux", "zellij", "htop", "btop", "starship",
			"git", "curl", "ripgrep", "fd", "jq", "fzf",
			"python3", "nodejs", "go", "rustc", "zig", "gcc",
			"nginx", "caddy", "apache-httpd", "traefik",
			"steam", "wine", "lutris", "gamescope", "heroic",
			"tailscale", "wireguard", "zerotierone", "openvpn",
			"podman", "docker", "libvirt", "virt-manager", "kubernetes",
		},
		OptionQueries: []string{
			"services.openssh", "sshd", "ssh",
			"services.nginx", "services.caddy", "services.httpd",
			"services.postgresql", "services.mysql", "services.redis",
			"fonts", "fontconfig",
			"i18n", "time.timeZone", "locale",
			"boot.loader", "grub", "systemd-boot",
			"users.users", "users.mutableUsers", "security.sudo",
			"networking.networkmanager", "networking.firewall",
			"sound", "hardware.pulseaudio", "services.pipewire",
			"services.xserver", "desktopManager", "displayManager", "wayland",
			"virtualisation.podman", "virtualisation.docker", "virtualisation.libvirtd",
			"services.tailscale", "networking.wireguard", "nix.settings",
		},
		FlakeQueries: []string{
			"flake-utils", "home-manager", "nixvim", "devos",
			"impermanence", "disko", "lanzaboote", "sops-nix",
			"nix-colors", "nur", "agenix", "nixos-hardware",
			"flake-parts", "nixpkgs", "crane", "fenix",
		},
		WikiTopics: []string{
			"NixOS", "Flakes", "Overlays", "Home_Manager",
			"Docker", "Kubernetes", "Development_environment",
		},
	}
}

// LoadConfig reads a YAML config file and layers it over the defaults.
// A missing file is not an error; empty lists in the file keep their
// default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if file.Channel != "" {
		cfg.Channel = file.Channel
	}
	if file.SystemPrompt != "" {
		cfg.SystemPrompt = file.SystemPrompt
	}
	if len(file.PackageQueries) > 0 {
		cfg.PackageQueries = file.PackageQueries
	}
	if len(file.OptionQueries) > 0 {
		cfg.OptionQueries = file.OptionQueries
	}
	if len(file.FlakeQueries) > 0 {
		cfg.FlakeQueries = file.FlakeQueries
	}
	if len(file.WikiTopics) > 0 {
		cfg.WikiTopics = file.WikiTopics
	}
	cfg.EnglishOnly = file.EnglishOnly

	return cfg, nil
}
