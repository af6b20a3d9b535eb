// Package config loads teak's TOML configuration from the XDG config
// directory, merging user values over built-in defaults. A missing config
// file is not an error; defaults apply.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type EditorOptions struct {
	TabWidth int  `toml:"tab-width"`
	ReadOnly bool `toml:"read-only"`
}

type Theme struct {
	Foreground           string `toml:"foreground"`
	Background           string `toml:"background"`
	StatuslineForeground string `toml:"statusline-foreground"`
	StatuslineBackground string `toml:"statusline-background"`
	SelectionForeground  string `toml:"selection-foreground"`
	SelectionBackground  string `toml:"selection-background"`
	SyntaxKeyword        string `toml:"syntax-keyword"`
	SyntaxString         string `toml:"syntax-string"`
	SyntaxComment        string `toml:"syntax-comment"`
	SyntaxType           string `toml:"syntax-type"`
	SyntaxFunction       string `toml:"syntax-function"`
	SyntaxNumber         string `toml:"syntax-number"`
}

type Config struct {
	Editor EditorOptions `toml:"editor"`
	Theme  Theme         `toml:"theme"`
	Debug  bool          `toml:"debug"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			TabWidth: 4,
		},
		Theme: Theme{
			Foreground:           "#B3B1AD",
			Background:           "#0A0E14",
			StatuslineForeground: "#B3B1AD",
			StatuslineBackground: "#0F1419",
			SelectionForeground:  "#B3B1AD",
			SelectionBackground:  "#27425A",
			SyntaxKeyword:        "#FFA759",
			SyntaxString:         "#BAE67E",
			SyntaxComment:        "#5C6773",
			SyntaxType:           "#5CCFE6",
			SyntaxFunction:       "#FFD173",
			SyntaxNumber:         "#D4BFFF",
		},
	}
}

// Load reads the user config and merges it over Default. A missing file
// yields the defaults; a malformed file is an error.
func Load() (Config, error) {
	cfg := Default()
	path, err := Path()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	var user Config
	if _, err := toml.Decode(string(data), &user); err != nil {
		return cfg, err
	}
	merge(&cfg, user)
	return cfg, nil
}

func merge(dst *Config, src Config) {
	if src.Editor.TabWidth > 0 {
		dst.Editor.TabWidth = src.Editor.TabWidth
	}
	if src.Editor.ReadOnly {
		dst.Editor.ReadOnly = true
	}
	if src.Debug {
		dst.Debug = true
	}
	mergeTheme(&dst.Theme, src.Theme)
}

func mergeTheme(dst *Theme, src Theme) {
	if src.Foreground != "" {
		dst.Foreground = src.Foreground
	}
	if src.Background != "" {
		dst.Background = src.Background
	}
	if src.StatuslineForeground != "" {
		dst.StatuslineForeground = src.StatuslineForeground
	}
	if src.StatuslineBackground != "" {
		dst.StatuslineBackground = src.StatuslineBackground
	}
	if src.SelectionForeground != "" {
		dst.SelectionForeground = src.SelectionForeground
	}
	if src.SelectionBackground != "" {
		dst.SelectionBackground = src.SelectionBackground
	}
	if src.SyntaxKeyword != "" {
		dst.SyntaxKeyword = src.SyntaxKeyword
	}
	if src.SyntaxString != "" {
		dst.SyntaxString = src.SyntaxString
	}
	if src.SyntaxComment != "" {
		dst.SyntaxComment = src.SyntaxComment
	}
	if src.SyntaxType != "" {
		dst.SyntaxType = src.SyntaxType
	}
	if src.SyntaxFunction != "" {
		dst.SyntaxFunction = src.SyntaxFunction
	}
	if src.SyntaxNumber != "" {
		dst.SyntaxNumber = src.SyntaxNumber
	}
}

// Dir returns teak's config directory, honoring TEAK_CONFIG_HOME and
// XDG_CONFIG_HOME overrides.
func Dir() (string, error) {
	if v := os.Getenv("TEAK_CONFIG_HOME"); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "teak"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "teak"), nil
}

// Path returns the config file location inside Dir.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
