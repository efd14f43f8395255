package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dshills/quill/internal/action"
	"github.com/dshills/quill/internal/input/key"
	"github.com/dshills/quill/internal/logging"
)

// Config is the complete configuration record.
type Config struct {
	Editor    EditorConfig              `toml:"editor" yaml:"editor"`
	Log       LogConfig                 `toml:"log" yaml:"log"`
	Plugins   PluginConfig              `toml:"plugins" yaml:"plugins"`
	Languages map[string]LanguageConfig `toml:"languages" yaml:"languages"`
	// Keys maps key names such as "Ctrl+K" to action names such as
	// "editor.deleteWordForward", overriding the default bindings.
	Keys map[string]string `toml:"keys" yaml:"keys"`
}

// EditorConfig holds the editing behaviour settings.
type EditorConfig struct {
	AutoSaveEnabled          bool   `toml:"auto_save_enabled" yaml:"auto_save_enabled"`
	AutoSaveIntervalSecs     int    `toml:"auto_save_interval_secs" yaml:"auto_save_interval_secs"`
	AutoIndent               bool   `toml:"auto_indent" yaml:"auto_indent"`
	AutoClosePairs           bool   `toml:"auto_close_pairs" yaml:"auto_close_pairs"`
	TabWidth                 int    `toml:"tab_width" yaml:"tab_width"`
	SoftWrap                 bool   `toml:"soft_wrap" yaml:"soft_wrap"`
	MultiCursorMergeTouching bool   `toml:"multi_cursor_merge_touching" yaml:"multi_cursor_merge_touching"`
	NormalizeLineEndings     bool   `toml:"normalize_line_endings" yaml:"normalize_line_endings"`
	HorizontalScroll         bool   `toml:"horizontal_scroll" yaml:"horizontal_scroll"`
	HistoryLimit             int    `toml:"history_limit" yaml:"history_limit"`
	WideRunes                bool   `toml:"wide_runes" yaml:"wide_runes"`
	SystemClipboard          bool   `toml:"system_clipboard" yaml:"system_clipboard"`
	Theme                    string `toml:"theme" yaml:"theme"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	// File is the log path. Empty discards logs.
	File string `toml:"file" yaml:"file"`
}

// PluginConfig controls the Lua plugin host.
type PluginConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
	// Dir holds *.lua plugins. Empty means the "plugins" directory next to
	// the default config file.
	Dir string `toml:"dir" yaml:"dir"`
}

// LanguageConfig overrides editor settings for one language.
type LanguageConfig struct {
	// TabWidth overrides Editor.TabWidth when positive.
	TabWidth int `toml:"tab_width" yaml:"tab_width"`
}

// Limits for numeric settings.
const (
	MaxTabWidth       = 16
	MaxHistoryLimit   = 100000
	DefaultTabWidth   = 4
	DefaultAutoSave   = 30
	DefaultHistory    = 1000
	DefaultTheme      = "monokai"
	DefaultLogLevel   = "info"
	defaultConfigName = "config.toml"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			AutoSaveEnabled:          false,
			AutoSaveIntervalSecs:     DefaultAutoSave,
			AutoIndent:               true,
			AutoClosePairs:           true,
			TabWidth:                 DefaultTabWidth,
			SoftWrap:                 false,
			MultiCursorMergeTouching: true,
			NormalizeLineEndings:     false,
			HorizontalScroll:         false,
			HistoryLimit:             DefaultHistory,
			WideRunes:                false,
			SystemClipboard:          false,
			Theme:                    DefaultTheme,
		},
		Log:       LogConfig{Level: DefaultLogLevel},
		Plugins:   PluginConfig{Enabled: true},
		Languages: map[string]LanguageConfig{},
		Keys:      map[string]string{},
	}
}

// Dir returns the user configuration directory for quill.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config directory: %w", err)
	}
	return filepath.Join(base, "quill"), nil
}

// DefaultPath returns the path of the default config file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, defaultConfigName), nil
}

// PluginDir returns the directory plugins are loaded from.
func (c *Config) PluginDir() string {
	if c.Plugins.Dir != "" {
		return c.Plugins.Dir
	}
	dir, err := Dir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "plugins")
}

// TabWidthFor returns the tab width for a language.
func (c *Config) TabWidthFor(language string) int {
	if lc, ok := c.Languages[language]; ok && lc.TabWidth > 0 {
		return lc.TabWidth
	}
	return c.Editor.TabWidth
}

// AutoSaveInterval returns the idle time before a buffer is auto-saved.
func (c *Config) AutoSaveInterval() time.Duration {
	return time.Duration(c.Editor.AutoSaveIntervalSecs) * time.Second
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	e := c.Editor
	if e.TabWidth < 1 || e.TabWidth > MaxTabWidth {
		add("editor.tab_width must be between 1 and %d, got %d", MaxTabWidth, e.TabWidth)
	}
	if e.AutoSaveIntervalSecs < 1 {
		add("editor.auto_save_interval_secs must be positive, got %d", e.AutoSaveIntervalSecs)
	}
	if e.HistoryLimit < 1 || e.HistoryLimit > MaxHistoryLimit {
		add("editor.history_limit must be between 1 and %d, got %d", MaxHistoryLimit, e.HistoryLimit)
	}
	if e.Theme == "" {
		add("editor.theme must not be empty")
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		add("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}

	langs := make([]string, 0, len(c.Languages))
	for name := range c.Languages {
		langs = append(langs, name)
	}
	sort.Strings(langs)
	for _, name := range langs {
		if tw := c.Languages[name].TabWidth; tw < 0 || tw > MaxTabWidth {
			add("languages.%s.tab_width must be between 0 and %d, got %d", name, MaxTabWidth, tw)
		}
	}

	keys := make([]string, 0, len(c.Keys))
	for k := range c.Keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := key.Parse(k); err != nil {
			add("keys: %v", err)
		}
		if _, ok := action.Parse(c.Keys[k]); !ok {
			add("keys.%q: unknown action %q", k, c.Keys[k])
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
