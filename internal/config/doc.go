// Package config provides the configuration record for quill.
//
// Configuration is resolved in three layers, higher layers overriding
// lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← QUILL_THEME, QUILL_TAB_WIDTH, ...
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ~/.config/quill/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The file is TOML (".toml") or YAML (".yaml", ".yml"). Unknown keys are
// rejected so typos surface at startup. A missing default file is not an
// error; a missing file named on the command line is.
//
// # Basic Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//		return err
//	}
//	width := cfg.TabWidthFor("go")
package config
