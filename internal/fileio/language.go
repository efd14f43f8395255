package fileio

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/dshills/quill/internal/engine"
)

// extensions maps lower-case file extensions to language names. Names are
// chroma lexer names or aliases where chroma has one.
var extensions = map[string]string{
	".go":    "go",
	".rs":    "rust",
	".py":    "python",
	".pyi":   "python",
	".js":    "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".jsx":   "javascript",
	".ts":    "typescript",
	".tsx":   "typescript",
	".c":     "c",
	".h":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".cxx":   "cpp",
	".hpp":   "cpp",
	".hh":    "cpp",
	".cppm":  "cpp",
	".ixx":   "cpp",
	".java":  "java",
	".kt":    "kotlin",
	".rb":    "ruby",
	".lua":   "lua",
	".sh":    "bash",
	".bash":  "bash",
	".zsh":   "bash",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".md":    "markdown",
	".html":  "html",
	".htm":   "html",
	".css":   "css",
	".sql":   "sql",
	".zig":   "zig",
	".hs":    "haskell",
	".typ":   "typst",
	".txt":   engine.PlainText,
	".proto": "protobuf",
}

// filenames maps well known base names without a useful extension.
var filenames = map[string]string{
	"Makefile":      "makefile",
	"GNUmakefile":   "makefile",
	"Dockerfile":    "docker",
	"go.mod":        "go",
	".bashrc":       "bash",
	".bash_profile": "bash",
	".zshrc":        "bash",
}

// interpreters maps shebang interpreter names to languages.
var interpreters = map[string]string{
	"sh":      "bash",
	"bash":    "bash",
	"zsh":     "bash",
	"python":  "python",
	"python3": "python",
	"node":    "javascript",
	"ruby":    "ruby",
	"lua":     "lua",
	"perl":    "perl",
}

// DetectLanguage names the language of a file from its path and, when the
// path is not conclusive, the first line of its content. Unknown files are
// engine.PlainText.
func DetectLanguage(path, firstLine string) string {
	base := filepath.Base(path)
	if lang, ok := filenames[base]; ok {
		return lang
	}
	if lang, ok := extensions[strings.ToLower(filepath.Ext(base))]; ok {
		return lang
	}
	if lang := fromShebang(firstLine); lang != "" {
		return lang
	}
	if path != "" {
		if lexer := lexers.Match(base); lexer != nil {
			return NormalizeLanguage(lexer.Config().Name)
		}
	}
	return engine.PlainText
}

// fromShebang reads "#!/usr/bin/env bash" and "#!/bin/sh -e" style lines.
func fromShebang(line string) string {
	rest, ok := strings.CutPrefix(line, "#!")
	if !ok {
		return ""
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	prog := filepath.Base(fields[0])
	if prog == "env" {
		// Skip env flags such as -S.
		prog = ""
		for _, f := range fields[1:] {
			if !strings.HasPrefix(f, "-") {
				prog = f
				break
			}
		}
	}
	if lang, ok := interpreters[prog]; ok {
		return lang
	}
	// python3.12 and similar versioned names
	if i := strings.IndexAny(prog, "0123456789"); i > 0 {
		return interpreters[prog[:i]]
	}
	return ""
}

// NormalizeLanguage turns a chroma lexer name into the language name used
// by documents: lower case with "C++" as "cpp" and plain text as
// engine.PlainText.
func NormalizeLanguage(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "plaintext", "plain text", "fallback", "text only":
		return engine.PlainText
	case "c++":
		return "cpp"
	case "c#":
		return "csharp"
	}
	return strings.ReplaceAll(n, " ", "-")
}
