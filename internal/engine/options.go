package engine

import (
	"time"

	"github.com/dshills/quill/internal/engine/event"
)

// Default configuration values.
const (
	DefaultHistoryLimit = event.DefaultLimit
	// ScratchName is the display name of a document without a path.
	ScratchName = "[No Name]"
	// PlainText is the language of documents nothing more specific fits.
	PlainText = "text"
)

// Option configures a State during creation.
type Option func(*stateConfig)

type stateConfig struct {
	text          string
	path          string
	language      string
	lineEnding    *LineEnding
	normalize     bool
	modTime       time.Time
	now           func() time.Time
	mergeTouching bool
	historyLimit  int
	chunkTarget   int
}

// WithText sets the initial content.
func WithText(text string) Option {
	return func(c *stateConfig) {
		c.text = text
	}
}

// WithPath binds the state to a file path.
func WithPath(path string) Option {
	return func(c *stateConfig) {
		c.path = path
	}
}

// WithLanguage sets the language name used for highlighting and
// language-specific editing.
func WithLanguage(lang string) Option {
	return func(c *stateConfig) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithLineEnding overrides line ending detection.
func WithLineEnding(le LineEnding) Option {
	return func(c *stateConfig) {
		c.lineEnding = &le
	}
}

// WithNormalizedLineEndings stores CRLF text as LF in the buffer. The
// detected line ending is kept for saving.
func WithNormalizedLineEndings(normalize bool) Option {
	return func(c *stateConfig) {
		c.normalize = normalize
	}
}

// WithModTime records the modification time of the file on open.
func WithModTime(t time.Time) Option {
	return func(c *stateConfig) {
		c.modTime = t
	}
}

// WithClock sets the time source for change stamps.
func WithClock(now func() time.Time) Option {
	return func(c *stateConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMergeTouching controls whether touching selections fuse.
func WithMergeTouching(merge bool) Option {
	return func(c *stateConfig) {
		c.mergeTouching = merge
	}
}

// WithHistoryLimit bounds the undo history.
func WithHistoryLimit(n int) Option {
	return func(c *stateConfig) {
		if n > 0 {
			c.historyLimit = n
		}
	}
}

// WithChunkTarget sets the buffer chunk size.
func WithChunkTarget(n int) Option {
	return func(c *stateConfig) {
		if n > 0 {
			c.chunkTarget = n
		}
	}
}
