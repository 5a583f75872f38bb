// Structured logging setup (log/slog).
package logutil

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

type Format int

const (
	FormatText Format = iota
	FormatJSON
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return 0, errors.Errorf("unknown log format: %q", s)
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.Errorf("unknown log level: %q", s)
}

//----------

type Config struct {
	Level  slog.Level
	Format Format
	File   string // empty: stderr

	// When set, it is initialized with Level and used by the handler, so
	// the level can be changed later.
	LevelVar *slog.LevelVar
}

// Returns the logger and a closer for the log file (if any).
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open log file")
		}
		w, closer = f, f
	}
	return NewWithWriter(w, cfg), closer, nil
}

func NewWithWriter(w io.Writer, cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}
	if cfg.LevelVar != nil {
		cfg.LevelVar.Set(cfg.Level)
		opts.Level = cfg.LevelVar
	}
	var h slog.Handler
	if cfg.Format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

// Discards everything. Useful as a default in libraries and tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

//----------

var dumpConfig = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                4,
}

// Dump is a lazily formatted slog value with the full structure of v.
// The formatting cost is only paid if the record is handled.
func Dump(v interface{}) slog.LogValuer {
	return dumpValue{v}
}

type dumpValue struct{ v interface{} }

func (d dumpValue) LogValue() slog.Value {
	return slog.StringValue(dumpConfig.Sdump(d.v))
}
