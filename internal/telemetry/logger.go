package telemetry

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"
)

// Logger writes leveled events with a field map, JSON when backed by a
// file and plain text otherwise.
type Logger struct {
	mu  sync.Mutex
	l   *clog.Logger
	out io.WriteCloser
}

type Options struct {
	Path   string
	Level  string
	Prefix string
}

func New(opts Options) (*Logger, error) {
	level, err := clog.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil || opts.Level == "" {
		level = clog.InfoLevel
	}
	var (
		w         io.WriteCloser = nopCloser{Writer: os.Stderr}
		formatter                = clog.TextFormatter
	)
	if opts.Path != "" {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w = f
		formatter = clog.JSONFormatter
	}
	return &Logger{
		l: clog.NewWithOptions(w, clog.Options{
			Level:           level,
			Prefix:          opts.Prefix,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339Nano,
			Formatter:       formatter,
		}),
		out: w,
	}, nil
}

// NewWriter logs JSON to w; used by tests to capture output.
func NewWriter(w io.Writer, level string) *Logger {
	lvl, err := clog.ParseLevel(level)
	if err != nil {
		lvl = clog.DebugLevel
	}
	return &Logger{
		l:   clog.NewWithOptions(w, clog.Options{Level: lvl, Formatter: clog.JSONFormatter}),
		out: nopCloser{Writer: w},
	}
}

// Nop discards everything.
func Nop() *Logger {
	return NewWriter(io.Discard, "error")
}

func (l *Logger) Debug(msg string, fields map[string]any) {
	l.log(clog.DebugLevel, msg, fields)
}

func (l *Logger) Info(msg string, fields map[string]any) {
	l.log(clog.InfoLevel, msg, fields)
}

func (l *Logger) Warn(msg string, fields map[string]any) {
	l.log(clog.WarnLevel, msg, fields)
}

func (l *Logger) Error(msg string, fields map[string]any) {
	l.log(clog.ErrorLevel, msg, fields)
}

func (l *Logger) log(level clog.Level, msg string, fields map[string]any) {
	if l == nil || l.l == nil {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.l.Log(level, msg, kv...)
}

func (l *Logger) Close() error {
	if l == nil || l.out == nil {
		return nil
	}
	return l.out.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
