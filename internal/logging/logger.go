package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dropwatch/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level            string
	Format           string
	OutputPaths      []string
	ErrorOutputPaths []string
}

// New constructs a slog logger from options. The console format folds the
// component attribute into the message prefix; the json format emits one
// object per line with ts/level/msg keys. Caller locations are attached only
// at debug level.
func New(opts Options) (*slog.Logger, error) {
	minLevel := new(slog.LevelVar)
	minLevel.Set(levelFromString(opts.Level))
	withCaller := minLevel.Level() <= slog.LevelDebug

	sink, err := combineSinks(opts.OutputPaths, opts.ErrorOutputPaths)
	if err != nil {
		return nil, err
	}

	switch format := strings.ToLower(strings.TrimSpace(opts.Format)); format {
	case "console", "":
		return slog.New(newConsoleHandler(sink, minLevel, withCaller)), nil
	case "json":
		return slog.New(newJSONHandler(sink, minLevel, withCaller)), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig creates a logger that writes to stdout and, when a log
// directory is configured, to dropwatch.log inside it.
func NewFromConfig(cfg *config.Config) (*slog.Logger, error) {
	opts := Options{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if cfg == nil {
		return New(opts)
	}

	opts.Level = cfg.Logging.Level
	opts.Format = cfg.Logging.Format
	if cfg.Paths.LogDir != "" {
		if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		logPath := filepath.Join(cfg.Paths.LogDir, "dropwatch.log")
		opts.OutputPaths = append(opts.OutputPaths, logPath)
		opts.ErrorOutputPaths = append(opts.ErrorOutputPaths, logPath)
	}
	return New(opts)
}

func levelFromString(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// combineSinks opens every distinct destination across both path lists and
// fans writes out to all of them. "stdout" and "stderr" are the process
// streams; anything else is an append-mode file.
func combineSinks(pathLists ...[]string) (io.Writer, error) {
	opened := map[string]io.Writer{}
	var order []string

	for _, list := range pathLists {
		for _, path := range list {
			name := strings.TrimSpace(path)
			if name == "" {
				continue
			}
			if _, ok := opened[name]; ok {
				continue
			}
			var w io.Writer
			switch name {
			case "stdout":
				w = os.Stdout
			case "stderr":
				w = os.Stderr
			default:
				if dir := filepath.Dir(name); dir != "." && dir != "" {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						return nil, fmt.Errorf("create log directory for %s: %w", name, err)
					}
				}
				file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
				if err != nil {
					return nil, fmt.Errorf("open log file %s: %w", name, err)
				}
				w = file
			}
			opened[name] = w
			order = append(order, name)
		}
	}

	switch len(order) {
	case 0:
		return os.Stdout, nil
	case 1:
		return opened[order[0]], nil
	}
	writers := make([]io.Writer, 0, len(order))
	for _, name := range order {
		writers = append(writers, opened[name])
	}
	return io.MultiWriter(writers...), nil
}

func newJSONHandler(w io.Writer, minLevel *slog.LevelVar, withCaller bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     minLevel,
		AddSource: withCaller,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.TimeKey:
				attr.Key = "ts"
				if attr.Value.Kind() == slog.KindTime {
					attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
				}
			case slog.LevelKey:
				attr.Key = "level"
				attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
			case slog.MessageKey:
				attr.Key = "msg"
			case slog.SourceKey:
				if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
					attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
				}
			}
			return attr
		},
	})
}
