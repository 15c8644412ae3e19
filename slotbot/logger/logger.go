package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorWhite  = "\033[37m"
)

const prefix = "[SlotBot]"

type LogType string

const (
	TypeCommand LogType = "CMD"
	TypeDB      LogType = "DB"
	TypeSystem  LogType = "SYS"
	TypeError   LogType = "ERR"
	TypePolicy  LogType = "POL"
)

// gateway and rest chatter from disgo
var skippedMessages = []string{
	"locking buckets",
	"unlocking buckets",
	"gateway event",
	"cleaning up bucket",
	"cleaned up rate limit buckets",
	"binary message received",
	"received gateway message",
	"opening gateway connection",
	"locking gateway rate limiter",
	"unlocking gateway rate limiter",
	"sending gateway command",
	"new request",
	"new response",
	"locking rest bucket",
	"unlocking rest bucket",
	"rate limit response headers",
	"sending heartbeat",
}

type CustomHandler struct {
	opts   *slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	color  bool
	attrs  []slog.Attr
	groups []string
}

type HandlerOpt func(*CustomHandler)

func WithLevel(level slog.Leveler) HandlerOpt {
	return func(h *CustomHandler) {
		h.opts.Level = level
	}
}

// WithWriter sends output to w without colour codes.
func WithWriter(w io.Writer) HandlerOpt {
	return func(h *CustomHandler) {
		h.out = w
		h.color = false
	}
}

func WithSource(addSource bool) HandlerOpt {
	return func(h *CustomHandler) {
		h.opts.AddSource = addSource
	}
}

func NewHandler(opts ...HandlerOpt) *CustomHandler {
	h := &CustomHandler{
		opts:  &slog.HandlerOptions{Level: slog.LevelInfo},
		out:   os.Stdout,
		mu:    &sync.Mutex{},
		color: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &c
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	c := *h
	c.groups = append(append([]string(nil), h.groups...), name)
	return &c
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	if shouldSkipLog(&r) {
		return nil
	}

	levelColor, levelText := levelStyle(r.Level)
	fields := collect(&r, h.attrs)

	message := r.Message
	if r.Level >= slog.LevelError {
		location := fields.get("error_location")
		if location == "" && h.opts.AddSource {
			location = sourceLocation(r.PC)
		}
		if location != "" {
			message = fmt.Sprintf("%s (%s)", message, location)
		}
		if details := fields.get("error"); details != "" {
			message = fmt.Sprintf("%s: %s", message, details)
		}
	}
	if cmd, user := fields.get("name"), fields.get("user_name"); cmd != "" && user != "" {
		message = fmt.Sprintf("%s [%s by %s]", message, cmd, user)
	}
	if status := fields.get("status"); status != "" {
		message = fmt.Sprintf("%s [Status: %s]", message, status)
	}
	if took := fields.get("took"); took != "" {
		message = fmt.Sprintf("%s (took %s)", message, took)
	}

	var extra strings.Builder
	for _, key := range fields.order {
		if isInternalAttr(key) {
			continue
		}
		fmt.Fprintf(&extra, " %s=%s", key, fields.get(key))
	}

	line := fmt.Sprintf("%s [%s] [%s] [%s] %s%s",
		prefix,
		r.Time.Format("15:04:05"),
		levelText,
		logType(fields.get("type")),
		message,
		extra.String(),
	)
	if h.color {
		line = fmt.Sprintf("%s%s [%s] [%s%s%s] [%s] %s%s%s",
			colorWhite, prefix, r.Time.Format("15:04:05"),
			levelColor, levelText, colorWhite,
			logType(fields.get("type")), message, extra.String(), colorReset)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.out, line)
	return err
}

func levelStyle(level slog.Level) (string, string) {
	switch {
	case level >= slog.LevelError:
		return colorRed, "ERROR"
	case level >= slog.LevelWarn:
		return colorYellow, "WARN"
	case level >= slog.LevelInfo:
		return colorGreen, "INFO"
	default:
		return colorPurple, "DEBUG"
	}
}

type fieldMap struct {
	values map[string]string
	order  []string
}

func (f fieldMap) get(key string) string {
	return f.values[key]
}

func collect(r *slog.Record, base []slog.Attr) fieldMap {
	m := fieldMap{values: make(map[string]string)}
	add := func(a slog.Attr) {
		if a.Key == "" {
			return
		}
		if _, seen := m.values[a.Key]; !seen {
			m.order = append(m.order, a.Key)
		}
		m.values[a.Key] = a.Value.Resolve().String()
	}
	for _, a := range base {
		add(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(a)
		return true
	})
	return m
}

func shouldSkipLog(r *slog.Record) bool {
	msg := strings.ToLower(r.Message)
	for _, skip := range skippedMessages {
		if strings.Contains(msg, skip) {
			return true
		}
	}
	return false
}

func logType(tag string) LogType {
	switch tag {
	case "cmd":
		return TypeCommand
	case "db":
		return TypeDB
	case "error":
		return TypeError
	case "policy":
		return TypePolicy
	default:
		return TypeSystem
	}
}

func sourceLocation(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	frame, _ := frames.Next()
	if frame.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}

func isInternalAttr(key string) bool {
	switch key {
	case "type", "name", "user_name", "status", "took", "error", "error_location":
		return true
	}
	return false
}
