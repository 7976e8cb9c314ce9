// SPDX-License-Identifier: MIT

// Package logging is the structured logging ambient concern: a
// RotatingFile (size/interval rotation, configurable stream knobs)
// feeding zerolog as the sink instead of naked log.Printf, so every line
// carries structured fields (engine=, query_id=, elapsed_ms=) the way a
// production search backend would emit them.
package logging

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config describes one named log stream (server, access, security, ...).
type Config struct {
	Enabled  bool
	Filename string
	Rotate   string // e.g. "daily,50MB"
	Compress bool
	Keep     int
}

// Options configures a Logger. Level defaults to info. Streams left
// Enabled=false fall back to stdout so nothing is silently dropped during
// local development.
type Options struct {
	Level    string
	Server   Config
	Access   Config
	Security Config
	Audit    Config
}

// Logger wraps one zerolog.Logger per named stream, each fed by a
// RotatingFile when its Config is enabled.
type Logger struct {
	level    zerolog.Level
	server   zerolog.Logger
	access   zerolog.Logger
	security zerolog.Logger
	audit    zerolog.Logger

	files []*RotatingFile
}

// New builds a Logger from Options, opening any configured rotating files.
func New(opts Options) (*Logger, error) {
	level := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(level)

	l := &Logger{level: level}

	serverWriter, err := l.streamWriter(opts.Server)
	if err != nil {
		return nil, err
	}
	accessWriter, err := l.streamWriter(opts.Access)
	if err != nil {
		return nil, err
	}
	securityWriter, err := l.streamWriter(opts.Security)
	if err != nil {
		return nil, err
	}
	auditWriter, err := l.streamWriter(opts.Audit)
	if err != nil {
		return nil, err
	}

	l.server = zerolog.New(serverWriter).Level(level).With().Timestamp().Logger()
	l.access = zerolog.New(accessWriter).Level(level).With().Timestamp().Logger()
	l.security = zerolog.New(securityWriter).Level(level).With().Timestamp().Logger()
	l.audit = zerolog.New(auditWriter).Level(level).With().Timestamp().Logger()

	return l, nil
}

func (l *Logger) streamWriter(cfg Config) (io.Writer, error) {
	if !cfg.Enabled || cfg.Filename == "" {
		return os.Stdout, nil
	}
	rf, err := NewRotatingFile(cfg.Filename, RotationConfig{
		MaxSize:  sizeOf(cfg.Rotate),
		Interval: intervalOf(cfg.Rotate),
		Compress: cfg.Compress,
		Keep:     cfg.Keep,
	})
	if err != nil {
		return nil, err
	}
	l.files = append(l.files, rf)
	return rf, nil
}

// sizeOf/intervalOf split a combined rotate string like "daily,50MB".
func sizeOf(rotate string) string {
	for _, part := range strings.Split(rotate, ",") {
		p := strings.ToUpper(strings.TrimSpace(part))
		if strings.HasSuffix(p, "B") {
			return strings.TrimSpace(part)
		}
	}
	return ""
}

func intervalOf(rotate string) string {
	for _, part := range strings.Split(rotate, ",") {
		p := strings.ToUpper(strings.TrimSpace(part))
		if !strings.HasSuffix(p, "B") && p != "" {
			return strings.TrimSpace(part)
		}
	}
	return ""
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Close closes every rotating file backing this Logger.
func (l *Logger) Close() {
	for _, rf := range l.files {
		rf.Close()
	}
}

// NewQueryID tags one search for cross-log correlation (engine=, elapsed_ms=
// lines all share it).
func NewQueryID() string {
	return uuid.NewString()
}

// SearchStarted logs the beginning of an orchestrated search.
func (l *Logger) SearchStarted(queryID, query string, pageSize int) {
	l.server.Info().Str("query_id", queryID).Str("query", query).Int("page_size", pageSize).Msg("search started")
}

// SearchCompleted logs the outcome of an orchestrated search.
func (l *Logger) SearchCompleted(queryID string, resultCount int, cached bool, elapsed time.Duration) {
	l.server.Info().
		Str("query_id", queryID).
		Int("result_count", resultCount).
		Bool("cached", cached).
		Int64("elapsed_ms", elapsed.Milliseconds()).
		Msg("search completed")
}

// EngineFailed logs one engine's failure within a search.
func (l *Logger) EngineFailed(queryID, engine string, err error, elapsed time.Duration) {
	l.server.Warn().
		Str("query_id", queryID).
		Str("engine", engine).
		Err(err).
		Int64("elapsed_ms", elapsed.Milliseconds()).
		Msg("engine failed")
}

// EngineQuarantined logs an engine crossing the consecutive-failure
// threshold and entering quarantine.
func (l *Logger) EngineQuarantined(engine string, recoveryDeadline time.Time) {
	l.server.Warn().
		Str("engine", engine).
		Time("recovery_deadline", recoveryDeadline).
		Msg("engine quarantined")
}

// Debug/Info/Warn/Error are the general-purpose server-log entry points.
func (l *Logger) Debug(msg string, fields map[string]any) { l.emit(l.server.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields map[string]any)  { l.emit(l.server.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields map[string]any)  { l.emit(l.server.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields map[string]any) { l.emit(l.server.Error(), msg, fields) }

func (l *Logger) emit(event *zerolog.Event, msg string, fields map[string]any) {
	for k, v := range SanitizeLogFields(fields) {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

// Access logs one HTTP request/response pair.
func (l *Logger) Access(method, path, remoteAddr, userAgent string, status int, duration time.Duration) {
	l.access.Info().
		Str("method", method).
		Str("path", path).
		Str("remote_addr", MaskIP(remoteAddr)).
		Str("user_agent", userAgent).
		Int("status", status).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("http request")
}

// Security logs a security-relevant event (rate limit trips, CAPTCHA
// detections, validation rejections) with PII masking applied.
func (l *Logger) Security(event, remoteAddr string, details map[string]any) {
	e := l.security.Warn().Str("event", event).Str("remote_addr", MaskIP(remoteAddr))
	for k, v := range SanitizeLogFields(details) {
		e = e.Interface(k, v)
	}
	e.Msg("security event")
}

// Audit logs a configuration or administrative action.
func (l *Logger) Audit(action, resource string, details map[string]any) {
	e := l.audit.Info().Str("action", action).Str("resource", resource)
	for k, v := range SanitizeLogFields(details) {
		e = e.Interface(k, v)
	}
	e.Msg("audit event")
}

// AccessMiddleware wraps an http.Handler with access logging.
func (l *Logger) AccessMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		l.Access(r.Method, r.URL.Path, r.RemoteAddr, r.UserAgent(), wrapped.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
