// Package logging builds the structured logger shared by the detector and the
// MCP server.
//
// Output always goes to stderr because stdout carries the JSON-RPC protocol.
// When PUPIL_MCP_LOG_FILE is set, entries are also written to a rotating file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Environment variables read by FromEnv.
const (
	EnvLevel = "PUPIL_MCP_LOG_LEVEL"
	EnvFile  = "PUPIL_MCP_LOG_FILE"
)

// TraceIDKey is the field name carrying the per-call trace ID.
const TraceIDKey = "trace_id"

// Fields is an alias so callers need not import logrus for field maps.
type Fields = logrus.Fields

var (
	logger *logrus.Logger
	once   sync.Once
)

// Options controls how a logger is built.
type Options struct {
	// Level is a logrus level name. Empty or unknown names mean "info".
	Level string

	// File, when set, receives a copy of every entry through lumberjack.
	File string

	// Output replaces stderr. Used by tests.
	Output io.Writer

	// NoColors disables ANSI colors in the formatter.
	NoColors bool
}

// FromEnv reads Options from the PUPIL_MCP_* environment variables.
func FromEnv() Options {
	return Options{
		Level: os.Getenv(EnvLevel),
		File:  os.Getenv(EnvFile),
	}
}

// Default returns the process-wide logger, building it from the environment
// on first use.
func Default() *logrus.Logger {
	once.Do(func() {
		logger = New(FromEnv())
	})
	return logger
}

// New builds a logger from opts.
func New(opts Options) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	l.SetFormatter(&formatter.Formatter{
		NoColors:        opts.NoColors,
		TimestampFormat: "2006-01-02 15:04:05.000",
		HideKeys:        false,
		CallerFirst:     true,
		FieldsOrder:     []string{TraceIDKey, "tool", "stage"},
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, funcName)
		},
	})

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	writers := []io.Writer{out}
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    50,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}
	l.SetOutput(io.MultiWriter(writers...))
	l.SetReportCaller(level >= logrus.DebugLevel)

	return l
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// NewTraceID returns a random ID for correlating the log entries of one call.
func NewTraceID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return "unknown"
	}
	return id.String()
}

// WithTrace returns an entry tagged with a fresh trace ID.
func WithTrace(l logrus.FieldLogger) (*logrus.Entry, string) {
	id := NewTraceID()
	return l.WithField(TraceIDKey, id), id
}
