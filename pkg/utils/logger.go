package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the verbosity level of logging
type LogLevel int

const (
	ErrorLevel LogLevel = iota
	WarningLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

// String returns a string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case ErrorLevel:
		return "ERROR"
	case WarningLevel:
		return "WARNING"
	case InfoLevel:
		return "INFO"
	case DebugLevel:
		return "DEBUG"
	case TraceLevel:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// zapLevel maps a verbosity level onto the zap level it is written at.
// zap has nothing below debug, so trace messages are written as debug.
func (l LogLevel) zapLevel() zapcore.Level {
	switch l {
	case ErrorLevel:
		return zapcore.ErrorLevel
	case WarningLevel:
		return zapcore.WarnLevel
	case InfoLevel:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Logger is a leveled logger with indentation, written through zap
type Logger struct {
	Level      LogLevel
	ShowTime   bool
	Prefix     string
	IndentSize int
	indent     int // Current indentation level

	out   io.Writer
	sugar *zap.SugaredLogger
}

// NewLogger creates a new logger with the specified verbosity level
func NewLogger(level LogLevel) *Logger {
	l := &Logger{
		Level:      level,
		ShowTime:   true,
		IndentSize: 2,
	}
	l.SetOutput(os.Stdout)
	return l
}

// NewFileLogger creates a new logger that writes to a file
func NewFileLogger(level LogLevel, filename string) (*Logger, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	l := NewLogger(level)
	l.SetOutput(file)
	return l, nil
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *Logger {
	l := NewLogger(ErrorLevel)
	l.sugar = zap.NewNop().Sugar()
	return l
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.out = w
	l.build()
}

// SetShowTime toggles timestamps
func (l *Logger) SetShowTime(show bool) {
	l.ShowTime = show
	l.build()
}

func (l *Logger) build() {
	cfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	}
	if l.ShowTime {
		cfg.TimeKey = "time"
		cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(l.out), zapcore.DebugLevel)
	l.sugar = zap.New(core).Sugar()
}

// Sync flushes buffered log entries
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

// SetPrefix sets a prefix for all log messages
func (l *Logger) SetPrefix(prefix string) {
	l.Prefix = prefix
}

// Indent increases the indentation level
func (l *Logger) Indent() {
	l.indent++
}

// Outdent decreases the indentation level
func (l *Logger) Outdent() {
	if l.indent > 0 {
		l.indent--
	}
}

// log logs a message at the specified level
func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level > l.Level {
		return
	}

	var builder strings.Builder
	if level == TraceLevel {
		builder.WriteString("TRACE ")
	}
	if l.Prefix != "" {
		builder.WriteString(l.Prefix)
		builder.WriteString(": ")
	}
	if l.indent > 0 {
		builder.WriteString(strings.Repeat(" ", l.indent*l.IndentSize))
	}
	builder.WriteString(fmt.Sprintf(format, args...))

	msg := builder.String()
	switch level.zapLevel() {
	case zapcore.ErrorLevel:
		l.sugar.Error(msg)
	case zapcore.WarnLevel:
		l.sugar.Warn(msg)
	case zapcore.InfoLevel:
		l.sugar.Info(msg)
	default:
		l.sugar.Debug(msg)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ErrorLevel, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.log(WarningLevel, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(InfoLevel, format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DebugLevel, format, args...)
}

// Trace logs a trace message (highest verbosity)
func (l *Logger) Trace(format string, args ...interface{}) {
	l.log(TraceLevel, format, args...)
}

// Circuit logs information about netlist loading and structure
func (l *Logger) Circuit(format string, args ...interface{}) {
	l.log(DebugLevel, "CIRCUIT: "+format, args...)
}

// Algorithm logs information about the search
func (l *Logger) Algorithm(format string, args ...interface{}) {
	l.log(DebugLevel, "ALGORITHM: "+format, args...)
}

// Fault logs information about fault injection
func (l *Logger) Fault(format string, args ...interface{}) {
	l.log(DebugLevel, "FAULT: "+format, args...)
}

// Pattern logs per-pattern comparisons
func (l *Logger) Pattern(format string, args ...interface{}) {
	l.log(TraceLevel, "PATTERN: "+format, args...)
}
