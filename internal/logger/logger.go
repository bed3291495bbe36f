package logger

import (
	"os"
	"sync"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger
	mu   sync.Mutex
	once sync.Once
)

// Options controls logger construction
type Options struct {
	Verbose bool   // debug level and development encoder
	File    string // optional rotating JSON log file
}

// Init initializes the global logger once. Later calls are no-ops.
func Init(opts Options) {
	once.Do(func() {
		set(New(opts))
	})
}

// New builds a logger writing to stderr and, when File is set, to a
// rotating JSON file.
func New(opts Options) *zap.Logger {
	var level zapcore.Level
	var encoderConfig zapcore.EncoderConfig

	if opts.Verbose {
		level = zapcore.DebugLevel
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	} else {
		level = zapcore.InfoLevel
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	// stdout stays free for command output such as style dump
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.Lock(os.Stderr),
			level,
		),
	}

	if opts.File != "" {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    50, // MB
				MaxBackups: 5,
				MaxAge:     30, // days
			}),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zapcore.ErrorLevel))
}

// Set replaces the global logger, mainly for tests
func Set(l *zap.Logger) {
	once.Do(func() {})
	set(l)
}

func set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// Get returns the global logger, initializing an info-level console
// logger on first use.
func Get() *zap.Logger {
	mu.Lock()
	l := log
	mu.Unlock()
	if l == nil {
		Init(Options{})
		mu.Lock()
		l = log
		mu.Unlock()
	}
	return l
}

// Named returns a child of the global logger
func Named(name string) *zap.Logger {
	return Get().Named(name)
}

// Sync flushes any buffered log entries
func Sync() {
	if l := Get(); l != nil {
		_ = l.Sync()
	}
}
