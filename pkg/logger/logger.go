package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/killallgit/liftchat/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a zap logger writing to a rotated file. The terminal belongs
// to the TUI, so nothing is ever written to stdout or stderr from here.
type Logger struct {
	zap      *zap.Logger
	rotator  *lumberjack.Logger
	filePath string
}

var (
	mu            sync.RWMutex
	defaultLogger *Logger
)

// Init initializes the default logger from the logging section of the config
func Init(settings config.LoggingConfig) error {
	mu.Lock()
	defer mu.Unlock()

	if defaultLogger != nil {
		return nil // Already initialized
	}

	l, err := New(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defaultLogger = l
	return nil
}

// New creates a Logger from configuration without touching the default
func New(settings config.LoggingConfig) (*Logger, error) {
	logPath := settings.LogFile
	if logPath == "" {
		logPath = "system.log"
	}
	if !filepath.IsAbs(logPath) {
		// Relative log files live next to the settings file
		logPath = config.BuildSettingsPath(filepath.Base(logPath))
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	if !settings.Preserve {
		if err := os.Remove(logPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to clear log file: %w", err)
		}
	}

	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    10, // Megabytes
		MaxBackups: 3,
		MaxAge:     14, // Days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		parseLevel(settings.Level),
	)

	return &Logger{
		zap:      zap.New(core, zap.AddCaller()),
		rotator:  rotator,
		filePath: logPath,
	}, nil
}

// Path returns the file the logger writes to
func (l *Logger) Path() string {
	return l.filePath
}

// Component returns a sugared logger tagged with the component name
func (l *Logger) Component(name string) *zap.SugaredLogger {
	return l.zap.Sugar().With("component", name)
}

// Close flushes buffered entries and closes the log file
func (l *Logger) Close() error {
	_ = l.zap.Sync()
	return l.rotator.Close()
}

// parseLevel converts a string level to a zap level
func parseLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// WithComponent returns a logger for one component. Before Init it discards
// everything, which keeps packages usable from tests without setup.
func WithComponent(name string) *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()

	if defaultLogger == nil {
		return zap.NewNop().Sugar()
	}
	return defaultLogger.Component(name)
}

// Use installs l as the default logger, returning the previous one
func Use(l *Logger) *Logger {
	mu.Lock()
	defer mu.Unlock()

	prev := defaultLogger
	defaultLogger = l
	return prev
}

// Close closes the default logger
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if defaultLogger == nil {
		return nil
	}
	err := defaultLogger.Close()
	defaultLogger = nil
	return err
}
