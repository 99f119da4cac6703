package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger records pipeline activity. Operator-facing output does not go here.
type Logger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
	Sync() error
}

type ZapLogger struct {
	logger *zap.Logger
}

// NewFileLogger writes JSON lines to a rotated file and nowhere else, so the
// CLI and TUI keep a clean terminal
func NewFileLogger(logFilePath, level string) (*ZapLogger, error) {
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0755); err != nil {
		return nil, err
	}

	rotator := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    5, // Megabytes
		MaxBackups: 3,
		MaxAge:     30, // Days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		lvl,
	)

	return &ZapLogger{logger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))}, nil
}

func (l *ZapLogger) Debug(module, message string, details map[string]interface{}) {
	l.logger.Debug(message, fields(module, details)...)
}

func (l *ZapLogger) Info(module, message string, details map[string]interface{}) {
	l.logger.Info(message, fields(module, details)...)
}

func (l *ZapLogger) Warn(module, message string, details map[string]interface{}) {
	l.logger.Warn(message, fields(module, details)...)
}

func (l *ZapLogger) Error(module, message string, details map[string]interface{}) {
	fs := fields(module, details)
	if err, ok := details["error"].(error); ok {
		fs = append(fs, zap.Error(err))
	}
	l.logger.Error(message, fs...)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

func fields(module string, details map[string]interface{}) []zap.Field {
	fs := []zap.Field{zap.String("module", module)}
	if len(details) > 0 {
		fs = append(fs, zap.Any("details", details))
	}
	return fs
}

// Nop discards everything
type Nop struct{}

func (Nop) Debug(string, string, map[string]interface{}) {}
func (Nop) Info(string, string, map[string]interface{})  {}
func (Nop) Warn(string, string, map[string]interface{})  {}
func (Nop) Error(string, string, map[string]interface{}) {}
func (Nop) Sync() error                                  { return nil }
