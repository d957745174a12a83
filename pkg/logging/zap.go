package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Zap forwards messages to a zap.Logger.
type Zap struct {
	Logger *zap.Logger
}

// Logf implements Logger.
func (z *Zap) Logf(sev Severity, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	field := zap.Stringer("severity", sev)
	switch sev {
	case Debug:
		z.Logger.Debug(msg, field)
	case Info, Always:
		z.Logger.Info(msg, field)
	case Warn:
		z.Logger.Warn(msg, field)
	default:
		z.Logger.Error(msg, field)
	}
}

// FileOptions configures a rotating log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewFileLogger creates a JSON zap logger writing to a rotating file.
func NewFileLogger(opts FileOptions) *zap.Logger {
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 10
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, zapcore.DebugLevel)
	return zap.New(core)
}
