// Package logging backs foundation.Logger with zap for the CLI.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AshkanYarmoradi/go-foundation"
)

// ZapAdapter adapts zap.SugaredLogger to implement foundation.Logger.
type ZapAdapter struct {
	logger *zap.SugaredLogger
}

// NewZapAdapter creates a logger adapter from a zap SugaredLogger.
func NewZapAdapter(zapLogger *zap.SugaredLogger) foundation.Logger {
	if zapLogger == nil {
		return foundation.NopLogger()
	}
	return &ZapAdapter{logger: zapLogger}
}

// Debug implements foundation.Logger.Debug using zap's Debugw.
func (z *ZapAdapter) Debug(msg string, fields ...interface{}) {
	z.logger.Debugw(msg, fields...)
}

// Info implements foundation.Logger.Info using zap's Infow.
func (z *ZapAdapter) Info(msg string, fields ...interface{}) {
	z.logger.Infow(msg, fields...)
}

// Warn implements foundation.Logger.Warn using zap's Warnw.
func (z *ZapAdapter) Warn(msg string, fields ...interface{}) {
	z.logger.Warnw(msg, fields...)
}

// Error implements foundation.Logger.Error using zap's Errorw.
func (z *ZapAdapter) Error(msg string, fields ...interface{}) {
	z.logger.Errorw(msg, fields...)
}

// ParseLevel maps a config level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	switch level {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("logging: unknown level %q", level)
}

// New builds a CLI logger writing to w. Format is "console" or "json".
func New(level, format string, w io.Writer) (foundation.Logger, error) {
	zapLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var encoder zapcore.Encoder
	switch format {
	case "", "console":
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case "json":
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "time"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zapLevel)
	return NewZapAdapter(zap.New(core).Sugar()), nil
}
