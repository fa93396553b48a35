// Package logger builds the zap logger used across the pipeline:
// structured JSON to stderr, optionally duplicated to a rotated file.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"deposit-radar/internal/config"
)

// New builds a logger from the logging configuration. The returned
// closer flushes the rotated file and is a no-op for stderr-only setups.
func New(cfg *config.LoggingConfig) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level),
	}

	closer := func() {}
	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:  cfg.File,
			MaxSize:   200,
			LocalTime: true,
			Compress:  true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotated), level))
		closer = func() { _ = rotated.Close() }
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return log, closer, nil
}
