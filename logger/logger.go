package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"optionflow/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a zap.Logger configured based on the given options.
func New(opts config.LogConfig) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(opts.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	encoding := "json"
	if opts.Environment == "dev" || opts.Format == "console" {
		encoding = "console"
	}
	encoderCfg := encoderConfig(encoding)

	var cores []zapcore.Core

	// stdout
	var stdoutEncoder zapcore.Encoder
	if encoding == "console" {
		stdoutEncoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		stdoutEncoder = zapcore.NewJSONEncoder(encoderCfg)
	}
	cores = append(cores, zapcore.NewCore(stdoutEncoder, zapcore.Lock(os.Stdout), lvl))

	// Optional file output with rotation via lumberjack
	if opts.OutputFile != "" {
		dir := filepath.Dir(opts.OutputFile)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.OutputFile,
			MaxSize:    10,   // MB before rotation
			MaxBackups: 5,    // rotated files kept
			MaxAge:     7,    // days
			Compress:   true, // gzip rotated files
		})

		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig("json")),
			fileWriter,
			lvl,
		))
	}

	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// encoderConfig returns a zapcore.EncoderConfig based on log format.
func encoderConfig(format string) zapcore.EncoderConfig {
	if format == "console" {
		return zap.NewDevelopmentEncoderConfig()
	}
	return zap.NewProductionEncoderConfig()
}
