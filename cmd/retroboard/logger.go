package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogEncodingConsole = "console"
	LogEncodingJSON    = "json"
)

func buildZapLogger(encoding string) (*zap.Logger, error) {
	switch encoding {
	case LogEncodingJSON:
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.MessageKey = "message"
		encoderConfig.LevelKey = "severity"
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.NameKey = "logger"
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

		config := zap.NewProductionConfig()
		config.EncoderConfig = encoderConfig

		return config.Build()
	case LogEncodingConsole, "":
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

		config := zap.NewDevelopmentConfig()
		config.EncoderConfig = encoderConfig

		return config.Build()
	default:
		return nil, fmt.Errorf("unknown log encoding: %q", encoding)
	}
}
