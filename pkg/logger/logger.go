package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	maxSize = 10
	maxBack = 5
	maxAge  = 30
)

// NewLogger writes human-readable logs to stdout and JSON logs to a rotated file.
func NewLogger(filePath, serviceName string) *zap.Logger {
	fileRotator := &lumberjack.Logger{
		Filename:   filePath, // log file location
		MaxSize:    maxSize,  // megabytes before rotation
		MaxBackups: maxBack,  // number of old files to retain
		MaxAge:     maxAge,   // days to retain rotated files
		Compress:   true,     // gzip old log files
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCfg := zap.NewDevelopmentEncoderConfig()
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stdout), zap.DebugLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(fileRotator), zap.InfoLevel),
	)

	logger := zap.New(core, zap.AddCaller()).With(zap.String("service", serviceName))

	logger.Info("Logger initialized with file rotation",
		zap.String("logsFilePath", filePath),
		zap.String("serviceName", serviceName),
	)

	return logger
}
