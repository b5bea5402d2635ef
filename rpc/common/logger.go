package common

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// --------------------------------------------------------------------------
// Logger Factory
// --------------------------------------------------------------------------

const logTimeFormat = "2006-01-02 15:04:05.000"

// NewLogger creates the root zap logger for the given level. Log output
// always goes to stdout in a human-readable console format; if file is
// non-empty, JSON records are additionally written to that file with
// size-based rotation.
//
// Components derive their own loggers from the returned root via Named(),
// e.g. log.Named("transport/tcp").
func NewLogger(level string, file string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q (must be one of debug, info, warn, error): %w", level, err)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stdout), lvl),
	}

	if file != "" {
		cores = append(cores, zapcore.NewCore(fileEncoder(), fileSyncer(file), lvl))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// --------------------------------------------------------------------------
// Encoders and Sinks
// --------------------------------------------------------------------------

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "ts",
		NameKey:        "logger",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeLevel,
		EncodeTime:     encodeTime,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeName:     encodeName,
	}
}

func consoleEncoder() zapcore.Encoder {
	return zapcore.NewConsoleEncoder(encoderConfig())
}

func fileEncoder() zapcore.Encoder {
	cfg := encoderConfig()
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeTime = zapcore.EpochMillisTimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func encodeLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf("%-5s", level.CapitalString()))
}

func encodeTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format(logTimeFormat))
}

func encodeName(name string, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf("%-15s", name))
}

// fileSyncer wraps the log file in a size-rotating writer
func fileSyncer(file string) zapcore.WriteSyncer {
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    100, // MB
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	})
}
