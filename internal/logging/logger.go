package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance
	Logger = zap.NewNop()
)

// Options selects how the global logger is built
type Options struct {
	Service string
	Version string
	// Level is a zap level name. Unknown names keep the default info level.
	Level string
	// Console switches from JSON to the human readable encoder
	Console bool
}

// OptionsFromEnv reads LOG_LEVEL and LOG_FORMAT ("json" or "console")
func OptionsFromEnv(service string) Options {
	return Options{
		Service: service,
		Version: "v1",
		Level:   os.Getenv("LOG_LEVEL"),
		Console: strings.EqualFold(os.Getenv("LOG_FORMAT"), "console"),
	}
}

// InitLogger replaces the global logger
func InitLogger(opts Options) error {
	cfg := zap.NewProductionConfig()
	if opts.Console {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if opts.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(opts.Level)); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	var fields []zap.Field
	if opts.Service != "" {
		fields = append(fields, zap.String("service", opts.Service))
	}
	if opts.Version != "" {
		fields = append(fields, zap.String("version", opts.Version))
	}

	logger, err := cfg.Build(zap.Fields(fields...))
	if err != nil {
		return err
	}

	Logger = logger
	return nil
}

// Sync flushes any buffered log entries
func Sync() {
	_ = Logger.Sync()
}
