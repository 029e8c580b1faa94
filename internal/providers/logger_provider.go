package providers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"withings-mcp/internal/structures"

	"github.com/rs/zerolog"
)

type TypeEnum int

const (
	TypeApp TypeEnum = iota
	TypeAuth
	TypeApi
	TypeTool
	TypeHttp
)

const logFileName = "withings-mcp.log"

func (t TypeEnum) String() string {
	switch t {
	case TypeAuth:
		return "auth"
	case TypeApi:
		return "api"
	case TypeTool:
		return "tool"
	case TypeHttp:
		return "http"
	default:
		return "app"
	}
}

type Logger interface {
	Errorf(t TypeEnum, format string, args ...interface{})
	Warnf(t TypeEnum, format string, args ...interface{})
	Debugf(t TypeEnum, format string, args ...interface{})
	Infof(t TypeEnum, format string, args ...interface{})
	Fatalf(t TypeEnum, format string, args ...interface{})
	Close()
}

type LogProvider struct {
	logger zerolog.Logger
	file   *os.File
}

func (l *LogProvider) Errorf(t TypeEnum, format string, args ...interface{}) {
	l.logger.Error().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Warnf(t TypeEnum, format string, args ...interface{}) {
	l.logger.Warn().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Debugf(t TypeEnum, format string, args ...interface{}) {
	l.logger.Debug().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Infof(t TypeEnum, format string, args ...interface{}) {
	l.logger.Info().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Fatalf(t TypeEnum, format string, args ...interface{}) {
	l.logger.Fatal().Str("type", t.String()).Msgf(format, args...)
}

func (l *LogProvider) Close() {
	if l.file != nil {
		_ = l.file.Sync()
		_ = l.file.Close()
		l.file = nil
	}
}

// NewLogProvider logs to stderr, never stdout: stdout carries the JSON-RPC
// stream. When a directory is configured a JSON copy goes to a file there.
func NewLogProvider(conf *structures.Config) (Logger, error) {
	level, err := zerolog.ParseLevel(conf.Logger.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", conf.Logger.Level, err)
	}
	if conf.Debug {
		level = zerolog.DebugLevel
	}

	var console io.Writer = os.Stderr
	if conf.Debug {
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	writers := []io.Writer{console}

	provider := &LogProvider{}
	if conf.Logger.Dir != "" {
		mode := os.FileMode(conf.Logger.Mode)
		if mode == 0 {
			mode = 0644
		}
		f, err := os.OpenFile(filepath.Join(conf.Logger.Dir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, mode)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		provider.file = f
		writers = append(writers, f)
	}

	provider.logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Str("app", conf.AppName).
		Logger()

	return provider, nil
}
