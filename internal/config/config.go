// Package config resolves demo settings from flags and the environment.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"overlaykit/internal/logging"
)

// Config captures runtime configuration for the demo.
type Config struct {
	Width   int
	Height  int
	Story   string
	Mouse   bool
	Logging Logging
	Args    []string
}

type Logging struct {
	FilePath string
	Level    string
	Trace    bool
}

const (
	envWidth    = "OVERLAYKIT_WIDTH"
	envHeight   = "OVERLAYKIT_HEIGHT"
	envLogFile  = "OVERLAYKIT_LOG_FILE"
	envLogLevel = "OVERLAYKIT_LOG_LEVEL"
	envTrace    = "OVERLAYKIT_TRACE"
	envStory    = "OVERLAYKIT_STORY"
	envMouse    = "OVERLAYKIT_MOUSE"
)

// Demo stories, in page order.
const (
	StoryDropdown = "dropdown"
	StoryDialog   = "dialog"
	StoryFilter   = "filter"
	StoryNested   = "nested"
)

var Stories = []string{StoryDropdown, StoryDialog, StoryFilter, StoryNested}

// Register adds the demo flags to fs, defaulting each from environ, and
// returns the config the flags fill when fs is parsed.
func Register(fs *pflag.FlagSet, environ []string) *Config {
	env := parseEnv(environ)
	cfg := &Config{}
	fs.IntVar(&cfg.Width, "width", envOrInt(env, envWidth, 0), "viewport width in cells (0 uses terminal width)")
	fs.IntVar(&cfg.Height, "height", envOrInt(env, envHeight, 0), "viewport height in rows (0 uses terminal height)")
	fs.StringVar(&cfg.Story, "story", envOrDefault(env, envStory, StoryDropdown), "story expanded at start: "+strings.Join(Stories, ", "))
	fs.BoolVar(&cfg.Mouse, "mouse", envOrBool(env, envMouse, true), "enable mouse input")
	fs.StringVar(&cfg.Logging.FilePath, "log-file", envOrDefault(env, envLogFile, ""), "path to the log file")
	fs.StringVar(&cfg.Logging.Level, "log-level", envOrDefault(env, envLogLevel, "info"), "log level: debug, info, warn, error")
	fs.BoolVar(&cfg.Logging.Trace, "trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	return cfg
}

// LoadArgs parses args against environ the way the demo command does, then
// validates the result.
func LoadArgs(args []string, environ []string) (Config, error) {
	fs := pflag.NewFlagSet("overlaydemo", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg := Register(fs, environ)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	if err := Validate(*cfg); err != nil {
		return Config{}, err
	}
	return *cfg, nil
}

// Validate rejects values the demo cannot run with.
func Validate(cfg Config) error {
	if cfg.Width < 0 {
		return fmt.Errorf("width must be >= 0 (got %d)", cfg.Width)
	}
	if cfg.Height < 0 {
		return fmt.Errorf("height must be >= 0 (got %d)", cfg.Height)
	}
	if !slices.Contains(Stories, cfg.Story) {
		return fmt.Errorf("unknown story %q (want one of %s)", cfg.Story, strings.Join(Stories, ", "))
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the parsed log level, defaulting to info.
func (l Logging) SlogLevel() slog.Level {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		values[key] = value
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}
