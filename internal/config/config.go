// Package config loads termchat configuration from the environment.
package config

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/raphaelgruber/termchat/internal/models"
)

// Config holds all configuration values.
type Config struct {
	// Storage
	DataDir      string
	ProfilesFile string

	// Defaults for new conversations
	DefaultPlatform  models.Platform
	DefaultMaxTokens int

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables. Defaults for
// platform and max tokens match the original terminal client (deepseek,
// 1024); durable overrides live in the tracker state file, not here.
func Load() Config {
	return Config{
		DataDir:      getEnv("TERMCHAT_DATA_DIR", defaultDataDir()),
		ProfilesFile: os.Getenv("TERMCHAT_PROFILES_FILE"),

		DefaultPlatform:  models.Platform(getEnv("TERMCHAT_PLATFORM", string(models.PlatformDeepseek))),
		DefaultMaxTokens: getEnvInt("TERMCHAT_MAX_TOKENS", 1024),

		LogFile:  getEnv("TERMCHAT_LOG_FILE", "/tmp/termchat.log"),
		LogLevel: parseLogLevel(getEnv("TERMCHAT_LOG_LEVEL", "INFO")),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".termchat"
	}
	return filepath.Join(home, ".termchat")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadDotEnv reads KEY=VALUE pairs from the first existing path and sets
// them as environment variables. Variables already present in the
// environment win. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			line = strings.TrimPrefix(line, "export ")
			key, value, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			value = strings.Trim(value, `"'`)
			if key == "" || os.Getenv(key) != "" {
				continue
			}
			if err := os.Setenv(key, value); err != nil {
				return err
			}
		}
		return scanner.Err()
	}
	return nil
}
