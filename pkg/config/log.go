package config

import (
	"fmt"
	"log/slog"
)

// LogConfig sets the minimum level of the JSON logger.
// Level uses slog's names (debug, info, warn, error) in any case, with optional offsets such as "info+2".
type LogConfig struct {
	Level string `koanf:"level"`
}

// SlogLevel parses Level. An empty level is info.
func (c *LogConfig) SlogLevel() (slog.Level, error) {
	if c.Level == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q: %w", c.Level, err)
	}
	return level, nil
}

func (c *LogConfig) String() string {
	level, _ := c.SlogLevel()
	return fmt.Sprintf("\n--- Log ---\n  level: %s\n", level)
}

func (c *LogConfig) Validate() error {
	_, err := c.SlogLevel()
	return err
}
