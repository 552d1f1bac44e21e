package config

import (
	"fmt"

	"go.uber.org/zap"
)

// Logger builds the process logger: JSON in prod, console otherwise, at
// LOG_LEVEL.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zc := zap.NewDevelopmentConfig()
	if c.IsProd() {
		zc = zap.NewProductionConfig()
	}
	zc.Level = level
	return zc.Build()
}
