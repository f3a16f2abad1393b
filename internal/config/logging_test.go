package config

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ParsesLevel(t *testing.T) {
	logger := NewLogger(LoggingConfig{Level: "warn", Format: "json"})
	require.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger := NewLogger(LoggingConfig{Level: "shouting", Format: "json"})
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestLoggerOutput_ConsoleFormat(t *testing.T) {
	require.IsType(t, zerolog.ConsoleWriter{}, loggerOutput("console"))
	require.IsType(t, zerolog.ConsoleWriter{}, loggerOutput("CONSOLE"))
	require.Equal(t, os.Stdout, loggerOutput("json"))
	require.Equal(t, os.Stdout, loggerOutput(""))
}
