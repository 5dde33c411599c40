package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	previous := Logger
	t.Cleanup(func() { Logger = previous })

	tests := []struct {
		name      string
		appEnv    string
		level     string
		wantLevel logrus.Level
		wantJSON  bool
	}{
		{"development debug", "development", "debug", logrus.DebugLevel, false},
		{"production warning", "production", "warning", logrus.WarnLevel, true},
		{"unknown level falls back to info", "development", "verbose", logrus.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, Init(tt.appEnv, tt.level, ""))
			assert.Equal(t, tt.wantLevel, Logger.GetLevel())

			_, isJSON := Logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.wantJSON, isJSON)
		})
	}
}

func TestInitWritesDailyFile(t *testing.T) {
	previous := Logger
	t.Cleanup(func() { Logger = previous })

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Init("production", "info", dir))

	Logger.Info("hello from the test")

	raw, err := os.ReadFile(filepath.Join(dir, time.Now().Format("02_01_2006")+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "hello from the test")
}
