package notes

import (
	"os"
	"testing"

	"roster-pulse/internal/config"
	"roster-pulse/internal/logger"
)

func TestMain(m *testing.M) {
	if _, err := logger.Init(config.Config{LogLevel: "error", LogFormat: "text"}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
