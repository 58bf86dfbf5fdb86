package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInit_DefaultsToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	Init()
	if Log.GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected info level by default, got %s", Log.GetLevel())
	}
	if _, ok := Log.Formatter.(*logrus.TextFormatter); !ok {
		t.Errorf("Expected text formatter by default, got %T", Log.Formatter)
	}
}

func TestInit_ReadsEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	Init()
	if Log.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %s", Log.GetLevel())
	}
	if _, ok := Log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("Expected JSON formatter, got %T", Log.Formatter)
	}
}

func TestInit_InvalidLevelFallsBack(t *testing.T) {
	t.Setenv("LOG_LEVEL", "shouting")

	Init()
	if Log.GetLevel() != logrus.InfoLevel {
		t.Errorf("Expected fallback to info level, got %s", Log.GetLevel())
	}
}
