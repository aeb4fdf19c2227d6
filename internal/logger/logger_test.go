package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLoggerLevel(t *testing.T) {
	log := InitLogger("warn", false)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	assert.Same(t, log, GetLogger())
}

func TestInitLoggerDevelopmentDefaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")

	log := InitLogger("", true)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	log := InitLogger("loud", false)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestWithComponent(t *testing.T) {
	InitLogger("info", false)
	entry := WithComponent("simulation")
	assert.Equal(t, "simulation", entry.Data["component"])
}
